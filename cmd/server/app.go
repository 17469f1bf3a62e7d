package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/N1etZsch3/Novi-sub000/internal/config"
	"github.com/N1etZsch3/Novi-sub000/internal/generation"
	"github.com/N1etZsch3/Novi-sub000/internal/platform/gemini"
	"github.com/N1etZsch3/Novi-sub000/internal/platform/logger"
	"github.com/N1etZsch3/Novi-sub000/internal/platform/postgres"
	"github.com/N1etZsch3/Novi-sub000/internal/prompt"
	"github.com/N1etZsch3/Novi-sub000/internal/service/auth"
	"github.com/N1etZsch3/Novi-sub000/internal/service/papergen"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
	"github.com/N1etZsch3/Novi-sub000/internal/task"
)

// application holds the initialized dependencies of the server process.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore     store.UserStore
	categoryStore store.CategoryStore

	jwtService   auth.JWTService
	authService  *auth.Service
	paperService *papergen.Service
	pool         *task.Pool
}

// newApplication wires every component of the service from configuration
// through stores to services. It does not start the HTTP server.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, log)
	categoryStore := postgres.NewPostgresCategoryStore(db, log)
	paperStore := postgres.NewPostgresPaperStore(db, log)
	modelConfigStore := postgres.NewPostgresModelConfigStore(db, log)
	promptConfigStore := postgres.NewPostgresPromptConfigStore(db, log)
	exampleStore := postgres.NewPostgresExampleStore(db, log)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	authService, err := auth.NewService(userStore, auth.NewBcryptVerifier(), jwtService, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	textGen, err := gemini.NewGeminiGenerator(ctx, log, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}

	modelProvider := generation.NewStoreModelProvider(modelConfigStore, cfg.LLM, log)
	promptBuilder := prompt.NewBuilder(promptConfigStore, log)

	pool := task.NewPool(task.PoolConfig{
		CoreWorkers: cfg.Pool.CoreWorkers,
		MaxWorkers:  cfg.Pool.MaxWorkers,
		QueueSize:   cfg.Pool.QueueSize,
	}, log)

	paperService, err := papergen.NewService(
		db,
		categoryStore,
		paperStore,
		promptBuilder,
		exampleStore,
		textGen,
		modelProvider,
		pool,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create paper service: %w", err)
	}

	return &application{
		config:        cfg,
		logger:        log,
		db:            db,
		userStore:     userStore,
		categoryStore: categoryStore,
		jwtService:    jwtService,
		authService:   authService,
		paperService:  paperService,
		pool:          pool,
	}, nil
}

// cleanup releases resources held by the application. Called after the HTTP
// server has stopped accepting requests.
func (app *application) cleanup() {
	app.pool.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
	}
}
