package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/platform/logger"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

// PostgresModelConfigStore implements the store.ModelConfigStore interface
// using a PostgreSQL database as the storage backend.
type PostgresModelConfigStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresModelConfigStore creates a new PostgreSQL implementation of
// the ModelConfigStore interface.
func NewPostgresModelConfigStore(db store.DBTX, log *slog.Logger) *PostgresModelConfigStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresModelConfigStore{
		db:     db,
		logger: log.With(slog.String("component", "model_config_store")),
	}
}

// Ensure PostgresModelConfigStore implements store.ModelConfigStore interface
var _ store.ModelConfigStore = (*PostgresModelConfigStore)(nil)

// GetActive implements store.ModelConfigStore.GetActive
// A partial unique index on is_active guarantees at most one active row.
// Returns store.ErrModelConfigNotFound when no row is marked active.
func (s *PostgresModelConfigStore) GetActive(ctx context.Context) (*domain.ModelConfig, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, model_name, base_url, api_key, enable_thinking, is_active, description, created_at, updated_at
		FROM model_configs
		WHERE is_active = TRUE
	`

	var cfg domain.ModelConfig
	err := s.db.QueryRowContext(ctx, query).Scan(
		&cfg.ID,
		&cfg.ModelName,
		&cfg.BaseURL,
		&cfg.APIKey,
		&cfg.EnableThinking,
		&cfg.IsActive,
		&cfg.Description,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no active model configuration")
			return nil, store.ErrModelConfigNotFound
		}
		log.Error("failed to get active model configuration",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &cfg, nil
}

// PostgresPromptConfigStore implements the store.PromptConfigStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPromptConfigStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPromptConfigStore creates a new PostgreSQL implementation of
// the PromptConfigStore interface.
func NewPostgresPromptConfigStore(db store.DBTX, log *slog.Logger) *PostgresPromptConfigStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresPromptConfigStore{
		db:     db,
		logger: log.With(slog.String("component", "prompt_config_store")),
	}
}

// Ensure PostgresPromptConfigStore implements store.PromptConfigStore interface
var _ store.PromptConfigStore = (*PostgresPromptConfigStore)(nil)

// GetValue implements store.PromptConfigStore.GetValue
// Returns store.ErrNotFound when the key is absent.
func (s *PostgresPromptConfigStore) GetValue(ctx context.Context, key string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT config_value
		FROM prompt_configs
		WHERE config_key = $1
	`

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("prompt configuration key not found",
				slog.String("config_key", key))
			return "", store.ErrNotFound
		}
		log.Error("failed to get prompt configuration",
			slog.String("error", err.Error()),
			slog.String("config_key", key))
		return "", MapError(err)
	}

	return value, nil
}
