// Package main implements the entry point for the exam paper generation
// server: user accounts, a question taxonomy, and concurrent LLM-backed
// paper generation streamed to the caller over SSE.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/N1etZsch3/Novi-sub000/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := runMigrations(app.db, app.logger); err != nil {
		return err
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}
