package store

import (
	"context"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
)

// ModelConfigStore defines read access to versioned model configuration.
type ModelConfigStore interface {
	// GetActive retrieves the currently active model configuration.
	// Returns ErrModelConfigNotFound when no row is marked active.
	GetActive(ctx context.Context) (*domain.ModelConfig, error)
}

// PromptConfigStore defines read access to prompt templates and
// difficulty descriptions stored as key/value rows.
type PromptConfigStore interface {
	// GetValue retrieves the configuration value for a key.
	// Returns ErrNotFound when the key is absent.
	GetValue(ctx context.Context, key string) (string, error)
}

// ExampleStore defines read access to curated example questions used as
// few-shot guidance in generation prompts.
type ExampleStore interface {
	// GetExamples retrieves up to limit example question bodies for a
	// subject/type/difficulty combination, oldest first. An empty result
	// is not an error.
	GetExamples(ctx context.Context, subjectCode, typeCode string, difficulty domain.Difficulty, limit int) ([]string, error)
}
