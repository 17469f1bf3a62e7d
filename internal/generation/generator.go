package generation

import (
	"context"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
)

// Options carries per-call model parameters resolved from the active
// model configuration. The zero value selects the generator's defaults.
type Options struct {
	// ModelName overrides the generator's default model when non-empty.
	ModelName string

	// APIKey overrides the generator's default credential when non-empty.
	APIKey string

	// EnableThinking requests the model's extended reasoning mode.
	// Callers must only set this after checking that the active model
	// supports it.
	EnableThinking bool
}

// TextGenerator defines the interface for single-prompt text completion.
// This interface is the boundary between the application core and external
// AI/LLM services, following the hexagonal architecture pattern.
type TextGenerator interface {
	// Complete sends one prompt to the model and returns the raw response
	// text. It returns an error classified by errors.go: transient errors
	// may be retried by the caller, the others should not be.
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// ModelProvider resolves the active model configuration. The paper
// orchestrator calls it once per batch so a configuration switch during a
// running batch never mixes models within one paper.
type ModelProvider interface {
	// ActiveModel returns the currently active model configuration, or an
	// error when none is configured and no fallback exists.
	ActiveModel(ctx context.Context) (*domain.ModelConfig, error)
}
