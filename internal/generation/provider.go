package generation

import (
	"context"
	"log/slog"

	"github.com/N1etZsch3/Novi-sub000/internal/config"
	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

// StoreModelProvider resolves the active model from the database, falling
// back to the static LLM configuration when no row is marked active. Each
// call re-reads the store, so configuration switches take effect on the
// next batch without a restart.
type StoreModelProvider struct {
	configs  store.ModelConfigStore
	fallback config.LLMConfig
	logger   *slog.Logger
}

// NewStoreModelProvider creates a provider backed by the given store.
func NewStoreModelProvider(configs store.ModelConfigStore, fallback config.LLMConfig, log *slog.Logger) *StoreModelProvider {
	if configs == nil {
		panic("configs cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &StoreModelProvider{
		configs:  configs,
		fallback: fallback,
		logger:   log.With(slog.String("component", "model_provider")),
	}
}

// Ensure StoreModelProvider implements ModelProvider interface
var _ ModelProvider = (*StoreModelProvider)(nil)

// ActiveModel implements ModelProvider.ActiveModel
func (p *StoreModelProvider) ActiveModel(ctx context.Context) (*domain.ModelConfig, error) {
	model, err := p.configs.GetActive(ctx)
	if err == nil {
		return model, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, err
	}

	p.logger.Warn("no active model configuration in database, using static fallback",
		slog.String("model_name", p.fallback.ModelName))

	return &domain.ModelConfig{
		ModelName:      p.fallback.ModelName,
		APIKey:         p.fallback.GeminiAPIKey,
		EnableThinking: false,
		IsActive:       true,
	}, nil
}
