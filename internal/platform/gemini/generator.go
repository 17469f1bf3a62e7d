package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/N1etZsch3/Novi-sub000/internal/config"
	"github.com/N1etZsch3/Novi-sub000/internal/generation"
)

// GeminiGenerator implements the generation.TextGenerator interface using
// Google's Gemini API.
type GeminiGenerator struct {
	logger *slog.Logger
	config config.LLMConfig

	// clients caches one genai client per API key. The active model
	// configuration carries its own key and may change between batches.
	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGeminiGenerator creates a new GeminiGenerator. The default API key
// and model name come from the LLM configuration; per-call options may
// override both.
func NewGeminiGenerator(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	g := &GeminiGenerator{
		logger:  log.With(slog.String("component", "gemini_generator")),
		config:  cfg,
		clients: make(map[string]*genai.Client),
	}

	// Fail fast on a bad default credential instead of at first use.
	if _, err := g.clientFor(ctx, cfg.GeminiAPIKey); err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return g, nil
}

// Ensure GeminiGenerator implements generation.TextGenerator interface
var _ generation.TextGenerator = (*GeminiGenerator)(nil)

// clientFor returns the cached client for the given API key, creating it
// on first use.
func (g *GeminiGenerator) clientFor(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if client, ok := g.clients[apiKey]; ok {
		return client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	g.clients[apiKey] = client
	return client, nil
}

// Complete implements generation.TextGenerator.Complete
// It sends the prompt to the Gemini API with exponential backoff retry for
// transient errors. Permanent errors (blocked content, malformed responses)
// are returned immediately without retrying.
func (g *GeminiGenerator) Complete(ctx context.Context, prompt string, opts generation.Options) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	model := g.config.ModelName
	if opts.ModelName != "" {
		model = opts.ModelName
	}
	apiKey := g.config.GeminiAPIKey
	if opts.APIKey != "" {
		apiKey = opts.APIKey
	}

	client, err := g.clientFor(ctx, apiKey)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	var genCfg *genai.GenerateContentConfig
	if opts.EnableThinking {
		genCfg = &genai.GenerateContentConfig{
			ThinkingConfig: &genai.ThinkingConfig{
				IncludeThoughts: false,
			},
		}
	}

	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 1)
		maxRetries = 1
	}
	baseDelay := time.Duration(g.config.RetryBaseDelayMs) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1 // 1-based for logging
		g.logger.InfoContext(ctx, "making Gemini API call",
			"model", model,
			"attempt", attemptNum,
			"max_attempts", maxRetries+1,
			"thinking", opts.EnableThinking)

		text, transient, err := g.callOnce(ctx, client, model, prompt, genCfg)
		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful",
				"attempt", attemptNum,
				"response_length", len(text))
			return text, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !transient {
			return "", err
		}
		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoff := float64(baseDelay) * math.Pow(2, float64(attempt))
		jitter := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoff * jitter)

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single API call and classifies its failure as
// transient or permanent.
func (g *GeminiGenerator) callOnce(
	ctx context.Context,
	client *genai.Client,
	model string,
	prompt string,
	genCfg *genai.GenerateContentConfig,
) (text string, transient bool, err error) {
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), genCfg)
	if err != nil {
		// API transport errors are assumed transient.
		return "", true, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil {
		return "", false, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", false, fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", false, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought {
			text += part.Text
		}
	}
	if text == "" {
		return "", false, fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}

	return text, false, nil
}
