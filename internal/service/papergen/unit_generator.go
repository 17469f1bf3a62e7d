package papergen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/generation"
	"github.com/N1etZsch3/Novi-sub000/internal/platform/logger"
	"github.com/N1etZsch3/Novi-sub000/internal/prompt"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

// itemRetries is the number of additional attempts after a failed
// upstream call for one item. A failed item is skipped, never fatal.
const itemRetries = 1

// maxFewShotExamples caps how many example questions guide one prompt.
const maxFewShotExamples = 3

// unitGenerator produces the outcome of one unit configuration. It never
// returns an error: every failure mode is captured inside the outcome.
type unitGenerator struct {
	prompts  *prompt.Builder
	examples store.ExampleStore
	textGen  generation.TextGenerator
	logger   *slog.Logger
}

// batchContext is the read-only per-batch state shared by the unit jobs:
// the resolved subject and the model options fixed at batch start.
type batchContext struct {
	Subject *domain.Category
	Options generation.Options
}

// Generate resolves one unit. The requested quantity expands into that
// many independent single-item model calls; a malformed response costs
// one item, not the unit. The unit fails only when every item fails.
func (g *unitGenerator) Generate(ctx context.Context, batch batchContext, plan plannedUnit) domain.UnitOutcome {
	log := logger.FromContextOrDefault(ctx, g.logger).With(
		slog.String("type_code", plan.Config.TypeCode),
		slog.Int("display_order", plan.Config.DisplayOrder))

	cfg := plan.Config
	examples := g.fewShotExamples(ctx, batch.Subject.Code, cfg, log)
	var items []json.RawMessage

	for item := 0; item < cfg.Quantity; item++ {
		accepted, err := g.generateItem(ctx, batch, plan, examples)
		if err != nil {
			log.Warn("item generation failed, skipping",
				slog.Int("item", item+1),
				slog.Int("quantity", cfg.Quantity),
				slog.String("error", err.Error()))
			continue
		}
		items = append(items, accepted...)
	}

	if len(items) == 0 {
		log.Error("all items failed for unit")
		return domain.FailedOutcome(cfg, plan.Type.Name,
			fmt.Sprintf("failed to generate any of %d requested question(s)", cfg.Quantity))
	}

	serialized, err := json.Marshal(items)
	if err != nil {
		return domain.FailedOutcome(cfg, plan.Type.Name,
			fmt.Sprintf("failed to serialize generated questions: %v", err))
	}

	log.Info("unit generated",
		slog.Int("questions", len(items)),
		slog.Int("requested", cfg.Quantity))

	return domain.UnitOutcome{
		TypeCode:     cfg.TypeCode,
		TypeName:     plan.Type.Name,
		DisplayOrder: cfg.DisplayOrder,
		Difficulty:   cfg.Difficulty,
		Quantity:     cfg.Quantity,
		Theme:        cfg.Theme,
		Questions:    serialized,
		OK:           true,
	}
}

// fewShotExamples loads curated example questions for one unit. When the
// requested difficulty has none configured, medium examples stand in.
// A lookup failure degrades to an unguided prompt rather than costing
// the unit.
func (g *unitGenerator) fewShotExamples(ctx context.Context, subjectCode string, cfg domain.UnitConfig, log *slog.Logger) []string {
	examples, err := g.examples.GetExamples(ctx, subjectCode, cfg.TypeCode, cfg.Difficulty, maxFewShotExamples)
	if err == nil && len(examples) == 0 && cfg.Difficulty != domain.DifficultyMedium {
		log.Debug("no examples at requested difficulty, falling back to medium",
			slog.String("difficulty", string(cfg.Difficulty)))
		examples, err = g.examples.GetExamples(ctx, subjectCode, cfg.TypeCode, domain.DifficultyMedium, maxFewShotExamples)
	}
	if err != nil {
		log.Warn("failed to load example questions, prompting without them",
			slog.String("error", err.Error()))
		return nil
	}
	return examples
}

// generateItem performs one single-question model call with a bounded
// retry, then extracts and parses the JSON content. Array results are
// spliced element-wise by the caller.
func (g *unitGenerator) generateItem(ctx context.Context, batch batchContext, plan plannedUnit, examples []string) ([]json.RawMessage, error) {
	promptText, err := g.prompts.Build(ctx, prompt.Request{
		SubjectCode: batch.Subject.Code,
		SubjectName: batch.Subject.Name,
		TypeCode:    plan.Config.TypeCode,
		TypeName:    plan.Type.Name,
		Difficulty:  plan.Config.Difficulty,
		Quantity:    1,
		Theme:       plan.Config.Theme,
		Examples:    examples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	var text string
	var callErr error
	for attempt := 0; attempt <= itemRetries; attempt++ {
		text, callErr = g.textGen.Complete(ctx, promptText, batch.Options)
		if callErr == nil {
			break
		}
	}
	if callErr != nil {
		return nil, fmt.Errorf("upstream call failed after %d attempts: %w", itemRetries+1, callErr)
	}

	cleaned := extractJSON(text)

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	// Splice arrays element-wise instead of nesting them.
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var elements []json.RawMessage
		if err := json.Unmarshal(raw, &elements); err != nil {
			return nil, fmt.Errorf("response array is malformed: %w", err)
		}
		return elements, nil
	}

	return []json.RawMessage{raw}, nil
}

// extractJSON slices the first well-formed-looking JSON value out of free
// text: from the first '{' or '[' to the last '}' or ']'. Models wrap
// JSON in prose or markdown fencing often enough that strict parsing of
// the full response would reject most valid content. The heuristic can
// misfire on text with unrelated braces; that imprecision is accepted.
// No bracket pair at all yields an empty array.
func extractJSON(s string) string {
	start := strings.IndexAny(s, "[{")
	end := strings.LastIndexAny(s, "]}")
	if start < 0 || end < 0 || end < start {
		return "[]"
	}
	return s[start : end+1]
}
