package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

// Configuration key formats. Values live in the prompt_configs table.
const (
	templateKeyFormat   = "prompt:%s:%s"             // prompt:{subject}:{type}
	difficultyKeyFormat = "desc:difficulty:%s:%s:%s" // desc:difficulty:{subject}:{type}:{difficulty}
)

// defaultDifficultyDesc is substituted when no difficulty description is
// configured for a subject/type/difficulty combination.
const defaultDifficultyDesc = "Moderate difficulty, appropriate for the exam syllabus."

// defaultTheme is substituted when the request carries no theme.
const defaultTheme = "general syllabus topics"

// noExamplesText is substituted when no example questions exist for the
// requested combination.
const noExamplesText = "(No reference examples available; follow the output format requirements strictly.)"

// ErrUnresolvedPlaceholder is returned when a template references a
// variable the builder does not provide. A silent no-op on a typoed
// placeholder would send a literal "{quantity}" to the model, so the
// builder fails instead.
var ErrUnresolvedPlaceholder = errors.New("template contains unresolved placeholder")

// placeholderPattern matches {variable} placeholders in templates.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// Builder assembles per-item generation prompts from configured templates.
type Builder struct {
	configs store.PromptConfigStore
	logger  *slog.Logger
}

// NewBuilder creates a prompt Builder reading templates from the given
// configuration store.
func NewBuilder(configs store.PromptConfigStore, log *slog.Logger) *Builder {
	if configs == nil {
		panic("configs cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Builder{
		configs: configs,
		logger:  log.With(slog.String("component", "prompt_builder")),
	}
}

// Request carries everything the builder needs for one prompt. Quantity is
// always 1 in practice: each requested item becomes its own model call.
type Request struct {
	SubjectCode string
	SubjectName string
	TypeCode    string
	TypeName    string
	Difficulty  domain.Difficulty
	Quantity    int
	Theme       string

	// Examples holds curated question bodies shown to the model as
	// reference output. May be empty.
	Examples []string
}

// Build assembles the prompt for one generation call. It loads the
// configured template for the subject/type pair, falling back to the
// built-in template when none is configured, resolves the difficulty
// description, and substitutes all variables strictly.
func (b *Builder) Build(ctx context.Context, req Request) (string, error) {
	template, err := b.configs.GetValue(ctx, fmt.Sprintf(templateKeyFormat, req.SubjectCode, req.TypeCode))
	if err != nil {
		if !store.IsNotFoundError(err) {
			return "", fmt.Errorf("failed to load prompt template: %w", err)
		}
		b.logger.DebugContext(ctx, "no configured template, using fallback",
			"subject_code", req.SubjectCode,
			"type_code", req.TypeCode)
		template = fallbackTemplate
	}

	difficultyDesc, err := b.configs.GetValue(ctx,
		fmt.Sprintf(difficultyKeyFormat, req.SubjectCode, req.TypeCode, req.Difficulty))
	if err != nil {
		if !store.IsNotFoundError(err) {
			return "", fmt.Errorf("failed to load difficulty description: %w", err)
		}
		b.logger.DebugContext(ctx, "no configured difficulty description, using default",
			"subject_code", req.SubjectCode,
			"difficulty", string(req.Difficulty))
		difficultyDesc = defaultDifficultyDesc
	}

	theme := SanitizeTheme(req.Theme)
	if theme == "" {
		theme = defaultTheme
	}

	vars := map[string]string{
		"subject":    req.SubjectName,
		"type":       req.TypeName,
		"quantity":   strconv.Itoa(req.Quantity),
		"difficulty": difficultyDesc,
		"theme":      theme,
		"examples":   renderExamples(req.Examples),
	}

	return Substitute(template, vars)
}

// renderExamples formats example question bodies into a numbered block
// for the {examples} placeholder.
func renderExamples(examples []string) string {
	if len(examples) == 0 {
		return noExamplesText
	}

	var sb strings.Builder
	for i, example := range examples {
		fmt.Fprintf(&sb, "Example %d:\n%s\n\n", i+1, example)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Substitute replaces every {key} placeholder in template with its value
// from vars. It returns ErrUnresolvedPlaceholder when the template
// references a key vars does not define; unused vars are fine.
func Substitute(template string, vars map[string]string) (string, error) {
	var unresolved []string
	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := vars[key]
		if !ok {
			unresolved = append(unresolved, key)
			return match
		}
		return value
	})

	if len(unresolved) > 0 {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, strings.Join(unresolved, ", "))
	}
	return result, nil
}

// fallbackTemplate is used when no template is configured for a
// subject/type pair. It demands a bare JSON array so the extraction
// heuristic downstream has the best chance of finding clean output.
const fallbackTemplate = `You are an expert {subject} exam item writer.
Write {quantity} {type} question(s) on the theme: {theme}.
Difficulty: {difficulty}

Reference examples of the expected style and format:
{examples}

Output format requirements:
1. Respond with a JSON array only, even for a single question.
2. Do not wrap the output in markdown fences or add any prose.
3. Escape all double quotes inside string values.
4. Each array element must contain the fields:
- content: the question text (including options for multiple choice)
- answer: the correct answer
- analysis: a detailed explanation
- difficulty: one of simple/medium/hard
- type: the question type

Constraints:
1. Questions must match the {subject} exam syllabus.
2. Keep the difficulty strictly at the requested level.
3. Content must be accurate and the analysis easy to follow.`
