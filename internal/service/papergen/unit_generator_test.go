package papergen

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/generation"
	"github.com/N1etZsch3/Novi-sub000/internal/prompt"
)

func newTestUnitGenerator(textGen *fakeTextGen) *unitGenerator {
	log := testLogger()
	return &unitGenerator{
		prompts:  prompt.NewBuilder(emptyPromptConfigs{}, log),
		examples: &fakeExampleStore{},
		textGen:  textGen,
		logger:   log,
	}
}

func testPlan(quantity int) (batchContext, plannedUnit) {
	categories := newFakeCategoryStore("cloze")
	batch := batchContext{
		Subject: categories.subject,
		Options: generation.Options{ModelName: "gemini-2.0-flash"},
	}
	plan := plannedUnit{
		Config: domain.UnitConfig{
			TypeCode:     "cloze",
			DisplayOrder: 1,
			Quantity:     quantity,
			Difficulty:   domain.DifficultyMedium,
		},
		Type: categories.types[0],
	}
	return batch, plan
}

func TestUnitGeneratorQuantityExpandsIntoSingleItemCalls(t *testing.T) {
	t.Parallel()

	textGen := &fakeTextGen{respond: func(_ string, call int) (string, error) {
		return questionJSON(call), nil
	}}
	gen := newTestUnitGenerator(textGen)
	batch, plan := testPlan(3)

	outcome := gen.Generate(context.Background(), batch, plan)
	require.True(t, outcome.OK)
	assert.Equal(t, 3, textGen.callCount())

	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(outcome.Questions, &items))
	assert.Len(t, items, 3)
}

func TestUnitGeneratorFewShotExamplesReachThePrompt(t *testing.T) {
	t.Parallel()

	var prompts []string
	textGen := &fakeTextGen{respond: func(promptText string, call int) (string, error) {
		prompts = append(prompts, promptText)
		return questionJSON(call), nil
	}}
	gen := newTestUnitGenerator(textGen)
	examples := &fakeExampleStore{byDifficulty: map[domain.Difficulty][]string{
		domain.DifficultyMedium: {`{"content":"fill in the ___","answer":"blank"}`},
	}}
	gen.examples = examples
	batch, plan := testPlan(2)

	outcome := gen.Generate(context.Background(), batch, plan)
	require.True(t, outcome.OK)

	require.Len(t, prompts, 2)
	for _, p := range prompts {
		assert.Contains(t, p, "Example 1:")
		assert.Contains(t, p, `"fill in the ___"`)
	}
	// One lookup serves every item of the unit.
	assert.Equal(t, []domain.Difficulty{domain.DifficultyMedium}, examples.queries)
}

func TestUnitGeneratorExampleFallbackToMedium(t *testing.T) {
	t.Parallel()

	t.Run("missing difficulty borrows medium examples", func(t *testing.T) {
		t.Parallel()

		var captured string
		textGen := &fakeTextGen{respond: func(promptText string, call int) (string, error) {
			captured = promptText
			return questionJSON(call), nil
		}}
		gen := newTestUnitGenerator(textGen)
		examples := &fakeExampleStore{byDifficulty: map[domain.Difficulty][]string{
			domain.DifficultyMedium: {`{"content":"a medium sample"}`},
		}}
		gen.examples = examples
		batch, plan := testPlan(1)
		plan.Config.Difficulty = domain.DifficultyHard

		outcome := gen.Generate(context.Background(), batch, plan)
		require.True(t, outcome.OK)

		assert.Equal(t, []domain.Difficulty{domain.DifficultyHard, domain.DifficultyMedium}, examples.queries)
		assert.Contains(t, captured, "a medium sample")
	})

	t.Run("medium with no examples is not queried twice", func(t *testing.T) {
		t.Parallel()

		var captured string
		textGen := &fakeTextGen{respond: func(promptText string, call int) (string, error) {
			captured = promptText
			return questionJSON(call), nil
		}}
		gen := newTestUnitGenerator(textGen)
		examples := &fakeExampleStore{}
		gen.examples = examples
		batch, plan := testPlan(1)

		outcome := gen.Generate(context.Background(), batch, plan)
		require.True(t, outcome.OK)

		assert.Equal(t, []domain.Difficulty{domain.DifficultyMedium}, examples.queries)
		assert.Contains(t, captured, "No reference examples available")
	})
}

func TestUnitGeneratorExampleStoreFailureDoesNotCostTheUnit(t *testing.T) {
	t.Parallel()

	var captured string
	textGen := &fakeTextGen{respond: func(promptText string, call int) (string, error) {
		captured = promptText
		return questionJSON(call), nil
	}}
	gen := newTestUnitGenerator(textGen)
	gen.examples = &fakeExampleStore{failWith: errors.New("connection reset")}
	batch, plan := testPlan(1)

	outcome := gen.Generate(context.Background(), batch, plan)
	require.True(t, outcome.OK)
	assert.Contains(t, captured, "No reference examples available")
}

func TestUnitGeneratorRetriesOnceThenSkipsItem(t *testing.T) {
	t.Parallel()

	t.Run("retry recovers the item", func(t *testing.T) {
		t.Parallel()

		textGen := &fakeTextGen{respond: func(_ string, call int) (string, error) {
			if call == 1 {
				return "", errors.New("timeout")
			}
			return questionJSON(call), nil
		}}
		gen := newTestUnitGenerator(textGen)
		batch, plan := testPlan(1)

		outcome := gen.Generate(context.Background(), batch, plan)
		require.True(t, outcome.OK)
		assert.Equal(t, 2, textGen.callCount())
	})

	t.Run("a persistently failing item is skipped, not fatal", func(t *testing.T) {
		t.Parallel()

		textGen := &fakeTextGen{respond: func(_ string, call int) (string, error) {
			// Item 1 fails both attempts; item 2 succeeds first try.
			if call <= 2 {
				return "", errors.New("timeout")
			}
			return questionJSON(call), nil
		}}
		gen := newTestUnitGenerator(textGen)
		batch, plan := testPlan(2)

		outcome := gen.Generate(context.Background(), batch, plan)
		require.True(t, outcome.OK)
		assert.Equal(t, 3, textGen.callCount())

		var items []json.RawMessage
		require.NoError(t, json.Unmarshal(outcome.Questions, &items))
		assert.Len(t, items, 1)
	})
}

func TestUnitGeneratorFailsOnlyWhenEveryItemFails(t *testing.T) {
	t.Parallel()

	textGen := &fakeTextGen{respond: func(string, int) (string, error) {
		return "", errors.New("service unavailable")
	}}
	gen := newTestUnitGenerator(textGen)
	batch, plan := testPlan(2)

	outcome := gen.Generate(context.Background(), batch, plan)
	assert.False(t, outcome.OK)
	assert.Contains(t, outcome.ErrorMessage, "2")
	assert.Nil(t, outcome.Questions)
	// quantity * (initial + one retry)
	assert.Equal(t, 4, textGen.callCount())
}

func TestUnitGeneratorExtractsJSONFromProse(t *testing.T) {
	t.Parallel()

	textGen := &fakeTextGen{respond: func(string, int) (string, error) {
		return "Here is your question:\n```json\n[" + questionJSON(1) + "]\n```\nEnjoy!", nil
	}}
	gen := newTestUnitGenerator(textGen)
	batch, plan := testPlan(1)

	outcome := gen.Generate(context.Background(), batch, plan)
	require.True(t, outcome.OK)

	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(outcome.Questions, &items))
	assert.Len(t, items, 1)
}

func TestUnitGeneratorSplicesArraysElementWise(t *testing.T) {
	t.Parallel()

	textGen := &fakeTextGen{respond: func(string, int) (string, error) {
		return "[" + questionJSON(1) + "," + questionJSON(2) + "]", nil
	}}
	gen := newTestUnitGenerator(textGen)
	batch, plan := testPlan(1)

	outcome := gen.Generate(context.Background(), batch, plan)
	require.True(t, outcome.OK)

	// The response array is spliced in, not nested.
	var items []map[string]any
	require.NoError(t, json.Unmarshal(outcome.Questions, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "question 1", items[0]["content"])
}

func TestUnitGeneratorMalformedJSONCountsAsFailedItem(t *testing.T) {
	t.Parallel()

	textGen := &fakeTextGen{respond: func(_ string, call int) (string, error) {
		// Item 1 returns garbage; a parse failure is not retried.
		if call == 1 {
			return "sorry, {this is not json}", nil
		}
		return questionJSON(call), nil
	}}
	gen := newTestUnitGenerator(textGen)
	batch, plan := testPlan(2)

	outcome := gen.Generate(context.Background(), batch, plan)
	require.True(t, outcome.OK)
	// Parse failures are not retried; only upstream errors are.
	assert.Equal(t, 2, textGen.callCount())

	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(outcome.Questions, &items))
	assert.Len(t, items, 1)
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "bare array",
			in:   `[1,2]`,
			want: `[1,2]`,
		},
		{
			name: "markdown fenced",
			in:   "```json\n[{\"a\":1}]\n```",
			want: `[{"a":1}]`,
		},
		{
			name: "surrounded by prose",
			in:   `Sure! Here it is: {"a":1}. Hope that helps.`,
			want: `{"a":1}`,
		},
		{
			name: "no brackets at all",
			in:   "I cannot help with that.",
			want: "[]",
		},
		{
			name: "empty input",
			in:   "",
			want: "[]",
		},
		{
			name: "closing before opening",
			in:   ") ] before {",
			want: "[]",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}
