package papergen

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/events"
	"github.com/N1etZsch3/Novi-sub000/internal/generation"
	"github.com/N1etZsch3/Novi-sub000/internal/prompt"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
	"github.com/N1etZsch3/Novi-sub000/internal/task"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCategoryStore serves a single subject with a fixed ordered type list.
// A non-nil failWith is returned from every lookup, failTypesWith only from
// the type lookups; both stand in for an unreachable database.
type fakeCategoryStore struct {
	subject       *domain.Category
	types         []*domain.Category
	failWith      error
	failTypesWith error
}

func newFakeCategoryStore(typeCodes ...string) *fakeCategoryStore {
	subject := &domain.Category{
		ID:        uuid.New(),
		Name:      "English",
		Code:      "english",
		Kind:      domain.CategoryKindSubject,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	f := &fakeCategoryStore{subject: subject}
	for i, code := range typeCodes {
		f.types = append(f.types, &domain.Category{
			ID:        uuid.New(),
			Name:      strings.ToUpper(code[:1]) + code[1:],
			Code:      code,
			ParentID:  subject.ID,
			Kind:      domain.CategoryKindType,
			SortOrder: i + 1,
		})
	}
	return f
}

func (f *fakeCategoryStore) GetSubject(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.subject != nil && f.subject.ID == id {
		return f.subject, nil
	}
	return nil, store.ErrCategoryNotFound
}

func (f *fakeCategoryStore) GetSubjects(context.Context) ([]*domain.Category, error) {
	return []*domain.Category{f.subject}, nil
}

func (f *fakeCategoryStore) GetTypesUnder(_ context.Context, subjectID uuid.UUID) ([]*domain.Category, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.failTypesWith != nil {
		return nil, f.failTypesWith
	}
	if f.subject == nil || f.subject.ID != subjectID {
		return nil, nil
	}
	return f.types, nil
}

func (f *fakeCategoryStore) GetType(_ context.Context, code string, subjectID uuid.UUID) (*domain.Category, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.failTypesWith != nil {
		return nil, f.failTypesWith
	}
	for _, t := range f.types {
		if t.Code == code && t.ParentID == subjectID {
			return t, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

// fakePaperStore records created rows in memory.
type fakePaperStore struct {
	mu      sync.Mutex
	papers  []*domain.Paper
	details []*domain.PaperDetail

	failCreate bool
}

func (f *fakePaperStore) WithTx(store.DBTX) store.PaperStore { return f }

func (f *fakePaperStore) CreatePaper(_ context.Context, paper *domain.Paper) error {
	if f.failCreate {
		return errors.New("insert failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.papers = append(f.papers, paper)
	return nil
}

func (f *fakePaperStore) CreateDetails(_ context.Context, details []*domain.PaperDetail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details = append(f.details, details...)
	return nil
}

func (f *fakePaperStore) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Paper, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var owned []*domain.Paper
	for _, p := range f.papers {
		if p.UserID == userID {
			owned = append(owned, p)
		}
	}
	total := len(owned)
	if offset >= len(owned) {
		return nil, total, nil
	}
	owned = owned[offset:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, total, nil
}

func (f *fakePaperStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Paper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.papers {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, store.ErrPaperNotFound
}

func (f *fakePaperStore) GetDetails(_ context.Context, paperID uuid.UUID) ([]*domain.PaperDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.PaperDetail
	for _, d := range f.details {
		if d.PaperID == paperID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakePaperStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.papers {
		if p.ID == id {
			f.papers = append(f.papers[:i], f.papers[i+1:]...)
			return nil
		}
	}
	return store.ErrPaperNotFound
}

// fakeTextGen answers each prompt via a user-supplied function.
type fakeTextGen struct {
	mu       sync.Mutex
	calls    int
	lastOpts generation.Options
	respond  func(prompt string, call int) (string, error)
}

func (f *fakeTextGen) Complete(_ context.Context, promptText string, opts generation.Options) (string, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.lastOpts = opts
	f.mu.Unlock()
	return f.respond(promptText, call)
}

func (f *fakeTextGen) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeModelProvider returns a fixed model configuration.
type fakeModelProvider struct {
	model *domain.ModelConfig
	err   error
}

func (f *fakeModelProvider) ActiveModel(context.Context) (*domain.ModelConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

// emptyPromptConfigs makes the prompt builder use its fallback template.
type emptyPromptConfigs struct{}

func (emptyPromptConfigs) GetValue(context.Context, string) (string, error) {
	return "", store.ErrNotFound
}

// fakeExampleStore serves example bodies keyed by difficulty for a single
// subject/type pair.
type fakeExampleStore struct {
	mu           sync.Mutex
	byDifficulty map[domain.Difficulty][]string
	failWith     error
	queries      []domain.Difficulty
}

func (f *fakeExampleStore) GetExamples(_ context.Context, _, _ string, difficulty domain.Difficulty, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, difficulty)
	if f.failWith != nil {
		return nil, f.failWith
	}
	examples := f.byDifficulty[difficulty]
	if limit < len(examples) {
		examples = examples[:limit]
	}
	return examples, nil
}

// recordingSink captures the event sequence of one batch.
type recordingSink struct {
	mu       sync.Mutex
	events   []events.PaperEvent
	closed   bool
	fatalErr error

	// failOnSend makes Send fail after failAfter successful sends.
	failOnSend bool
	failAfter  int
}

func (r *recordingSink) Send(event events.PaperEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOnSend && len(r.events) >= r.failAfter {
		return errors.New("client went away")
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingSink) CompleteWithError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fatalErr = err
	r.closed = true
}

// newTestService wires a Service from fakes. The transaction runner calls
// the function directly; the fake paper store ignores the nil tx.
func newTestService(categories *fakeCategoryStore, papers *fakePaperStore, textGen *fakeTextGen, provider *fakeModelProvider) (*Service, *task.Pool) {
	log := testLogger()
	pool := task.NewPool(task.DefaultPoolConfig(), log)

	svc := &Service{
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return fn(ctx, (*sql.Tx)(nil))
		},
		categories: categories,
		papers:     papers,
		models:     provider,
		pool:       pool,
		units: &unitGenerator{
			prompts:  prompt.NewBuilder(emptyPromptConfigs{}, log),
			examples: &fakeExampleStore{},
			textGen:  textGen,
			logger:   log,
		},
		logger: log,
	}
	return svc, pool
}

func supportedModel() *fakeModelProvider {
	return &fakeModelProvider{model: &domain.ModelConfig{
		ID:             uuid.New(),
		ModelName:      "gemini-2.0-flash",
		EnableThinking: true,
		IsActive:       true,
	}}
}

// questionJSON is a minimal valid single-question payload.
func questionJSON(n int) string {
	return fmt.Sprintf(`{"content":"question %d","answer":"A","analysis":"because","difficulty":"medium","type":"cloze"}`, n)
}
