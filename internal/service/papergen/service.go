package papergen

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/events"
	"github.com/N1etZsch3/Novi-sub000/internal/generation"
	"github.com/N1etZsch3/Novi-sub000/internal/platform/logger"
	"github.com/N1etZsch3/Novi-sub000/internal/prompt"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
	"github.com/N1etZsch3/Novi-sub000/internal/task"
)

// Service orchestrates paper generation batches and serves paper history
// reads. One Service is shared by all requests; per-batch state lives on
// the stack of GeneratePaper.
type Service struct {
	runTx      func(ctx context.Context, fn store.TxFn) error
	categories store.CategoryStore
	papers     store.PaperStore
	models     generation.ModelProvider
	pool       *task.Pool
	units      *unitGenerator
	logger     *slog.Logger
}

// NewService creates the paper generation service.
func NewService(
	db *sql.DB,
	categories store.CategoryStore,
	papers store.PaperStore,
	prompts *prompt.Builder,
	examples store.ExampleStore,
	textGen generation.TextGenerator,
	models generation.ModelProvider,
	pool *task.Pool,
	log *slog.Logger,
) (*Service, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if categories == nil {
		return nil, errors.New("category store cannot be nil")
	}
	if papers == nil {
		return nil, errors.New("paper store cannot be nil")
	}
	if prompts == nil {
		return nil, errors.New("prompt builder cannot be nil")
	}
	if examples == nil {
		return nil, errors.New("example store cannot be nil")
	}
	if textGen == nil {
		return nil, errors.New("text generator cannot be nil")
	}
	if models == nil {
		return nil, errors.New("model provider cannot be nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "papergen_service"))

	return &Service{
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
		categories: categories,
		papers:     papers,
		models:     models,
		pool:       pool,
		units: &unitGenerator{
			prompts:  prompts,
			examples: examples,
			textGen:  textGen,
			logger:   log,
		},
		logger: log,
	}, nil
}

// GeneratePaper runs one batch end to end: expand, dispatch, collect,
// emit, commit, complete.
//
// A ValidationError is returned before any event is sent, leaving the
// sink untouched so the caller can answer synchronously. After the first
// event, all failure reporting goes through the sink; the returned error
// then only describes why the batch aborted. Per-unit generation failures
// never abort the batch: they surface as error events and reduce the
// persisted totals.
func (s *Service) GeneratePaper(
	ctx context.Context,
	userID uuid.UUID,
	subjectID uuid.UUID,
	units []domain.UnitConfig,
	deepThinking bool,
	sink events.Sink,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Expanding
	subject, plans, err := s.expandConfig(ctx, subjectID, units)
	if err != nil {
		log.Warn("paper request rejected",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return err
	}

	// Model settings are fixed once per batch; a configuration switch
	// mid-batch never mixes models within one paper.
	opts, err := s.resolveModelOptions(ctx, deepThinking)
	if err != nil {
		log.Error("failed to resolve model configuration",
			slog.String("error", err.Error()))
		return err
	}

	log.Info("starting paper generation",
		slog.String("user_id", userID.String()),
		slog.String("subject_code", subject.Code),
		slog.Int("units", len(plans)),
		slog.Bool("deep_thinking", opts.EnableThinking))

	// Dispatching: one pool job per unit, each writing into a private
	// slot. Slots are indexed by plan position; no lock is needed since
	// each slot has a single writer and is read only after the barrier.
	batch := batchContext{Subject: subject, Options: opts}
	outcomes := make([]domain.UnitOutcome, len(plans))

	var wg sync.WaitGroup
	wg.Add(len(plans))
	for i, plan := range plans {
		i, plan := i, plan
		s.pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = s.units.Generate(ctx, batch, plan)
		})
	}

	// Collecting: nothing is streamed before every unit resolves, so the
	// complete event's totals always match what was streamed.
	wg.Wait()

	// Emitting: plans are sorted ascending by display order already.
	successCount := 0
	for _, outcome := range outcomes {
		var event events.PaperEvent
		if outcome.OK {
			successCount++
			event = events.QuestionEvent(outcome)
		} else {
			event = events.ErrorEvent(outcome)
		}
		if err := sink.Send(event); err != nil {
			streamErr := &StreamError{Err: err}
			log.Error("aborting batch, event stream failed",
				slog.String("error", err.Error()),
				slog.Int("display_order", outcome.DisplayOrder))
			// The stream is gone; the client saw a truncated sequence,
			// so nothing is committed.
			sink.CompleteWithError(streamErr)
			return streamErr
		}
	}

	// Committing
	paper, err := s.commit(ctx, userID, subject, deepThinking, outcomes)
	if err != nil {
		log.Error("failed to commit paper",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		sink.CompleteWithError(err)
		return err
	}

	// Done
	complete := events.CompleteEvent(paper.ID, paper.TotalQuestions, successCount, len(plans)-successCount)
	if err := sink.Send(complete); err != nil {
		streamErr := &StreamError{Err: err}
		log.Error("failed to send complete event",
			slog.String("error", err.Error()),
			slog.String("paper_id", paper.ID.String()))
		return streamErr
	}

	log.Info("paper generation finished",
		slog.String("paper_id", paper.ID.String()),
		slog.Int("total_questions", paper.TotalQuestions),
		slog.Int("success_count", successCount),
		slog.Int("failed_count", len(plans)-successCount))

	return sink.Close()
}

// resolveModelOptions resolves the active model configuration and applies
// the deep-thinking gate: the request's flag is honored only when the
// active model supports it.
func (s *Service) resolveModelOptions(ctx context.Context, deepThinking bool) (generation.Options, error) {
	model, err := s.models.ActiveModel(ctx)
	if err != nil {
		return generation.Options{}, fmt.Errorf("no usable model configuration: %w", err)
	}

	opts := generation.Options{
		ModelName: model.ModelName,
		APIKey:    model.APIKey,
	}
	if deepThinking {
		if model.EnableThinking {
			opts.EnableThinking = true
		} else {
			s.logger.Warn("deep thinking requested but the active model does not support it",
				slog.String("model_name", model.ModelName))
		}
	}

	return opts, nil
}

// History lists the user's papers, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Paper, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.papers.ListByUser(ctx, userID, limit, offset)
}

// Detail returns one paper and its detail rows ordered by display order.
// Returns ErrPaperNotFound when the paper does not exist or belongs to
// another user; ownership failures are indistinguishable from absence.
func (s *Service) Detail(ctx context.Context, userID, paperID uuid.UUID) (*domain.Paper, []*domain.PaperDetail, error) {
	paper, err := s.getOwned(ctx, userID, paperID)
	if err != nil {
		return nil, nil, err
	}

	details, err := s.papers.GetDetails(ctx, paperID)
	if err != nil {
		return nil, nil, err
	}

	return paper, details, nil
}

// Delete removes one of the user's papers and its details.
func (s *Service) Delete(ctx context.Context, userID, paperID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, paperID); err != nil {
		return err
	}

	if err := s.papers.Delete(ctx, paperID); err != nil {
		if store.IsNotFoundError(err) {
			return ErrPaperNotFound
		}
		return err
	}

	return nil
}

// getOwned fetches a paper and checks ownership.
func (s *Service) getOwned(ctx context.Context, userID, paperID uuid.UUID) (*domain.Paper, error) {
	paper, err := s.papers.GetByID(ctx, paperID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}
	if paper.UserID != userID {
		return nil, ErrPaperNotFound
	}
	return paper, nil
}
