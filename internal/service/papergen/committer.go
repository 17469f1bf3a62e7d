package papergen

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
)

// commit persists the batch: one paper row plus one detail row per
// successful outcome, in a single transaction. The total question count
// is the sum of quantities over successes only; failed units contribute
// nothing durable. Called exactly once per batch, after every unit has
// resolved.
func (s *Service) commit(
	ctx context.Context,
	userID uuid.UUID,
	subject *domain.Category,
	deepThinking bool,
	outcomes []domain.UnitOutcome,
) (*domain.Paper, error) {
	total := 0
	for _, outcome := range outcomes {
		if outcome.OK {
			total += outcome.Quantity
		}
	}

	paper, err := domain.NewPaper(userID, subject.ID, subject.Name, total, deepThinking)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	details := make([]*domain.PaperDetail, 0, len(outcomes))
	for _, outcome := range outcomes {
		if !outcome.OK {
			continue
		}
		detail, err := domain.NewPaperDetail(paper.ID, outcome)
		if err != nil {
			return nil, &PersistenceError{Err: err}
		}
		details = append(details, detail)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txPapers := s.papers.WithTx(tx)
		if err := txPapers.CreatePaper(ctx, paper); err != nil {
			return err
		}
		return txPapers.CreateDetails(ctx, details)
	})
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return paper, nil
}
