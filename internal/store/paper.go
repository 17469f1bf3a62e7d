package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
)

// PaperStore defines persistence for generated papers and their
// per-type question detail rows.
type PaperStore interface {
	// CreatePaper saves a new paper record.
	CreatePaper(ctx context.Context, paper *domain.Paper) error

	// CreateDetails saves the detail rows for a paper in a single batch.
	CreateDetails(ctx context.Context, details []*domain.PaperDetail) error

	// ListByUser retrieves the papers owned by a user, newest first,
	// with limit/offset pagination. The second return value is the
	// total count of the user's papers.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Paper, int, error)

	// GetByID retrieves a paper by ID.
	// Returns ErrPaperNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Paper, error)

	// GetDetails retrieves the detail rows of a paper ordered by
	// display_order.
	GetDetails(ctx context.Context, paperID uuid.UUID) ([]*domain.PaperDetail, error)

	// Delete removes a paper and its details.
	// Returns ErrPaperNotFound if the paper does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a PaperStore bound to the given transaction.
	WithTx(tx DBTX) PaperStore
}
