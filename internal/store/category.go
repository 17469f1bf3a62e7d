package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
)

// CategoryStore defines read access to the question taxonomy. The paper
// expander validates unit configuration against it; handlers expose it
// for subject/type listings.
type CategoryStore interface {
	// GetSubject retrieves a subject-kind category by ID.
	// Returns ErrCategoryNotFound if the ID does not name a subject.
	GetSubject(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// GetSubjects lists all subject-kind categories ordered by sort_order.
	GetSubjects(ctx context.Context) ([]*domain.Category, error)

	// GetTypesUnder lists the type-kind categories under a subject,
	// ordered by sort_order.
	GetTypesUnder(ctx context.Context, subjectID uuid.UUID) ([]*domain.Category, error)

	// GetType retrieves a type-kind category by code under a subject.
	// Returns ErrCategoryNotFound if no such type exists.
	GetType(ctx context.Context, code string, subjectID uuid.UUID) (*domain.Category, error)
}
