package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CategoryKind distinguishes the two taxonomy levels: subjects own
// question types.
type CategoryKind string

// Possible category kinds
const (
	CategoryKindSubject CategoryKind = "subject"
	CategoryKindType    CategoryKind = "type"
)

// Common validation errors for Category
var (
	ErrEmptyCategoryID   = errors.New("category ID cannot be empty")
	ErrEmptyCategoryName = errors.New("category name cannot be empty")
	ErrEmptyCategoryCode = errors.New("category code cannot be empty")
	ErrInvalidKind       = errors.New("invalid category kind")
)

// Category is a node of the question taxonomy. Subjects are roots
// (ParentID == uuid.Nil); question types hang under a subject.
type Category struct {
	ID       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	Code     string       `json:"code"`
	ParentID uuid.UUID    `json:"parent_id"`
	Kind     CategoryKind `json:"kind"`

	// SortOrder drives stable presentation of types under a subject.
	SortOrder int `json:"sort_order"`

	// GenerationCount is the auto-paper quantity hint for a question type.
	// Zero means unset; the expander treats unset as 1. A reading
	// comprehension type that needs two passages is configured with 2.
	GenerationCount int `json:"generation_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the Category has valid data.
func (c *Category) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCategoryID
	}
	if c.Name == "" {
		return ErrEmptyCategoryName
	}
	if c.Code == "" {
		return ErrEmptyCategoryCode
	}
	switch c.Kind {
	case CategoryKindSubject, CategoryKindType:
	default:
		return ErrInvalidKind
	}
	if c.Kind == CategoryKindType && c.ParentID == uuid.Nil {
		return errors.New("question type must have a parent subject")
	}
	return nil
}

// QuantityHint returns the auto-mode generation quantity for this type,
// defaulting to 1 when unconfigured.
func (c *Category) QuantityHint() int {
	if c.GenerationCount <= 0 {
		return 1
	}
	return c.GenerationCount
}
