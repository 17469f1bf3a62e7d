package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Difficulty is the closed set of difficulty levels a unit may request.
type Difficulty string

// Possible difficulty values
const (
	DifficultySimple Difficulty = "simple"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ValidDifficulty reports whether d is one of the accepted levels.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultySimple, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Limits on a single unit's requested quantity.
const (
	MinUnitQuantity = 1
	MaxUnitQuantity = 10
)

// Common validation errors for UnitConfig
var (
	ErrEmptyTypeCode    = errors.New("question type code cannot be empty")
	ErrInvalidOrder     = errors.New("display order must be positive")
	ErrInvalidQuantity  = fmt.Errorf("quantity must be between %d and %d", MinUnitQuantity, MaxUnitQuantity)
	ErrBadDifficulty    = errors.New("difficulty must be one of simple, medium, hard")
	ErrDuplicateOrder   = errors.New("display order values must be unique")
	ErrUnknownTypeCode  = errors.New("question type does not exist under this subject")
	ErrSubjectNotFound  = errors.New("subject does not exist")
	ErrNoTypesUnderSubj = errors.New("subject has no question types configured")
)

// UnitConfig is one independently schedulable generation unit of a paper:
// a question type, how many items to produce, at which difficulty, and where
// the result sits in the final paper. Immutable once built by the expander;
// shared read-only across concurrent unit jobs.
type UnitConfig struct {
	TypeCode     string     `json:"type_code"`
	DisplayOrder int        `json:"display_order"` // 1-based, unique within a paper
	Quantity     int        `json:"quantity"`
	Difficulty   Difficulty `json:"difficulty"`
	Theme        string     `json:"theme,omitempty"`
}

// Validate checks the config fields against the accepted domain.
func (c UnitConfig) Validate() error {
	if c.TypeCode == "" {
		return ErrEmptyTypeCode
	}
	if c.DisplayOrder < 1 {
		return ErrInvalidOrder
	}
	if c.Quantity < MinUnitQuantity || c.Quantity > MaxUnitQuantity {
		return ErrInvalidQuantity
	}
	if !ValidDifficulty(c.Difficulty) {
		return ErrBadDifficulty
	}
	return nil
}

// UnitOutcome is the resolved result of one UnitConfig: either generated
// question content or a recorded failure. Exactly one outcome exists per
// config once a paper resolves. Failures are data here, never errors; a
// failed unit is reported on the progress stream but produces no durable
// detail row.
type UnitOutcome struct {
	TypeCode     string
	TypeName     string
	DisplayOrder int
	Difficulty   Difficulty
	Quantity     int
	Theme        string

	// Questions holds the serialized JSON array of generated items.
	// Only set when OK.
	Questions json.RawMessage

	OK           bool
	ErrorMessage string
}

// FailedOutcome builds the failure outcome for a config.
func FailedOutcome(cfg UnitConfig, typeName, message string) UnitOutcome {
	return UnitOutcome{
		TypeCode:     cfg.TypeCode,
		TypeName:     typeName,
		DisplayOrder: cfg.DisplayOrder,
		Difficulty:   cfg.Difficulty,
		Quantity:     cfg.Quantity,
		Theme:        cfg.Theme,
		OK:           false,
		ErrorMessage: message,
	}
}
