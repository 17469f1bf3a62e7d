package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Paper and PaperDetail
var (
	ErrEmptyPaperID      = errors.New("paper ID cannot be empty")
	ErrEmptyPaperUserID  = errors.New("paper user ID cannot be empty")
	ErrEmptyPaperSubject = errors.New("paper subject ID cannot be empty")
	ErrEmptyPaperName    = errors.New("paper name cannot be empty")
	ErrEmptyDetailPaper  = errors.New("detail paper ID cannot be empty")
	ErrEmptyQuestions    = errors.New("detail questions cannot be empty")
	ErrInvalidQuestions  = errors.New("detail questions must be valid JSON")
)

// Paper is the durable aggregate record of one generation batch: who owns
// it, which subject it covers, and the totals computed from the successful
// units. Created exactly once after all units resolve.
type Paper struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	SubjectID      uuid.UUID `json:"subject_id"`
	Name           string    `json:"name"`
	TotalQuestions int       `json:"total_questions"`
	DeepThinking   bool      `json:"deep_thinking"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewPaper creates a Paper owned by userID for the given subject. The name
// is derived from the subject name and the creation timestamp so history
// listings read naturally without user input.
func NewPaper(userID, subjectID uuid.UUID, subjectName string, totalQuestions int, deepThinking bool) (*Paper, error) {
	now := time.Now().UTC()
	paper := &Paper{
		ID:             uuid.New(),
		UserID:         userID,
		SubjectID:      subjectID,
		Name:           fmt.Sprintf("%s Paper-%s", subjectName, now.Format("20060102-150405")),
		TotalQuestions: totalQuestions,
		DeepThinking:   deepThinking,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := paper.Validate(); err != nil {
		return nil, err
	}

	return paper, nil
}

// Validate checks if the Paper has valid data.
func (p *Paper) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPaperID
	}
	if p.UserID == uuid.Nil {
		return ErrEmptyPaperUserID
	}
	if p.SubjectID == uuid.Nil {
		return ErrEmptyPaperSubject
	}
	if p.Name == "" {
		return ErrEmptyPaperName
	}
	if p.TotalQuestions < 0 {
		return errors.New("total questions cannot be negative")
	}
	return nil
}

// PaperDetail is one durable row per successful unit of a paper: the
// question type, its requested parameters, and the generated content as a
// JSON array. Failed units never produce a detail row.
type PaperDetail struct {
	ID           uuid.UUID       `json:"id"`
	PaperID      uuid.UUID       `json:"paper_id"`
	TypeCode     string          `json:"type_code"`
	TypeName     string          `json:"type_name"`
	Difficulty   Difficulty      `json:"difficulty"`
	Quantity     int             `json:"quantity"`
	Theme        string          `json:"theme,omitempty"`
	Questions    json.RawMessage `json:"questions"`
	DisplayOrder int             `json:"display_order"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewPaperDetail builds the detail row for a successful outcome.
func NewPaperDetail(paperID uuid.UUID, outcome UnitOutcome) (*PaperDetail, error) {
	detail := &PaperDetail{
		ID:           uuid.New(),
		PaperID:      paperID,
		TypeCode:     outcome.TypeCode,
		TypeName:     outcome.TypeName,
		Difficulty:   outcome.Difficulty,
		Quantity:     outcome.Quantity,
		Theme:        outcome.Theme,
		Questions:    outcome.Questions,
		DisplayOrder: outcome.DisplayOrder,
		CreatedAt:    time.Now().UTC(),
	}

	if err := detail.Validate(); err != nil {
		return nil, err
	}

	return detail, nil
}

// Validate checks if the PaperDetail has valid data.
func (d *PaperDetail) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyPaperID
	}
	if d.PaperID == uuid.Nil {
		return ErrEmptyDetailPaper
	}
	if d.TypeCode == "" {
		return ErrEmptyTypeCode
	}
	if d.DisplayOrder < 1 {
		return ErrInvalidOrder
	}
	if len(d.Questions) == 0 {
		return ErrEmptyQuestions
	}

	var js json.RawMessage
	if err := json.Unmarshal(d.Questions, &js); err != nil {
		return ErrInvalidQuestions
	}

	return nil
}
