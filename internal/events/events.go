package events

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
)

// EventType discriminates the progress events of one generation batch.
type EventType string

// Possible event types
const (
	// EventQuestion carries the generated content of one successful unit.
	EventQuestion EventType = "question"

	// EventError reports one failed unit. The batch continues.
	EventError EventType = "error"

	// EventComplete is the single terminal event of a batch.
	EventComplete EventType = "complete"
)

// PaperEvent is one progress notification of a running batch. Exactly one
// of the payload groups is populated, selected by Type.
type PaperEvent struct {
	Type EventType `json:"type"`

	// Unit payload (question and error events)
	DisplayOrder int             `json:"display_order,omitempty"`
	TypeCode     string          `json:"type_code,omitempty"`
	TypeName     string          `json:"type_name,omitempty"`
	Questions    json.RawMessage `json:"questions,omitempty"`
	Message      string          `json:"message,omitempty"`

	// Completion payload (complete events only). PaperID is a pointer
	// because omitempty never omits a zero UUID array; unit events must
	// not carry a phantom paper ID.
	PaperID        *uuid.UUID `json:"paper_id,omitempty"`
	TotalQuestions int        `json:"total_questions,omitempty"`
	SuccessCount   int        `json:"success_count,omitempty"`
	FailedCount    int        `json:"failed_count,omitempty"`
}

// QuestionEvent builds the event for one successful unit outcome.
func QuestionEvent(outcome domain.UnitOutcome) PaperEvent {
	return PaperEvent{
		Type:         EventQuestion,
		DisplayOrder: outcome.DisplayOrder,
		TypeCode:     outcome.TypeCode,
		TypeName:     outcome.TypeName,
		Questions:    outcome.Questions,
	}
}

// ErrorEvent builds the event for one failed unit outcome.
func ErrorEvent(outcome domain.UnitOutcome) PaperEvent {
	return PaperEvent{
		Type:         EventError,
		DisplayOrder: outcome.DisplayOrder,
		TypeCode:     outcome.TypeCode,
		TypeName:     outcome.TypeName,
		Message:      outcome.ErrorMessage,
	}
}

// CompleteEvent builds the terminal event of a batch.
func CompleteEvent(paperID uuid.UUID, totalQuestions, successCount, failedCount int) PaperEvent {
	return PaperEvent{
		Type:           EventComplete,
		PaperID:        &paperID,
		TotalQuestions: totalQuestions,
		SuccessCount:   successCount,
		FailedCount:    failedCount,
	}
}

// Sink is the ordered, push-only channel delivering progress events to
// the requesting client for the duration of one batch. Send after Close
// or CompleteWithError must not occur.
type Sink interface {
	// Send pushes one event. A returned error means the stream is broken
	// and the batch must abort without committing.
	Send(event PaperEvent) error

	// Close ends the stream normally after the complete event.
	Close() error

	// CompleteWithError reports a fatal batch error on the stream's error
	// channel and ends the stream.
	CompleteWithError(err error)
}
