package domain

import (
	"time"

	"github.com/google/uuid"
)

// ModelConfig describes one row of the versioned model configuration
// table. Exactly one row is marked active at a time; generation
// resolves the active row once per paper batch so a mid-batch switch
// never mixes models within one paper.
type ModelConfig struct {
	ID             uuid.UUID
	ModelName      string
	BaseURL        string
	APIKey         string
	EnableThinking bool
	IsActive       bool
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
