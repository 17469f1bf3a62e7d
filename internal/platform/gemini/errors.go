package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyPrompt is returned when a completion is requested with an empty prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
