// Package prompt builds the natural-language instructions sent to the
// text generation model. Templates and difficulty descriptions live in
// the prompt configuration store keyed by subject and question type, with
// a hard-coded fallback template when no configured template exists.
// User-supplied themes are sanitized before substitution.
package prompt
