// Package gemini provides an implementation of the generation.TextGenerator
// interface that uses Google's Gemini API for generating exam question
// content.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's domain logic to Google's external Gemini AI
// service. It translates between the application's prompts and the Gemini API
// without exposing the details of the external service to the core
// application.
//
// The adapter handles per-call model selection and credentials (the active
// model configuration is stored in the database and may change between
// batches), retry with exponential backoff for transient errors, and
// translation of API failures into the generation package's error types.
package gemini
