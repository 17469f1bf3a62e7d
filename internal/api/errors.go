package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/N1etZsch3/Novi-sub000/internal/api/shared"
	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/service/auth"
	"github.com/N1etZsch3/Novi-sub000/internal/service/papergen"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrPaperNotFound),
		errors.Is(err, papergen.ErrPaperNotFound),
		errors.Is(err, store.ErrCategoryNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict

	// Bad request errors
	case papergen.IsValidationError(err),
		errors.Is(err, domain.ErrSubjectNotFound),
		errors.Is(err, domain.ErrUnknownTypeCode),
		errors.Is(err, domain.ErrDuplicateOrder),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrBadDifficulty),
		errors.Is(err, domain.ErrNoTypesUnderSubj):
		return http.StatusBadRequest

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage maps an error to a client-safe message. Validation
// errors pass their message through because it describes the caller's own
// input; everything else is generic.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrPaperNotFound),
		errors.Is(err, papergen.ErrPaperNotFound):
		return "Paper not found"

	case errors.Is(err, store.ErrCategoryNotFound):
		return "Category not found"

	case papergen.IsValidationError(err):
		var verr *papergen.ValidationError
		if errors.As(err, &verr) {
			return verr.Message
		}
		return "Invalid generation request"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError reduces a struct validation error to a
// user-friendly message without echoing internal type names. Only the
// first failing field is reported.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ferr := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", ferr.Field(), validationTagMessage(ferr.Tag()))
	}

	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError maps err to a status and safe message and writes the
// response. An explicit userMessage overrides the derived one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}
