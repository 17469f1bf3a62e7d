package api

import (
	"net/http"

	"github.com/N1etZsch3/Novi-sub000/internal/api/shared"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

// CategoryHandler serves the question taxonomy: subjects and the question
// types beneath them.
type CategoryHandler struct {
	categories store.CategoryStore
}

// NewCategoryHandler creates a new CategoryHandler with the given dependencies.
func NewCategoryHandler(categories store.CategoryStore) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// ListSubjects handles GET /api/categories/subjects.
func (h *CategoryHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.categories.GetSubjects(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list subjects")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toCategoryResponses(subjects))
}

// ListTypes handles GET /api/categories/subjects/{id}/types.
func (h *CategoryHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	subjectID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid subject ID")
		return
	}

	if _, err := h.categories.GetSubject(r.Context(), subjectID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	types, err := h.categories.GetTypesUnder(r.Context(), subjectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list question types")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toCategoryResponses(types))
}
