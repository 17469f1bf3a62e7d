package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/N1etZsch3/Novi-sub000/internal/api/shared"
	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/events"
	"github.com/N1etZsch3/Novi-sub000/internal/redact"
	"github.com/N1etZsch3/Novi-sub000/internal/service/papergen"
)

// PaperService is the slice of the paper generation service the HTTP layer
// depends on.
type PaperService interface {
	GeneratePaper(ctx context.Context, userID, subjectID uuid.UUID, units []domain.UnitConfig, deepThinking bool, sink events.Sink) error
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Paper, int, error)
	Detail(ctx context.Context, userID, paperID uuid.UUID) (*domain.Paper, []*domain.PaperDetail, error)
	Delete(ctx context.Context, userID, paperID uuid.UUID) error
}

var _ PaperService = (*papergen.Service)(nil)

// PaperHandler handles paper generation and paper CRUD API requests.
type PaperHandler struct {
	papers    PaperService
	validator *validator.Validate
	logger    *slog.Logger
}

// NewPaperHandler creates a new PaperHandler with the given dependencies.
func NewPaperHandler(papers PaperService, log *slog.Logger) *PaperHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PaperHandler{
		papers:    papers,
		validator: validator.New(),
		logger:    log.With(slog.String("component", "paper_handler")),
	}
}

// Generate handles POST /api/papers/generate. The response is a server-sent
// event stream once generation starts; request problems detected before the
// first unit finishes are reported as a plain JSON error instead.
func (h *PaperHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req GeneratePaperRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	sink := events.NewSSESink(w, h.logger)

	err := h.papers.GeneratePaper(r.Context(), userID, req.SubjectID, req.toDomain(), req.DeepThinking, sink)
	if err == nil {
		return
	}

	// Failures before the stream opened still have a plain JSON response
	// channel. Once SSE headers are out the service has already reported
	// the failure on the stream itself.
	if !sink.Started() {
		var verr *papergen.ValidationError
		if errors.As(err, &verr) {
			shared.RespondWithError(w, r, http.StatusBadRequest, verr.Message)
			return
		}
		HandleAPIError(w, r, err, "Failed to start paper generation")
		return
	}

	var serr *papergen.StreamError
	if errors.As(err, &serr) {
		h.logger.Warn("client disconnected during generation stream",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return
	}

	h.logger.Error("paper generation failed after stream started",
		slog.String("user_id", userID.String()),
		slog.String("error", redact.Error(err)))
}

// List handles GET /api/papers.
func (h *PaperHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit := queryInt(r, "limit", 20)
	if limit > 100 {
		limit = 100
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	papers, total, err := h.papers.History(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list papers")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PaperListResponse{
		Papers: papers,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /api/papers/{id}.
func (h *PaperHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, paperID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	paper, details, err := h.papers.Detail(r.Context(), userID, paperID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PaperDetailResponse{
		Paper:   paper,
		Details: details,
	})
}

// Delete handles DELETE /api/papers/{id}.
func (h *PaperHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, paperID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.papers.Delete(r.Context(), userID, paperID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an integer query parameter, falling back to def on
// absence or garbage.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
