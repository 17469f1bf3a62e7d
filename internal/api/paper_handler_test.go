package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/N1etZsch3/Novi-sub000/internal/api/shared"
	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/events"
	"github.com/N1etZsch3/Novi-sub000/internal/service/papergen"
)

type fakePaperService struct {
	generate func(ctx context.Context, userID, subjectID uuid.UUID, units []domain.UnitConfig, deepThinking bool, sink events.Sink) error

	papers     []*domain.Paper
	details    []*domain.PaperDetail
	total      int
	err        error
	gotLimit   int
	gotOffset  int
	gotPaperID uuid.UUID
	deleted    bool
}

func (s *fakePaperService) GeneratePaper(
	ctx context.Context,
	userID, subjectID uuid.UUID,
	units []domain.UnitConfig,
	deepThinking bool,
	sink events.Sink,
) error {
	if s.generate != nil {
		return s.generate(ctx, userID, subjectID, units, deepThinking, sink)
	}
	return s.err
}

func (s *fakePaperService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Paper, int, error) {
	s.gotLimit = limit
	s.gotOffset = offset
	return s.papers, s.total, s.err
}

func (s *fakePaperService) Detail(ctx context.Context, userID, paperID uuid.UUID) (*domain.Paper, []*domain.PaperDetail, error) {
	s.gotPaperID = paperID
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.papers[0], s.details, nil
}

func (s *fakePaperService) Delete(ctx context.Context, userID, paperID uuid.UUID) error {
	s.gotPaperID = paperID
	if s.err == nil {
		s.deleted = true
	}
	return s.err
}

func newTestPaperHandler(svc PaperService) *PaperHandler {
	return NewPaperHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// authedRequest builds a request carrying an authenticated user ID.
func authedRequest(method, path string, body []byte, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestGenerateRequiresAuthentication(t *testing.T) {
	t.Parallel()

	handler := newTestPaperHandler(&fakePaperService{})
	req := httptest.NewRequest(http.MethodPost, "/api/papers/generate", bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()
	handler.Generate(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	handler := newTestPaperHandler(&fakePaperService{})
	req := authedRequest(http.MethodPost, "/api/papers/generate", []byte("{broken"), uuid.New())
	w := httptest.NewRecorder()
	handler.Generate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateRejectsInvalidUnit(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(map[string]interface{}{
		"subject_id": uuid.New(),
		"units": []map[string]interface{}{
			{"type_code": "cloze", "display_order": 1, "quantity": 99, "difficulty": "medium"},
		},
	})
	require.NoError(t, err)

	handler := newTestPaperHandler(&fakePaperService{})
	req := authedRequest(http.MethodPost, "/api/papers/generate", body, uuid.New())
	w := httptest.NewRecorder()
	handler.Generate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestGenerateValidationFailureBeforeStreamIsPlainJSON(t *testing.T) {
	t.Parallel()

	svc := &fakePaperService{
		generate: func(ctx context.Context, userID, subjectID uuid.UUID, units []domain.UnitConfig, deepThinking bool, sink events.Sink) error {
			return &papergen.ValidationError{Message: "subject does not exist", Err: domain.ErrSubjectNotFound}
		},
	}

	body, err := json.Marshal(map[string]interface{}{"subject_id": uuid.New()})
	require.NoError(t, err)

	handler := newTestPaperHandler(svc)
	req := authedRequest(http.MethodPost, "/api/papers/generate", body, uuid.New())
	w := httptest.NewRecorder()
	handler.Generate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "subject does not exist", resp.Error)
}

func TestGenerateStreamsEvents(t *testing.T) {
	t.Parallel()

	paperID := uuid.New()
	svc := &fakePaperService{
		generate: func(ctx context.Context, userID, subjectID uuid.UUID, units []domain.UnitConfig, deepThinking bool, sink events.Sink) error {
			outcome := domain.UnitOutcome{
				TypeCode:     "cloze",
				TypeName:     "Cloze",
				DisplayOrder: 1,
				Difficulty:   domain.DifficultyMedium,
				Quantity:     1,
				OK:           true,
				Questions:    json.RawMessage(`[{"stem":"q1"}]`),
			}
			if err := sink.Send(events.QuestionEvent(outcome)); err != nil {
				return err
			}
			if err := sink.Send(events.CompleteEvent(paperID, 1, 1, 0)); err != nil {
				return err
			}
			return sink.Close()
		},
	}

	body, err := json.Marshal(map[string]interface{}{"subject_id": uuid.New()})
	require.NoError(t, err)

	handler := newTestPaperHandler(svc)
	req := authedRequest(http.MethodPost, "/api/papers/generate", body, uuid.New())
	w := httptest.NewRecorder()
	handler.Generate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	streamed := w.Body.String()
	assert.Contains(t, streamed, "event: question")
	assert.Contains(t, streamed, "event: complete")
	assert.Contains(t, streamed, paperID.String())
}

func TestListPapersClampsPagination(t *testing.T) {
	t.Parallel()

	svc := &fakePaperService{papers: []*domain.Paper{}, total: 0}
	handler := newTestPaperHandler(svc)

	req := authedRequest(http.MethodGet, "/api/papers?limit=500&offset=-3", nil, uuid.New())
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, svc.gotLimit)
	assert.Equal(t, 0, svc.gotOffset)

	var resp PaperListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 100, resp.Limit)
}

func TestGetPaperNotFound(t *testing.T) {
	t.Parallel()

	svc := &fakePaperService{err: papergen.ErrPaperNotFound}
	handler := newTestPaperHandler(svc)

	paperID := uuid.New()
	req := authedRequest(http.MethodGet, "/api/papers/"+paperID.String(), nil, uuid.New())
	w := httptest.NewRecorder()

	router := chi.NewRouter()
	router.Get("/api/papers/{id}", handler.Get)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, paperID, svc.gotPaperID)
}

func TestDeletePaper(t *testing.T) {
	t.Parallel()

	svc := &fakePaperService{}
	handler := newTestPaperHandler(svc)

	req := authedRequest(http.MethodDelete, "/api/papers/"+uuid.New().String(), nil, uuid.New())
	w := httptest.NewRecorder()

	router := chi.NewRouter()
	router.Delete("/api/papers/{id}", handler.Delete)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, svc.deleted)
}

func TestDeletePaperInvalidID(t *testing.T) {
	t.Parallel()

	handler := newTestPaperHandler(&fakePaperService{})

	req := authedRequest(http.MethodDelete, "/api/papers/not-a-uuid", nil, uuid.New())
	w := httptest.NewRecorder()

	router := chi.NewRouter()
	router.Delete("/api/papers/{id}", handler.Delete)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
