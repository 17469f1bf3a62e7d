package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// ErrStreamingUnsupported is returned when the response writer cannot
// flush, which SSE requires.
var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

// ErrSinkClosed is returned by Send on an already-ended stream.
var ErrSinkClosed = errors.New("event sink already closed")

// SSESink implements Sink over a Server-Sent Events HTTP response.
//
// Headers are written lazily on the first Send, so a batch that fails
// validation before producing any event leaves the response untouched and
// the handler free to answer with a plain JSON error status.
type SSESink struct {
	w      http.ResponseWriter
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewSSESink wraps an HTTP response writer as an event sink.
func NewSSESink(w http.ResponseWriter, log *slog.Logger) *SSESink {
	if log == nil {
		log = slog.Default()
	}
	return &SSESink{
		w:      w,
		logger: log.With(slog.String("component", "sse_sink")),
	}
}

// Ensure SSESink implements Sink interface
var _ Sink = (*SSESink)(nil)

// Send implements Sink.Send
// It writes one SSE message named after the event type, with the JSON
// encoded event as data, and flushes immediately.
func (s *SSESink) Send(event PaperEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	if err := s.start(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	s.w.(http.Flusher).Flush()
	return nil
}

// Close implements Sink.Close
func (s *SSESink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return nil
}

// CompleteWithError implements Sink.CompleteWithError
// It pushes a terminal SSE error message and ends the stream. If the
// stream never opened the error is only logged; the caller is expected to
// answer synchronously in that case.
func (s *SSESink) CompleteWithError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if !s.started {
		s.logger.Warn("batch failed before the stream opened",
			slog.String("error", err.Error()))
		return
	}

	if _, werr := fmt.Fprintf(s.w, "event: fatal\ndata: %q\n\n", err.Error()); werr != nil {
		s.logger.Error("failed to write fatal event",
			slog.String("error", werr.Error()))
		return
	}
	s.w.(http.Flusher).Flush()
}

// Started reports whether any event has been written. Handlers use this
// to decide between a synchronous error response and a stream-level error.
func (s *SSESink) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// start writes the SSE headers once. Callers must hold s.mu.
func (s *SSESink) start() error {
	if s.started {
		return nil
	}

	if _, ok := s.w.(http.Flusher); !ok {
		return ErrStreamingUnsupported
	}

	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	s.w.WriteHeader(http.StatusOK)

	s.started = true
	return nil
}
