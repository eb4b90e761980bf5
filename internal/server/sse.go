package server

import (
	"net/http"

	"github.com/jonathan/star-coach/internal/stream"
)

// sseWriter delays the event-stream headers until the first frame so that
// a failure before any output can still be answered with a JSON error.
type sseWriter struct {
	w       http.ResponseWriter
	enc     *stream.Encoder
	started bool
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	return &sseWriter{w: w, enc: stream.NewEncoder(w)}
}

func (s *sseWriter) start() {
	if s.started {
		return
	}
	s.started = true

	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
}

// Delta sends one text delta.
func (s *sseWriter) Delta(text string) error {
	s.start()
	return s.enc.WriteDelta(text)
}

// Done terminates a successful stream.
func (s *sseWriter) Done() error {
	s.start()
	return s.enc.WriteDone()
}

// Fail terminates a stream that broke after it started.
func (s *sseWriter) Fail() error {
	s.start()
	return s.enc.WriteError()
}

// Started reports whether any frame was written.
func (s *sseWriter) Started() bool {
	return s.started
}
