package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Encoder writes SSE frames. When the writer is an http.Flusher every frame
// is flushed immediately.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	e := &Encoder{w: w}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

// WriteDelta sends one JSON-encoded text delta.
func (e *Encoder) WriteDelta(text string) error {
	payload, err := json.Marshal(text)
	if err != nil {
		return err
	}
	return e.frame(string(payload))
}

// WriteDone sends the done sentinel.
func (e *Encoder) WriteDone() error {
	return e.frame(DoneSentinel)
}

// WriteError sends the JSON-encoded error sentinel.
func (e *Encoder) WriteError() error {
	payload, _ := json.Marshal(ErrorSentinel)
	return e.frame(string(payload))
}

func (e *Encoder) frame(payload string) error {
	if _, err := fmt.Fprintf(e.w, "%s %s\n\n", dataPrefix, payload); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
