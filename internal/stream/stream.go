// Package stream implements the server-sent-event framing used between the
// coaching proxy and its clients: a sequence of "data: <payload>" frames whose
// payload is a JSON string delta, the [DONE] sentinel, or the "[ERROR]" sentinel.
package stream

import "errors"

// Sentinels carried in frame payloads.
const (
	// DoneSentinel is sent verbatim (not JSON-encoded) to end a stream.
	DoneSentinel = "[DONE]"
	// ErrorSentinel is sent JSON-encoded when the upstream fails mid-stream.
	ErrorSentinel = "[ERROR]"

	dataPrefix = "data:"
)

// ErrStreamFailed is returned when the server signals a mid-stream failure.
var ErrStreamFailed = errors.New("stream failed upstream")
