package coach

import (
	"context"
	"errors"

	"github.com/jonathan/star-coach/internal/stream"
)

var (
	// ErrTurnInFlight is returned by Send while a reply is still streaming.
	ErrTurnInFlight = errors.New("a reply is still in progress")
	// ErrEmptyMessage is returned by Send for blank input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSessionReset is returned by Send when the session was reset while
	// the reply streamed. The reply was discarded.
	ErrSessionReset = errors.New("session was reset")
	// ErrWorkflowMismatch is returned by Restore for a snapshot of another workflow.
	ErrWorkflowMismatch = errors.New("snapshot belongs to a different workflow")

	errSuperseded = errors.New("superseded by reset")
)

// UserMessage converts a chat failure into the text shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, stream.ErrStreamFailed):
		return "The coach stopped responding mid-reply. Please try again."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The coach took too long to respond. Please try again."
	default:
		return "Failed to get response: " + err.Error()
	}
}
