package conversation

import "errors"

var (
	// ErrPlaceholderPending is returned by StartPlaceholder while another
	// placeholder is still streaming.
	ErrPlaceholderPending = errors.New("an assistant reply is already streaming")
	// ErrNoPlaceholder is returned when an operation names a placeholder that
	// is not the live one (already finalized, aborted, or reset away).
	ErrNoPlaceholder = errors.New("no streaming placeholder with that id")
	// ErrInvalidProjection is returned by ValidateProjection.
	ErrInvalidProjection = errors.New("invalid model projection")
)
