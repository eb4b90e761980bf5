package coach

import "github.com/jonathan/star-coach/internal/workflow"

// EventKind identifies what changed in a session.
type EventKind string

// Event kinds.
const (
	EventMessage   EventKind = "message"   // a user message or placeholder was appended
	EventDelta     EventKind = "delta"     // text was appended to the placeholder
	EventFinalized EventKind = "finalized" // the placeholder became a finished reply
	EventAborted   EventKind = "aborted"   // the placeholder was removed after a failure
	EventDocument  EventKind = "document"  // the structured document changed
	EventSection   EventKind = "section"   // the section advanced
	EventReset     EventKind = "reset"
	EventRestored  EventKind = "restored"
	EventError     EventKind = "error"
)

// Event describes one session change. Listeners read the rest of the state
// through the session accessors.
type Event struct {
	Kind       EventKind
	MessageID  string
	Delta      string
	Section    workflow.Section
	Err        string
	Generation uint64
}
