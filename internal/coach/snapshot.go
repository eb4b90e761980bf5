package coach

import (
	"github.com/jonathan/star-coach/internal/conversation"
	"github.com/jonathan/star-coach/internal/types"
	"github.com/jonathan/star-coach/internal/workflow"
)

// Snapshot is the whole persisted state of a session.
type Snapshot[D any] struct {
	Workflow string                 `json:"workflow"`
	Messages []conversation.Message `json:"messages"`
	Document D                      `json:"document"`
	Section  workflow.Section       `json:"section"`
	Hints    types.CoachingContext  `json:"hints"`
}

// Snapshot captures the session state.
func (s *Session[D, U]) Snapshot() Snapshot[D] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[D]{
		Workflow: s.wf.Name,
		Messages: s.conv.Messages(),
		Document: s.doc.Get(),
		Section:  s.section,
		Hints:    s.hints,
	}
}

// Restore replaces the session state with a snapshot. Work in flight is
// discarded as on Reset. A streaming reply captured in the snapshot is dropped,
// and an unknown section falls back to the section the document implies.
func (s *Session[D, U]) Restore(snap Snapshot[D]) error {
	if snap.Workflow != "" && snap.Workflow != s.wf.Name {
		return ErrWorkflowMismatch
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.hints = snap.Hints
	if len(snap.Messages) == 0 {
		s.conv.Reset(s.bootstrap())
	} else {
		s.conv.Restore(snap.Messages)
	}
	s.doc.Set(snap.Document)
	section := snap.Section
	if !s.wf.Order.Valid(section) {
		section = s.wf.Derive(snap.Document)
	}
	s.section = section
	s.state = StateIdle
	s.errMsg = ""
	s.dispatched = 0
	s.applied = 0
	s.mu.Unlock()

	s.emit(Event{Kind: EventRestored, Section: section, Generation: gen})
	return nil
}
