package conversation

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/star-coach/internal/types"
)

// Store is an append-only message log. Only the live placeholder may change
// after it is appended. Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	messages []Message

	// live placeholder; its content accumulates in pending
	placeholderID string
	pending       strings.Builder

	now func() time.Time
}

// NewStore creates a store seeded with the given bootstrap message.
func NewStore(bootstrap Message) *Store {
	s := &Store{now: time.Now}
	s.Reset(bootstrap)
	return s
}

// Reset discards every message, including any live placeholder, and starts
// over with a single bootstrap message.
func (s *Store) Reset(bootstrap Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bootstrap.Bootstrap = true
	bootstrap.IsStreaming = false
	s.messages = []Message{s.stamp(bootstrap)}
	s.placeholderID = ""
	s.pending.Reset()
}

// Restore replaces the log with previously saved messages. Messages that were
// still streaming when saved are dropped.
func (s *Store) Restore(messages []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.IsStreaming {
			continue
		}
		s.messages = append(s.messages, m)
	}
	s.placeholderID = ""
	s.pending.Reset()
}

// Append adds a finished message to the end of the log and returns it with
// its ID and timestamp filled in.
func (s *Store) Append(m Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.IsStreaming = false
	m = s.stamp(m)
	s.messages = append(s.messages, m)
	return m
}

// StartPlaceholder appends an empty streaming assistant message.
func (s *Store) StartPlaceholder(section string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.placeholderID != "" {
		return Message{}, ErrPlaceholderPending
	}

	m := s.stamp(Message{Role: types.RoleAssistant, Section: section, IsStreaming: true})
	s.messages = append(s.messages, m)
	s.placeholderID = m.ID
	s.pending.Reset()
	return m, nil
}

// AppendDelta appends text to the live placeholder.
func (s *Store) AppendDelta(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" || id != s.placeholderID {
		return ErrNoPlaceholder
	}
	s.pending.WriteString(text)
	return nil
}

// Finalize ends streaming for the placeholder and returns the finished message.
func (s *Store) Finalize(id string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.placeholderIndex(id)
	if err != nil {
		return Message{}, err
	}

	m := &s.messages[idx]
	m.Content = s.pending.String()
	m.IsStreaming = false
	s.placeholderID = ""
	s.pending.Reset()
	return *m, nil
}

// Abort removes the placeholder. Earlier messages are untouched.
func (s *Store) Abort(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.placeholderIndex(id)
	if err != nil {
		return err
	}

	s.messages = append(s.messages[:idx], s.messages[idx+1:]...)
	s.placeholderID = ""
	s.pending.Reset()
	return nil
}

// Messages returns a copy of the log. The live placeholder carries the
// content streamed so far.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	if s.placeholderID != "" {
		for i := range out {
			if out[i].ID == s.placeholderID {
				out[i].Content = s.pending.String()
			}
		}
	}
	return out
}

// Len returns the number of messages, including the bootstrap.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Streaming reports whether a placeholder is live.
func (s *Store) Streaming() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.placeholderID != ""
}

// ModelProjection returns the conversation as the remote chat API expects it.
// See Project.
func (s *Store) ModelProjection() []types.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Project(s.messages)
}

// Project reduces messages to role/content turns that start with a user turn
// and strictly alternate. Bootstrap messages, streaming placeholders and empty
// messages are dropped, leading assistant turns are skipped, and consecutive
// turns by the same role are joined with a blank line.
func Project(messages []Message) []types.Turn {
	turns := make([]types.Turn, 0, len(messages))
	for _, m := range messages {
		if m.Bootstrap || m.IsStreaming || strings.TrimSpace(m.Content) == "" {
			continue
		}
		if len(turns) == 0 && m.Role != types.RoleUser {
			continue
		}
		if n := len(turns); n > 0 && turns[n-1].Role == m.Role {
			turns[n-1].Content += "\n\n" + m.Content
			continue
		}
		turns = append(turns, types.Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

// ValidateProjection checks that turns start with the user and alternate.
func ValidateProjection(turns []types.Turn) error {
	for i, t := range turns {
		if i == 0 && t.Role != types.RoleUser {
			return fmt.Errorf("%w: first turn has role %q", ErrInvalidProjection, t.Role)
		}
		if i > 0 && turns[i-1].Role == t.Role {
			return fmt.Errorf("%w: turns %d and %d both have role %q", ErrInvalidProjection, i-1, i, t.Role)
		}
	}
	return nil
}

func (s *Store) placeholderIndex(id string) (int, error) {
	if id == "" || id != s.placeholderID {
		return -1, ErrNoPlaceholder
	}
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i, nil
		}
	}
	return -1, ErrNoPlaceholder
}

func (s *Store) stamp(m Message) Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now()
	}
	return m
}
