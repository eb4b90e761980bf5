// Package conversation holds the ordered chat log of a coaching session,
// including the single assistant placeholder that is filled while a reply streams.
package conversation

import (
	"time"

	"github.com/jonathan/star-coach/internal/types"
)

// Message is one chat turn as displayed to the user.
type Message struct {
	ID          string     `json:"id"`
	Role        types.Role `json:"role"`
	Content     string     `json:"content"`
	Timestamp   time.Time  `json:"timestamp"`
	Section     string     `json:"section,omitempty"`
	IsStreaming bool       `json:"isStreaming"`
	// Bootstrap marks the UI-only greeting, which never reaches the model.
	Bootstrap bool `json:"bootstrap,omitempty"`
}

// NewBootstrap returns a greeting message shown at the start of a session.
func NewBootstrap(content, section string) Message {
	return Message{
		Role:      types.RoleAssistant,
		Content:   content,
		Section:   section,
		Bootstrap: true,
	}
}
