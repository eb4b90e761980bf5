package types

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles accepted by the remote chat capability.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is the model-facing projection of a chat message.
type Turn struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}
