package domain

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a per-user conversation history.
type Turn struct {
	Role    Role
	Content string
}
