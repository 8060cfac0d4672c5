package domain

// Role identifies the author of a message
type Role string

// Message roles understood by the completion API
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message represents a single conversation turn
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the success body of POST /api/chat
type ChatResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the failure body of every endpoint
type ErrorResponse struct {
	Error string `json:"error"`
}

// CompletionOptions tunes a single completion call
type CompletionOptions struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

// FallbackReply replaces an empty completion so the log never gets an empty turn
const FallbackReply = "Sorry, I encountered an error."
