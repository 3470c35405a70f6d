package models

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents one turn of a conversation. Messages are append-only.
type Message struct {
	ID             string `json:"id"` // ULID
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"` // "user" or "assistant"
	Content        string `json:"content"`
	Timestamp      int64  `json:"ts"` // Unix ms
}
