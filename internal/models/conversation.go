package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a durable chat session. It is created implicitly by the
// first completed exchange; the identity is assigned server-side and handed
// to the client on the terminal frame of that exchange.
type Conversation struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	MessageCount int64     `json:"message_count"`
}
