package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered learner.
type User struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	APIKeyHash string    `json:"-"` // SHA-256 hex of the issued key
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
