package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is uploaded study material. Content is stored as extracted text;
// binary extraction pipelines live outside this service.
type Document struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename"`
	Content   string    `json:"content,omitempty"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}
