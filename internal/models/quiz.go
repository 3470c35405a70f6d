package models

import (
	"time"

	"github.com/google/uuid"
)

// Quiz source kinds.
const (
	QuizSourceSession  = "session"
	QuizSourceDocument = "document"
)

// Quiz is a set of generated multiple-choice questions derived from a chat
// session or a document.
type Quiz struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	Title      string         `json:"title"`
	SourceKind string         `json:"source_kind"` // "session" or "document"
	SourceID   uuid.UUID      `json:"source_id"`
	Questions  []QuizQuestion `json:"questions,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// QuizQuestion is one multiple-choice question. Answer is the index into
// Options; API responses replace it with -1 unless answers were explicitly
// requested by the owner.
type QuizQuestion struct {
	ID       uuid.UUID `json:"id"`
	QuizID   uuid.UUID `json:"-"`
	Position int       `json:"position"`
	Prompt   string    `json:"prompt"`
	Options  []string  `json:"options"`
	Answer   int       `json:"answer"`
}

// QuizShare is a passcode-guarded share link for a quiz. The passcode is
// bcrypt-hashed; the token is the public handle.
type QuizShare struct {
	QuizID       uuid.UUID `json:"quiz_id"`
	Token        string    `json:"token"`
	PasscodeHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// QuizAttempt records a scored submission against a quiz.
type QuizAttempt struct {
	ID        uuid.UUID `json:"id"`
	QuizID    uuid.UUID `json:"quiz_id"`
	UserID    uuid.UUID `json:"user_id"`
	Answers   []int     `json:"answers"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}
