package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/EyadAmgad/EduMentorAI/internal/models"
)

// DataStore defines the interface for persistent storage of users,
// conversations, messages, documents and quizzes. Both PostgresStore and
// SQLiteStore implement this interface; SQLite backs development setups.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, name, email, apiKeyHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByAPIKeyHash(ctx context.Context, hash string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// Conversation operations
	CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Conversation, int, error)
	DeleteConversation(ctx context.Context, id uuid.UUID) error
	CountConversations(ctx context.Context) (int64, error)
	GetMostRecentActivity(ctx context.Context) (*time.Time, error)

	// Message operations. AppendMessage assigns the ULID and timestamp if
	// unset and bumps the conversation's counters.
	AppendMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit int, before int64) ([]models.Message, error)
	SearchMessages(ctx context.Context, userID uuid.UUID, query string, limit int) ([]models.Message, error)
	CountMessages(ctx context.Context) (int64, error)

	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListDocuments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Document, int, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
	CountDocuments(ctx context.Context) (int64, error)

	// Quiz operations
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	ListQuizzes(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Quiz, int, error)
	CreateQuizShare(ctx context.Context, share *models.QuizShare) error
	GetQuizShare(ctx context.Context, token string) (*models.QuizShare, error)
	CreateQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error
}
