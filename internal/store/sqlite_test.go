package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/EyadAmgad/EduMentorAI/internal/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func createTestConversation(t *testing.T, s *SQLiteStore, keyHash string) *models.Conversation {
	t.Helper()
	ctx := context.Background()
	user, err := s.CreateUser(ctx, "ada", "ada@example.com", keyHash)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	conv, err := s.CreateConversation(ctx, user.ID, "recursion basics")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	return conv
}

func TestSQLiteMostRecentActivity(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	ts, err := s.GetMostRecentActivity(ctx)
	if err != nil {
		t.Fatalf("GetMostRecentActivity on empty store: %v", err)
	}
	if ts != nil {
		t.Fatalf("timestamp = %v, want nil with no conversations", ts)
	}

	createTestConversation(t, s, "hash-activity")

	ts, err = s.GetMostRecentActivity(ctx)
	if err != nil {
		t.Fatalf("GetMostRecentActivity with data: %v", err)
	}
	if ts == nil {
		t.Fatal("timestamp should be set once a conversation exists")
	}
	if time.Since(*ts) > time.Minute {
		t.Fatalf("timestamp = %v, want recent", ts)
	}
}

// The user and assistant rows of one exchange are appended within the same
// millisecond; chronological order must still hold.
func TestSQLiteListMessagesBreaksTimestampTies(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	conv := createTestConversation(t, s, "hash-ties")

	now := time.Now().UnixMilli()
	userMsg := &models.Message{
		ConversationID: conv.ID.String(),
		Role:           models.RoleUser,
		Content:        "what is recursion?",
		Timestamp:      now,
	}
	if err := s.AppendMessage(ctx, userMsg); err != nil {
		t.Fatalf("AppendMessage(user): %v", err)
	}
	assistantMsg := &models.Message{
		ConversationID: conv.ID.String(),
		Role:           models.RoleAssistant,
		Content:        "a function calling itself",
		Timestamp:      now,
	}
	if err := s.AppendMessage(ctx, assistantMsg); err != nil {
		t.Fatalf("AppendMessage(assistant): %v", err)
	}

	msgs, err := s.ListMessages(ctx, conv.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Fatalf("order = %s, %s; want user then assistant", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].ID >= msgs[1].ID {
		t.Fatalf("ids not monotonic: %s >= %s", msgs[0].ID, msgs[1].ID)
	}
}
