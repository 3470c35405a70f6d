package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/EyadAmgad/EduMentorAI/internal/crypto"
	"github.com/EyadAmgad/EduMentorAI/internal/models"
)

// SQLiteStore handles SQLite database operations. It backs development
// setups where no PostgreSQL is available.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/edumentor.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/edumentor.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT DEFAULT '',
		email TEXT DEFAULT '',
		api_key_hash TEXT UNIQUE NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_active_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		message_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		ts INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		filename TEXT DEFAULT '',
		content TEXT DEFAULT '',
		size_bytes INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		source_kind TEXT NOT NULL,
		source_id TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS quiz_questions (
		id TEXT PRIMARY KEY,
		quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		options TEXT NOT NULL,
		answer INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quiz_shares (
		token TEXT PRIMARY KEY,
		quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		passcode_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS quiz_attempts (
		id TEXT PRIMARY KEY,
		quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		answers TEXT NOT NULL,
		score INTEGER NOT NULL,
		total INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_api_key_hash ON users(api_key_hash);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, last_active_at);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation_ts ON messages(conversation_id, ts);
	CREATE INDEX IF NOT EXISTS idx_documents_user ON documents(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_quizzes_user ON quizzes(user_id, created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, apiKeyHash string) (*models.User, error) {
	id := crypto.NewUUIDv7()
	now := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, api_key_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id.String(), name, email, apiKeyHash, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, api_key_hash, created_at, updated_at FROM users WHERE id = ?`, id.String())
}

// GetUserByAPIKeyHash retrieves a user by the hash of their API key.
func (s *SQLiteStore) GetUserByAPIKeyHash(ctx context.Context, hash string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, api_key_hash, created_at, updated_at FROM users WHERE api_key_hash = ?`, hash)
}

func (s *SQLiteStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var idStr string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&idStr,
		&user.Name,
		&user.Email,
		&user.APIKeyHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.ID = uuid.MustParse(idStr)
	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// CreateConversation creates a new conversation.
func (s *SQLiteStore) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error) {
	id := crypto.NewUUIDv7()
	now := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, title, created_at, last_active_at, message_count)
		VALUES (?, ?, ?, ?, ?, 0)
	`, id.String(), userID.String(), title, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetConversation(ctx, id)
}

// GetConversation retrieves a conversation by ID.
func (s *SQLiteStore) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	conv := &models.Conversation{}
	var idStr, userIDStr string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, created_at, last_active_at, message_count
		FROM conversations WHERE id = ?
	`, id.String()).Scan(
		&idStr,
		&userIDStr,
		&conv.Title,
		&conv.CreatedAt,
		&conv.LastActiveAt,
		&conv.MessageCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	conv.ID = uuid.MustParse(idStr)
	conv.UserID = uuid.MustParse(userIDStr)
	return conv, nil
}

// ListConversations retrieves a user's conversations with pagination.
func (s *SQLiteStore) ListConversations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Conversation, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations WHERE user_id = ?`, userID.String()).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, created_at, last_active_at, message_count
		FROM conversations
		WHERE user_id = ?
		ORDER BY last_active_at DESC
		LIMIT ? OFFSET ?
	`, userID.String(), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		var idStr, userIDStr string

		err := rows.Scan(
			&idStr,
			&userIDStr,
			&conv.Title,
			&conv.CreatedAt,
			&conv.LastActiveAt,
			&conv.MessageCount,
		)
		if err != nil {
			return nil, 0, err
		}

		conv.ID = uuid.MustParse(idStr)
		conv.UserID = uuid.MustParse(userIDStr)
		convs = append(convs, conv)
	}

	return convs, total, nil
}

// DeleteConversation deletes a conversation and its messages.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id.String())
	return err
}

// CountConversations returns the total number of conversations.
func (s *SQLiteStore) CountConversations(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&count)
	return count, err
}

// GetMostRecentActivity returns the most recent activity timestamp across
// all conversations. The direct column reference matters: aggregates like
// MAX() strip the DATETIME decltype and go-sqlite3 would hand back a string
// that cannot scan into time.Time.
func (s *SQLiteStore) GetMostRecentActivity(ctx context.Context) (*time.Time, error) {
	var t time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT last_active_at FROM conversations
		ORDER BY last_active_at DESC
		LIMIT 1
	`).Scan(&t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// AppendMessage stores a message and bumps the conversation's counters.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, ts)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.Timestamp)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE conversations
		SET message_count = message_count + 1, last_active_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, msg.ConversationID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ListMessages retrieves messages in chronological order. The ULID id is
// the tie-breaker for messages sharing a millisecond, such as the user and
// assistant rows of one exchange.
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int, before int64) ([]models.Message, error) {
	q := `
		SELECT id, conversation_id, role, content, ts
		FROM messages
		WHERE conversation_id = ?
	`
	args := []any{conversationID.String()}
	if before > 0 {
		q += ` AND ts < ? ORDER BY ts DESC, id DESC LIMIT ?`
		args = append(args, before, limit)
	} else {
		q += ` ORDER BY ts DESC, id DESC LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages, err := scanMessagesSQL(rows)
	if err != nil {
		return nil, err
	}
	reverseMessages(messages)
	return messages, nil
}

// SearchMessages searches a user's messages, newest first. SQLite LIKE is
// case-insensitive for ASCII, matching the Postgres ILIKE behavior closely
// enough for development.
func (s *SQLiteStore) SearchMessages(ctx context.Context, userID uuid.UUID, query string, limit int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.conversation_id, m.role, m.content, m.ts
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.user_id = ? AND m.content LIKE '%' || ? || '%'
		ORDER BY m.ts DESC
		LIMIT ?
	`, userID.String(), query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessagesSQL(rows)
}

// CountMessages returns the total message count.
func (s *SQLiteStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// CreateDocument stores an uploaded document.
func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = crypto.NewUUIDv7()
	}
	doc.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, user_id, title, filename, content, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ID.String(), doc.UserID.String(), doc.Title, doc.Filename, doc.Content, doc.SizeBytes, doc.CreatedAt)
	return err
}

// GetDocument retrieves a document by ID.
func (s *SQLiteStore) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	var idStr, userIDStr string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, filename, content, size_bytes, created_at
		FROM documents WHERE id = ?
	`, id.String()).Scan(
		&idStr,
		&userIDStr,
		&doc.Title,
		&doc.Filename,
		&doc.Content,
		&doc.SizeBytes,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	doc.ID = uuid.MustParse(idStr)
	doc.UserID = uuid.MustParse(userIDStr)
	return doc, nil
}

// ListDocuments retrieves a user's documents, newest first, without content.
func (s *SQLiteStore) ListDocuments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Document, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE user_id = ?`, userID.String()).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, filename, size_bytes, created_at
		FROM documents
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, userID.String(), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		var idStr, userIDStr string

		err := rows.Scan(
			&idStr,
			&userIDStr,
			&doc.Title,
			&doc.Filename,
			&doc.SizeBytes,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}

		doc.ID = uuid.MustParse(idStr)
		doc.UserID = uuid.MustParse(userIDStr)
		docs = append(docs, doc)
	}

	return docs, total, nil
}

// DeleteDocument deletes a document.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id.String())
	return err
}

// CountDocuments returns the total document count.
func (s *SQLiteStore) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CreateQuiz stores a quiz and its questions.
func (s *SQLiteStore) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if quiz.ID == uuid.Nil {
		quiz.ID = crypto.NewUUIDv7()
	}
	quiz.CreatedAt = time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO quizzes (id, user_id, title, source_kind, source_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, quiz.ID.String(), quiz.UserID.String(), quiz.Title, quiz.SourceKind, quiz.SourceID.String(), quiz.CreatedAt)
	if err != nil {
		return err
	}

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		if q.ID == uuid.Nil {
			q.ID = crypto.NewUUIDv7()
		}
		q.QuizID = quiz.ID
		q.Position = i

		options, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO quiz_questions (id, quiz_id, position, prompt, options, answer)
			VALUES (?, ?, ?, ?, ?, ?)
		`, q.ID.String(), q.QuizID.String(), q.Position, q.Prompt, string(options), q.Answer)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetQuiz retrieves a quiz with its questions.
func (s *SQLiteStore) GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	quiz := &models.Quiz{}
	var idStr, userIDStr, sourceIDStr string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, source_kind, source_id, created_at
		FROM quizzes WHERE id = ?
	`, id.String()).Scan(
		&idStr,
		&userIDStr,
		&quiz.Title,
		&quiz.SourceKind,
		&sourceIDStr,
		&quiz.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	quiz.ID = uuid.MustParse(idStr)
	quiz.UserID = uuid.MustParse(userIDStr)
	quiz.SourceID = uuid.MustParse(sourceIDStr)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, quiz_id, position, prompt, options, answer
		FROM quiz_questions
		WHERE quiz_id = ?
		ORDER BY position
	`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var q models.QuizQuestion
		var qIDStr, quizIDStr, options string
		err := rows.Scan(&qIDStr, &quizIDStr, &q.Position, &q.Prompt, &options, &q.Answer)
		if err != nil {
			return nil, err
		}
		q.ID = uuid.MustParse(qIDStr)
		q.QuizID = uuid.MustParse(quizIDStr)
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, err
		}
		quiz.Questions = append(quiz.Questions, q)
	}

	return quiz, nil
}

// ListQuizzes retrieves a user's quizzes, newest first, without questions.
func (s *SQLiteStore) ListQuizzes(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Quiz, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes WHERE user_id = ?`, userID.String()).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, source_kind, source_id, created_at
		FROM quizzes
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, userID.String(), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var quiz models.Quiz
		var idStr, userIDStr, sourceIDStr string

		err := rows.Scan(
			&idStr,
			&userIDStr,
			&quiz.Title,
			&quiz.SourceKind,
			&sourceIDStr,
			&quiz.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}

		quiz.ID = uuid.MustParse(idStr)
		quiz.UserID = uuid.MustParse(userIDStr)
		quiz.SourceID = uuid.MustParse(sourceIDStr)
		quizzes = append(quizzes, quiz)
	}

	return quizzes, total, nil
}

// CreateQuizShare stores a passcode-guarded share link.
func (s *SQLiteStore) CreateQuizShare(ctx context.Context, share *models.QuizShare) error {
	share.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_shares (token, quiz_id, passcode_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, share.Token, share.QuizID.String(), share.PasscodeHash, share.CreatedAt)
	return err
}

// GetQuizShare retrieves a share link by token.
func (s *SQLiteStore) GetQuizShare(ctx context.Context, token string) (*models.QuizShare, error) {
	share := &models.QuizShare{}
	var quizIDStr string

	err := s.db.QueryRowContext(ctx, `
		SELECT token, quiz_id, passcode_hash, created_at
		FROM quiz_shares WHERE token = ?
	`, token).Scan(
		&share.Token,
		&quizIDStr,
		&share.PasscodeHash,
		&share.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	share.QuizID = uuid.MustParse(quizIDStr)
	return share, nil
}

// CreateQuizAttempt stores a scored attempt.
func (s *SQLiteStore) CreateQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = crypto.NewUUIDv7()
	}
	attempt.CreatedAt = time.Now()

	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quiz_attempts (id, quiz_id, user_id, answers, score, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, attempt.ID.String(), attempt.QuizID.String(), attempt.UserID.String(), string(answers), attempt.Score, attempt.Total, attempt.CreatedAt)
	return err
}

// scanMessagesSQL collects message rows.
func scanMessagesSQL(rows *sql.Rows) ([]models.Message, error) {
	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.Role,
			&msg.Content,
			&msg.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
