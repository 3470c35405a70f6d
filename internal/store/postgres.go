package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/EyadAmgad/EduMentorAI/internal/crypto"
	"github.com/EyadAmgad/EduMentorAI/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool
// and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// initSchema creates tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT DEFAULT '',
		email TEXT DEFAULT '',
		api_key_hash TEXT UNIQUE NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		last_active_at TIMESTAMPTZ DEFAULT NOW(),
		message_count BIGINT DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		ts BIGINT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		filename TEXT DEFAULT '',
		content TEXT DEFAULT '',
		size_bytes BIGINT DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS quizzes (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		source_kind TEXT NOT NULL,
		source_id UUID NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS quiz_questions (
		id UUID PRIMARY KEY,
		quiz_id UUID NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		position INT NOT NULL,
		prompt TEXT NOT NULL,
		options JSONB NOT NULL,
		answer INT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quiz_shares (
		token TEXT PRIMARY KEY,
		quiz_id UUID NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		passcode_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS quiz_attempts (
		id UUID PRIMARY KEY,
		quiz_id UUID NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		answers JSONB NOT NULL,
		score INT NOT NULL,
		total INT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_api_key_hash ON users(api_key_hash);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, last_active_at);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation_ts ON messages(conversation_id, ts);
	CREATE INDEX IF NOT EXISTS idx_documents_user ON documents(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_quizzes_user ON quizzes(user_id, created_at);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateUser creates a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, name, email, apiKeyHash string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, api_key_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, api_key_hash, created_at, updated_at
	`, crypto.NewUUIDv7(), name, email, apiKeyHash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.APIKeyHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, api_key_hash, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.APIKeyHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetUserByAPIKeyHash retrieves a user by the hash of their API key.
func (s *PostgresStore) GetUserByAPIKeyHash(ctx context.Context, hash string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, api_key_hash, created_at, updated_at
		FROM users WHERE api_key_hash = $1
	`, hash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.APIKeyHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// CreateConversation creates a new conversation.
func (s *PostgresStore) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO conversations (id, user_id, title)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, title, created_at, last_active_at, message_count
	`, crypto.NewUUIDv7(), userID, title).Scan(
		&conv.ID,
		&conv.UserID,
		&conv.Title,
		&conv.CreatedAt,
		&conv.LastActiveAt,
		&conv.MessageCount,
	)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// GetConversation retrieves a conversation by ID.
func (s *PostgresStore) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, created_at, last_active_at, message_count
		FROM conversations WHERE id = $1
	`, id).Scan(
		&conv.ID,
		&conv.UserID,
		&conv.Title,
		&conv.CreatedAt,
		&conv.LastActiveAt,
		&conv.MessageCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return conv, nil
}

// ListConversations retrieves a user's conversations with pagination,
// most recently active first.
func (s *PostgresStore) ListConversations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Conversation, int, error) {
	var total int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM conversations WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, created_at, last_active_at, message_count
		FROM conversations
		WHERE user_id = $1
		ORDER BY last_active_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		err := rows.Scan(
			&conv.ID,
			&conv.UserID,
			&conv.Title,
			&conv.CreatedAt,
			&conv.LastActiveAt,
			&conv.MessageCount,
		)
		if err != nil {
			return nil, 0, err
		}
		convs = append(convs, conv)
	}

	return convs, total, nil
}

// DeleteConversation deletes a conversation and its messages.
func (s *PostgresStore) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	return err
}

// CountConversations returns the total number of conversations.
func (s *PostgresStore) CountConversations(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&count)
	return count, err
}

// GetMostRecentActivity returns the most recent activity timestamp across
// all conversations.
func (s *PostgresStore) GetMostRecentActivity(ctx context.Context) (*time.Time, error) {
	var t *time.Time
	err := s.pool.QueryRow(ctx, `SELECT MAX(last_active_at) FROM conversations`).Scan(&t)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// AppendMessage stores a message and bumps the conversation's counters.
func (s *PostgresStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, ts)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.Timestamp)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations
		SET message_count = message_count + 1, last_active_at = NOW()
		WHERE id = $1
	`, msg.ConversationID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListMessages retrieves messages in chronological order. A non-zero
// before timestamp (Unix ms, exclusive) pages backwards. The ULID id is
// the tie-breaker for messages sharing a millisecond, such as the user and
// assistant rows of one exchange.
func (s *PostgresStore) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int, before int64) ([]models.Message, error) {
	q := `
		SELECT id, conversation_id, role, content, ts
		FROM messages
		WHERE conversation_id = $1
	`
	args := []any{conversationID}
	if before > 0 {
		q += ` AND ts < $2 ORDER BY ts DESC, id DESC LIMIT $3`
		args = append(args, before, limit)
	} else {
		q += ` ORDER BY ts DESC, id DESC LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages, err := scanMessagesPgx(rows)
	if err != nil {
		return nil, err
	}
	reverseMessages(messages)
	return messages, nil
}

// SearchMessages searches a user's messages, newest first.
func (s *PostgresStore) SearchMessages(ctx context.Context, userID uuid.UUID, query string, limit int) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.conversation_id, m.role, m.content, m.ts
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.user_id = $1 AND m.content ILIKE '%' || $2 || '%'
		ORDER BY m.ts DESC
		LIMIT $3
	`, userID, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessagesPgx(rows)
}

// CountMessages returns the total message count.
func (s *PostgresStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// CreateDocument stores an uploaded document.
func (s *PostgresStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = crypto.NewUUIDv7()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO documents (id, user_id, title, filename, content, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, doc.ID, doc.UserID, doc.Title, doc.Filename, doc.Content, doc.SizeBytes).Scan(&doc.CreatedAt)
}

// GetDocument retrieves a document by ID.
func (s *PostgresStore) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, filename, content, size_bytes, created_at
		FROM documents WHERE id = $1
	`, id).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.Filename,
		&doc.Content,
		&doc.SizeBytes,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

// ListDocuments retrieves a user's documents, newest first. Content is
// omitted from listings.
func (s *PostgresStore) ListDocuments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Document, int, error) {
	var total int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, filename, size_bytes, created_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.Title,
			&doc.Filename,
			&doc.SizeBytes,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}

	return docs, total, nil
}

// DeleteDocument deletes a document.
func (s *PostgresStore) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

// CountDocuments returns the total document count.
func (s *PostgresStore) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CreateQuiz stores a quiz and its questions.
func (s *PostgresStore) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if quiz.ID == uuid.Nil {
		quiz.ID = crypto.NewUUIDv7()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO quizzes (id, user_id, title, source_kind, source_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, quiz.ID, quiz.UserID, quiz.Title, quiz.SourceKind, quiz.SourceID).Scan(&quiz.CreatedAt)
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
		_, err = tx.Exec(ctx, `
			INSERT INTO quiz_questions (id, quiz_id, position, prompt, options, answer)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, q.ID, q.QuizID, q.Position, q.Prompt, options, q.Answer)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetQuiz retrieves a quiz with its questions.
func (s *PostgresStore) GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	quiz := &models.Quiz{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, source_kind, source_id, created_at
		FROM quizzes WHERE id = $1
	`, id).Scan(
		&quiz.ID,
		&quiz.UserID,
		&quiz.Title,
		&quiz.SourceKind,
		&quiz.SourceID,
		&quiz.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, quiz_id, position, prompt, options, answer
		FROM quiz_questions
		WHERE quiz_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var q models.QuizQuestion
		var options []byte
		err := rows.Scan(&q.ID, &q.QuizID, &q.Position, &q.Prompt, &options, &q.Answer)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, err
		}
		quiz.Questions = append(quiz.Questions, q)
	}

	return quiz, nil
}

// ListQuizzes retrieves a user's quizzes, newest first, without questions.
func (s *PostgresStore) ListQuizzes(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Quiz, int, error) {
	var total int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quizzes WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, source_kind, source_id, created_at
		FROM quizzes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var quiz models.Quiz
		err := rows.Scan(
			&quiz.ID,
			&quiz.UserID,
			&quiz.Title,
			&quiz.SourceKind,
			&quiz.SourceID,
			&quiz.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		quizzes = append(quizzes, quiz)
	}

	return quizzes, total, nil
}

// CreateQuizShare stores a passcode-guarded share link.
func (s *PostgresStore) CreateQuizShare(ctx context.Context, share *models.QuizShare) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO quiz_shares (token, quiz_id, passcode_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, share.Token, share.QuizID, share.PasscodeHash).Scan(&share.CreatedAt)
}

// GetQuizShare retrieves a share link by token.
func (s *PostgresStore) GetQuizShare(ctx context.Context, token string) (*models.QuizShare, error) {
	share := &models.QuizShare{}
	err := s.pool.QueryRow(ctx, `
		SELECT token, quiz_id, passcode_hash, created_at
		FROM quiz_shares WHERE token = $1
	`, token).Scan(
		&share.Token,
		&share.QuizID,
		&share.PasscodeHash,
		&share.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return share, nil
}

// CreateQuizAttempt stores a scored attempt.
func (s *PostgresStore) CreateQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = crypto.NewUUIDv7()
	}
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return err
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO quiz_attempts (id, quiz_id, user_id, answers, score, total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, attempt.ID, attempt.QuizID, attempt.UserID, answers, attempt.Score, attempt.Total).Scan(&attempt.CreatedAt)
}

// scanMessagesPgx collects message rows.
func scanMessagesPgx(rows pgx.Rows) ([]models.Message, error) {
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

// reverseMessages flips a newest-first page into chronological order.
func reverseMessages(messages []models.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
