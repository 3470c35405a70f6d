package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/EyadAmgad/EduMentorAI/internal/api/middleware"
	"github.com/EyadAmgad/EduMentorAI/internal/metrics"
	"github.com/EyadAmgad/EduMentorAI/internal/models"
	"github.com/EyadAmgad/EduMentorAI/internal/quiz"
)

const (
	maxQuizSourceChars = 24000 // keeps quiz sources within the generator's context
	minPasscodeLen     = 4
)

// GenerateQuizRequest asks for a quiz built from a session or a document.
// Exactly one source must be given.
type GenerateQuizRequest struct {
	SessionID    string `json:"session_id,omitempty"`
	DocumentID   string `json:"document_id,omitempty"`
	NumQuestions int    `json:"num_questions"`
}

// GenerateQuiz builds and stores a quiz from the named source.
func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if (req.SessionID == "") == (req.DocumentID == "") {
		h.Error(w, http.StatusBadRequest, "exactly one of session_id or document_id is required")
		return
	}

	var (
		source     string
		title      string
		sourceKind string
		sourceID   uuid.UUID
	)
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid session_id")
			return
		}
		conv, err := h.db.GetConversation(r.Context(), id)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		if conv == nil || conv.UserID != user.ID {
			h.Error(w, http.StatusNotFound, "session not found")
			return
		}
		msgs, err := h.db.ListMessages(r.Context(), conv.ID, 200, 0)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		var sb strings.Builder
		for _, m := range msgs {
			sb.WriteString(m.Role)
			sb.WriteString(": ")
			sb.WriteString(m.Content)
			sb.WriteString("\n\n")
		}
		source = sb.String()
		title = "Quiz: " + conv.Title
		sourceKind = models.QuizSourceSession
		sourceID = conv.ID
	} else {
		id, err := uuid.Parse(req.DocumentID)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid document_id")
			return
		}
		doc, err := h.db.GetDocument(r.Context(), id)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		if doc == nil || doc.UserID != user.ID {
			h.Error(w, http.StatusNotFound, "document not found")
			return
		}
		source = doc.Content
		title = "Quiz: " + doc.Title
		sourceKind = models.QuizSourceDocument
		sourceID = doc.ID
	}

	source = strings.TrimSpace(source)
	if source == "" {
		h.Error(w, http.StatusBadRequest, "source has no content to quiz on")
		return
	}
	if len(source) > maxQuizSourceChars {
		source = source[:maxQuizSourceChars]
	}

	questions, err := h.quizzes.Build(r.Context(), source, req.NumQuestions)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID.String()).Msg("quiz generation failed")
		h.Error(w, http.StatusBadGateway, "quiz generation failed")
		return
	}

	q := &models.Quiz{
		UserID:     user.ID,
		Title:      title,
		SourceKind: sourceKind,
		SourceID:   sourceID,
		Questions:  questions,
	}
	if err := h.db.CreateQuiz(r.Context(), q); err != nil {
		h.log.Error().Err(err).Msg("create quiz failed")
		h.Error(w, http.StatusInternalServerError, "failed to store quiz")
		return
	}

	metrics.QuizzesGenerated.WithLabelValues(sourceKind).Inc()
	h.JSON(w, http.StatusCreated, withheldAnswers(q))
}

// QuizzesResponse is a page of the user's quizzes without questions.
type QuizzesResponse struct {
	Quizzes []models.Quiz `json:"quizzes"`
	Total   int           `json:"total"`
}

// ListQuizzes returns the user's quizzes.
func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	limit, offset := parseLimitOffset(r, 20, 100)
	quizzes, total, err := h.db.ListQuizzes(r.Context(), user.ID, limit, offset)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if quizzes == nil {
		quizzes = []models.Quiz{}
	}

	h.JSON(w, http.StatusOK, QuizzesResponse{Quizzes: quizzes, Total: total})
}

// ownedQuiz resolves {quizID} and checks ownership.
func (h *Handler) ownedQuiz(w http.ResponseWriter, r *http.Request) *models.Quiz {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "not authenticated")
		return nil
	}
	id, err := uuid.Parse(chi.URLParam(r, "quizID"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid quiz ID")
		return nil
	}
	q, err := h.db.GetQuiz(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return nil
	}
	if q == nil || q.UserID != user.ID {
		h.Error(w, http.StatusNotFound, "quiz not found")
		return nil
	}
	return q
}

// GetQuiz returns one quiz. Answers are withheld unless the owner passes
// ?include_answers=true.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	q := h.ownedQuiz(w, r)
	if q == nil {
		return
	}
	if r.URL.Query().Get("include_answers") == "true" {
		h.JSON(w, http.StatusOK, q)
		return
	}
	h.JSON(w, http.StatusOK, withheldAnswers(q))
}

// AttemptQuizRequest carries one answer index per question, in position
// order.
type AttemptQuizRequest struct {
	Answers []int `json:"answers"`
}

// AttemptQuiz scores a submission against a quiz.
func (h *Handler) AttemptQuiz(w http.ResponseWriter, r *http.Request) {
	q := h.ownedQuiz(w, r)
	if q == nil {
		return
	}

	var req AttemptQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	score, total := quiz.Score(q.Questions, req.Answers)
	attempt := &models.QuizAttempt{
		QuizID:  q.ID,
		UserID:  q.UserID,
		Answers: req.Answers,
		Score:   score,
		Total:   total,
	}
	if err := h.db.CreateQuizAttempt(r.Context(), attempt); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to store attempt")
		return
	}

	h.JSON(w, http.StatusCreated, attempt)
}

// ShareQuizRequest guards a share link with a passcode.
type ShareQuizRequest struct {
	Passcode string `json:"passcode"`
}

// ShareQuizResponse carries the public token for a shared quiz.
type ShareQuizResponse struct {
	Token string `json:"token"`
}

// ShareQuiz creates a passcode-guarded share link for a quiz.
func (h *Handler) ShareQuiz(w http.ResponseWriter, r *http.Request) {
	q := h.ownedQuiz(w, r)
	if q == nil {
		return
	}

	var req ShareQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Passcode) < minPasscodeLen {
		h.Error(w, http.StatusBadRequest, "passcode too short")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), bcrypt.DefaultCost)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to hash passcode")
		return
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	token := hex.EncodeToString(raw)

	share := &models.QuizShare{
		QuizID:       q.ID,
		Token:        token,
		PasscodeHash: string(hash),
	}
	if err := h.db.CreateQuizShare(r.Context(), share); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to store share link")
		return
	}

	h.JSON(w, http.StatusCreated, ShareQuizResponse{Token: token})
}

// SharedQuizRequest unlocks a shared quiz.
type SharedQuizRequest struct {
	Passcode string `json:"passcode"`
}

// SharedQuiz fetches a shared quiz by token + passcode. No account needed;
// answers are always withheld.
func (h *Handler) SharedQuiz(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req SharedQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	share, err := h.db.GetQuizShare(r.Context(), token)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if share == nil {
		h.Error(w, http.StatusNotFound, "share link not found")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(share.PasscodeHash), []byte(req.Passcode)) != nil {
		h.Error(w, http.StatusForbidden, "wrong passcode")
		return
	}

	q, err := h.db.GetQuiz(r.Context(), share.QuizID)
	if err != nil || q == nil {
		h.Error(w, http.StatusNotFound, "quiz not found")
		return
	}

	h.JSON(w, http.StatusOK, withheldAnswers(q))
}

// withheldAnswers returns a copy of the quiz with answer indexes blanked.
func withheldAnswers(q *models.Quiz) *models.Quiz {
	out := *q
	out.Questions = make([]models.QuizQuestion, len(q.Questions))
	for i, question := range q.Questions {
		question.Answer = -1
		out.Questions[i] = question
	}
	return &out
}
