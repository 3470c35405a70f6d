package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/EyadAmgad/EduMentorAI/internal/api/middleware"
	"github.com/EyadAmgad/EduMentorAI/internal/generate"
	"github.com/EyadAmgad/EduMentorAI/internal/metrics"
	"github.com/EyadAmgad/EduMentorAI/internal/models"
	"github.com/EyadAmgad/EduMentorAI/pkg/stream"
)

const (
	maxMessageLen   = 8000 // characters
	historyWindow   = 40   // prior messages sent to the generator
	maxTitleLen     = 60
	lockTTLHeadroom = 30 * time.Second
)

// ChatRequest is the body of a streaming chat request.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatStream handles POST /chat/stream and POST /chat/{sessionID}/stream.
// The response is a sequence of frames: start, zero or more chunks, then
// exactly one terminal frame. A conversation is created only by the first
// completed exchange; its identity rides on the complete frame.
func (h *Handler) ChatStream(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		h.Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLen {
		h.Error(w, http.StatusBadRequest, "message too long")
		return
	}

	// Resolve the conversation, if the URL names one
	var conv *models.Conversation
	if raw := chi.URLParam(r, "sessionID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid session ID")
			return
		}
		conv, err = h.db.GetConversation(r.Context(), id)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		if conv == nil || conv.UserID != user.ID {
			h.Error(w, http.StatusNotFound, "session not found")
			return
		}
	}

	// One in-flight exchange per conversation. Session-less exchanges are
	// serialized per user instead, since no conversation exists yet.
	lockID := "user:" + user.ID.String()
	if conv != nil {
		lockID = conv.ID.String()
	}
	acquired, err := h.locks.Acquire(r.Context(), lockID, h.chatTimeout+lockTTLHeadroom)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "lock error")
		return
	}
	if !acquired {
		metrics.ExchangesRejected.Inc()
		h.Error(w, http.StatusConflict, "an exchange is already in progress for this session")
		return
	}
	defer h.locks.Release(context.WithoutCancel(r.Context()), lockID)

	history, err := h.exchangeHistory(r.Context(), conv)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	h.runExchange(w, r, user, conv, req.Message, history)
}

// exchangeHistory loads the generator context window for a conversation.
func (h *Handler) exchangeHistory(ctx context.Context, conv *models.Conversation) ([]generate.Turn, error) {
	if conv == nil {
		return nil, nil
	}
	msgs, err := h.db.ListMessages(ctx, conv.ID, historyWindow, 0)
	if err != nil {
		return nil, err
	}
	turns := make([]generate.Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, generate.Turn{Role: m.Role, Content: m.Content})
	}
	return turns, nil
}

// runExchange streams one exchange. From here on the response is committed
// to the frame protocol; failures surface as error frames, not HTTP status.
func (h *Handler) runExchange(w http.ResponseWriter, r *http.Request, user *models.User, conv *models.Conversation, message string, history []generate.Turn) {
	started := time.Now()
	enc := stream.NewEncoder(w)

	outcome := "error"
	defer func() {
		metrics.ExchangesTotal.WithLabelValues(outcome).Inc()
		metrics.ExchangeDuration.Observe(time.Since(started).Seconds())
	}()

	emit := func(f stream.Frame) bool {
		if err := enc.Encode(f); err != nil {
			return false
		}
		metrics.FramesEmitted.WithLabelValues(string(f.Type)).Inc()
		return true
	}

	if !emit(stream.Start()) {
		outcome = "disconnect"
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.chatTimeout)
	defer cancel()

	gen, err := h.gen.Stream(ctx, generate.Request{History: history, Message: message})
	if err != nil {
		h.log.Error().Err(err).Msg("generator start failed")
		emit(stream.Error("answer generation is unavailable right now"))
		return
	}
	defer gen.Close()

	var answer strings.Builder
	firstFragment := true
	for {
		fragment, err := gen.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("generation failed mid-stream")
			if ctx.Err() == context.DeadlineExceeded {
				emit(stream.Error("the answer took too long to generate"))
			} else {
				emit(stream.Error("answer generation failed"))
			}
			return
		}
		if firstFragment {
			metrics.GeneratorLatency.Observe(time.Since(started).Seconds())
			firstFragment = false
		}
		answer.WriteString(fragment)
		if !emit(stream.Chunk(fragment)) {
			outcome = "disconnect"
			return
		}
	}

	// Persist the exchange. Only a completed exchange touches storage; the
	// conversation itself is created here on the first one.
	persistCtx := context.WithoutCancel(r.Context())
	if conv == nil {
		created, err := h.db.CreateConversation(persistCtx, user.ID, deriveTitle(message))
		if err != nil {
			h.log.Error().Err(err).Msg("create conversation failed")
			emit(stream.Error("failed to save the exchange"))
			return
		}
		conv = created
	}
	for _, msg := range []*models.Message{
		{ConversationID: conv.ID.String(), Role: models.RoleUser, Content: message},
		{ConversationID: conv.ID.String(), Role: models.RoleAssistant, Content: answer.String()},
	} {
		if err := h.db.AppendMessage(persistCtx, msg); err != nil {
			h.log.Error().Err(err).Msg("append message failed")
			emit(stream.Error("failed to save the exchange"))
			return
		}
	}

	if emit(stream.Complete(conv.ID.String())) {
		outcome = "complete"
	} else {
		outcome = "disconnect"
	}
}

// deriveTitle makes a conversation title from its first user message.
func deriveTitle(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	if utf8.RuneCountInString(title) > maxTitleLen {
		runes := []rune(title)
		title = strings.TrimSpace(string(runes[:maxTitleLen])) + "…"
	}
	return title
}
