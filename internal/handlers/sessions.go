package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/EyadAmgad/EduMentorAI/internal/api/middleware"
	"github.com/EyadAmgad/EduMentorAI/internal/models"
)

// SessionsResponse is a page of the user's conversations.
type SessionsResponse struct {
	Sessions []models.Conversation `json:"sessions"`
	Total    int                   `json:"total"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

// ListSessions returns the user's conversations, most recent activity first.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	limit, offset := parseLimitOffset(r, 20, 100)
	sessions, total, err := h.db.ListConversations(r.Context(), user.ID, limit, offset)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if sessions == nil {
		sessions = []models.Conversation{}
	}

	h.JSON(w, http.StatusOK, SessionsResponse{
		Sessions: sessions,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// ownedConversation resolves {sessionID} and checks ownership. Writes the
// error response itself and returns nil when the caller should stop.
func (h *Handler) ownedConversation(w http.ResponseWriter, r *http.Request) *models.Conversation {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "not authenticated")
		return nil
	}
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid session ID")
		return nil
	}
	conv, err := h.db.GetConversation(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return nil
	}
	if conv == nil || conv.UserID != user.ID {
		h.Error(w, http.StatusNotFound, "session not found")
		return nil
	}
	return conv
}

// MessagesResponse is a page of one conversation's messages in
// chronological order.
type MessagesResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []models.Message `json:"messages"`
	Count     int              `json:"count"`
}

// ListSessionMessages returns a conversation's messages. The optional
// "before" query param (a Unix ms timestamp) pages backwards.
func (h *Handler) ListSessionMessages(w http.ResponseWriter, r *http.Request) {
	conv := h.ownedConversation(w, r)
	if conv == nil {
		return
	}

	limit, _ := parseLimitOffset(r, 50, 200)
	var before int64
	if v := r.URL.Query().Get("before"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			h.Error(w, http.StatusBadRequest, "invalid before timestamp")
			return
		}
		before = n
	}

	msgs, err := h.db.ListMessages(r.Context(), conv.ID, limit, before)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	h.JSON(w, http.StatusOK, MessagesResponse{
		SessionID: conv.ID.String(),
		Messages:  msgs,
		Count:     len(msgs),
	})
}

// DeleteSession deletes a conversation and its messages.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	conv := h.ownedConversation(w, r)
	if conv == nil {
		return
	}

	if err := h.db.DeleteConversation(r.Context(), conv.ID); err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
