package handlers

import (
	"net/http"
	"time"
)

// StatsResponse is the public platform stats payload.
type StatsResponse struct {
	Users        int64      `json:"users"`
	Sessions     int64      `json:"sessions"`
	Messages     int64      `json:"messages"`
	Documents    int64      `json:"documents"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// Stats returns public platform statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.CountUsers(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	sessions, err := h.db.CountConversations(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	messages, err := h.db.CountMessages(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	documents, err := h.db.CountDocuments(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	lastActivity, err := h.db.GetMostRecentActivity(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		Users:        users,
		Sessions:     sessions,
		Messages:     messages,
		Documents:    documents,
		LastActivity: lastActivity,
	})
}
