package handlers

import (
	"net/http"

	"github.com/EyadAmgad/EduMentorAI/internal/api/middleware"
	"github.com/EyadAmgad/EduMentorAI/internal/models"
)

// ProfileResponse is the authenticated user's profile with usage counts.
type ProfileResponse struct {
	User      *models.User `json:"user"`
	Sessions  int          `json:"sessions"`
	Documents int          `json:"documents"`
	Quizzes   int          `json:"quizzes"`
}

// Profile returns the authenticated user's profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	_, sessions, err := h.db.ListConversations(r.Context(), user.ID, 1, 0)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	_, documents, err := h.db.ListDocuments(r.Context(), user.ID, 1, 0)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	_, quizzes, err := h.db.ListQuizzes(r.Context(), user.ID, 1, 0)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, ProfileResponse{
		User:      user,
		Sessions:  sessions,
		Documents: documents,
		Quizzes:   quizzes,
	})
}
