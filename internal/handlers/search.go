package handlers

import (
	"net/http"
	"strings"

	"github.com/EyadAmgad/EduMentorAI/internal/api/middleware"
	"github.com/EyadAmgad/EduMentorAI/internal/metrics"
	"github.com/EyadAmgad/EduMentorAI/internal/models"
)

// SearchResponse carries message search hits, newest first.
type SearchResponse struct {
	Query   string           `json:"query"`
	Results []models.Message `json:"results"`
	Count   int              `json:"count"`
}

// Search finds the user's messages matching a query, case-insensitively.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.Error(w, http.StatusBadRequest, "q parameter is required")
		return
	}
	if len(query) > 200 {
		h.Error(w, http.StatusBadRequest, "query too long")
		return
	}

	limit, _ := parseLimitOffset(r, 25, 100)
	results, err := h.db.SearchMessages(r.Context(), user.ID, query, limit)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if results == nil {
		results = []models.Message{}
	}

	metrics.SearchQueries.Inc()
	h.JSON(w, http.StatusOK, SearchResponse{
		Query:   query,
		Results: results,
		Count:   len(results),
	})
}
