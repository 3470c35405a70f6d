package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/EyadAmgad/EduMentorAI/internal/crypto"
	"github.com/EyadAmgad/EduMentorAI/internal/metrics"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterResponse represents the registration response. The API key is
// returned exactly once; only its hash is stored.
type RegisterResponse struct {
	ID     string `json:"id"`
	APIKey string `json:"api_key"`
}

// Register handles user registration.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := sanitizeName(req.Name)
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if !isValidEmail(req.Email) {
		h.Error(w, http.StatusBadRequest, "invalid email format")
		return
	}

	key, err := crypto.GenerateAPIKey()
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to generate API key")
		return
	}

	user, err := h.db.CreateUser(r.Context(), name, req.Email, crypto.HashAPIKey(key))
	if err != nil {
		h.log.Error().Err(err).Msg("create user failed")
		h.Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	metrics.UsersRegistered.Inc()
	h.log.Info().Str("user_id", user.ID.String()).Msg("user registered")

	h.JSON(w, http.StatusCreated, RegisterResponse{
		ID:     user.ID.String(),
		APIKey: key,
	})
}
