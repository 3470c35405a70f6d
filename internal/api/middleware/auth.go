package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/EyadAmgad/EduMentorAI/internal/crypto"
	"github.com/EyadAmgad/EduMentorAI/internal/models"
	"github.com/EyadAmgad/EduMentorAI/internal/store"
)

type contextKey string

const UserContextKey contextKey = "user"

// AuthMiddleware resolves API keys for authenticated endpoints.
type AuthMiddleware struct {
	db store.DataStore
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(db store.DataStore) *AuthMiddleware {
	return &AuthMiddleware{db: db}
}

// RequireAuth verifies the X-API-Key header and loads the owning user.
// Only the SHA-256 hash of a key is ever stored or compared.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			jsonError(w, http.StatusUnauthorized, "missing API key")
			return
		}

		if err := crypto.ValidateAPIKeyFormat(key); err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		user, err := m.db.GetUserByAPIKeyHash(r.Context(), crypto.HashAPIKey(key))
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if user == nil {
			jsonError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetUserFromContext retrieves the authenticated user from the request context.
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
