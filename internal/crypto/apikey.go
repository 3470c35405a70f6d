package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// API keys look like "emk_<48 hex chars>". Only the SHA-256 hash is stored;
// the key itself is shown once at registration.
const apiKeyPrefix = "emk_"

var ErrInvalidAPIKey = errors.New("invalid API key format")

// GenerateAPIKey creates a new random API key.
func GenerateAPIKey() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(raw), nil
}

// HashAPIKey returns the hex SHA-256 digest stored for a key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// ValidateAPIKeyFormat checks the shape of a presented key before hashing.
func ValidateAPIKeyFormat(key string) error {
	if !strings.HasPrefix(key, apiKeyPrefix) {
		return ErrInvalidAPIKey
	}
	hexPart := strings.TrimPrefix(key, apiKeyPrefix)
	if len(hexPart) != 48 {
		return ErrInvalidAPIKey
	}
	if _, err := hex.DecodeString(hexPart); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}
