// Package edumentor provides a client for the EduMentorAI API, including
// the streamed chat exchange loop.
package edumentor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Client is an EduMentorAI API client.
type Client struct {
	BaseURL    string
	ConfigDir  string
	APIKey     string
	HTTPClient *http.Client
	Log        zerolog.Logger

	mu       sync.Mutex
	inFlight bool
}

// ErrExchangeInFlight is returned by Send while another exchange is
// running on the same client.
var ErrExchangeInFlight = fmt.Errorf("edumentor: an exchange is already in flight")

// Config holds stored credentials.
type Config struct {
	UserID string `json:"user_id"`
	APIKey string `json:"api_key"`
}

// NewClient creates a new client and loads stored credentials if present.
// The HTTP client carries no timeout; a streamed exchange is open-ended
// and the server bounds generation time.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	configDir := os.Getenv("EDUMENTOR_CONFIG")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".edumentor")
	}

	c := &Client{
		BaseURL:    baseURL,
		ConfigDir:  configDir,
		HTTPClient: &http.Client{},
		Log:        zerolog.Nop(),
	}

	_ = c.LoadConfig()
	return c
}

// LoadConfig loads credentials from disk.
func (c *Client) LoadConfig() error {
	data, err := os.ReadFile(filepath.Join(c.ConfigDir, "credentials.json"))
	if err != nil {
		return err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	c.APIKey = cfg.APIKey
	return nil
}

// SaveConfig saves credentials to disk.
func (c *Client) SaveConfig(userID string) error {
	if err := os.MkdirAll(c.ConfigDir, 0700); err != nil {
		return err
	}
	data, _ := json.MarshalIndent(Config{UserID: userID, APIKey: c.APIKey}, "", "  ")
	return os.WriteFile(filepath.Join(c.ConfigDir, "credentials.json"), data, 0600)
}

// doRequest performs a plain (non-streaming) API request.
func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("edumentor error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

// RegisterResponse is the response from user registration.
type RegisterResponse struct {
	ID     string `json:"id"`
	APIKey string `json:"api_key"`
}

// Register creates a user and stores the issued API key.
func (c *Client) Register(name, email string) (*RegisterResponse, error) {
	body, _ := json.Marshal(map[string]string{"name": name, "email": email})
	respBody, err := c.doRequest("POST", "/register", body)
	if err != nil {
		return nil, err
	}

	var resp RegisterResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}

	c.APIKey = resp.APIKey
	if err := c.SaveConfig(resp.ID); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionInfo is one stored conversation.
type SessionInfo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	MessageCount int64     `json:"message_count"`
}

// SessionsResponse is a page of conversations.
type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
	Total    int           `json:"total"`
}

// ListSessions lists the user's conversations.
func (c *Client) ListSessions(limit, offset int) (*SessionsResponse, error) {
	respBody, err := c.doRequest("GET", fmt.Sprintf("/chat/sessions?limit=%d&offset=%d", limit, offset), nil)
	if err != nil {
		return nil, err
	}
	var resp SessionsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Message is one stored conversation turn.
type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"ts"`
}

// MessagesResponse is a page of one conversation's messages.
type MessagesResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	Count     int       `json:"count"`
}

// GetMessages retrieves a conversation's messages in order.
func (c *Client) GetMessages(sessionID string, limit int, before int64) (*MessagesResponse, error) {
	path := fmt.Sprintf("/chat/%s/messages?limit=%d", sessionID, limit)
	if before > 0 {
		path += fmt.Sprintf("&before=%d", before)
	}
	respBody, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}
	var resp MessagesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteSession deletes a conversation.
func (c *Client) DeleteSession(sessionID string) error {
	_, err := c.doRequest("DELETE", "/chat/"+sessionID, nil)
	return err
}

// SearchResponse is the response from message search.
type SearchResponse struct {
	Query   string    `json:"query"`
	Results []Message `json:"results"`
	Count   int       `json:"count"`
}

// Search finds the user's messages matching a query.
func (c *Client) Search(query string, limit int) (*SearchResponse, error) {
	respBody, err := c.doRequest("GET", fmt.Sprintf("/find?q=%s&limit=%d", url.QueryEscape(query), limit), nil)
	if err != nil {
		return nil, err
	}
	var resp SearchResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Checks    map[string]interface{} `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Health checks server health.
func (c *Client) Health() (*HealthResponse, error) {
	respBody, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return nil, err
	}
	var resp HealthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
