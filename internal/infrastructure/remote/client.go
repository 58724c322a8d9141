package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/catalogdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from the platform API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Config holds the connection settings for the backend platform.
type Config struct {
	Endpoint             string
	ProjectID            string
	APIKey               string
	DatabaseID           string
	UsersCollectionID    string
	ProductsCollectionID string
	SessionFile          string
	Timeout              time.Duration
}

// Validate checks that the required connection settings are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("remote: endpoint is required")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("remote: project ID is required")
	}
	if c.DatabaseID == "" {
		return fmt.Errorf("remote: database ID is required")
	}
	return nil
}

// Client talks to the backend platform's REST API for sessions, accounts and
// document collections. The current session secret is kept in memory and
// mirrored to a local file so a restart can tell whether a prior session may
// still exist.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger

	mu            sync.RWMutex
	sessionSecret string
}

// NewClient creates a platform client. A session secret persisted by a
// previous run is loaded if present.
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	c.loadPersistedSession()
	return c, nil
}

// HasSessionHint reports whether a session secret is present, either loaded
// into memory or left behind by a previous run. A hint does not guarantee the
// session is still valid remotely.
func (c *Client) HasSessionHint() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionSecret != ""
}

// errorEnvelope is the platform's error response body.
type errorEnvelope struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

// doRequest performs an HTTP request against the platform API. Responses with
// an error status are mapped to domain errors; bodies are read with a size
// bound.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := strings.TrimRight(c.config.Endpoint, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("remote: failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("remote: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Project-ID", c.config.ProjectID)
	if c.config.APIKey != "" {
		req.Header.Set("X-API-Key", c.config.APIKey)
	}
	if secret := c.currentSecret(); secret != "" {
		req.Header.Set("X-Session-Token", secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, shared.NewDomainError("REMOTE_UNAVAILABLE", fmt.Sprintf("platform unreachable: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("remote: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.mapError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// mapError converts a platform error response into a domain error.
func (c *Client) mapError(status int, body []byte) error {
	var envelope errorEnvelope
	message := fmt.Sprintf("platform request failed with HTTP %d", status)
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		message = envelope.Message
	}

	switch status {
	case http.StatusUnauthorized:
		return shared.NewDomainError("UNAUTHORIZED", message)
	case http.StatusNotFound:
		return shared.NewDomainError("NOT_FOUND", message)
	case http.StatusBadRequest:
		return shared.NewDomainError("INVALID_INPUT", message)
	case http.StatusConflict:
		return shared.NewDomainError("ALREADY_EXISTS", message)
	default:
		return shared.NewDomainError("REMOTE_ERROR", message)
	}
}

func (c *Client) currentSecret() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionSecret
}

// loadPersistedSession restores the session secret written by a previous run.
func (c *Client) loadPersistedSession() {
	if c.config.SessionFile == "" {
		return
	}
	data, err := os.ReadFile(c.config.SessionFile)
	if err != nil {
		return
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return
	}
	c.mu.Lock()
	c.sessionSecret = secret
	c.mu.Unlock()
}

// storeSession keeps the secret in memory and mirrors it to the session file.
// A persistence failure is logged but does not fail the sign-in.
func (c *Client) storeSession(secret string) {
	c.mu.Lock()
	c.sessionSecret = secret
	c.mu.Unlock()

	if c.config.SessionFile == "" {
		return
	}
	if err := os.WriteFile(c.config.SessionFile, []byte(secret), 0600); err != nil {
		c.logger.Warn("Failed to persist session secret", zap.Error(err))
	}
}

// clearSession drops the in-memory secret and removes the session file.
func (c *Client) clearSession() {
	c.mu.Lock()
	c.sessionSecret = ""
	c.mu.Unlock()

	if c.config.SessionFile == "" {
		return
	}
	if err := os.Remove(c.config.SessionFile); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("Failed to remove session file", zap.Error(err))
	}
}
