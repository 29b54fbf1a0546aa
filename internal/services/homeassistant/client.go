package homeassistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dckiller51/trueachievements/internal/services"
)

const defaultTimeout = 10 * time.Second

// EntityState is one entity's state as reported by the REST API.
type EntityState struct {
	EntityID   string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// AttributeString returns the named attribute when it is a non-empty string.
func (s *EntityState) AttributeString(key string) string {
	if s == nil {
		return ""
	}
	if value, ok := s.Attributes[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// Client provides access to the Home Assistant REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Home Assistant client.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("home assistant url required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("home assistant token required")
	}
	client := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// EntityState fetches the current state of one entity. A 404 is reported as
// ErrNotFound so callers can distinguish a deleted entity from an outage.
func (c *Client) EntityState(ctx context.Context, entityID string) (*EntityState, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return nil, errors.New("entity id must not be empty")
	}

	endpoint := c.baseURL + "/api/states/" + url.PathEscape(entityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "homeassistant", "entity state", entityID, nil)
	default:
		return nil, fmt.Errorf("entity state returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload EntityState
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode entity state: %w", err)
	}
	return &payload, nil
}

// Ping verifies the API is reachable and the token accepted.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return services.Wrap(services.ErrAuthDenied, "homeassistant", "ping",
			fmt.Sprintf("api returned %d", resp.StatusCode), nil)
	default:
		return fmt.Errorf("api returned %d", resp.StatusCode)
	}
}
