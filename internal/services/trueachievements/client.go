package trueachievements

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dckiller51/trueachievements/internal/services"
)

const (
	defaultBaseURL = "https://www.trueachievements.com"
	defaultTimeout = 20 * time.Second
	// The endpoint expects a browser-shaped request; the export is only
	// reachable through the session cookie of a logged-in account.
	browserUserAgent = "Mozilla/5.0"

	// A genuine export is far larger than any login redirect page and always
	// carries the header row.
	minExportSize = 1000
	exportMarker  = "Game name"
)

// Credentials identifies the account whose export is downloaded.
type Credentials struct {
	GamerID  string
	Gamertag string
	Token    string
}

// HTTPDoer is the HTTP seam used by tests to stub transport behaviour.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client downloads game-collection exports from TrueAchievements.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the production endpoint, primarily for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TrueAchievements export client with a bounded request timeout.
func New(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// DownloadExport fetches the full game-collection CSV for the account. The
// returned bytes are unvalidated; callers decide what a usable export looks
// like via ValidExport. Status 401/403 is reported as ErrAuthDenied so the
// caller can engage its sticky auth-failure handling.
func (c *Client) DownloadExport(ctx context.Context, creds Credentials) ([]byte, error) {
	if strings.TrimSpace(creds.GamerID) == "" {
		return nil, errors.New("gamer id must not be empty")
	}

	endpoint, err := url.Parse(c.baseURL + "/download.aspx")
	if err != nil {
		return nil, fmt.Errorf("parse export url: %w", err)
	}
	params := url.Values{}
	params.Set("type", "gamecollection")
	params.Set("id", creds.GamerID)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Cookie", "TrueGamingIdentity="+creds.Token)
	req.Header.Set("Referer", c.baseURL+"/gamer/"+creds.Gamertag)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, services.Wrap(services.ErrAuthDenied, "trueachievements", "download",
			fmt.Sprintf("export returned %d (latency=%v)", resp.StatusCode, latency), nil)
	default:
		return nil, fmt.Errorf("export returned %d (latency=%v)", resp.StatusCode, latency)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export body: %w", err)
	}
	return body, nil
}

// ValidExport reports whether body is recognizably a game-collection CSV
// rather than a login redirect served with status 200.
func ValidExport(body []byte) bool {
	return len(body) > minExportSize && bytes.Contains(body, []byte(exportMarker))
}
