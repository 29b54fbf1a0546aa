package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dckiller51/trueachievements/internal/config"
	"github.com/dckiller51/trueachievements/internal/textutil"
)

const userAgent = "tastats/0.1.0"

// Event identifies a notification trigger.
type Event string

const (
	// EventAuthFailure fires when the TrueAchievements session token is
	// rejected or a download returns a login page instead of an export.
	EventAuthFailure Event = "auth_failure"
	// EventUnmatchedGame fires once per game name the now-playing source
	// reports that never matches an export row.
	EventUnmatchedGame Event = "unmatched_game"
	// EventRefreshFailed fires when a refresh cycle errors outside the
	// auth path.
	EventRefreshFailed Event = "refresh_failed"
	// EventTest verifies the delivery pipeline end to end.
	EventTest Event = "test"
)

// Payload carries event-specific values consumed by the message templates.
type Payload map[string]string

// Service defines the notification surface exposed to the refresh pipeline.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
	Test(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		dedupWindow: time.Duration(cfg.Notifications.DedupWindowSeconds) * time.Second,
		lastSent:    make(map[string]time.Time),
		now:         time.Now,
	}
}

type message struct {
	id       string
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	dedupWindow time.Duration
	now         func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// Publish renders the event into an ntfy message and delivers it, suppressing
// repeats of the same stable identifier inside the dedup window. EventTest
// always goes through.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	if event != EventTest && n.suppressed(msg.id) {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) Test(ctx context.Context) error {
	return n.Publish(ctx, EventTest, nil)
}

func render(event Event, payload Payload) (message, bool) {
	get := func(key string) string { return strings.TrimSpace(payload[key]) }

	switch event {
	case EventAuthFailure:
		detail := get("detail")
		if detail == "" {
			detail = "the download endpoint rejected the session token"
		}
		return message{
			id:       "ta-access-error",
			title:    "TrueAchievements - Access Error",
			body:     fmt.Sprintf("Session expired: %s.\nUpdate gamer.token and run 'tastats auth clear'.", detail),
			tags:     []string{"tastats", "auth", "alert"},
			priority: "high",
		}, true
	case EventUnmatchedGame:
		game := get("game")
		if game == "" {
			game = "unknown"
		}
		return message{
			id:    "ta-fix-" + textutil.SanitizeToken(game),
			title: "TrueAchievements - Unknown Game",
			body:  fmt.Sprintf("Now playing %q but no export row matches.\nAdd a [nowplaying.renames] entry if the export names it differently.", game),
			tags:  []string{"tastats", "mapping"},
		}, true
	case EventRefreshFailed:
		detail := get("error")
		if detail == "" {
			detail = "unknown"
		}
		return message{
			id:       "ta-refresh-error",
			title:    "TrueAchievements - Refresh Failed",
			body:     fmt.Sprintf("Refresh cycle failed: %s", detail),
			tags:     []string{"tastats", "error"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			id:       "ta-test",
			title:    "TrueAchievements - Test",
			body:     "Notification system test",
			tags:     []string{"tastats", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) suppressed(id string) bool {
	if n.dedupWindow <= 0 {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	if last, ok := n.lastSent[id]; ok && now.Sub(last) < n.dedupWindow {
		return true
	}
	n.lastSent[id] = now
	return false
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
func (noopService) Test(context.Context) error                    { return nil }
