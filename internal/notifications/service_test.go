package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dckiller51/trueachievements/internal/config"
	"github.com/dckiller51/trueachievements/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventAuthFailure, nil); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectBody     string
		expectTags     string
		expectPriority string
	}{
		{
			name:           "auth failure",
			event:          notifications.EventAuthFailure,
			payload:        notifications.Payload{"detail": "download returned a login page"},
			expectTitle:    "TrueAchievements - Access Error",
			expectBody:     "Session expired: download returned a login page.\nUpdate gamer.token and run 'tastats auth clear'.",
			expectTags:     "tastats,auth,alert",
			expectPriority: "high",
		},
		{
			name:        "unmatched game",
			event:       notifications.EventUnmatchedGame,
			payload:     notifications.Payload{"game": "Halo: MCC"},
			expectTitle: "TrueAchievements - Unknown Game",
			expectBody:  "Now playing \"Halo: MCC\" but no export row matches.\nAdd a [nowplaying.renames] entry if the export names it differently.",
			expectTags:  "tastats,mapping",
		},
		{
			name:           "refresh failed",
			event:          notifications.EventRefreshFailed,
			payload:        notifications.Payload{"error": "parse export: boom"},
			expectTitle:    "TrueAchievements - Refresh Failed",
			expectBody:     "Refresh cycle failed: parse export: boom",
			expectTags:     "tastats,error",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.DedupWindowSeconds = 0

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectBody {
				t.Fatalf("expected body %q, got %q", tc.expectBody, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceDeduplicatesByStableID(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.DedupWindowSeconds = 600

	svc := notifications.NewService(&cfg)
	for range 3 {
		if err := svc.Publish(context.Background(), notifications.EventAuthFailure, nil); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one delivery inside dedup window, got %d", got)
	}

	// Different unmatched games have distinct identifiers.
	if err := svc.Publish(context.Background(), notifications.EventUnmatchedGame, notifications.Payload{"game": "Foo"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := svc.Publish(context.Background(), notifications.EventUnmatchedGame, notifications.Payload{"game": "Bar"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected distinct game ids to deliver separately, got %d calls", got)
	}

	// The test event always goes through.
	if err := svc.Test(context.Background()); err != nil {
		t.Fatalf("test: %v", err)
	}
	if err := svc.Test(context.Background()); err != nil {
		t.Fatalf("test: %v", err)
	}
	if got := calls.Load(); got != 5 {
		t.Fatalf("expected test events to bypass dedup, got %d calls", got)
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.DedupWindowSeconds = 0

	svc := notifications.NewService(&cfg)
	err := svc.Publish(context.Background(), notifications.EventRefreshFailed, notifications.Payload{"error": "boom"})
	if err == nil {
		t.Fatal("expected error from non-2xx response")
	}
}
