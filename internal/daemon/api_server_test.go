package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dckiller51/trueachievements/internal/api"
	"github.com/dckiller51/trueachievements/internal/config"
	"github.com/dckiller51/trueachievements/internal/logging"
	"github.com/dckiller51/trueachievements/internal/notifications"
	"github.com/dckiller51/trueachievements/internal/nowplaying"
	"github.com/dckiller51/trueachievements/internal/refresh"
	"github.com/dckiller51/trueachievements/internal/services/trueachievements"
	"github.com/dckiller51/trueachievements/internal/stats"
	"github.com/dckiller51/trueachievements/internal/testsupport"
)

type quietDownloader struct{}

func (quietDownloader) DownloadExport(context.Context, trueachievements.Credentials) ([]byte, error) {
	return nil, context.DeadlineExceeded
}

type quietPlaying struct{}

func (quietPlaying) Current(context.Context, string, map[string]string) (*nowplaying.Playing, error) {
	return nil, nil
}

func newTestServer(t *testing.T) *apiServer {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	testsupport.WriteExport(t, cfg.Paths.GamesFile, testsupport.ExportCSV(t), time.Hour)

	logger := logging.NewNop()
	notifier := notifications.NewService(cfg)
	engine := stats.NewEngine(logger, notifier)
	controller := refresh.NewController(
		logger,
		func() (*config.Config, error) { return cfg, nil },
		quietDownloader{},
		quietPlaying{},
		engine,
		notifier,
	)
	d, err := New(cfg, logger, controller, nil, notifier)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		t.Fatalf("newAPIServer: %v", err)
	}
	if srv == nil {
		t.Fatal("expected api server for configured bind")
	}
	return srv
}

func TestAPIServerHandleSnapshot(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	w := httptest.NewRecorder()
	srv.handleSnapshot(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalGames == 0 {
		t.Fatalf("expected parsed statistics: %+v", resp)
	}
	if resp.CurrentGameName != refresh.OfflineStatus {
		t.Fatalf("expected offline sentinel, got %q", resp.CurrentGameName)
	}
}

func TestAPIServerHandleStatus(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.DaemonStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Gamertag != "Tester" {
		t.Fatalf("unexpected gamertag: %q", resp.Gamertag)
	}
	if resp.Running {
		t.Fatal("daemon was never started")
	}
}

func TestAPIServerHandleRefreshRequiresPost(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/refresh", nil)
	w := httptest.NewRecorder()
	srv.handleRefresh(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	w = httptest.NewRecorder()
	srv.handleRefresh(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	var resp api.RefreshResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Requested {
		t.Fatal("expected refresh to be acknowledged")
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler := authMiddleware("secret", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", w.Code)
	}
}
