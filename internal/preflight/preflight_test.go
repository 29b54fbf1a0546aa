package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dckiller51/trueachievements/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCredentials(t *testing.T) {
	cfg := config.Default()
	result := CheckCredentials(&cfg)
	if result.Passed {
		t.Fatal("expected failure for empty credentials")
	}

	cfg.Gamer.Gamertag = "Tester"
	cfg.Gamer.GamerID = "12345"
	result = CheckCredentials(&cfg)
	if result.Passed {
		t.Fatalf("expected failure while token missing, got: %s", result.Detail)
	}

	cfg.Gamer.Token = "tok"
	result = CheckCredentials(&cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckHomeAssistant_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckHomeAssistant(context.Background(), srv.URL, "good-token")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckHomeAssistant_BadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckHomeAssistant(context.Background(), srv.URL, "bad-token")
	if result.Passed {
		t.Fatal("expected failure for bad token")
	}
}

func TestCheckHomeAssistant_MissingURL(t *testing.T) {
	result := CheckHomeAssistant(context.Background(), "", "token")
	if result.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Gamer.Gamertag = "Tester"
	cfg.Gamer.GamerID = "12345"
	cfg.Gamer.Token = "tok"
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = cfg.Paths.DataDir

	results := RunAll(context.Background(), &cfg)
	// Data directory + credentials, no Home Assistant check.
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_IncludesHomeAssistantWhenEntityConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = cfg.Paths.DataDir
	cfg.NowPlaying.Entity = "sensor.xbox_currently_playing"
	cfg.HomeAssistant.URL = srv.URL
	cfg.HomeAssistant.Token = "test"

	results := RunAll(context.Background(), &cfg)
	found := false
	for _, r := range results {
		if r.Name == "Home Assistant" {
			found = true
			if !r.Passed {
				t.Errorf("Home Assistant check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected Home Assistant check in results")
	}
}
