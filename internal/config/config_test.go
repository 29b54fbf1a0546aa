package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/dckiller51/trueachievements/internal/config"
)

func TestLoadDefaultConfigUsesEnvTokenAndExpandsPaths(t *testing.T) {
	t.Setenv("TRUEACHIEVEMENTS_TOKEN", "test-token")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, ".config", "tastats", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(configPath, []byte("[gamer]\ngamertag = \"Tester\"\ngamer_id = \"12345\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file at default path to be found")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}

	wantData := filepath.Join(tempHome, ".local", "share", "tastats")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.GamesFile != filepath.Join(wantData, "games.csv") {
		t.Fatalf("unexpected games file: %q", cfg.Paths.GamesFile)
	}
	if cfg.Paths.LogDir != filepath.Join(wantData, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Gamer.Token != "test-token" {
		t.Fatalf("expected token from env, got %q", cfg.Gamer.Token)
	}
	if cfg.Refresh.IntervalMinutes != 30 {
		t.Fatalf("unexpected refresh interval: %d", cfg.Refresh.IntervalMinutes)
	}
	if cfg.Refresh.StrictFailures {
		t.Fatal("expected strict failures disabled by default")
	}
	if cfg.NowPlaying.Entity != "" {
		t.Fatalf("expected now-playing entity unset by default, got %q", cfg.NowPlaying.Entity)
	}
	if cfg.Daemon.APIBind != "127.0.0.1:7787" {
		t.Fatalf("unexpected api bind: %q", cfg.Daemon.APIBind)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "tastats.toml")

	type payload struct {
		Gamer struct {
			Gamertag string `toml:"gamertag"`
			GamerID  string `toml:"gamer_id"`
			Token    string `toml:"token"`
		} `toml:"gamer"`
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Refresh struct {
			IntervalMinutes int  `toml:"interval_minutes"`
			StrictFailures  bool `toml:"strict_failures"`
		} `toml:"refresh"`
		Stats struct {
			ExcludedApps string `toml:"excluded_apps"`
		} `toml:"stats"`
	}
	custom := payload{}
	custom.Gamer.Gamertag = "Tester"
	custom.Gamer.GamerID = "98765"
	custom.Gamer.Token = "abc123"
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Refresh.IntervalMinutes = 15
	custom.Refresh.StrictFailures = true
	custom.Stats.ExcludedApps = "Netflix, Spotify"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Gamer.Token != "abc123" {
		t.Fatalf("expected token from file, got %q", cfg.Gamer.Token)
	}
	if cfg.Refresh.IntervalMinutes != 15 {
		t.Fatalf("expected interval 15, got %d", cfg.Refresh.IntervalMinutes)
	}
	if !cfg.Refresh.StrictFailures {
		t.Fatal("expected strict failures from file")
	}
	if cfg.Paths.GamesFile != filepath.Join(tempDir, "data", "games.csv") {
		t.Fatalf("expected games file derived from data dir, got %q", cfg.Paths.GamesFile)
	}
	got := cfg.Exclusions()
	if len(got) != 2 || got[0] != "netflix" || got[1] != "spotify" {
		t.Fatalf("unexpected exclusions: %v", got)
	}
}

func TestEnvVarFillsMissingSecrets(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "tastats.toml")
	body := `
[gamer]
gamertag = "Tester"
gamer_id = "12345"

[nowplaying]
entity = "sensor.xbox_currently_playing"

[homeassistant]
url = "http://ha.local:8123/"
`
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("TRUEACHIEVEMENTS_TOKEN", "env-ta")
	t.Setenv("HOMEASSISTANT_TOKEN", "env-ha")
	t.Setenv("NTFY_TOPIC", "https://ntfy.sh/env-topic")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Gamer.Token != "env-ta" {
		t.Errorf("expected TA token from env, got %q", cfg.Gamer.Token)
	}
	if cfg.HomeAssistant.Token != "env-ha" {
		t.Errorf("expected HA token from env, got %q", cfg.HomeAssistant.Token)
	}
	if cfg.HomeAssistant.URL != "http://ha.local:8123" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.HomeAssistant.URL)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/env-topic" {
		t.Errorf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[gamer]") {
		t.Fatalf("sample config missing gamer section: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Gamer.Gamertag = "Tester"
		cfg.Gamer.GamerID = "12345"
		cfg.Gamer.Token = "tok"
		return cfg
	}

	cfg := base()
	cfg.Gamer.GamerID = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing gamer id")
	}

	cfg = base()
	cfg.Gamer.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing token")
	}

	cfg = base()
	cfg.Refresh.IntervalMinutes = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero refresh interval")
	}

	cfg = base()
	cfg.NowPlaying.Entity = "sensor.xbox_currently_playing"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when now-playing set without Home Assistant config")
	}

	cfg = base()
	cfg.NowPlaying.Entity = "sensor.xbox_currently_playing"
	cfg.NowPlaying.PollSeconds = 2
	cfg.HomeAssistant.URL = "http://ha.local:8123"
	cfg.HomeAssistant.Token = "ha"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for poll interval below floor")
	}
}
