package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dckiller51/trueachievements/internal/textutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Gamer identifies the tracked TrueAchievements account.
type Gamer struct {
	Gamertag string `toml:"gamertag"`
	GamerID  string `toml:"gamer_id"`
	// Token is the TrueGamingIdentity session cookie value. Fallback:
	// TRUEACHIEVEMENTS_TOKEN environment variable.
	Token string `toml:"token"`
}

// Paths contains directory and file location configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	GamesFile string `toml:"games_file"` // Default: <data_dir>/games.csv
	LogDir    string `toml:"log_dir"`    // Default: <data_dir>/logs
}

// Refresh contains refresh-cycle timing and failure policy.
type Refresh struct {
	IntervalMinutes int `toml:"interval_minutes"`
	// StrictFailures makes a refresh return the auth error to its caller
	// instead of degrading to last-known-good statistics. State transitions
	// and notifications are identical in both modes.
	StrictFailures bool `toml:"strict_failures"`
}

// Stats contains export parsing configuration.
type Stats struct {
	// ExcludedApps is a comma-separated list of name substrings to skip
	// (streaming apps and utilities the export lists alongside games).
	ExcludedApps string `toml:"excluded_apps"`
}

// NowPlaying contains the external current-game source configuration.
type NowPlaying struct {
	Entity      string `toml:"entity"`
	PollSeconds int    `toml:"poll_seconds"`
	// Renames maps the now-playing source's game names to the export file's
	// naming of the same titles.
	Renames map[string]string `toml:"renames"`
}

// HomeAssistant contains the REST API connection for the now-playing source.
type HomeAssistant struct {
	URL string `toml:"url"`
	// Token is a long-lived access token. Fallbacks: HOMEASSISTANT_TOKEN,
	// HASS_TOKEN environment variables.
	Token string `toml:"token"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic          string `toml:"ntfy_topic"`
	RequestTimeout     int    `toml:"request_timeout"`
	DedupWindowSeconds int    `toml:"dedup_window_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Daemon contains the local HTTP API configuration.
type Daemon struct {
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Config encapsulates all configuration values for the daemon and CLI.
//
// Configuration sections by subsystem:
//   - Gamer: TrueAchievements account identity and session token
//   - Paths: data directory, cached export location, log directory
//   - Refresh: cycle interval and failure policy
//   - Stats: export row exclusions
//   - NowPlaying: current-game entity, poll interval, rename table
//   - HomeAssistant: REST API connection for the now-playing source
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
//   - Daemon: local HTTP API bind and token
type Config struct {
	Gamer         Gamer         `toml:"gamer"`
	Paths         Paths         `toml:"paths"`
	Refresh       Refresh       `toml:"refresh"`
	Stats         Stats         `toml:"stats"`
	NowPlaying    NowPlaying    `toml:"nowplaying"`
	HomeAssistant HomeAssistant `toml:"homeassistant"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Daemon        Daemon        `toml:"daemon"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tastats/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tastats.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir}
	if games := strings.TrimSpace(c.Paths.GamesFile); games != "" {
		dirs = append(dirs, filepath.Dir(games))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Interval returns the refresh cycle interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Refresh.IntervalMinutes) * time.Minute
}

// PollInterval returns the now-playing poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.NowPlaying.PollSeconds) * time.Second
}

// Exclusions returns the excluded-app substrings as lowercased trimmed terms.
func (c *Config) Exclusions() []string {
	return textutil.SplitList(c.Stats.ExcludedApps)
}

// ProfileReferer returns the gamer profile URL sent as the download Referer.
func (c *Config) ProfileReferer() string {
	return "https://www.trueachievements.com/gamer/" + strings.TrimSpace(c.Gamer.Gamertag)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
