package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGamer()
	c.normalizeNowPlaying()
	c.normalizeHomeAssistant()
	c.normalizeNotifications()
	c.normalizeLogging()
	c.normalizeDaemon()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.GamesFile) == "" {
		c.Paths.GamesFile = filepath.Join(c.Paths.DataDir, "games.csv")
	} else if c.Paths.GamesFile, err = expandPath(c.Paths.GamesFile); err != nil {
		return fmt.Errorf("paths.games_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	} else if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGamer() {
	c.Gamer.Gamertag = strings.TrimSpace(c.Gamer.Gamertag)
	c.Gamer.GamerID = strings.TrimSpace(c.Gamer.GamerID)
	c.Gamer.Token = strings.TrimSpace(c.Gamer.Token)
	if c.Gamer.Token == "" {
		if value, ok := os.LookupEnv("TRUEACHIEVEMENTS_TOKEN"); ok {
			c.Gamer.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNowPlaying() {
	c.NowPlaying.Entity = strings.TrimSpace(c.NowPlaying.Entity)
	if c.NowPlaying.PollSeconds <= 0 {
		c.NowPlaying.PollSeconds = defaultPollSeconds
	}
	if len(c.NowPlaying.Renames) > 0 {
		renames := make(map[string]string, len(c.NowPlaying.Renames))
		for from, to := range c.NowPlaying.Renames {
			from = strings.TrimSpace(from)
			to = strings.TrimSpace(to)
			if from == "" || to == "" {
				continue
			}
			renames[from] = to
		}
		c.NowPlaying.Renames = renames
	}
}

func (c *Config) normalizeHomeAssistant() {
	c.HomeAssistant.URL = strings.TrimRight(strings.TrimSpace(c.HomeAssistant.URL), "/")
	c.HomeAssistant.Token = strings.TrimSpace(c.HomeAssistant.Token)
	if c.HomeAssistant.Token == "" {
		if value, ok := os.LookupEnv("HOMEASSISTANT_TOKEN"); ok {
			c.HomeAssistant.Token = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HASS_TOKEN"); ok {
			c.HomeAssistant.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	if c.Notifications.DedupWindowSeconds < 0 {
		c.Notifications.DedupWindowSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeDaemon() {
	c.Daemon.APIBind = strings.TrimSpace(c.Daemon.APIBind)
	if c.Daemon.APIBind == "" {
		c.Daemon.APIBind = defaultAPIBind
	}
	c.Daemon.APIToken = strings.TrimSpace(c.Daemon.APIToken)
}
