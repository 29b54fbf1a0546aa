package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGamer(); err != nil {
		return err
	}
	if err := c.validateRefresh(); err != nil {
		return err
	}
	if err := c.validateNowPlaying(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGamer() error {
	if c.Gamer.GamerID == "" {
		return errors.New("gamer.gamer_id must be set")
	}
	if c.Gamer.Gamertag == "" {
		return errors.New("gamer.gamertag must be set")
	}
	if c.Gamer.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/tastats/config.toml"
		}
		return fmt.Errorf("gamer.token is required. Set TRUEACHIEVEMENTS_TOKEN env var or edit %s (create with 'tastats config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateRefresh() error {
	if c.Refresh.IntervalMinutes < 1 {
		return errors.New("refresh.interval_minutes must be >= 1")
	}
	return nil
}

func (c *Config) validateNowPlaying() error {
	if c.NowPlaying.Entity == "" {
		return nil
	}
	if c.NowPlaying.PollSeconds < 5 {
		return errors.New("nowplaying.poll_seconds must be >= 5")
	}
	if c.HomeAssistant.URL == "" {
		return errors.New("homeassistant.url must be set when nowplaying.entity is configured")
	}
	if c.HomeAssistant.Token == "" {
		return errors.New("homeassistant.token must be set when nowplaying.entity is configured (or set HOMEASSISTANT_TOKEN)")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if c.Notifications.DedupWindowSeconds < 0 {
		return errors.New("notifications.dedup_window_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}
