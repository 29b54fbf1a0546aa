package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/dckiller51/trueachievements/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Gamer.Gamertag = "Tester"
	cfgVal.Gamer.GamerID = "12345"
	cfgVal.Gamer.Token = "test-token"
	cfgVal.Paths.DataDir = base
	cfgVal.Paths.GamesFile = filepath.Join(base, "games.csv")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Daemon.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithEntity configures the now-playing entity and Home Assistant endpoint.
func WithEntity(entity, haURL, haToken string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.NowPlaying.Entity = entity
		b.cfg.HomeAssistant.URL = haURL
		b.cfg.HomeAssistant.Token = haToken
	}
}

// WithNtfyTopic enables push notifications on the test config.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithExcludedApps sets the export row exclusion list.
func WithExcludedApps(list string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Stats.ExcludedApps = list
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.DataDir
}
