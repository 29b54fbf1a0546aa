package preflight

import (
	"context"

	"github.com/dckiller51/trueachievements/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled. The
// TrueAchievements export endpoint is deliberately never probed here:
// a failed probe would burn the session cookie's goodwill for nothing,
// and the refresh cycle surfaces auth problems on its own.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Data directory (always checked)
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))

	// Log directory (when distinct from the data directory)
	if cfg.Paths.LogDir != "" && cfg.Paths.LogDir != cfg.Paths.DataDir {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	// TrueAchievements credentials (presence only)
	results = append(results, CheckCredentials(cfg))

	// Home Assistant (when a now-playing entity is configured)
	if cfg.NowPlaying.Entity != "" {
		results = append(results, CheckHomeAssistant(ctx, cfg.HomeAssistant.URL, cfg.HomeAssistant.Token))
	}

	return results
}
