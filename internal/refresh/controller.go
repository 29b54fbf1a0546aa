package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dckiller51/trueachievements/internal/config"
	"github.com/dckiller51/trueachievements/internal/fileutil"
	"github.com/dckiller51/trueachievements/internal/logging"
	"github.com/dckiller51/trueachievements/internal/notifications"
	"github.com/dckiller51/trueachievements/internal/nowplaying"
	"github.com/dckiller51/trueachievements/internal/services"
	"github.com/dckiller51/trueachievements/internal/services/trueachievements"
	"github.com/dckiller51/trueachievements/internal/stats"
)

// FreshnessWindow is the minimum interval between export downloads. It is a
// rate-limit courtesy toward the upstream service and is never configurable.
const FreshnessWindow = 24 * time.Hour

// OfflineStatus is the sentinel current-game name when nothing is playing.
const OfflineStatus = "offline_status"

// Unknown is the last-update stamp before any export has been observed.
const unknownUpdate = "Unknown"

const updateStampLayout = "2006-01-02 15:04"

// Snapshot is the merged result of one refresh cycle.
type Snapshot struct {
	Stats           stats.Snapshot
	CurrentGameName string
	CurrentGame     *stats.CurrentGame
	LastUpdate      string
	AuthFailed      bool
}

// ConfigProvider supplies live configuration, re-read at the start of every
// cycle so settings changes apply without a restart.
type ConfigProvider func() (*config.Config, error)

// Downloader fetches the export from TrueAchievements.
type Downloader interface {
	DownloadExport(ctx context.Context, creds trueachievements.Credentials) ([]byte, error)
}

// NowPlayingSource resolves the externally reported current game. A nil
// source disables current-game correlation.
type NowPlayingSource interface {
	Current(ctx context.Context, entityID string, renames map[string]string) (*nowplaying.Playing, error)
}

// Controller runs the refresh state machine. Its sticky auth-failure flag and
// latest snapshot live on the instance so one controller serves one gamer.
type Controller struct {
	provider   ConfigProvider
	downloader Downloader
	nowPlaying NowPlayingSource
	engine     *stats.Engine
	notifier   notifications.Service
	logger     *slog.Logger
	clock      func() time.Time

	// refreshMu serializes whole cycles; the cache file is the shared
	// resource and a concurrent download could truncate it mid-parse.
	refreshMu sync.Mutex

	stateMu     sync.Mutex
	authFailed  bool
	lastValid   string
	lastSnap    *Snapshot
	subscribers []func(Snapshot)

	kick chan struct{}

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewController wires the refresh pipeline together.
func NewController(logger *slog.Logger, provider ConfigProvider, downloader Downloader, nowplayingSource NowPlayingSource, engine *stats.Engine, notifier notifications.Service) *Controller {
	return &Controller{
		provider:   provider,
		downloader: downloader,
		nowPlaying: nowplayingSource,
		engine:     engine,
		notifier:   notifier,
		logger:     logging.NewComponentLogger(logger, "refresh"),
		clock:      time.Now,
		kick:       make(chan struct{}, 1),
	}
}

// Refresh runs one full cycle: reload config, apply the freshness policy,
// download when permitted, then parse whatever is on disk and merge the
// now-playing correlation. The returned error is nil unless configuration is
// unusable or strict failure mode surfaces an auth error; every other failure
// degrades to last-known-good data.
func (c *Controller) Refresh(ctx context.Context) (Snapshot, error) {
	cfg, err := c.provider()
	if err != nil {
		return Snapshot{}, services.Wrap(services.ErrConfiguration, "refresh", "reload config", "", err)
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, c.logger)

	authErr := c.maybeDownload(ctx, logger, cfg)

	playing := c.resolvePlaying(ctx, logger, cfg)
	lookup := ""
	if playing != nil {
		lookup = playing.Lookup
	}

	// Parse unconditionally: stale or fresh, the cache file is the sole
	// source of truth for statistics.
	aggregate, detail := c.engine.ComputeSnapshot(ctx, cfg.Paths.GamesFile, lookup, cfg.Exclusions())

	snap := c.merge(aggregate, detail, playing)
	c.publish(snap)

	logger.Info("refresh cycle complete",
		logging.Int("games", snap.Stats.TotalGames),
		logging.Int("achievements", snap.Stats.TotalAchievements),
		logging.String(logging.FieldGame, snap.CurrentGameName),
		logging.Bool("auth_failed", snap.AuthFailed),
		logging.String(logging.FieldEventType, "refresh_complete"),
	)

	if authErr != nil && cfg.Refresh.StrictFailures {
		return snap, authErr
	}
	return snap, nil
}

// maybeDownload applies the freshness policy and, when a download is
// warranted, performs it and transitions the auth state. The returned error
// is non-nil only for auth failures; transient transport errors are logged
// and absorbed.
func (c *Controller) maybeDownload(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	gamesFile := cfg.Paths.GamesFile

	if mtime, exists := fileutil.ModTime(gamesFile); exists {
		c.setLastValid(mtime.Local().Format(updateStampLayout))
		if c.clock().Sub(mtime) < FreshnessWindow {
			logger.Debug("cached export is fresh, skipping download",
				logging.String("path", gamesFile),
				logging.Duration("age", c.clock().Sub(mtime)),
			)
			return nil
		}
	}

	if c.authFailedLocked() {
		logger.Debug("auth failure is sticky, skipping download until cleared")
		return nil
	}
	if c.downloader == nil {
		return nil
	}

	logger.Info("downloading export",
		logging.String(logging.FieldGamertag, cfg.Gamer.Gamertag),
		logging.String(logging.FieldEventType, "export_download"),
	)
	body, err := c.downloader.DownloadExport(ctx, trueachievements.Credentials{
		GamerID:  cfg.Gamer.GamerID,
		Gamertag: cfg.Gamer.Gamertag,
		Token:    cfg.Gamer.Token,
	})
	switch {
	case err == nil && trueachievements.ValidExport(body):
		if writeErr := fileutil.WriteFileAtomic(gamesFile, body, 0o644); writeErr != nil {
			logging.ErrorWithContext(logger, "persisting export failed", "export_persist_failed",
				logging.Error(writeErr),
				logging.String("path", gamesFile),
				logging.String(logging.FieldImpact, "serving previously cached statistics"),
			)
			return nil
		}
		c.setAuthFailed(false)
		c.setLastValid(c.clock().Format(updateStampLayout))
		logger.Info("export updated",
			logging.Int("bytes", len(body)),
			logging.String(logging.FieldEventType, "export_updated"),
		)
		return nil

	case err == nil:
		// Status 200 with a body that is not an export: the session cookie
		// expired and the endpoint served its login page.
		return c.failAuth(ctx, logger, gamesFile, "download returned a login page instead of an export", false)

	case errors.Is(err, services.ErrAuthDenied):
		// Touch the cache so the freshness window restarts and broken
		// credentials do not hammer the endpoint every cycle.
		return c.failAuth(ctx, logger, gamesFile, err.Error(), true)

	default:
		logger.Warn("export download failed; retrying next cycle",
			logging.Error(err),
			logging.String(logging.FieldEventType, "export_download_failed"),
			logging.String(logging.FieldErrorHint, "transient network failure, no state changed"),
		)
		return nil
	}
}

func (c *Controller) failAuth(ctx context.Context, logger *slog.Logger, gamesFile, detail string, touch bool) error {
	c.setAuthFailed(true)
	logging.ErrorWithContext(logger, "authentication failed; downloads suspended", "auth_failed",
		logging.String("detail", detail),
		logging.String(logging.FieldErrorHint, "refresh gamer.token and run 'tastats auth clear'"),
		logging.String(logging.FieldImpact, "serving last-known-good statistics"),
	)
	if touch {
		if _, exists := fileutil.ModTime(gamesFile); exists {
			if err := fileutil.Touch(gamesFile); err != nil {
				logger.Warn("touching cached export failed", logging.Error(err))
			}
		}
	}
	if c.notifier != nil {
		if err := c.notifier.Publish(ctx, notifications.EventAuthFailure, notifications.Payload{"detail": detail}); err != nil {
			logger.Warn("auth-failure notification failed", logging.Error(err))
		}
	}
	return services.Wrap(services.ErrAuthDenied, "refresh", "download", detail, nil)
}

func (c *Controller) resolvePlaying(ctx context.Context, logger *slog.Logger, cfg *config.Config) *nowplaying.Playing {
	if c.nowPlaying == nil || cfg.NowPlaying.Entity == "" {
		return nil
	}
	playing, err := c.nowPlaying.Current(ctx, cfg.NowPlaying.Entity, cfg.NowPlaying.Renames)
	if err != nil {
		logger.Warn("now-playing resolution failed; statistics proceed without it",
			logging.Error(err),
			logging.String(logging.FieldEntity, cfg.NowPlaying.Entity),
			logging.String(logging.FieldEventType, "nowplaying_failed"),
		)
		return nil
	}
	return playing
}

func (c *Controller) merge(aggregate stats.Snapshot, detail *stats.CurrentGame, playing *nowplaying.Playing) Snapshot {
	snap := Snapshot{
		Stats:           aggregate,
		CurrentGameName: OfflineStatus,
		LastUpdate:      c.lastValidLocked(),
		AuthFailed:      c.authFailedLocked(),
	}
	if playing != nil {
		snap.CurrentGameName = playing.Name
	}
	if detail != nil && playing != nil {
		detail.Name = playing.Name
		detail.Image = playing.Image
		snap.CurrentGame = detail
	}
	return snap
}

func (c *Controller) publish(snap Snapshot) {
	c.stateMu.Lock()
	copied := snap
	c.lastSnap = &copied
	subscribers := make([]func(Snapshot), len(c.subscribers))
	copy(subscribers, c.subscribers)
	c.stateMu.Unlock()

	for _, fn := range subscribers {
		fn(snap)
	}
}

// Subscribe registers fn to receive every completed refresh snapshot. The
// callback runs on the refreshing goroutine and must not block.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// LastSnapshot returns the most recent completed snapshot, if any.
func (c *Controller) LastSnapshot() (Snapshot, bool) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.lastSnap == nil {
		return Snapshot{}, false
	}
	return *c.lastSnap, true
}

// AuthFailed reports the sticky auth-failure flag.
func (c *Controller) AuthFailed() bool {
	return c.authFailedLocked()
}

// ClearAuthFailure resets the sticky flag so the next stale cycle may
// download again. The freshness window still applies.
func (c *Controller) ClearAuthFailure() {
	c.setAuthFailed(false)
	c.logger.Info("auth-failure flag cleared",
		logging.String(logging.FieldEventType, "auth_cleared"),
	)
}

// LastValidUpdate returns the human-readable stamp of the last cycle that
// observed a valid export, "Unknown" before the first.
func (c *Controller) LastValidUpdate() string {
	return c.lastValidLocked()
}

func (c *Controller) authFailedLocked() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.authFailed
}

func (c *Controller) setAuthFailed(value bool) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.authFailed = value
}

func (c *Controller) lastValidLocked() string {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.lastValid == "" {
		return unknownUpdate
	}
	return c.lastValid
}

func (c *Controller) setLastValid(value string) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.lastValid = value
}
