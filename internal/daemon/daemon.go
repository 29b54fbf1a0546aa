package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/dckiller51/trueachievements/internal/config"
	"github.com/dckiller51/trueachievements/internal/logging"
	"github.com/dckiller51/trueachievements/internal/notifications"
	"github.com/dckiller51/trueachievements/internal/nowplaying"
	"github.com/dckiller51/trueachievements/internal/refresh"
)

// Daemon coordinates the refresh controller and the now-playing watcher
// and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	controller *refresh.Controller
	watcher    *nowplaying.Watcher
	notifier   notifications.Service
	logPath    string

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Gamertag     string
	GamesFile    string
	LockFilePath string
	AuthFailed   bool
	LastUpdate   string
}

// New constructs a daemon with initialized dependencies. The watcher
// may be nil when no now-playing entity is configured.
func New(cfg *config.Config, logger *slog.Logger, controller *refresh.Controller, watcher *nowplaying.Watcher, notifier notifications.Service) (*Daemon, error) {
	if cfg == nil || logger == nil || controller == nil || notifier == nil {
		return nil, errors.New("daemon requires config, logger, controller, and notifier")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "tastatsd.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logger,
		controller: controller,
		watcher:    watcher,
		notifier:   notifier,
		logPath:    filepath.Join(cfg.Paths.LogDir, "tastats.log"),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the refresh loop and the
// now-playing watcher.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tastats daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.controller.Start(d.ctx, d.cfg.Interval()); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start refresh loop: %w", err)
	}
	if d.watcher != nil {
		if err := d.watcher.Start(d.ctx); err != nil {
			d.controller.Stop()
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return fmt.Errorf("start now-playing watcher: %w", err)
		}
	}

	if srv, srvErr := newAPIServer(d.cfg, d, d.logger); srvErr == nil && srv != nil {
		if startErr := srv.start(d.ctx); startErr != nil {
			d.logger.Warn("api server unavailable", logging.Error(startErr))
		} else {
			d.api = srv
		}
	}

	d.running.Store(true)
	d.logger.Info("tastats daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldGamertag, d.cfg.Gamer.Gamertag))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
		d.api = nil
	}
	if d.watcher != nil {
		d.watcher.Stop()
	}
	d.controller.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("tastats daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Snapshot returns the most recent refresh snapshot, running a cycle
// first when none has completed yet.
func (d *Daemon) Snapshot(ctx context.Context) (refresh.Snapshot, error) {
	if snap, ok := d.controller.LastSnapshot(); ok {
		return snap, nil
	}
	return d.controller.Refresh(ctx)
}

// RefreshNow asks the refresh loop to run a cycle as soon as possible.
// The request coalesces with any cycle already pending.
func (d *Daemon) RefreshNow() {
	d.controller.RequestRefresh()
}

// AuthFailed reports whether downloads are suspended after an
// authentication failure.
func (d *Daemon) AuthFailed() bool {
	return d.controller.AuthFailed()
}

// ClearAuthFailure re-enables downloads and kicks an immediate refresh
// so a fixed session token takes effect without waiting for the timer.
func (d *Daemon) ClearAuthFailure() {
	d.controller.ClearAuthFailure()
	d.controller.RequestRefresh()
	d.logger.Info("auth failure cleared, refresh requested")
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := d.notifier.Test(sendCtx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Config returns the configuration the daemon was built with.
func (d *Daemon) Config() *config.Config {
	return d.cfg
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Gamertag:     d.cfg.Gamer.Gamertag,
		GamesFile:    d.cfg.Paths.GamesFile,
		LockFilePath: d.lockPath,
		AuthFailed:   d.controller.AuthFailed(),
		LastUpdate:   d.controller.LastValidUpdate(),
	}
}
