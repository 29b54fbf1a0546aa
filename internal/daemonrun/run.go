package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dckiller51/trueachievements/internal/config"
	"github.com/dckiller51/trueachievements/internal/daemon"
	"github.com/dckiller51/trueachievements/internal/ipc"
	"github.com/dckiller51/trueachievements/internal/logging"
	"github.com/dckiller51/trueachievements/internal/notifications"
	"github.com/dckiller51/trueachievements/internal/nowplaying"
	"github.com/dckiller51/trueachievements/internal/preflight"
	"github.com/dckiller51/trueachievements/internal/refresh"
	"github.com/dckiller51/trueachievements/internal/services/homeassistant"
	"github.com/dckiller51/trueachievements/internal/services/trueachievements"
	"github.com/dckiller51/trueachievements/internal/stats"
)

// Options configures daemon process runtime behavior.
type Options struct {
	ConfigPath  string
	SocketPath  string
	LogLevel    string
	Development bool
}

// Run starts the tastats daemon runtime loop. It reloads configuration
// from disk at the start of every refresh cycle, so edits to the config
// file take effect without a restart.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	// Secrets may live in a .env next to the working directory rather
	// than the config file. Absent file is fine.
	_ = godotenv.Load()

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("tastatsd-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update tastats.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "tastatsd-*.log", Exclude: []string{logPath}},
	)
	pidPath := filepath.Join(cfg.Paths.LogDir, "tastatsd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	for _, result := range preflight.RunAll(signalCtx, cfg) {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
	}

	notifier := notifications.NewService(cfg)
	engine := stats.NewEngine(logger, notifier)

	configPath := opts.ConfigPath
	provider := func() (*config.Config, error) {
		loaded, _, _, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return loaded, nil
	}

	var resolver *nowplaying.Resolver
	if cfg.NowPlaying.Entity != "" {
		haClient, haErr := homeassistant.New(cfg.HomeAssistant.URL, cfg.HomeAssistant.Token)
		if haErr != nil {
			return fmt.Errorf("home assistant client: %w", haErr)
		}
		resolver = nowplaying.NewResolver(logger, haClient)
	}

	controller := refresh.NewController(logger, provider,
		trueachievements.New(), resolver, engine, notifier)

	var watcher *nowplaying.Watcher
	if resolver != nil {
		current := nowPlayingCurrent(provider, resolver)
		watcher = nowplaying.NewWatcher(logger, current, controller.RequestRefresh, cfg.PollInterval())
	}

	d, err := daemon.New(cfg, logger, controller, watcher, notifier)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := opts.SocketPath
	if socketPath == "" {
		socketPath = filepath.Join(cfg.Paths.LogDir, "tastats.sock")
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and data directory access"),
			logging.String(logging.FieldImpact, "statistics refresh is not running"),
		)
	}

	<-signalCtx.Done()
	logger.Info("tastats daemon shutting down")
	return nil
}

// nowPlayingCurrent builds the watcher's poll function. Entity and renames
// go through the provider so config edits take effect on the next poll; only
// the Home Assistant connection itself is fixed at boot.
func nowPlayingCurrent(provider refresh.ConfigProvider, resolver *nowplaying.Resolver) nowplaying.CurrentFunc {
	return func(ctx context.Context) (*nowplaying.Playing, error) {
		liveCfg, err := provider()
		if err != nil {
			return nil, err
		}
		return resolver.Current(ctx, liveCfg.NowPlaying.Entity, liveCfg.NowPlaying.Renames)
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "tastats.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
