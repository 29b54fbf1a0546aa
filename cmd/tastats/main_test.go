package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dckiller51/trueachievements/internal/config"
	"github.com/dckiller51/trueachievements/internal/daemon"
	"github.com/dckiller51/trueachievements/internal/ipc"
	"github.com/dckiller51/trueachievements/internal/logging"
	"github.com/dckiller51/trueachievements/internal/notifications"
	"github.com/dckiller51/trueachievements/internal/nowplaying"
	"github.com/dckiller51/trueachievements/internal/refresh"
	"github.com/dckiller51/trueachievements/internal/services/trueachievements"
	"github.com/dckiller51/trueachievements/internal/stats"
	"github.com/dckiller51/trueachievements/internal/testsupport"
)

type idleDownloader struct{}

func (idleDownloader) DownloadExport(context.Context, trueachievements.Credentials) ([]byte, error) {
	return nil, context.DeadlineExceeded
}

type idlePlaying struct{}

func (idlePlaying) Current(context.Context, string, map[string]string) (*nowplaying.Playing, error) {
	return nil, nil
}

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	logPath    string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	testsupport.WriteExport(t, cfg.Paths.GamesFile, testsupport.ExportCSV(t,
		`"Halo","Xbox","500","750","50","100","12.5","50","1.50","",""`,
	), time.Hour)

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	logger := logging.NewNop()
	notifier := notifications.NewService(cfg)
	engine := stats.NewEngine(logger, notifier)
	controller := refresh.NewController(
		logger,
		func() (*config.Config, error) { return cfg, nil },
		idleDownloader{},
		idlePlaying{},
		engine,
		notifier,
	)
	d, err := daemon.New(cfg, logger, controller, nil, notifier)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		cancel()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		logPath:    filepath.Join(cfg.Paths.LogDir, "tastats.log"),
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		_ = d.Close()
	})

	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestCLISnapshotJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"snapshot", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("snapshot --json: %v", err)
	}
	requireContains(t, out, `"gamerscore"`)
	requireContains(t, out, `"totalGames"`)
	requireContains(t, out, `"authFailed": false`)
}

func TestCLISnapshotTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"snapshot"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	requireContains(t, out, "Gamerscore")
	requireContains(t, out, "Total games")
	requireContains(t, out, "Offline")
}

func TestCLIRefresh(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"refresh"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	requireContains(t, out, "Refresh requested")
}

func TestCLIAuthClear(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"auth", "clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("auth clear: %v", err)
	}
	requireContains(t, out, "Auth-failed flag cleared")
}

func TestCLITestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}

func TestCLIConfigShowRedactsSecrets(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "gamer.gamertag        Tester")
	requireContains(t, out, "gamer.token           (set)")
	if strings.Contains(out, "test-token") {
		t.Fatalf("expected token to be redacted, got:\n%s", out)
	}
}

func TestCLILogs(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, line := range []string{"first", "second", "third"} {
		if err := appendLine(env.logPath, line); err != nil {
			t.Fatalf("append %q: %v", line, err)
		}
	}

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Contains(out, "first") {
		t.Fatalf("expected only last two lines, got:\n%s", out)
	}
	requireContains(t, out, "second")
	requireContains(t, out, "third")
}
