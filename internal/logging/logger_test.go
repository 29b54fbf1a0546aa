package logging_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dckiller51/trueachievements/internal/logging"
	"github.com/dckiller51/trueachievements/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (*slog.Logger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Format:           format,
		Level:            level,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return logger, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logger, logPath := newFileLogger(t, "console", "info")
	logger.Info("message without caller")

	if content := readLog(t, logPath); strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logger, logPath := newFileLogger(t, "console", "debug")
	logger.Info("message with caller")

	if content := readLog(t, logPath); !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerLiftsComponent(t *testing.T) {
	base, logPath := newFileLogger(t, "console", "info")

	logging.NewComponentLogger(base, "refresh").Info("cycle complete", logging.Int("games", 3))

	content := readLog(t, logPath)
	if !strings.Contains(content, "INFO refresh: cycle complete") {
		t.Fatalf("expected component prefix in %q", content)
	}
	if !strings.Contains(content, "games=3") {
		t.Fatalf("expected attribute tail in %q", content)
	}
	if strings.Contains(content, "component=") {
		t.Fatalf("component should be lifted out of key/value tail, got %q", content)
	}
}

func TestJSONLoggerShape(t *testing.T) {
	logger, logPath := newFileLogger(t, "json", "info")
	logger.Info("json message", logging.String("k", "v"))

	content := readLog(t, logPath)
	for _, fragment := range []string{`"ts":`, `"level":"info"`, `"msg":"json message"`, `"k":"v"`} {
		if !strings.Contains(content, fragment) {
			t.Fatalf("expected %q in %q", fragment, content)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "yaml"})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logger, logPath := newFileLogger(t, "console", "invalid")
	logger.Info("should use info level")
	if content := readLog(t, logPath); !strings.Contains(content, "INFO") {
		t.Fatalf("expected INFO level line, got %q", content)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-xyz")
	ctx = services.WithTrigger(ctx, "interval")

	logger, logPath := newFileLogger(t, "console", "info")
	logging.WithContext(ctx, logger).Info("contextual log")

	content := readLog(t, logPath)
	if !strings.Contains(content, logging.FieldCorrelationID+"=req-xyz") {
		t.Fatalf("expected correlation id in %q", content)
	}
	if !strings.Contains(content, logging.FieldTrigger+"=interval") {
		t.Fatalf("expected trigger in %q", content)
	}
}

func TestCleanupOldLogsPrunesByAgeAndPattern(t *testing.T) {
	dir := t.TempDir()
	oldLog := filepath.Join(dir, "tastatsd-old.log")
	freshLog := filepath.Join(dir, "tastatsd-fresh.log")
	keeper := filepath.Join(dir, "unrelated.txt")
	for _, path := range []string{oldLog, freshLog, keeper} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{oldLog, keeper} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("age %s: %v", path, err)
		}
	}

	logging.CleanupOldLogs(logging.NewNop(), 7, logging.RetentionTarget{Dir: dir, Pattern: "tastatsd-*.log", Exclude: []string{freshLog}})

	if _, err := os.Stat(oldLog); !os.IsNotExist(err) {
		t.Fatalf("expected old log pruned, stat err=%v", err)
	}
	if _, err := os.Stat(freshLog); err != nil {
		t.Fatalf("expected fresh log kept: %v", err)
	}
	if _, err := os.Stat(keeper); err != nil {
		t.Fatalf("expected non-matching file kept: %v", err)
	}
}
