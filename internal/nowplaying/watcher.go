package nowplaying

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dckiller51/trueachievements/internal/logging"
)

// CurrentFunc resolves the reported game, nil when nothing is playing.
type CurrentFunc func(ctx context.Context) (*Playing, error)

// Watcher polls the now-playing source and invokes trigger whenever the
// reported game appears, disappears, or changes. It is the subscription that
// turns external state changes into refresh requests.
type Watcher struct {
	current      CurrentFunc
	trigger      func()
	pollInterval time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	running  bool
	lastName string
	primed   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher builds a watcher. trigger runs on the watcher goroutine and must
// not block; the refresh controller's RequestRefresh qualifies.
func NewWatcher(logger *slog.Logger, current CurrentFunc, trigger func(), pollInterval time.Duration) *Watcher {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Watcher{
		current:      current,
		trigger:      trigger,
		pollInterval: pollInterval,
		logger:       logging.NewComponentLogger(logger, "nowplaying-watcher"),
	}
}

// Start begins polling.
func (w *Watcher) Start(ctx context.Context) error {
	if w == nil || w.current == nil {
		return errors.New("now-playing watcher unavailable")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("now-playing watcher already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.ctx = runCtx
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop terminates polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	w.poll()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	ctx := w.ctx
	if ctx == nil {
		return
	}

	playing, err := w.current(ctx)
	if err != nil {
		w.logger.Warn("now-playing poll failed; will retry",
			logging.Error(err),
			logging.String(logging.FieldEventType, "nowplaying_poll_failed"),
		)
		return
	}

	name := ""
	if playing != nil {
		name = playing.Name
	}

	w.mu.Lock()
	changed := w.primed && name != w.lastName
	w.lastName = name
	w.primed = true
	w.mu.Unlock()

	if !changed {
		return
	}
	w.logger.Info("now-playing change detected",
		logging.String(logging.FieldGame, name),
		logging.String(logging.FieldEventType, "nowplaying_changed"),
	)
	if w.trigger != nil {
		w.trigger()
	}
}
