package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/dckiller51/trueachievements/internal/logging"
	"github.com/dckiller51/trueachievements/internal/services"
)

// Start launches the run loop: one cycle immediately, then one per interval
// tick or RequestRefresh kick.
func (c *Controller) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.running {
		return errors.New("refresh controller already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	c.wg.Add(1)
	go c.loop(runCtx, interval)
	return nil
}

// Stop terminates the run loop and waits for an in-flight cycle to finish.
func (c *Controller) Stop() {
	c.runMu.Lock()
	if !c.running {
		c.runMu.Unlock()
		return
	}
	cancel := c.cancel
	c.running = false
	c.cancel = nil
	c.runMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// RequestRefresh asks the run loop for a cycle as soon as possible. Safe from
// any goroutine and any trigger source; requests arriving while a cycle is
// already pending coalesce into one.
func (c *Controller) RequestRefresh() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

func (c *Controller) loop(ctx context.Context, interval time.Duration) {
	defer c.wg.Done()

	c.runCycle(services.WithTrigger(ctx, "startup"))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runCycle(services.WithTrigger(ctx, "interval"))
		case <-c.kick:
			c.runCycle(services.WithTrigger(ctx, "request"))
		}
	}
}

func (c *Controller) runCycle(ctx context.Context) {
	if _, err := c.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.ErrorWithContext(c.logger, "refresh cycle failed", "refresh_failed",
			logging.Error(err),
		)
	}
}
