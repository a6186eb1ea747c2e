package session

import (
	"context"
	"time"
)

// Run ticks the controller at the configured interval until ctx is cancelled
// or Quit is called
func (c *Controller) Run(ctx context.Context) error {
	interval := c.settings.TickInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	ticker := c.clock.Ticker(interval)
	defer ticker.Stop()

	c.logger.Debug("Session loop started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Session loop stopped")
			return ctx.Err()
		case <-ticker.C:
			c.Tick(interval)
			if c.ShouldQuit() {
				return nil
			}
		}
	}
}
