package syncd

import (
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/resilience/retry"
)

type config struct {
	interval time.Duration
	retry    retry.Retry
}

// Option configures the daemon.
type Option func(*config)

// WithInterval sets the time between two registry sweeps.
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithRetry replaces the retry policy applied to failed runs.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}
