// Package http builds the retrying HTTP clients used to talk to explorers.
// It wraps retryablehttp.Client from HashiCorp, logs through the
// application logger and can throttle outgoing requests.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

type config struct {
	timeout      time.Duration
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	retryMax     int
	limiter      *rate.Limiter
}

// Option configures the client built by NewClient.
type Option func(*config)

// NewClient returns a retryablehttp.Client configured with opts. Defaults:
//
//   - timeout:      5 seconds
//   - retryWaitMin: 1 second
//   - retryWaitMax: 5 seconds
//   - retryMax:     2 retries
//   - no rate limit
//
// Once retries are exhausted the last response is returned as is, so that
// callers can report its status.
func NewClient(opts ...Option) *retryablehttp.Client {
	cfg := config{
		timeout:      5 * time.Second,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 5 * time.Second,
		retryMax:     2,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := retryablehttp.NewClient()
	client.Logger = leveledLogger{}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient.Timeout = cfg.timeout
	client.RetryWaitMin = cfg.retryWaitMin
	client.RetryWaitMax = cfg.retryWaitMax
	client.RetryMax = cfg.retryMax

	if cfg.limiter != nil {
		client.HTTPClient.Transport = &throttled{next: client.HTTPClient.Transport, limiter: cfg.limiter}
	}

	return client
}

// WithTimeout sets the maximum duration of a single HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryWaitMin sets the minimum delay between retry attempts.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = d
	}
}

// WithRetryWaitMax sets the maximum delay between retry attempts.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMax = d
	}
}

// WithRetryMax sets the number of retries of a failed request. Zero
// disables retries, which non idempotent calls such as transaction
// broadcasts require.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.retryMax = n
	}
}

// WithRateLimit throttles every request sent by the client, retries
// included, through limiter.
func WithRateLimit(limiter *rate.Limiter) Option {
	return func(c *config) {
		c.limiter = limiter
	}
}

// throttled waits for the limiter before handing the request to next.
type throttled struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *throttled) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	return next.RoundTrip(req)
}

// leveledLogger forwards retryablehttp's messages to the application
// logger. Request level messages are debug, retry exhaustion is a warning.
type leveledLogger struct{}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (leveledLogger) Error(msg string, keysAndValues ...any) {
	logger.Warn(context.Background(), msg, keysAndValues...)
}

func (leveledLogger) Info(msg string, keysAndValues ...any) {
	logger.Debug(context.Background(), msg, keysAndValues...)
}

func (leveledLogger) Debug(msg string, keysAndValues ...any) {
	logger.Debug(context.Background(), msg, keysAndValues...)
}

func (leveledLogger) Warn(msg string, keysAndValues ...any) {
	logger.Warn(context.Background(), msg, keysAndValues...)
}
