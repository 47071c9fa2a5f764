package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewClient(t *testing.T) {
	t.Run("uses default configuration when no options are provided", func(t *testing.T) {
		client := NewClient()

		assert.Equal(t, 5*time.Second, client.HTTPClient.Timeout)
		assert.Equal(t, 1*time.Second, client.RetryWaitMin)
		assert.Equal(t, 5*time.Second, client.RetryWaitMax)
		assert.Equal(t, 2, client.RetryMax)
		assert.IsType(t, leveledLogger{}, client.Logger)
	})

	t.Run("applies provided options", func(t *testing.T) {
		client := NewClient(
			WithTimeout(10*time.Second),
			WithRetryWaitMin(200*time.Millisecond),
			WithRetryWaitMax(10*time.Second),
			WithRetryMax(0),
		)

		assert.Equal(t, 10*time.Second, client.HTTPClient.Timeout)
		assert.Equal(t, 200*time.Millisecond, client.RetryWaitMin)
		assert.Equal(t, 10*time.Second, client.RetryWaitMax)
		assert.Equal(t, 0, client.RetryMax)
	})

	t.Run("rate limit wraps the transport", func(t *testing.T) {
		client := NewClient(WithRateLimit(rate.NewLimiter(rate.Inf, 1)))
		assert.IsType(t, &throttled{}, client.HTTPClient.Transport)
	})
}

func TestClient_Retries(t *testing.T) {
	_ = logger.Init("error")

	newServer := func(calls *atomic.Int32) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}

			w.WriteHeader(http.StatusOK)
		}))
	}

	t.Run("server errors are retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := newServer(&calls)
		defer srv.Close()

		client := NewClient(WithRetryWaitMin(time.Millisecond), WithRetryWaitMax(time.Millisecond))
		res, err := client.Get(srv.URL)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("zero retries sends once", func(t *testing.T) {
		var calls atomic.Int32
		srv := newServer(&calls)
		defer srv.Close()

		client := NewClient(WithRetryMax(0))

		res, err := client.Get(srv.URL)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("throttled requests wait for the limiter", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		require.NoError(t, err)

		client := NewClient(WithRateLimit(rate.NewLimiter(rate.Every(time.Hour), 0)), WithRetryMax(0))
		_, err = client.Do(req)

		assert.Error(t, err)
		assert.Equal(t, int32(0), calls.Load())
	})
}

func TestOptions(t *testing.T) {
	cfg := &config{}
	limiter := rate.NewLimiter(1, 1)

	WithTimeout(time.Second)(cfg)
	WithRetryWaitMin(time.Millisecond)(cfg)
	WithRetryWaitMax(time.Minute)(cfg)
	WithRetryMax(7)(cfg)
	WithRateLimit(limiter)(cfg)

	assert.Equal(t, config{
		timeout:      time.Second,
		retryWaitMin: time.Millisecond,
		retryWaitMax: time.Minute,
		retryMax:     7,
		limiter:      limiter,
	}, *cfg)
}
