package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

func TestNewResource(t *testing.T) {
	for _, name := range []string{"walletsync", "", "walletsync-worker_1"} {
		t.Run("service name "+name, func(t *testing.T) {
			res, err := newResource(name)
			require.NoError(t, err)
			require.NotNil(t, res)

			v, ok := res.Set().Value(semconv.ServiceNameKey)
			assert.True(t, ok)
			assert.Equal(t, name, v.AsString())
		})
	}
}

func TestInitProviders(t *testing.T) {
	originalMeter := otel.GetMeterProvider()
	originalTracer := otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetMeterProvider(originalMeter)
		otel.SetTracerProvider(originalTracer)
		loggerProvider.Store(nil)
	})

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	res, err := newResource("walletsync")
	require.NoError(t, err)

	t.Run("meter provider is registered globally", func(t *testing.T) {
		mp, err := initMeterProvider(ctx, res)
		require.NoError(t, err)
		assert.Equal(t, mp, otel.GetMeterProvider())
		_ = mp.Shutdown(ctx)
	})

	t.Run("tracer provider is registered globally", func(t *testing.T) {
		tp, err := initTracerProvider(ctx, res)
		require.NoError(t, err)
		assert.Equal(t, tp, otel.GetTracerProvider())
		_ = tp.Shutdown(ctx)
	})

	t.Run("logger provider is exposed", func(t *testing.T) {
		lp, err := initLoggerProvider(ctx, res)
		require.NoError(t, err)
		assert.Same(t, lp, LoggerProvider())
		_ = lp.Shutdown(ctx)
	})
}

func TestInit(t *testing.T) {
	originalMeter := otel.GetMeterProvider()
	originalTracer := otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetMeterProvider(originalMeter)
		otel.SetTracerProvider(originalTracer)
		loggerProvider.Store(nil)
	})

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	shutdown, err := Init(ctx, "walletsync")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NotNil(t, LoggerProvider())

	// exporters may fail to flush without a collector; only the reset matters here
	_ = shutdown(ctx)
	assert.Nil(t, LoggerProvider())
}
