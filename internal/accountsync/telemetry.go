package accountsync

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/gabapcia/walletsync/internal/accountsync"

type instruments struct {
	tracer trace.Tracer

	runs       metric.Int64Counter
	operations metric.Int64Counter
	duration   metric.Float64Histogram
}

func newInstruments() *instruments {
	meter := otel.Meter(instrumentationName)

	runs, err := meter.Int64Counter("walletsync.sync.runs",
		metric.WithDescription("Finished synchronization runs by outcome"))
	if err != nil {
		otel.Handle(err)
	}

	operations, err := meter.Int64Counter("walletsync.operations.inserted",
		metric.WithDescription("Operations inserted by synchronization runs"))
	if err != nil {
		otel.Handle(err)
	}

	duration, err := meter.Float64Histogram("walletsync.sync.duration",
		metric.WithDescription("Duration of synchronization runs"),
		metric.WithUnit("s"))
	if err != nil {
		otel.Handle(err)
	}

	return &instruments{
		tracer:     otel.Tracer(instrumentationName),
		runs:       runs,
		operations: operations,
		duration:   duration,
	}
}

func (i *instruments) record(ctx context.Context, synchronizer, outcome string, inserted int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("sync.synchronizer", synchronizer),
		attribute.String("sync.outcome", outcome),
	)

	if i.runs != nil {
		i.runs.Add(ctx, 1, attrs)
	}

	if i.operations != nil && inserted > 0 {
		i.operations.Add(ctx, int64(inserted), metric.WithAttributes(attribute.String("sync.synchronizer", synchronizer)))
	}

	if i.duration != nil {
		i.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}
