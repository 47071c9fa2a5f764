package accountsync

import (
	"context"
	"time"

	"github.com/gabapcia/walletsync/internal/eventbus"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/google/uuid"
)

// Result summarizes a finished run.
type Result struct {
	NewOperations   int
	LastBlockHeight uint64
	Duration        time.Duration
}

// Run is the handle of one synchronization of one account. Every caller
// coalesced onto the same run shares the handle.
type Run struct {
	ID      string
	Account operation.Account

	bus  *eventbus.Bus
	done chan struct{}

	// set before done is closed
	result Result
	err    error
}

func newRun(account operation.Account) *Run {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return &Run{
		ID:      id.String(),
		Account: account,
		bus:     eventbus.NewBus(),
		done:    make(chan struct{}),
	}
}

// Events streams the run events from SYNCHRONIZATION_STARTED up to the
// terminal event, whenever the subscription starts.
func (r *Run) Events(ctx context.Context) <-chan eventbus.Event {
	return r.bus.Subscribe(ctx)
}

// Done is closed once the terminal event has been emitted.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run ends and returns its result together with the
// error that failed it, if any. It returns ctx.Err() when ctx is done first;
// the run itself keeps going.
func (r *Run) Wait(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-r.done:
		return r.result, r.err
	}
}
