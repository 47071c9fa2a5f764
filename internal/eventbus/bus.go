package eventbus

import (
	"context"
	"sync"

	"github.com/gabapcia/walletsync/internal/pkg/x/chflow"
)

// Bus is the event stream of one run. Events are kept for the lifetime of
// the bus so that late subscribers, such as callers coalesced onto a run
// already in progress, observe the complete history.
type Bus struct {
	mu      sync.Mutex
	history []Event
	closed  bool

	// changed is closed and replaced on every Emit and on Close.
	changed chan struct{}
}

// NewBus returns an open, empty bus.
func NewBus() *Bus {
	return &Bus{changed: make(chan struct{})}
}

// Emit appends event to the history and wakes subscribers. Emitting on a
// closed bus is a no-op.
func (b *Bus) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.history = append(b.history, event)
	close(b.changed)
	b.changed = make(chan struct{})
}

// Close ends the stream. Subscribers drain the history and then see their
// channel closed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.changed)
}

// History returns a copy of the events emitted so far.
func (b *Bus) History() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Event(nil), b.history...)
}

// Subscribe returns a channel delivering every event of the bus, from the
// first one, in emission order. The channel is closed once the bus is
// closed and drained, or when ctx is done.
func (b *Bus) Subscribe(ctx context.Context) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)

		next := 0
		for {
			b.mu.Lock()
			pending := b.history[next:]
			closed, changed := b.closed, b.changed
			b.mu.Unlock()

			for _, event := range pending {
				if !chflow.Send(ctx, out, event) {
					return
				}
				next++
			}

			if len(pending) > 0 {
				continue
			}

			if closed {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-changed:
			}
		}
	}()

	return out
}
