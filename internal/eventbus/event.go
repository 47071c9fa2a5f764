// Package eventbus carries the lifecycle and progress events of account
// synchronizations. A Bus replays the history of one run to every
// subscriber, and a Publisher forwards events outside the process.
package eventbus

import (
	"context"
	"time"
)

// Type names an event.
type Type string

const (
	TypeSyncStarted                         Type = "SYNCHRONIZATION_STARTED"
	TypeSyncSucceed                         Type = "SYNCHRONIZATION_SUCCEED"
	TypeSyncSucceedOnPreviouslyEmptyAccount Type = "SYNCHRONIZATION_SUCCEED_ON_PREVIOUSLY_EMPTY_ACCOUNT"
	TypeSyncFailed                          Type = "SYNCHRONIZATION_FAILED"
	TypeSyncProgress                        Type = "SYNCHRONIZATION_PROGRESS"
	TypeNewOperation                        Type = "NEW_OPERATION"
	TypeNewBlock                            Type = "NEW_BLOCK"
)

// Payload keys.
const (
	KeyDurationMS      = "duration_ms"
	KeyNewOperations   = "new_operations"
	KeyLastBlockHeight = "last_block_height"
	KeyErrorCode       = "error_code"
	KeyErrorCodeInt    = "error_code_int"
	KeyErrorMessage    = "error_message"
	KeyPage            = "page"
	KeyCursor          = "cursor"
	KeyUID             = "uid"
	KeyType            = "type"
	KeyTxHash          = "tx_hash"
	KeyHash            = "hash"
	KeyHeight          = "height"
)

// Event is one notification of a synchronization run.
type Event struct {
	Type       Type           `json:"type"`
	AccountUID string         `json:"account_uid"`
	RunID      string         `json:"run_id"`
	Time       time.Time      `json:"time"`
	Payload    map[string]any `json:"payload"`
}

// Terminal reports whether the event ends a run.
func (e Event) Terminal() bool {
	switch e.Type {
	case TypeSyncSucceed, TypeSyncSucceedOnPreviouslyEmptyAccount, TypeSyncFailed:
		return true
	default:
		return false
	}
}

// Publisher forwards events to an external channel. Publishing failures
// never fail a synchronization.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}
