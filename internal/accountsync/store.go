package accountsync

import (
	"context"
	"time"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
)

// KeychainStore persists the addresses watched by each account.
type KeychainStore interface {
	// Addresses returns the watched addresses of an account in insertion
	// order. An unknown account has no address.
	Addresses(ctx context.Context, accountUID string) ([]string, error)

	// AddAddresses adds addresses to the account's keychain. Addresses
	// already present are ignored.
	AddAddresses(ctx context.Context, accountUID string, addresses ...string) error
}

// State is the saved state of one synchronizer for one account.
type State struct {
	Cursor          chain.Cursor `json:"cursor"`
	LastBlockHeight uint64       `json:"last_block_height"`
	UpdatedAt       time.Time    `json:"updated_at"`

	// Keychain is the fingerprint of the addresses Cursor was computed
	// against. A cursor is only valid for the keychain that produced it.
	Keychain string `json:"keychain,omitempty"`
}

// Batch is the unit persisted after each page.
type Batch struct {
	AccountUID   string
	Synchronizer string

	// Blocks are upserted by hash before the operations referencing them.
	Blocks []operation.Block

	// Operations are inserted unless an operation with the same uid exists.
	Operations []operation.Operation

	// State is saved in the same transaction as the operations.
	State State
}

// Rewind computes the state to resume from after erasing data. anchor is the
// most recent block of the account still referenced by an operation, or nil
// when none remains.
type Rewind func(anchor *operation.Block) State

// OperationStore persists operations, blocks and synchronizer states.
type OperationStore interface {
	// LoadState returns the saved state, or the zero State when the
	// synchronizer never ran for the account.
	LoadState(ctx context.Context, accountUID, synchronizer string) (State, error)

	// CountOperations returns the number of operations stored for an account.
	CountOperations(ctx context.Context, accountUID string) (int, error)

	// Commit persists a batch atomically and returns the operations that were
	// actually inserted. Operations whose uid already exists are skipped
	// without error.
	Commit(ctx context.Context, batch Batch) ([]operation.Operation, error)

	// UpsertBlock inserts or replaces a block by hash.
	UpsertBlock(ctx context.Context, block operation.Block) error

	// EraseDataSince deletes the account operations dated at or after since
	// and saves the state returned by rewind, atomically.
	EraseDataSince(ctx context.Context, accountUID, synchronizer string, since time.Time, rewind Rewind) error
}
