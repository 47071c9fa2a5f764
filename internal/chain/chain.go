// Package chain defines the narrow capabilities a blockchain family must
// provide to be synchronized: an Explorer that pages through remote history,
// a Codec that decodes explorer payloads, and an Interpreter that turns one
// decoded transaction into operation drafts relative to a keychain.
//
// The synchronizer is generic over the transaction type T and never looks
// inside it; everything chain specific lives behind these interfaces.
package chain

import (
	"context"
	"io"

	"github.com/gabapcia/walletsync/internal/operation"
)

// Bulk is one page of transactions together with the continuation state.
type Bulk[T any] struct {
	Transactions []T
	HasNext      bool

	// Next is the cursor that continues right after this page. It is only
	// meaningful when HasNext is true, or as the checkpoint to persist after
	// the page has been committed.
	Next Cursor
}

// Explorer gives access to the remote indexing service of one chain.
type Explorer[T any] interface {
	// StartSession opens a server-side session bracketing one synchronization
	// run. Chains without session semantics return an empty token.
	StartSession(ctx context.Context) (string, error)

	// KillSession closes the session opened by StartSession. It is a no-op for
	// an empty token.
	KillSession(ctx context.Context, session string) error

	// GetCurrentBlock returns the chain tip as seen by the explorer.
	GetCurrentBlock(ctx context.Context) (operation.Block, error)

	// GetTransactions returns the page of transactions touching addresses that
	// starts at cursor. Calling it again with the returned Bulk.Next continues
	// without omission.
	GetTransactions(ctx context.Context, addresses []string, cursor Cursor, session string) (Bulk[T], error)

	// GetTransactionByHash returns a single transaction or a NotFound error.
	GetTransactionByHash(ctx context.Context, hash string) (T, error)

	// PushTransaction relays an already signed transaction and returns its
	// hash. It is never retried.
	PushTransaction(ctx context.Context, raw []byte) (string, error)
}

// Keychain is the read view of the addresses watched by an account.
type Keychain interface {
	// Contains reports whether address belongs to the account. Comparison
	// follows the chain's normalization rules.
	Contains(address string) bool

	// Addresses returns the watched addresses in insertion order.
	Addresses() []string
}

// Interpretation is the result of interpreting one transaction.
type Interpretation struct {
	Drafts []operation.Draft

	// Discovered lists addresses that the transaction made part of the
	// account (e.g. an originated contract). They must be added to the
	// keychain before the next transaction is interpreted.
	Discovered []string
}

// Interpreter turns one transaction into zero or more operation drafts.
// Implementations are pure: the same transaction and keychain always produce
// the same drafts in the same order.
type Interpreter[T any] interface {
	Interpret(tx T, keychain Keychain) (Interpretation, error)
}

// InterpreterFunc adapts a function to the Interpreter interface.
type InterpreterFunc[T any] func(tx T, keychain Keychain) (Interpretation, error)

func (f InterpreterFunc[T]) Interpret(tx T, keychain Keychain) (Interpretation, error) {
	return f(tx, keychain)
}

// Codec decodes explorer payloads of one chain and knows how the chain
// paginates.
type Codec[T any] interface {
	// Currency is the chain name stored with blocks and operations.
	Currency() string

	// DecodePage decodes a page of transactions.
	DecodePage(r io.Reader) (Page[T], error)

	// DecodeTransaction decodes a single transaction, either as a bare object
	// or wrapped in a one element array.
	DecodeTransaction(r io.Reader) (T, error)

	// BlockOf returns the block a transaction was included in, or nil when it
	// is still pending.
	BlockOf(tx T) *operation.Block

	// Paging returns the pagination strategy of the chain.
	Paging() Paging

	// NormalizeAddress returns the canonical form of an address used for
	// keychain membership.
	NormalizeAddress(address string) string
}

// Page is a decoded explorer page before pagination is resolved.
type Page[T any] struct {
	Transactions []T
	Meta         PageMeta
}

// PageMeta carries the page level attributes explorers return next to the
// transactions.
type PageMeta struct {
	// Truncated is set by block-hash paginated explorers when more
	// transactions are available.
	Truncated bool

	// NextToken is the continuation token of token paginated explorers.
	NextToken string
}
