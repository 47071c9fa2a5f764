// Package walletregistry manages the accounts known to the engine and the
// addresses each of them watches. Every input is validated before it
// reaches storage.
package walletregistry

import (
	"context"
	"slices"

	"github.com/gabapcia/walletsync/internal/operation"
)

// Service registers accounts and edits their keychains.
type Service interface {
	// RegisterAccount registers an account of walletUID on currency. An
	// empty uid is replaced by a generated one.
	//
	// Returns ErrAccountAlreadyRegistered when uid is taken and
	// ErrUnsupportedCurrency when no synchronizer handles currency.
	RegisterAccount(ctx context.Context, uid, walletUID, currency string) (operation.Account, error)

	// GetAccount returns a registered account or ErrAccountNotFound.
	GetAccount(ctx context.Context, uid string) (operation.Account, error)

	// ListAccounts returns the accounts of currency, or every account when
	// currency is empty.
	ListAccounts(ctx context.Context, currency string) ([]operation.Account, error)

	// StartWatching adds addresses to the keychain of a registered account.
	StartWatching(ctx context.Context, accountUID string, addresses ...string) error

	// StopWatching removes addresses from the keychain of a registered
	// account. Operations already synchronized are kept.
	StopWatching(ctx context.Context, accountUID string, addresses ...string) error
}

type service struct {
	accounts   AccountStorage
	keychains  KeychainStorage
	currencies []string
}

// Ensure compile-time compliance with the Service interface.
var _ Service = (*service)(nil)

// New returns a registry accepting accounts of the given currencies.
func New(accounts AccountStorage, keychains KeychainStorage, currencies ...string) *service {
	return &service{
		accounts:   accounts,
		keychains:  keychains,
		currencies: slices.Clone(currencies),
	}
}
