package walletregistry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/validator"

	"github.com/google/uuid"
)

var (
	// ErrAccountAlreadyRegistered is returned when an account uid is reused.
	ErrAccountAlreadyRegistered = errors.New("account already registered")

	// ErrAccountNotFound is returned for unknown account uids.
	ErrAccountNotFound = errors.New("account not found")

	// ErrUnsupportedCurrency is returned when no synchronizer handles the
	// requested currency.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Registration is a validated account registration request.
type Registration struct {
	UID       string    `validate:"required,max=128,printascii"`
	WalletUID string    `validate:"required,max=128,printascii"`
	Currency  string    `validate:"required,lowercase"`
	CreatedAt time.Time `validate:"required"`
}

// Account returns the account being registered.
func (r Registration) Account() operation.Account {
	return operation.Account{UID: r.UID, WalletUID: r.WalletUID, Currency: r.Currency}
}

// AccountStorage persists accounts and the wallets owning them.
type AccountStorage interface {
	// RegisterAccount stores the account, creating its wallet if needed.
	// It returns ErrAccountAlreadyRegistered when the uid is taken.
	RegisterAccount(ctx context.Context, r Registration) error

	// GetAccount returns ErrAccountNotFound for unknown uids.
	GetAccount(ctx context.Context, uid string) (operation.Account, error)

	// ListAccounts returns the accounts of currency ordered by creation, or
	// every account when currency is empty.
	ListAccounts(ctx context.Context, currency string) ([]operation.Account, error)
}

func buildRegistration(uid, walletUID, currency string) (Registration, error) {
	if uid == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Registration{}, err
		}

		uid = id.String()
	}

	r := Registration{
		UID:       uid,
		WalletUID: walletUID,
		Currency:  currency,
		CreatedAt: time.Now().UTC(),
	}

	return r, validator.Validate(r)
}

func (s *service) RegisterAccount(ctx context.Context, uid, walletUID, currency string) (operation.Account, error) {
	r, err := buildRegistration(uid, walletUID, currency)
	if err != nil {
		return operation.Account{}, err
	}

	if !slices.Contains(s.currencies, r.Currency) {
		return operation.Account{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, r.Currency)
	}

	if err := s.accounts.RegisterAccount(ctx, r); err != nil {
		return operation.Account{}, err
	}

	logger.Info(ctx, "account registered", "account.uid", r.UID, "wallet.uid", r.WalletUID, "account.currency", r.Currency)
	return r.Account(), nil
}

func (s *service) GetAccount(ctx context.Context, uid string) (operation.Account, error) {
	if uid == "" {
		return operation.Account{}, ErrAccountNotFound
	}

	return s.accounts.GetAccount(ctx, uid)
}

func (s *service) ListAccounts(ctx context.Context, currency string) ([]operation.Account, error) {
	return s.accounts.ListAccounts(ctx, currency)
}
