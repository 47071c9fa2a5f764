package walletregistry

import (
	"context"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/validator"
)

// KeychainStorage persists the addresses watched by each account.
type KeychainStorage interface {
	// AddAddresses adds addresses to the keychain. Known addresses are ignored.
	AddAddresses(ctx context.Context, accountUID string, addresses ...string) error

	// RemoveAddresses removes addresses from the keychain. Unknown
	// addresses are ignored.
	RemoveAddresses(ctx context.Context, accountUID string, addresses ...string) error
}

type keychainEdit struct {
	AccountUID string   `validate:"required"`
	Addresses  []string `validate:"required,min=1,dive,address"`
}

func (s *service) buildKeychainEdit(ctx context.Context, accountUID string, addresses []string) (keychainEdit, error) {
	edit := keychainEdit{AccountUID: accountUID, Addresses: addresses}
	if err := validator.Validate(edit); err != nil {
		return keychainEdit{}, err
	}

	// the account must exist so that keychains never outlive accounts
	if _, err := s.accounts.GetAccount(ctx, accountUID); err != nil {
		return keychainEdit{}, err
	}

	return edit, nil
}

func (s *service) StartWatching(ctx context.Context, accountUID string, addresses ...string) error {
	edit, err := s.buildKeychainEdit(ctx, accountUID, addresses)
	if err != nil {
		return err
	}

	if err := s.keychains.AddAddresses(ctx, edit.AccountUID, edit.Addresses...); err != nil {
		return err
	}

	logger.Info(ctx, "addresses watched", "account.uid", edit.AccountUID, "keychain.added", edit.Addresses)
	return nil
}

func (s *service) StopWatching(ctx context.Context, accountUID string, addresses ...string) error {
	edit, err := s.buildKeychainEdit(ctx, accountUID, addresses)
	if err != nil {
		return err
	}

	if err := s.keychains.RemoveAddresses(ctx, edit.AccountUID, edit.Addresses...); err != nil {
		return err
	}

	logger.Info(ctx, "addresses unwatched", "account.uid", edit.AccountUID, "keychain.removed", edit.Addresses)
	return nil
}
