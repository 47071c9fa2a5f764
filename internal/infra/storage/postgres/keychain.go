package postgres

import (
	"context"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/walletregistry"

	"gorm.io/gorm/clause"
)

var (
	_ accountsync.KeychainStore      = (*Store)(nil)
	_ walletregistry.KeychainStorage = (*Store)(nil)
)

// Addresses returns the keychain in insertion order.
func (s *Store) Addresses(ctx context.Context, accountUID string) ([]string, error) {
	var addresses []string
	err := s.db.WithContext(ctx).
		Model(&keychainAddressModel{}).
		Where("account_uid = ?", accountUID).
		Order("id").
		Pluck("address", &addresses).Error

	return addresses, err
}

func (s *Store) AddAddresses(ctx context.Context, accountUID string, addresses ...string) error {
	if len(addresses) == 0 {
		return nil
	}

	rows := make([]keychainAddressModel, 0, len(addresses))
	for _, address := range addresses {
		rows = append(rows, keychainAddressModel{AccountUID: accountUID, Address: address})
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "account_uid"}, {Name: "address"}}, DoNothing: true}).
		Create(&rows).Error
}

func (s *Store) RemoveAddresses(ctx context.Context, accountUID string, addresses ...string) error {
	if len(addresses) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).
		Where("account_uid = ? AND address IN ?", accountUID, addresses).
		Delete(&keychainAddressModel{}).Error
}
