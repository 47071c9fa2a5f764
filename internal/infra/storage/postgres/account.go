package postgres

import (
	"context"
	"errors"

	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/walletregistry"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ walletregistry.AccountStorage = (*Store)(nil)

func (s *Store) RegisterAccount(ctx context.Context, r walletregistry.Registration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet := walletModel{UID: r.WalletUID, CreatedAt: r.CreatedAt.UTC()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&wallet).Error; err != nil {
			return err
		}

		account := accountModel{UID: r.UID, WalletUID: r.WalletUID, Currency: r.Currency, CreatedAt: r.CreatedAt.UTC()}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&account)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return walletregistry.ErrAccountAlreadyRegistered
		}

		return nil
	})
}

func (s *Store) GetAccount(ctx context.Context, uid string) (operation.Account, error) {
	var m accountModel
	err := s.db.WithContext(ctx).Where("uid = ?", uid).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return operation.Account{}, walletregistry.ErrAccountNotFound
	}

	if err != nil {
		return operation.Account{}, err
	}

	return m.account(), nil
}

func (s *Store) ListAccounts(ctx context.Context, currency string) ([]operation.Account, error) {
	query := s.db.WithContext(ctx).Order("created_at").Order("uid")
	if currency != "" {
		query = query.Where("currency = ?", currency)
	}

	var models []accountModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	accounts := make([]operation.Account, 0, len(models))
	for _, m := range models {
		accounts = append(accounts, m.account())
	}

	return accounts, nil
}
