package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/walletregistry"
)

var _ walletregistry.AccountStorage = (*Store)(nil)

func (s *Store) RegisterAccount(ctx context.Context, r walletregistry.Registration) error {
	return s.execTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO wallets (uid, created_at) VALUES (?, ?) ON CONFLICT (uid) DO NOTHING`,
			r.WalletUID, r.CreatedAt.UTC(),
		)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO accounts (uid, wallet_uid, currency, created_at) VALUES (?, ?, ?, ?)`,
			r.UID, r.WalletUID, r.Currency, r.CreatedAt.UTC(),
		)
		if isConstraintViolation(err) {
			return walletregistry.ErrAccountAlreadyRegistered
		}

		return err
	})
}

func (s *Store) GetAccount(ctx context.Context, uid string) (operation.Account, error) {
	var a operation.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT uid, wallet_uid, currency FROM accounts WHERE uid = ?`, uid,
	).Scan(&a.UID, &a.WalletUID, &a.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return operation.Account{}, walletregistry.ErrAccountNotFound
	}

	return a, err
}

func (s *Store) ListAccounts(ctx context.Context, currency string) ([]operation.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, wallet_uid, currency
		FROM accounts
		WHERE ? = '' OR currency = ?
		ORDER BY created_at, uid
	`, currency, currency)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []operation.Account
	for rows.Next() {
		var a operation.Account
		if err := rows.Scan(&a.UID, &a.WalletUID, &a.Currency); err != nil {
			return nil, err
		}

		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}
