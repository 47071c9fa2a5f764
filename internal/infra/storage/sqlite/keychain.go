package sqlite

import (
	"context"
	"database/sql"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/walletregistry"
)

var (
	_ accountsync.KeychainStore      = (*Store)(nil)
	_ walletregistry.KeychainStorage = (*Store)(nil)
)

// Addresses returns the keychain in insertion order.
func (s *Store) Addresses(ctx context.Context, accountUID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT address FROM keychain_addresses WHERE account_uid = ? ORDER BY id`, accountUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []string
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, err
		}

		addresses = append(addresses, address)
	}

	return addresses, rows.Err()
}

func (s *Store) AddAddresses(ctx context.Context, accountUID string, addresses ...string) error {
	return s.execTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO keychain_addresses (account_uid, address) VALUES (?, ?) ON CONFLICT (account_uid, address) DO NOTHING`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, address := range addresses {
			if _, err := stmt.ExecContext(ctx, accountUID, address); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *Store) RemoveAddresses(ctx context.Context, accountUID string, addresses ...string) error {
	return s.execTx(ctx, func(tx *sql.Tx) error {
		for _, address := range addresses {
			_, err := tx.ExecContext(ctx,
				`DELETE FROM keychain_addresses WHERE account_uid = ? AND address = ?`, accountUID, address)
			if err != nil {
				return err
			}
		}

		return nil
	})
}
