package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/operation"
)

var _ accountsync.OperationStore = (*Store)(nil)

const upsertBlockQuery = `
	INSERT INTO blocks (hash, height, time, currency) VALUES (?, ?, ?, ?)
	ON CONFLICT (hash) DO UPDATE SET height = excluded.height, time = excluded.time, currency = excluded.currency`

const insertOperationQuery = `
	INSERT INTO operations (
		uid, account_uid, wallet_uid, currency, type, amount, amount_unknown, fees,
		senders, recipients, date, block_hash, tx_hash, success, trust, payload
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (uid) DO NOTHING`

const saveStateQuery = `
	INSERT INTO synchronizer_states (account_uid, synchronizer, state) VALUES (?, ?, ?)
	ON CONFLICT (account_uid, synchronizer) DO UPDATE SET state = excluded.state`

func (s *Store) LoadState(ctx context.Context, accountUID, synchronizer string) (accountsync.State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM synchronizer_states WHERE account_uid = ? AND synchronizer = ?`,
		accountUID, synchronizer,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return accountsync.State{}, nil
	}

	if err != nil {
		return accountsync.State{}, err
	}

	var state accountsync.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return accountsync.State{}, fmt.Errorf("decode saved state: %w", err)
	}

	return state, nil
}

func saveState(ctx context.Context, tx *sql.Tx, accountUID, synchronizer string, state accountsync.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, saveStateQuery, accountUID, synchronizer, string(raw))
	return err
}

func (s *Store) CountOperations(ctx context.Context, accountUID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operations WHERE account_uid = ?`, accountUID).Scan(&n)
	return n, err
}

func (s *Store) UpsertBlock(ctx context.Context, block operation.Block) error {
	_, err := s.db.ExecContext(ctx, upsertBlockQuery, block.Hash, block.Height, block.Time.UTC(), block.Currency)
	return err
}

// Commit upserts the blocks, inserts the operations whose uid is new and
// saves the cursor, all in one transaction.
func (s *Store) Commit(ctx context.Context, batch accountsync.Batch) ([]operation.Operation, error) {
	var inserted []operation.Operation

	err := s.execTx(ctx, func(tx *sql.Tx) error {
		inserted = nil

		for _, b := range batch.Blocks {
			if _, err := tx.ExecContext(ctx, upsertBlockQuery, b.Hash, b.Height, b.Time.UTC(), b.Currency); err != nil {
				return fmt.Errorf("upsert block %s: %w", b.Hash, err)
			}
		}

		stmt, err := tx.PrepareContext(ctx, insertOperationQuery)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, op := range batch.Operations {
			args, err := operationArgs(op)
			if err != nil {
				return err
			}

			res, err := stmt.ExecContext(ctx, args...)
			if err != nil {
				return fmt.Errorf("insert operation %s: %w", op.UID, err)
			}

			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n > 0 {
				inserted = append(inserted, op)
			}
		}

		return saveState(ctx, tx, batch.AccountUID, batch.Synchronizer, batch.State)
	})
	if err != nil {
		return nil, err
	}

	return inserted, nil
}

// EraseDataSince deletes the operations dated at or after since and saves
// the state rewound to the most recent block still referenced.
func (s *Store) EraseDataSince(ctx context.Context, accountUID, synchronizer string, since time.Time, rewind accountsync.Rewind) error {
	return s.execTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM operations WHERE account_uid = ? AND date >= ?`, accountUID, since.UTC())
		if err != nil {
			return err
		}

		var anchor *operation.Block

		var b operation.Block
		err = tx.QueryRowContext(ctx, `
			SELECT b.hash, b.height, b.time, b.currency
			FROM operations o
			JOIN blocks b ON b.hash = o.block_hash
			WHERE o.account_uid = ?
			ORDER BY b.height DESC
			LIMIT 1
		`, accountUID).Scan(&b.Hash, &b.Height, &b.Time, &b.Currency)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return err
		default:
			b.Time = b.Time.UTC()
			anchor = &b
		}

		return saveState(ctx, tx, accountUID, synchronizer, rewind(anchor))
	})
}

// ListOperations returns the operations of an account, newest first.
func (s *Store) ListOperations(ctx context.Context, accountUID string, limit, offset int) ([]operation.Operation, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT o.uid, o.account_uid, o.wallet_uid, o.currency, o.type, o.amount, o.amount_unknown, o.fees,
		       o.senders, o.recipients, o.date, o.tx_hash, o.success, o.trust, o.payload,
		       b.hash, b.height, b.time, b.currency
		FROM operations o
		LEFT JOIN blocks b ON b.hash = o.block_hash
		WHERE o.account_uid = ?
		ORDER BY o.date DESC, o.uid
		LIMIT ? OFFSET ?
	`, accountUID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []operation.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}

		ops = append(ops, op)
	}

	return ops, rows.Err()
}

func operationArgs(op operation.Operation) ([]any, error) {
	var amount sql.NullString
	if op.Amount != nil {
		amount = sql.NullString{String: op.Amount.String(), Valid: true}
	}

	fees := "0"
	if op.Fees != nil {
		fees = op.Fees.String()
	}

	senders, err := json.Marshal(nonNil(op.Senders))
	if err != nil {
		return nil, err
	}

	recipients, err := json.Marshal(nonNil(op.Recipients))
	if err != nil {
		return nil, err
	}

	var payload sql.NullString
	if len(op.Payload) > 0 {
		raw, err := json.Marshal(op.Payload)
		if err != nil {
			return nil, err
		}

		payload = sql.NullString{String: string(raw), Valid: true}
	}

	var blockHash sql.NullString
	if op.Block != nil {
		blockHash = sql.NullString{String: op.Block.Hash, Valid: true}
	}

	return []any{
		op.UID, op.AccountUID, op.WalletUID, op.Currency, string(op.Type), amount, op.AmountUnknown, fees,
		string(senders), string(recipients), op.Date.UTC(), blockHash, op.TxHash, op.Success, string(op.Trust), payload,
	}, nil
}

func scanOperation(rows *sql.Rows) (operation.Operation, error) {
	var (
		op                       operation.Operation
		typ, trust, fees         string
		senders, recipients      string
		amount, payload          sql.NullString
		blockHash, blockCurrency sql.NullString
		blockHeight              sql.NullInt64
		blockTime                sql.NullTime
	)

	err := rows.Scan(
		&op.UID, &op.AccountUID, &op.WalletUID, &op.Currency, &typ, &amount, &op.AmountUnknown, &fees,
		&senders, &recipients, &op.Date, &op.TxHash, &op.Success, &trust, &payload,
		&blockHash, &blockHeight, &blockTime, &blockCurrency,
	)
	if err != nil {
		return operation.Operation{}, err
	}

	op.Type = operation.Type(typ)
	op.Trust = operation.Trust(trust)
	op.Date = op.Date.UTC()

	if amount.Valid {
		if op.Amount, err = parseInt(amount.String); err != nil {
			return operation.Operation{}, err
		}
	}

	if op.Fees, err = parseInt(fees); err != nil {
		return operation.Operation{}, err
	}

	if err := json.Unmarshal([]byte(senders), &op.Senders); err != nil {
		return operation.Operation{}, err
	}

	if err := json.Unmarshal([]byte(recipients), &op.Recipients); err != nil {
		return operation.Operation{}, err
	}

	if payload.Valid {
		if err := json.Unmarshal([]byte(payload.String), &op.Payload); err != nil {
			return operation.Operation{}, err
		}
	}

	if blockHash.Valid {
		op.Block = &operation.Block{
			Hash:     blockHash.String,
			Height:   uint64(blockHeight.Int64),
			Time:     blockTime.Time.UTC(),
			Currency: blockCurrency.String,
		}
	}

	return op, nil
}

func parseInt(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}

	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
