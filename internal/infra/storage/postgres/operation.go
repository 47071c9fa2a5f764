package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/operation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ accountsync.OperationStore = (*Store)(nil)

var (
	upsertBlock = clause.OnConflict{
		Columns:   []clause.Column{{Name: "hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"height", "time", "currency"}),
	}

	upsertState = clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_uid"}, {Name: "synchronizer"}},
		DoUpdates: clause.AssignmentColumns([]string{"state"}),
	}
)

func (s *Store) LoadState(ctx context.Context, accountUID, synchronizer string) (accountsync.State, error) {
	var m stateModel
	err := s.db.WithContext(ctx).
		Where("account_uid = ? AND synchronizer = ?", accountUID, synchronizer).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return accountsync.State{}, nil
	}

	if err != nil {
		return accountsync.State{}, err
	}

	var state accountsync.State
	if err := json.Unmarshal([]byte(m.State), &state); err != nil {
		return accountsync.State{}, fmt.Errorf("decode saved state: %w", err)
	}

	return state, nil
}

func saveState(tx *gorm.DB, accountUID, synchronizer string, state accountsync.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	m := stateModel{AccountUID: accountUID, Synchronizer: synchronizer, State: string(raw)}
	return tx.Clauses(upsertState).Create(&m).Error
}

func (s *Store) CountOperations(ctx context.Context, accountUID string) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&operationModel{}).Where("account_uid = ?", accountUID).Count(&n).Error
	return int(n), err
}

func (s *Store) UpsertBlock(ctx context.Context, block operation.Block) error {
	m := newBlockModel(block)
	return s.db.WithContext(ctx).Clauses(upsertBlock).Create(&m).Error
}

// Commit upserts the blocks, inserts the operations whose uid is new and
// saves the cursor, all in one transaction.
func (s *Store) Commit(ctx context.Context, batch accountsync.Batch) ([]operation.Operation, error) {
	var inserted []operation.Operation

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted = nil

		for _, b := range batch.Blocks {
			m := newBlockModel(b)
			if err := tx.Clauses(upsertBlock).Create(&m).Error; err != nil {
				return fmt.Errorf("upsert block %s: %w", b.Hash, err)
			}
		}

		for _, op := range batch.Operations {
			m, err := newOperationModel(op)
			if err != nil {
				return err
			}

			res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "uid"}}, DoNothing: true}).Create(&m)
			if res.Error != nil {
				return fmt.Errorf("insert operation %s: %w", op.UID, res.Error)
			}

			if res.RowsAffected > 0 {
				inserted = append(inserted, op)
			}
		}

		return saveState(tx, batch.AccountUID, batch.Synchronizer, batch.State)
	})
	if err != nil {
		return nil, err
	}

	return inserted, nil
}

// EraseDataSince deletes the operations dated at or after since and saves
// the state rewound to the most recent block still referenced.
func (s *Store) EraseDataSince(ctx context.Context, accountUID, synchronizer string, since time.Time, rewind accountsync.Rewind) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("account_uid = ? AND date >= ?", accountUID, since.UTC()).Delete(&operationModel{}).Error
		if err != nil {
			return err
		}

		var rows []blockModel
		err = tx.Table("operations AS o").
			Select("b.hash, b.height, b.time, b.currency").
			Joins("JOIN blocks AS b ON b.hash = o.block_hash").
			Where("o.account_uid = ?", accountUID).
			Order("b.height DESC").
			Limit(1).
			Scan(&rows).Error
		if err != nil {
			return err
		}

		var anchor *operation.Block
		if len(rows) > 0 {
			b := rows[0].block()
			anchor = &b
		}

		return saveState(tx, accountUID, synchronizer, rewind(anchor))
	})
}

// ListOperations returns the operations of an account, newest first.
func (s *Store) ListOperations(ctx context.Context, accountUID string, limit, offset int) ([]operation.Operation, error) {
	query := s.db.WithContext(ctx).
		Where("account_uid = ?", accountUID).
		Order("date DESC").
		Order("uid").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []operationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	blocks, err := s.blocksOf(ctx, models)
	if err != nil {
		return nil, err
	}

	ops := make([]operation.Operation, 0, len(models))
	for _, m := range models {
		var block *operation.Block
		if m.BlockHash != nil {
			if b, ok := blocks[*m.BlockHash]; ok {
				block = &b
			}
		}

		op, err := m.operation(block)
		if err != nil {
			return nil, err
		}

		ops = append(ops, op)
	}

	return ops, nil
}

func (s *Store) blocksOf(ctx context.Context, models []operationModel) (map[string]operation.Block, error) {
	var hashes []string
	for _, m := range models {
		if m.BlockHash != nil {
			hashes = append(hashes, *m.BlockHash)
		}
	}

	blocks := make(map[string]operation.Block, len(hashes))
	if len(hashes) == 0 {
		return blocks, nil
	}

	var rows []blockModel
	if err := s.db.WithContext(ctx).Where("hash IN ?", hashes).Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		blocks[r.Hash] = r.block()
	}

	return blocks, nil
}

// Block returns a stored block by hash.
func (s *Store) Block(ctx context.Context, hash string) (operation.Block, bool, error) {
	var m blockModel
	err := s.db.WithContext(ctx).Where("hash = ?", hash).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return operation.Block{}, false, nil
	}

	if err != nil {
		return operation.Block{}, false, err
	}

	return m.block(), true, nil
}
