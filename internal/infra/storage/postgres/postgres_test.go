package postgres

import (
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/walletregistry"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// open connects to the database named by WALLETSYNC_TEST_POSTGRES_DSN. Every
// test works on fresh uids so runs can share one database.
func open(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("WALLETSYNC_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("WALLETSYNC_TEST_POSTGRES_DSN not set")
	}

	_ = logger.Init("error")

	s, err := Open(t.Context(), dsn, Options{MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func register(t *testing.T, s *Store, currency string) operation.Account {
	t.Helper()

	r := walletregistry.Registration{
		UID:       uuid.NewString(),
		WalletUID: uuid.NewString(),
		Currency:  currency,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.RegisterAccount(t.Context(), r))

	return r.Account()
}

func sampleOperation(account operation.Account, block *operation.Block) operation.Operation {
	return operation.Operation{
		UID:        operation.DeriveUID(account.UID, "tx-1:0", operation.TypeSend, ""),
		AccountUID: account.UID,
		WalletUID:  account.WalletUID,
		Currency:   account.Currency,
		Type:       operation.TypeSend,
		Amount:     new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil),
		Fees:       big.NewInt(21000),
		Senders:    []string{"me"},
		Recipients: []string{"them"},
		Date:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Block:      block,
		TxHash:     "tx-1",
		Success:    true,
		Trust:      operation.TrustTrusted,
		Payload:    map[string]string{"memo": "hi"},
	}
}

func TestOperationModel(t *testing.T) {
	block := &operation.Block{Hash: "b1", Height: 10, Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Currency: "ethereum"}
	op := sampleOperation(operation.Account{UID: "acc", WalletUID: "w", Currency: "ethereum"}, block)

	m, err := newOperationModel(op)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000000000000", *m.Amount)
	assert.Equal(t, `["me"]`, m.Senders)
	assert.Equal(t, "b1", *m.BlockHash)

	back, err := m.operation(block)
	require.NoError(t, err)
	assert.Equal(t, op, back)

	t.Run("unknown amount", func(t *testing.T) {
		op := op
		op.Amount, op.AmountUnknown, op.Senders, op.Payload = nil, true, nil, nil

		m, err := newOperationModel(op)
		require.NoError(t, err)
		assert.Nil(t, m.Amount)
		assert.Nil(t, m.Payload)
		assert.Equal(t, "[]", m.Senders)

		back, err := m.operation(block)
		require.NoError(t, err)
		assert.Nil(t, back.Amount)
		assert.True(t, back.AmountUnknown)
		assert.Empty(t, back.Senders)
	})

	t.Run("corrupted amount", func(t *testing.T) {
		bad := m
		amount := "12abc"
		bad.Amount = &amount

		_, err := bad.operation(nil)
		assert.Error(t, err)
	})
}

func TestAccounts(t *testing.T) {
	s := open(t)
	ctx := t.Context()

	account := register(t, s, "tezos")

	err := s.RegisterAccount(ctx, walletregistry.Registration{UID: account.UID, WalletUID: account.WalletUID, Currency: "tezos", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, walletregistry.ErrAccountAlreadyRegistered)

	got, err := s.GetAccount(ctx, account.UID)
	require.NoError(t, err)
	assert.Equal(t, account, got)

	_, err = s.GetAccount(ctx, uuid.NewString())
	assert.ErrorIs(t, err, walletregistry.ErrAccountNotFound)

	accounts, err := s.ListAccounts(ctx, "tezos")
	require.NoError(t, err)
	assert.Contains(t, accounts, account)
}

func TestKeychain(t *testing.T) {
	s := open(t)
	ctx := t.Context()
	account := register(t, s, "bitcoin")

	require.NoError(t, s.AddAddresses(ctx, account.UID, "b", "a", "b"))
	require.NoError(t, s.AddAddresses(ctx, account.UID, "c", "a"))

	addresses, err := s.Addresses(ctx, account.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, addresses)

	require.NoError(t, s.RemoveAddresses(ctx, account.UID, "a"))

	addresses, err = s.Addresses(ctx, account.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, addresses)
}

func TestCommitAndErase(t *testing.T) {
	s := open(t)
	ctx := t.Context()
	account := register(t, s, "ethereum")
	synchronizer := "ethereum"

	block := operation.Block{Hash: uuid.NewString(), Height: 10, Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Currency: "ethereum"}
	op := sampleOperation(account, &block)

	batch := accountsync.Batch{
		AccountUID:   account.UID,
		Synchronizer: synchronizer,
		Blocks:       []operation.Block{block},
		Operations:   []operation.Operation{op},
		State:        accountsync.State{Cursor: chain.Cursor{Offset: 1}, LastBlockHeight: 10},
	}

	inserted, err := s.Commit(ctx, batch)
	require.NoError(t, err)
	assert.Len(t, inserted, 1)

	inserted, err = s.Commit(ctx, batch)
	require.NoError(t, err)
	assert.Empty(t, inserted, "replayed operations are not inserted twice")

	n, err := s.CountOperations(ctx, account.UID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	state, err := s.LoadState(ctx, account.UID, synchronizer)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.Cursor.Offset)

	ops, err := s.ListOperations(ctx, account.UID, 10, 0)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, op, ops[0])

	stored, ok, err := s.Block(ctx, block.Hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, block, stored)

	err = s.EraseDataSince(ctx, account.UID, synchronizer, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), func(anchor *operation.Block) accountsync.State {
		assert.Nil(t, anchor)
		return accountsync.State{}
	})
	require.NoError(t, err)

	n, err = s.CountOperations(ctx, account.UID)
	require.NoError(t, err)
	assert.Zero(t, n)

	state, err = s.LoadState(ctx, account.UID, synchronizer)
	require.NoError(t, err)
	assert.True(t, state.Cursor.IsZero())
}
