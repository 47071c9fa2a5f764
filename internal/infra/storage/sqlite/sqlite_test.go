package sqlite

import (
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/walletregistry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.Context(), filepath.Join(t.TempDir(), "data", "walletsync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func register(t *testing.T, s *Store, uid, currency string, createdAt time.Time) {
	t.Helper()

	err := s.RegisterAccount(t.Context(), walletregistry.Registration{
		UID:       uid,
		WalletUID: "wallet-1",
		Currency:  currency,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walletsync.db")

	first, err := Open(t.Context(), path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(t.Context(), path)
	require.NoError(t, err, "migrations are applied once")
	require.NoError(t, second.Close())
}

func TestAccounts(t *testing.T) {
	s := open(t)
	ctx := t.Context()

	register(t, s, "acc-1", "bitcoin", day(1))
	register(t, s, "acc-2", "tezos", day(2))

	err := s.RegisterAccount(ctx, walletregistry.Registration{UID: "acc-1", WalletUID: "wallet-2", Currency: "bitcoin", CreatedAt: day(3)})
	assert.ErrorIs(t, err, walletregistry.ErrAccountAlreadyRegistered)

	account, err := s.GetAccount(ctx, "acc-2")
	require.NoError(t, err)
	assert.Equal(t, operation.Account{UID: "acc-2", WalletUID: "wallet-1", Currency: "tezos"}, account)

	_, err = s.GetAccount(ctx, "acc-9")
	assert.ErrorIs(t, err, walletregistry.ErrAccountNotFound)

	all, err := s.ListAccounts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "acc-1", all[0].UID)

	bitcoin, err := s.ListAccounts(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, []operation.Account{{UID: "acc-1", WalletUID: "wallet-1", Currency: "bitcoin"}}, bitcoin)
}

func TestKeychain(t *testing.T) {
	s := open(t)
	ctx := t.Context()
	register(t, s, "acc-1", "ethereum", day(1))

	require.NoError(t, s.AddAddresses(ctx, "acc-1", "0xb", "0xa"))
	require.NoError(t, s.AddAddresses(ctx, "acc-1", "0xa", "0xc"))
	require.NoError(t, s.RemoveAddresses(ctx, "acc-1", "0xb"))

	addresses, err := s.Addresses(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"0xa", "0xc"}, addresses)

	assert.Error(t, s.AddAddresses(ctx, "acc-9", "0xa"), "keychains belong to registered accounts")
}

func TestCommit(t *testing.T) {
	s := open(t)
	ctx := t.Context()
	register(t, s, "acc-1", "bitcoin", day(1))

	block := operation.Block{Hash: "h1", Height: 7, Time: day(2), Currency: "bitcoin"}
	send := operation.Operation{
		UID:        "u1",
		AccountUID: "acc-1",
		WalletUID:  "wallet-1",
		Currency:   "bitcoin",
		Type:       operation.TypeSend,
		Amount:     big.NewInt(1000),
		Fees:       big.NewInt(10),
		Senders:    []string{"a"},
		Recipients: []string{"b", "c"},
		Date:       day(2),
		Block:      &block,
		TxHash:     "tx1",
		Success:    true,
		Trust:      operation.TrustTrusted,
		Payload:    map[string]string{"memo": "hi"},
	}
	unknown := operation.Operation{
		UID:           "u2",
		AccountUID:    "acc-1",
		WalletUID:     "wallet-1",
		Currency:      "bitcoin",
		Type:          operation.TypeNone,
		AmountUnknown: true,
		Fees:          new(big.Int),
		Date:          day(3),
		TxHash:        "tx2",
		Trust:         operation.TrustPending,
	}

	batch := accountsync.Batch{
		AccountUID:   "acc-1",
		Synchronizer: "bitcoin",
		Blocks:       []operation.Block{block},
		Operations:   []operation.Operation{send, unknown},
		State: accountsync.State{
			Cursor:          chain.Cursor{BlockHash: "h1", Height: 7},
			LastBlockHeight: 7,
			UpdatedAt:       day(3),
		},
	}

	inserted, err := s.Commit(ctx, batch)
	require.NoError(t, err)
	assert.Len(t, inserted, 2)

	t.Run("duplicates are skipped", func(t *testing.T) {
		inserted, err := s.Commit(ctx, batch)
		require.NoError(t, err)
		assert.Empty(t, inserted)

		n, err := s.CountOperations(ctx, "acc-1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("state is saved with the batch", func(t *testing.T) {
		state, err := s.LoadState(ctx, "acc-1", "bitcoin")
		require.NoError(t, err)
		assert.Equal(t, batch.State.Cursor, state.Cursor)
		assert.Equal(t, uint64(7), state.LastBlockHeight)

		other, err := s.LoadState(ctx, "acc-1", "ethereum")
		require.NoError(t, err)
		assert.Equal(t, accountsync.State{}, other)
	})

	t.Run("operations round trip", func(t *testing.T) {
		ops, err := s.ListOperations(ctx, "acc-1", 0, 0)
		require.NoError(t, err)
		require.Len(t, ops, 2)

		assert.Equal(t, unknown.UID, ops[0].UID)
		assert.Nil(t, ops[0].Amount)
		assert.True(t, ops[0].AmountUnknown)
		assert.Nil(t, ops[0].Block)

		assert.Equal(t, send, ops[1])
	})

	t.Run("failed batch is rolled back", func(t *testing.T) {
		orphan := send
		orphan.UID = "u3"
		orphan.AccountUID = "acc-9"

		_, err := s.Commit(ctx, accountsync.Batch{
			AccountUID:   "acc-1",
			Synchronizer: "bitcoin",
			Operations:   []operation.Operation{orphan},
			State:        accountsync.State{LastBlockHeight: 99},
		})
		require.Error(t, err)

		state, err := s.LoadState(ctx, "acc-1", "bitcoin")
		require.NoError(t, err)
		assert.Equal(t, uint64(7), state.LastBlockHeight)
	})

	t.Run("block upsert keeps the last write", func(t *testing.T) {
		require.NoError(t, s.UpsertBlock(ctx, operation.Block{Hash: "h1", Height: 8, Time: day(4), Currency: "bitcoin"}))

		ops, err := s.ListOperations(ctx, "acc-1", 1, 1)
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, uint64(8), ops[0].Block.Height)
	})
}

func TestEraseDataSince(t *testing.T) {
	s := open(t)
	ctx := t.Context()
	register(t, s, "acc-1", "bitcoin", day(1))

	b1 := operation.Block{Hash: "h1", Height: 1, Time: day(1), Currency: "bitcoin"}
	b2 := operation.Block{Hash: "h2", Height: 2, Time: day(2), Currency: "bitcoin"}
	op := func(uid string, b operation.Block) operation.Operation {
		return operation.Operation{
			UID: uid, AccountUID: "acc-1", WalletUID: "wallet-1", Currency: "bitcoin",
			Type: operation.TypeReceive, Amount: big.NewInt(1), Fees: new(big.Int),
			Date: b.Time, Block: &b, TxHash: uid, Trust: operation.TrustTrusted,
		}
	}

	_, err := s.Commit(ctx, accountsync.Batch{
		AccountUID:   "acc-1",
		Synchronizer: "bitcoin",
		Blocks:       []operation.Block{b1, b2},
		Operations:   []operation.Operation{op("u1", b1), op("u2", b2)},
	})
	require.NoError(t, err)

	var anchor *operation.Block
	err = s.EraseDataSince(ctx, "acc-1", "bitcoin", day(2), func(b *operation.Block) accountsync.State {
		anchor = b
		return accountsync.State{Cursor: chain.Cursor{BlockHash: b.Hash, Height: b.Height}}
	})
	require.NoError(t, err)

	require.NotNil(t, anchor)
	assert.Equal(t, b1, *anchor)

	n, err := s.CountOperations(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	state, err := s.LoadState(ctx, "acc-1", "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, chain.Cursor{BlockHash: "h1", Height: 1}, state.Cursor)

	t.Run("without remaining operations the anchor is nil", func(t *testing.T) {
		var called bool
		err := s.EraseDataSince(ctx, "acc-1", "bitcoin", day(1), func(b *operation.Block) accountsync.State {
			called = true
			assert.Nil(t, b)
			return accountsync.State{}
		})
		require.NoError(t, err)
		assert.True(t, called)
	})
}
