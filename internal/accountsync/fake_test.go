package accountsync_test

import (
	"context"
	"errors"
	"io"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/infra/storage/memory"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/syncerr"
)

// tx is a minimal account based transaction.
type tx struct {
	Hash       string
	From       string
	To         string
	Amount     int64
	Height     uint64
	Originates string
	Invalid    bool
}

func (t tx) block() *operation.Block {
	if t.Height == 0 {
		return nil
	}

	return &operation.Block{
		Hash:     "block-" + t.Hash,
		Height:   t.Height,
		Time:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(t.Height) * time.Minute),
		Currency: "fake",
	}
}

type codec struct {
	paging chain.Paging
}

func (codec) Currency() string { return "fake" }

func (codec) DecodePage(io.Reader) (chain.Page[tx], error) {
	return chain.Page[tx]{}, errors.New("not used")
}

func (codec) DecodeTransaction(io.Reader) (tx, error) {
	return tx{}, errors.New("not used")
}

func (codec) BlockOf(t tx) *operation.Block { return t.block() }

func (c codec) Paging() chain.Paging { return c.paging }

func (codec) NormalizeAddress(address string) string { return address }

var interpreter = chain.InterpreterFunc[tx](func(t tx, keychain chain.Keychain) (chain.Interpretation, error) {
	var res chain.Interpretation
	if t.Invalid {
		return res, syncerr.Interpretation("transaction %s has no sender", t.Hash)
	}

	base := operation.Draft{
		NaturalKey: t.Hash,
		Amount:     big.NewInt(t.Amount),
		Senders:    []string{t.From},
		Recipients: []string{t.To},
		TxHash:     t.Hash,
		Block:      t.block(),
		Success:    true,
	}
	if b := t.block(); b != nil {
		base.Date = b.Time
	}

	if keychain.Contains(t.From) {
		d := base
		d.Type = operation.TypeSend
		res.Drafts = append(res.Drafts, d)

		if t.Originates != "" {
			res.Discovered = append(res.Discovered, t.Originates)
		}
	}

	if keychain.Contains(t.To) {
		d := base
		d.Type = operation.TypeReceive
		res.Drafts = append(res.Drafts, d)
	}

	return res, nil
})

// explorer serves transactions by offset. By default it ignores the
// requested addresses so that interpretation alone decides what belongs to
// the account; with byAddress set it behaves like a real explorer and pages
// through the transactions involving one of the addresses only.
type explorer struct {
	mu sync.Mutex

	txs       []tx
	pageSize  int
	tip       operation.Block
	stall     bool
	byAddress bool
	errs      map[int]error
	gate      chan struct{}

	cursors   []chain.Cursor
	addresses [][]string
	sessions  []string
	killed    []string
}

func newExplorer(pageSize int, txs ...tx) *explorer {
	return &explorer{
		txs:      txs,
		pageSize: pageSize,
		tip:      operation.Block{Hash: "tip", Height: 100, Currency: "fake"},
		errs:     map[int]error{},
	}
}

func (e *explorer) StartSession(context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	token := "session-" + string(rune('a'+len(e.sessions)))
	e.sessions = append(e.sessions, token)
	return token, nil
}

func (e *explorer) KillSession(_ context.Context, session string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.killed = append(e.killed, session)
	return nil
}

func (e *explorer) GetCurrentBlock(context.Context) (operation.Block, error) {
	return e.tip, nil
}

func (e *explorer) GetTransactions(ctx context.Context, addresses []string, cursor chain.Cursor, _ string) (chain.Bulk[tx], error) {
	if e.gate != nil {
		select {
		case <-e.gate:
		case <-ctx.Done():
			return chain.Bulk[tx]{}, ctx.Err()
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cursors = append(e.cursors, cursor)
	e.addresses = append(e.addresses, addresses)

	if err := e.errs[len(e.cursors)]; err != nil {
		return chain.Bulk[tx]{}, err
	}

	txs := e.txs
	if e.byAddress {
		txs = involving(e.txs, addresses)
	}

	start := min(int(cursor.Offset), len(txs))
	end := min(start+e.pageSize, len(txs))

	next := cursor
	if !e.stall {
		next.Offset = uint64(end)
	}

	return chain.Bulk[tx]{
		Transactions: txs[start:end],
		HasNext:      end < len(txs),
		Next:         next,
	}, nil
}

func involving(txs []tx, addresses []string) []tx {
	var out []tx
	for _, t := range txs {
		if slices.Contains(addresses, t.From) || slices.Contains(addresses, t.To) {
			out = append(out, t)
		}
	}

	return out
}

func (e *explorer) GetTransactionByHash(context.Context, string) (tx, error) {
	return tx{}, syncerr.NotFound("not used")
}

func (e *explorer) PushTransaction(context.Context, []byte) (string, error) {
	return "", errors.New("not used")
}

func (e *explorer) calls() []chain.Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]chain.Cursor(nil), e.cursors...)
}

// flakyStore fails the failOn-th commit.
type flakyStore struct {
	*memory.Store

	mu      sync.Mutex
	commits int
	failOn  int
}

func (s *flakyStore) Commit(ctx context.Context, batch accountsync.Batch) ([]operation.Operation, error) {
	s.mu.Lock()
	s.commits++
	n := s.commits
	s.mu.Unlock()

	if n == s.failOn {
		return nil, errors.New("disk full")
	}

	return s.Store.Commit(ctx, batch)
}
