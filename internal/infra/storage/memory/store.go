// Package memory is a process local implementation of every storage
// contract of the engine. It backs tests and one-shot CLI runs that do not
// need durability.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/walletregistry"
)

type stateKey struct {
	account      string
	synchronizer string
}

// Store keeps accounts, keychains, operations, blocks and saved states in
// memory. The zero value is not usable; call New.
type Store struct {
	mu sync.RWMutex

	accounts   map[string]walletregistry.Registration
	keychains  map[string][]string
	operations map[string][]operation.Operation // by account, insertion order
	uids       map[string]struct{}
	blocks     map[string]operation.Block
	states     map[stateKey]accountsync.State
}

var (
	_ accountsync.KeychainStore      = (*Store)(nil)
	_ accountsync.OperationStore     = (*Store)(nil)
	_ walletregistry.AccountStorage  = (*Store)(nil)
	_ walletregistry.KeychainStorage = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{
		accounts:   make(map[string]walletregistry.Registration),
		keychains:  make(map[string][]string),
		operations: make(map[string][]operation.Operation),
		uids:       make(map[string]struct{}),
		blocks:     make(map[string]operation.Block),
		states:     make(map[stateKey]accountsync.State),
	}
}

func (s *Store) RegisterAccount(_ context.Context, r walletregistry.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[r.UID]; ok {
		return walletregistry.ErrAccountAlreadyRegistered
	}

	s.accounts[r.UID] = r
	return nil
}

func (s *Store) GetAccount(_ context.Context, uid string) (operation.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.accounts[uid]
	if !ok {
		return operation.Account{}, walletregistry.ErrAccountNotFound
	}

	return r.Account(), nil
}

func (s *Store) ListAccounts(_ context.Context, currency string) ([]operation.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	registrations := make([]walletregistry.Registration, 0, len(s.accounts))
	for _, r := range s.accounts {
		if currency == "" || r.Currency == currency {
			registrations = append(registrations, r)
		}
	}

	sort.Slice(registrations, func(i, j int) bool {
		if registrations[i].CreatedAt.Equal(registrations[j].CreatedAt) {
			return registrations[i].UID < registrations[j].UID
		}

		return registrations[i].CreatedAt.Before(registrations[j].CreatedAt)
	})

	accounts := make([]operation.Account, 0, len(registrations))
	for _, r := range registrations {
		accounts = append(accounts, r.Account())
	}

	return accounts, nil
}

func (s *Store) Addresses(_ context.Context, accountUID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.keychains[accountUID]), nil
}

func (s *Store) AddAddresses(_ context.Context, accountUID string, addresses ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keychain := s.keychains[accountUID]
	for _, address := range addresses {
		if !slices.Contains(keychain, address) {
			keychain = append(keychain, address)
		}
	}

	s.keychains[accountUID] = keychain
	return nil
}

func (s *Store) RemoveAddresses(_ context.Context, accountUID string, addresses ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keychains[accountUID] = slices.DeleteFunc(s.keychains[accountUID], func(address string) bool {
		return slices.Contains(addresses, address)
	})

	return nil
}

func (s *Store) LoadState(_ context.Context, accountUID, synchronizer string) (accountsync.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.states[stateKey{accountUID, synchronizer}], nil
}

func (s *Store) CountOperations(_ context.Context, accountUID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.operations[accountUID]), nil
}

// ListOperations returns the operations of an account ordered by date,
// newest first.
func (s *Store) ListOperations(_ context.Context, accountUID string, limit, offset int) ([]operation.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ops := slices.Clone(s.operations[accountUID])
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Date.After(ops[j].Date) })

	if offset >= len(ops) {
		return nil, nil
	}

	ops = ops[offset:]
	if limit > 0 && limit < len(ops) {
		ops = ops[:limit]
	}

	return ops, nil
}

// Block returns a stored block by hash.
func (s *Store) Block(hash string) (operation.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blocks[hash]
	return b, ok
}

func (s *Store) Commit(_ context.Context, batch accountsync.Batch) ([]operation.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range batch.Blocks {
		s.blocks[b.Hash] = b
	}

	var inserted []operation.Operation
	for _, op := range batch.Operations {
		if _, ok := s.uids[op.UID]; ok {
			continue
		}

		s.uids[op.UID] = struct{}{}
		s.operations[op.AccountUID] = append(s.operations[op.AccountUID], op)
		inserted = append(inserted, op)
	}

	s.states[stateKey{batch.AccountUID, batch.Synchronizer}] = batch.State
	return inserted, nil
}

func (s *Store) UpsertBlock(_ context.Context, block operation.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks[block.Hash] = block
	return nil
}

func (s *Store) EraseDataSince(_ context.Context, accountUID, synchronizer string, since time.Time, rewind accountsync.Rewind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var anchor *operation.Block
	kept := s.operations[accountUID][:0]
	for _, op := range s.operations[accountUID] {
		if !op.Date.Before(since) {
			delete(s.uids, op.UID)
			continue
		}

		kept = append(kept, op)
		if op.Block != nil && (anchor == nil || op.Block.Height > anchor.Height) {
			b := *op.Block
			anchor = &b
		}
	}

	s.operations[accountUID] = kept
	s.states[stateKey{accountUID, synchronizer}] = rewind(anchor)
	return nil
}
