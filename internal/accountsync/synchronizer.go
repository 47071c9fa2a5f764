// Package accountsync implements the account synchronization engine: it
// pages through an explorer, interprets every transaction against the
// account keychain, and persists the resulting operations together with a
// resumable cursor. Runs are serialized per account and report their
// progress through an event bus.
package accountsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/eventbus"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/types"
	"github.com/teivah/onecontext"
)

var (
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("synchronizer closed")

	// ErrRunInProgress is returned by EraseDataSince while the account is
	// being synchronized.
	ErrRunInProgress = errors.New("synchronization in progress")

	// ErrEraseInProgress is returned by Synchronize while the account data
	// is being erased.
	ErrEraseInProgress = errors.New("erase in progress")
)

// Executor runs synchronization tasks. *workerpool.WorkerPool satisfies it.
// Submit may run the task before returning.
type Executor interface {
	Submit(task func())
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(task func())

func (f ExecutorFunc) Submit(task func()) {
	f(task)
}

type config struct {
	name       string
	executor   Executor
	publisher  eventbus.Publisher
	trust      operation.TrustPolicy
	clock      func() time.Time
	maxRewinds int
}

// Option configures a Synchronizer.
type Option func(*config)

// WithName sets the name the saved state is stored under. It defaults to
// the codec currency.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithExecutor sets the executor runs are submitted to. By default each run
// gets its own goroutine.
func WithExecutor(e Executor) Option {
	return func(c *config) {
		c.executor = e
	}
}

// WithPublisher forwards every event to p in addition to the run bus.
func WithPublisher(p eventbus.Publisher) Option {
	return func(c *config) {
		c.publisher = p
	}
}

// WithTrustPolicy sets how the trust indicator of new operations is
// computed. The default marks mined operations as trusted.
func WithTrustPolicy(p operation.TrustPolicy) Option {
	return func(c *config) {
		c.trust = p
	}
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithMaxRewinds sets how many times a run restarts from genesis when the
// block its cursor points at vanished. Defaults to 1.
func WithMaxRewinds(n int) Option {
	return func(c *config) {
		c.maxRewinds = n
	}
}

// Synchronizer synchronizes accounts of one chain.
type Synchronizer[T any] struct {
	explorer    chain.Explorer[T]
	codec       chain.Codec[T]
	interpreter chain.Interpreter[T]
	keychains   KeychainStore
	store       OperationStore
	cfg         config
	telemetry   *instruments

	lifetime context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	inflight map[string]*Run
	erasing  types.Set[string]
}

// New returns a synchronizer for the chain described by codec.
func New[T any](
	explorer chain.Explorer[T],
	codec chain.Codec[T],
	interpreter chain.Interpreter[T],
	keychains KeychainStore,
	store OperationStore,
	opts ...Option,
) *Synchronizer[T] {
	cfg := config{
		name:       codec.Currency(),
		executor:   ExecutorFunc(func(task func()) { go task() }),
		trust:      operation.ConfirmationTrust(1),
		clock:      time.Now,
		maxRewinds: 1,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	lifetime, cancel := context.WithCancel(context.Background())

	return &Synchronizer[T]{
		explorer:    explorer,
		codec:       codec,
		interpreter: interpreter,
		keychains:   keychains,
		store:       store,
		cfg:         cfg,
		telemetry:   newInstruments(),
		lifetime:    lifetime,
		cancel:      cancel,
		inflight:    make(map[string]*Run),
		erasing:     types.NewSet[string](),
	}
}

// Name returns the name the saved states of this synchronizer are stored under.
func (s *Synchronizer[T]) Name() string {
	return s.cfg.name
}

// Synchronize starts synchronizing account, or returns the run already in
// progress for it. The run outlives ctx: cancelling ctx only stops the
// caller from waiting, while its values (loggers, spans) are inherited.
func (s *Synchronizer[T]) Synchronize(ctx context.Context, account operation.Account) (*Run, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}

	if run, ok := s.inflight[account.UID]; ok {
		s.mu.Unlock()
		logger.Debug(ctx, "joining synchronization in progress", "account.uid", account.UID, "sync.run_id", run.ID)
		return run, nil
	}

	if s.erasing.Contains(account.UID) {
		s.mu.Unlock()
		return nil, ErrEraseInProgress
	}

	if account.Currency == "" {
		account.Currency = s.codec.Currency()
	}

	run := newRun(account)
	s.inflight[account.UID] = run
	s.wg.Add(1)
	s.mu.Unlock()

	runCtx, cancel := onecontext.Merge(s.lifetime, context.WithoutCancel(ctx))

	s.cfg.executor.Submit(func() {
		defer s.wg.Done()
		defer cancel()

		s.execute(runCtx, run)
	})

	return run, nil
}

// EraseDataSince deletes the operations of account dated at or after since
// and rewinds the saved cursor so the next run fetches them again. Chains
// paginated by block hash resume from the most recent block still
// referenced by the account; the others restart from genesis.
func (s *Synchronizer[T]) EraseDataSince(ctx context.Context, account operation.Account, since time.Time) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	if _, ok := s.inflight[account.UID]; ok {
		s.mu.Unlock()
		return ErrRunInProgress
	}

	if s.erasing.Contains(account.UID) {
		s.mu.Unlock()
		return ErrEraseInProgress
	}

	s.erasing.Add(account.UID)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.erasing.Delete(account.UID)
		s.mu.Unlock()
	}()

	_, byBlockHash := s.codec.Paging().(chain.BlockHashPaging)

	addresses, err := s.keychains.Addresses(ctx, account.UID)
	if err != nil {
		return persistence(err, "load keychain")
	}
	fingerprint := chain.NewAddressSet(s.codec.NormalizeAddress, addresses...).Fingerprint()

	rewind := func(anchor *operation.Block) State {
		state := State{UpdatedAt: s.cfg.clock().UTC(), Keychain: fingerprint}
		if anchor == nil {
			return state
		}

		state.LastBlockHeight = anchor.Height
		if byBlockHash {
			state.Cursor = chain.Cursor{BlockHash: anchor.Hash, Height: anchor.Height}
		}

		return state
	}

	if err := s.store.EraseDataSince(ctx, account.UID, s.cfg.name, since.UTC(), rewind); err != nil {
		return persistence(err, "erase account data")
	}

	logger.Info(ctx, "account data erased", "account.uid", account.UID, "since", since)
	return nil
}

// Close cancels the runs in progress and waits for them to emit their
// terminal event. It is safe to call Close more than once.
func (s *Synchronizer[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
