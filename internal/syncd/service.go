// Package syncd keeps every registered account up to date. It sweeps the
// registry on a fixed interval and hands each account to the synchronizer
// of its currency, retrying runs that failed for a transient reason.
package syncd

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletsync/internal/pkg/types"
	"github.com/gabapcia/walletsync/internal/syncerr"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// AccountSyncer synchronizes one account and returns when the run is over.
type AccountSyncer interface {
	SyncAccount(ctx context.Context, account operation.Account) error
}

// Runner starts a synchronization run without waiting for it.
type Runner interface {
	Synchronize(ctx context.Context, account operation.Account) (*accountsync.Run, error)
}

type awaiting struct {
	runner Runner
}

// Await turns a Runner into an AccountSyncer that waits for the run outcome.
func Await(runner Runner) AccountSyncer {
	return awaiting{runner: runner}
}

func (a awaiting) SyncAccount(ctx context.Context, account operation.Account) error {
	run, err := a.runner.Synchronize(ctx, account)
	if err != nil {
		return err
	}

	_, err = run.Wait(ctx)
	return err
}

// AccountLister lists the registered accounts of a currency.
type AccountLister interface {
	ListAccounts(ctx context.Context, currency string) ([]operation.Account, error)
}

// Service defines the daemon lifecycle.
type Service interface {
	// Start sweeps the registry once and then on every interval tick until
	// Close is called. Returns ErrServiceAlreadyStarted if called twice.
	Start(ctx context.Context) error

	// Close stops sweeping and waits for the accounts being handled. It is
	// safe to call Close even if the service was never started.
	Close()
}

// closeFunc stops the sweep loop and waits for the in-flight accounts.
type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	accounts AccountLister
	syncers  map[string]AccountSyncer
	interval time.Duration
	retry    retry.Retry

	wg       sync.WaitGroup
	activeMu sync.Mutex
	active   types.Set[string]
}

var _ Service = new(service)

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		s.loop(ctx)
	}()

	s.closeFunc = func() {
		cancel()
		<-done
		s.wg.Wait()
	}
	s.isStarted = true

	logger.Info(ctx, "sync daemon started", "syncd.interval", s.interval.String(), "syncd.currencies", len(s.syncers))
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}

	s.closeFunc = nil
	s.isStarted = false
}

func (s *service) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sweep starts one handler per registered account that is not already
// being handled by a previous sweep.
func (s *service) sweep(ctx context.Context) {
	for currency, syncer := range s.syncers {
		accounts, err := s.accounts.ListAccounts(ctx, currency)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error(ctx, "list accounts failed", "account.currency", currency, "error", err)
			}
			continue
		}

		for _, account := range accounts {
			if !s.claim(account.UID) {
				continue
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer s.release(account.UID)

				s.handle(ctx, syncer, account)
			}()
		}
	}
}

func (s *service) claim(accountUID string) bool {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()

	if s.active.Contains(accountUID) {
		return false
	}

	s.active.Add(accountUID)
	return true
}

func (s *service) release(accountUID string) {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()

	s.active.Delete(accountUID)
}

// handle synchronizes one account, running it again while the failure is
// transport or API related.
func (s *service) handle(ctx context.Context, syncer AccountSyncer, account operation.Account) {
	ctx = logger.Derive(ctx, "account.uid", account.UID, "account.currency", account.Currency)

	err := s.retry.Execute(ctx, func() error {
		return syncer.SyncAccount(ctx, account)
	})

	switch {
	case err == nil:
	case errors.Is(err, accountsync.ErrEraseInProgress):
		logger.Info(ctx, "account skipped while its data is erased")
	case errors.Is(err, accountsync.ErrClosed), ctx.Err() != nil:
	default:
		code, msg := syncerr.Classify(err)
		logger.Error(ctx, "account synchronization failed", "error.code", string(code), "error", msg)
	}
}

// New creates the daemon. syncers maps a currency to the synchronizer of
// its chain.
func New(accounts AccountLister, syncers map[string]AccountSyncer, opts ...Option) *service {
	cfg := config{
		interval: time.Minute,
		retry:    retry.New(retry.WithRetryIf(syncerr.Retryable)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		accounts: accounts,
		syncers:  syncers,
		interval: cfg.interval,
		retry:    cfg.retry,
		active:   types.NewSet[string](),
	}
}
