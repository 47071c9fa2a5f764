package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/config"
	"github.com/gabapcia/walletsync/internal/handlers/cli"
	"github.com/gabapcia/walletsync/internal/infra/storage/postgres"
	"github.com/gabapcia/walletsync/internal/infra/storage/redis"
	"github.com/gabapcia/walletsync/internal/infra/storage/sqlite"
	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletsync/internal/pkg/telemetry"
	"github.com/gabapcia/walletsync/internal/syncd"
	"github.com/gabapcia/walletsync/internal/syncerr"
	"github.com/gabapcia/walletsync/internal/walletregistry"

	"github.com/gammazero/workerpool"
)

// store is what a storage backend provides to the engine.
type store interface {
	accountsync.OperationStore
	accountsync.KeychainStore
	walletregistry.AccountStorage
	walletregistry.KeychainStorage
	cli.OperationLister
	io.Closer
}

type keychainStore interface {
	accountsync.KeychainStore
	walletregistry.KeychainStorage
}

func openStore(ctx context.Context, c config.Storage) (store, error) {
	switch c.Driver {
	case "postgres":
		return postgres.Open(ctx, c.DSN, postgres.Options{
			MaxOpenConns:    c.MaxOpenConns,
			MaxIdleConns:    c.MaxIdleConns,
			ConnMaxLifetime: c.ConnMaxLifetime,
		})
	default:
		return sqlite.Open(ctx, c.Path)
	}
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.TelemetryEnabled {
		shutdown, terr := telemetry.Init(ctx, cfg.ServiceName)
		if terr != nil {
			return fmt.Errorf("init telemetry: %w", terr)
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()

			err = errors.Join(err, shutdown(ctx))
		}()
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		keychains keychainStore = db
		publisher accountsync.Option
		events    cli.EventSource
	)

	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer rdb.Close()

		publisher = accountsync.WithPublisher(rdb)
		events = rdb

		if cfg.Redis.Keychains {
			keychains = rdb
		}
	}

	pool := workerpool.New(cfg.Daemon.Workers)
	defer pool.StopWait()

	opts := []accountsync.Option{
		accountsync.WithExecutor(pool),
		accountsync.WithMaxRewinds(cfg.Sync.MaxRewinds),
	}
	if publisher != nil {
		opts = append(opts, publisher)
	}

	chains := newChains(cfg, keychains, db, opts...)
	defer chains.Close()

	registry := walletregistry.New(db, keychains, supportedCurrencies...)

	daemon := syncd.New(registry, chains.syncers(),
		syncd.WithInterval(cfg.Daemon.Interval),
		syncd.WithRetry(retry.New(
			retry.WithAttempts(cfg.Daemon.RetryAttempts),
			retry.WithDelay(cfg.Daemon.RetryDelay),
			retry.WithMaxDelay(cfg.Daemon.Interval),
			retry.WithRetryIf(syncerr.Retryable),
			retry.WithOnRetry(func(attempt uint, err error) {
				logger.Warn(ctx, "retrying account synchronization", "retry.attempt", attempt+1, "error", err)
			}),
		)),
	)

	return cli.Run(ctx, cli.Dependencies{
		Registry:      registry,
		Daemon:        daemon,
		Synchronizers: chains.synchronizers(),
		Operations:    db,
		Events:        events,
	})
}
