package main

import (
	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/chains/algorand"
	"github.com/gabapcia/walletsync/internal/chains/bitcoin"
	"github.com/gabapcia/walletsync/internal/chains/cosmos"
	"github.com/gabapcia/walletsync/internal/chains/ethereum"
	"github.com/gabapcia/walletsync/internal/chains/stellar"
	"github.com/gabapcia/walletsync/internal/chains/tezos"
	"github.com/gabapcia/walletsync/internal/config"
	"github.com/gabapcia/walletsync/internal/handlers/cli"
	"github.com/gabapcia/walletsync/internal/infra/explorer"
	"github.com/gabapcia/walletsync/internal/operation"
	httpclient "github.com/gabapcia/walletsync/internal/pkg/transport/http"
	"github.com/gabapcia/walletsync/internal/pkg/transport/rest"
	"github.com/gabapcia/walletsync/internal/syncd"

	"golang.org/x/time/rate"
)

var supportedCurrencies = []string{"algorand", "bitcoin", "cosmos", "ethereum", "stellar", "tezos"}

// synchronizer is what every typed accountsync.Synchronizer offers once
// its chain type is erased.
type synchronizer interface {
	cli.Synchronizer
	syncd.Runner
	Close()
}

type chainSet map[string]synchronizer

func (c chainSet) synchronizers() map[string]cli.Synchronizer {
	out := make(map[string]cli.Synchronizer, len(c))
	for currency, s := range c {
		out[currency] = s
	}

	return out
}

func (c chainSet) syncers() map[string]syncd.AccountSyncer {
	out := make(map[string]syncd.AccountSyncer, len(c))
	for currency, s := range c {
		out[currency] = syncd.Await(s)
	}

	return out
}

// Close stops every synchronizer and waits for their runs.
func (c chainSet) Close() {
	for _, s := range c {
		s.Close()
	}
}

func newChains(cfg config.Config, keychains accountsync.KeychainStore, store accountsync.OperationStore, opts ...accountsync.Option) chainSet {
	set := make(chainSet)

	opts = append(opts, accountsync.WithTrustPolicy(operation.ConfirmationTrust(cfg.Sync.MinConfirmations)))

	for currency, url := range cfg.Explorer.URLs() {
		switch currency {
		case "bitcoin":
			set[currency] = newSynchronizer[bitcoin.Transaction](cfg.Explorer, url, bitcoin.NewCodec(currency), chain.InterpreterFunc[bitcoin.Transaction](bitcoin.Interpret), keychains, store, opts)
		case "ethereum":
			set[currency] = newSynchronizer[ethereum.Transaction](cfg.Explorer, url, ethereum.NewCodec(currency), chain.InterpreterFunc[ethereum.Transaction](ethereum.Interpret), keychains, store, opts)
		case "cosmos":
			set[currency] = newSynchronizer[cosmos.Transaction](cfg.Explorer, url, cosmos.NewCodec(currency), cosmos.NewInterpreter(cfg.Explorer.CosmosDenom), keychains, store, opts)
		case "tezos":
			set[currency] = newSynchronizer[tezos.Transaction](cfg.Explorer, url, tezos.NewCodec(currency), tezos.NewInterpreter(currency), keychains, store, opts)
		case "stellar":
			set[currency] = newSynchronizer[stellar.Record](cfg.Explorer, url, stellar.NewCodec(currency), chain.InterpreterFunc[stellar.Record](stellar.Interpret), keychains, store, opts)
		case "algorand":
			set[currency] = newSynchronizer[algorand.Transaction](cfg.Explorer, url, algorand.NewCodec(currency), algorand.NewInterpreter(currency), keychains, store, opts)
		}
	}

	return set
}

// newSynchronizer builds the explorer client of one chain and the
// synchronizer driving it. Reads are retried and rate limited; pushes are
// sent once.
func newSynchronizer[T any](
	cfg config.Explorer,
	baseURL string,
	codec chain.Codec[T],
	interpreter chain.Interpreter[T],
	keychains accountsync.KeychainStore,
	store accountsync.OperationStore,
	opts []accountsync.Option,
) *accountsync.Synchronizer[T] {
	readOpts := []httpclient.Option{
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithRetryMax(cfg.RetryMax),
		httpclient.WithRetryWaitMin(cfg.RetryWaitMin),
		httpclient.WithRetryWaitMax(cfg.RetryWaitMax),
	}
	if cfg.RateLimit > 0 {
		readOpts = append(readOpts, httpclient.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)))
	}

	reads := rest.NewClient(httpclient.NewClient(readOpts...), baseURL)
	pushes := rest.NewClient(httpclient.NewClient(httpclient.WithTimeout(cfg.Timeout), httpclient.WithRetryMax(0)), baseURL)

	client := explorer.NewClient[T](reads, pushes, codec,
		explorer.WithPageSize(cfg.PageSize),
		explorer.WithBlockCacheTTL(cfg.BlockCacheTTL),
		explorer.WithSessions(cfg.Sessions),
	)

	return accountsync.New[T](client, codec, interpreter, keychains, store, opts...)
}
