// Package explorer implements chain.Explorer over the REST API of a ledger
// indexing service. It is generic over the chain transaction type; the
// chain's Codec decodes payloads and resolves pagination.
//
// Routes, relative to the explorer base URL:
//
//	GET    /blocks/current
//	GET    /addresses/{a,b,...}/transactions?limit=&offset=&blockHash=&token=
//	GET    /transactions/{hash}
//	POST   /transactions/send      {"tx": "<hex>"}
//	POST   /syncToken
//	DELETE /syncToken
//
// Every call of a synchronization run carries the session token in the
// X-LedgerWallet-SyncToken header.
package explorer

import (
	"time"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/pkg/transport/rest"

	"github.com/patrickmn/go-cache"
)

// HeaderSyncToken carries the session token of a synchronization run.
const HeaderSyncToken = "X-LedgerWallet-SyncToken"

const currentBlockKey = "current"

type config struct {
	pageSize      int
	blockCacheTTL time.Duration
	sessions      bool
}

// Option configures a client.
type Option func(*config)

// WithPageSize sets the number of transactions requested per page.
// Default: 100.
func WithPageSize(n int) Option {
	return func(c *config) {
		c.pageSize = n
	}
}

// WithBlockCacheTTL sets how long the current block is served from memory.
// Zero disables caching. Default: 5 seconds.
func WithBlockCacheTTL(d time.Duration) Option {
	return func(c *config) {
		c.blockCacheTTL = d
	}
}

// WithSessions enables server side sessions. Explorers without session
// support get an empty token and no session calls. Default: disabled.
func WithSessions(enabled bool) Option {
	return func(c *config) {
		c.sessions = enabled
	}
}

type client[T any] struct {
	reads  rest.Client // retried
	pushes rest.Client // never retried
	codec  chain.Codec[T]
	cfg    config
	blocks *cache.Cache
}

// NewClient returns an explorer for the chain of codec. reads serves every
// query; pushes relays signed transactions and must not retry.
func NewClient[T any](reads, pushes rest.Client, codec chain.Codec[T], opts ...Option) *client[T] {
	cfg := config{
		pageSize:      100,
		blockCacheTTL: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &client[T]{
		reads:  reads,
		pushes: pushes,
		codec:  codec,
		cfg:    cfg,
	}

	if cfg.blockCacheTTL > 0 {
		c.blocks = cache.New(cfg.blockCacheTTL, 2*cfg.blockCacheTTL)
	}

	return c
}
