package explorer

import (
	"context"
	"net/http"

	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/pkg/transport/rest"
	"github.com/gabapcia/walletsync/internal/wire"

	"github.com/patrickmn/go-cache"
)

// GetCurrentBlock returns the chain tip. Consecutive runs share it for the
// cache TTL.
func (c *client[T]) GetCurrentBlock(ctx context.Context) (operation.Block, error) {
	if c.blocks != nil {
		if b, ok := c.blocks.Get(currentBlockKey); ok {
			return b.(operation.Block), nil
		}
	}

	body, err := c.reads.Do(ctx, rest.Request{Method: http.MethodGet, Path: "/blocks/current"})
	if err != nil {
		return operation.Block{}, err
	}
	defer body.Close()

	block, err := wire.DecodeBlock(body, c.codec.Currency())
	if err != nil {
		return operation.Block{}, err
	}

	if c.blocks != nil {
		c.blocks.Set(currentBlockKey, block, cache.DefaultExpiration)
	}

	return block, nil
}
