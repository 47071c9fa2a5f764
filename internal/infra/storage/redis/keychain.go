package redis

import (
	"context"
	"fmt"

	"github.com/gabapcia/walletsync/internal/accountsync"
	"github.com/gabapcia/walletsync/internal/walletregistry"

	redis "github.com/redis/go-redis/v9"
)

// keychainKey returns the sorted set holding the addresses of an account.
// Scores are insertion sequence numbers so the keychain keeps its order.
//
// Format: "walletsync:keychain:{account}"
func keychainKey(accountUID string) string {
	return fmt.Sprintf("%s:keychain:%s", keyPrefix, accountUID)
}

// keychainSeqKey holds the last sequence number handed to an address of
// the account.
func keychainSeqKey(accountUID string) string {
	return fmt.Sprintf("%s:keychain-seq:%s", keyPrefix, accountUID)
}

// Addresses returns the keychain in insertion order.
func (c *client) Addresses(ctx context.Context, accountUID string) ([]string, error) {
	return c.conn.ZRange(ctx, keychainKey(accountUID), 0, -1).Result()
}

// AddAddresses appends the addresses that are not in the keychain yet.
// Addresses already present keep their original position.
func (c *client) AddAddresses(ctx context.Context, accountUID string, addresses ...string) error {
	if len(addresses) == 0 {
		return nil
	}

	last, err := c.conn.IncrBy(ctx, keychainSeqKey(accountUID), int64(len(addresses))).Result()
	if err != nil {
		return err
	}

	first := last - int64(len(addresses)) + 1
	members := make([]redis.Z, len(addresses))
	for i, address := range addresses {
		members[i] = redis.Z{Score: float64(first + int64(i)), Member: address}
	}

	return c.conn.ZAddNX(ctx, keychainKey(accountUID), members...).Err()
}

func (c *client) RemoveAddresses(ctx context.Context, accountUID string, addresses ...string) error {
	if len(addresses) == 0 {
		return nil
	}

	members := make([]any, len(addresses))
	for i, address := range addresses {
		members[i] = address
	}

	return c.conn.ZRem(ctx, keychainKey(accountUID), members...).Err()
}

var (
	_ accountsync.KeychainStore      = (*client)(nil)
	_ walletregistry.KeychainStorage = (*client)(nil)
)
