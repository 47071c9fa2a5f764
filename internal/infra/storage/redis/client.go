// Package redis keeps keychains in sorted sets and fans synchronization
// events out over pub/sub.
package redis

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "walletsync"

type client struct {
	conn    *redis.Client
	channel string
}

func (c *client) Close() error {
	return c.conn.Close()
}

// NewClient connects to Redis and verifies the connection. Events are
// published on channel, or on "walletsync:events" when it is empty.
func NewClient(ctx context.Context, addr, username, password string, db int, channel string) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		conn.Close()
		return nil, err
	}

	if channel == "" {
		channel = keyPrefix + ":events"
	}

	return &client{
		conn:    conn,
		channel: channel,
	}, nil
}
