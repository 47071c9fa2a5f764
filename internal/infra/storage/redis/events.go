package redis

import (
	"context"
	"encoding/json"

	"github.com/gabapcia/walletsync/internal/eventbus"
	"github.com/gabapcia/walletsync/internal/pkg/x/chflow"
)

// Publish forwards a synchronization event as a JSON message on the
// configured pub/sub channel.
func (c *client) Publish(ctx context.Context, event eventbus.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return c.conn.Publish(ctx, c.channel, payload).Err()
}

// Events subscribes to the event channel and decodes every message until
// ctx is done. Messages that are not events are dropped.
func (c *client) Events(ctx context.Context) (<-chan eventbus.Event, error) {
	sub := c.conn.Subscribe(ctx, c.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan eventbus.Event)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			msg, ok := chflow.Receive(ctx, messages)
			if !ok {
				return
			}

			var event eventbus.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}

			if !chflow.Send(ctx, out, event) {
				return
			}
		}
	}()

	return out, nil
}

var _ eventbus.Publisher = (*client)(nil)
