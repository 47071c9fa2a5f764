package explorer

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gabapcia/walletsync/internal/pkg/transport/rest"
	"github.com/gabapcia/walletsync/internal/syncerr"
)

func sessionHeader(session string) http.Header {
	if session == "" {
		return nil
	}

	return http.Header{HeaderSyncToken: {session}}
}

func (c *client[T]) StartSession(ctx context.Context) (string, error) {
	if !c.cfg.sessions {
		return "", nil
	}

	body, err := c.reads.Do(ctx, rest.Request{Method: http.MethodPost, Path: "/syncToken"})
	if err != nil {
		return "", err
	}
	defer body.Close()

	var res struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(body).Decode(&res); err != nil {
		return "", syncerr.Parse(err, "decoding session token")
	}

	if res.Token == "" {
		return "", syncerr.Parse(nil, "empty session token")
	}

	return res.Token, nil
}

func (c *client[T]) KillSession(ctx context.Context, session string) error {
	if session == "" {
		return nil
	}

	body, err := c.reads.Do(ctx, rest.Request{
		Method: http.MethodDelete,
		Path:   "/syncToken",
		Header: sessionHeader(session),
	})
	if err != nil {
		return err
	}

	return body.Close()
}
