package explorer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/transport/rest"
	"github.com/gabapcia/walletsync/internal/syncerr"
)

func isStatus(err error, status int) bool {
	var e *syncerr.Error
	return errors.As(err, &e) && e.Code == syncerr.CodeAPI && e.StatusCode == status
}

// GetTransactions fetches the page of transactions touching addresses that
// starts at cursor. A 404 on a page anchored to a block hash means the block
// left the explorer's view of the chain and is reported as
// syncerr.ErrAnchorBlockNotFound.
func (c *client[T]) GetTransactions(ctx context.Context, addresses []string, cursor chain.Cursor, session string) (chain.Bulk[T], error) {
	if len(addresses) == 0 {
		return chain.Bulk[T]{Next: cursor}, nil
	}

	escaped := make([]string, len(addresses))
	for i, a := range addresses {
		escaped[i] = url.PathEscape(a)
	}

	paging := c.codec.Paging()
	body, err := c.reads.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   "/addresses/" + strings.Join(escaped, ",") + "/transactions",
		Query:  paging.Query(cursor, c.cfg.pageSize),
		Header: sessionHeader(session),
	})
	if err != nil {
		if cursor.BlockHash != "" && isStatus(err, http.StatusNotFound) {
			return chain.Bulk[T]{}, syncerr.AnchorBlockNotFound(cursor.BlockHash)
		}

		return chain.Bulk[T]{}, err
	}
	defer body.Close()

	page, err := c.codec.DecodePage(body)
	if err != nil {
		return chain.Bulk[T]{}, err
	}

	var last *operation.Block
	for _, tx := range page.Transactions {
		if b := c.codec.BlockOf(tx); b != nil && (last == nil || b.Height > last.Height) {
			last = b
		}
	}

	next, hasNext := paging.Advance(cursor, page.Meta, len(page.Transactions), c.cfg.pageSize, last)

	logger.Debug(ctx, "explorer page fetched",
		"chain.currency", c.codec.Currency(),
		"page.transactions", len(page.Transactions),
		"page.has_next", hasNext,
	)

	return chain.Bulk[T]{
		Transactions: page.Transactions,
		HasNext:      hasNext,
		Next:         next,
	}, nil
}

func (c *client[T]) GetTransactionByHash(ctx context.Context, hash string) (T, error) {
	var zero T

	body, err := c.reads.Do(ctx, rest.Request{Method: http.MethodGet, Path: "/transactions/" + url.PathEscape(hash)})
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return zero, syncerr.NotFound("transaction %s", hash)
		}

		return zero, err
	}
	defer body.Close()

	return c.codec.DecodeTransaction(body)
}

// PushTransaction broadcasts raw, hex encoded, and returns the hash the
// explorer assigned to it.
func (c *client[T]) PushTransaction(ctx context.Context, raw []byte) (string, error) {
	body, err := c.pushes.Do(ctx, rest.Request{
		Method: http.MethodPost,
		Path:   "/transactions/send",
		Body:   map[string]string{"tx": hex.EncodeToString(raw)},
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	var res struct {
		Result string `json:"result"`
		Hash   string `json:"hash"`
	}
	if err := json.NewDecoder(body).Decode(&res); err != nil {
		return "", syncerr.Parse(err, "decoding push receipt")
	}

	if res.Result != "" {
		return res.Result, nil
	}

	if res.Hash != "" {
		return res.Hash, nil
	}

	return "", syncerr.Parse(nil, "push receipt without hash")
}
