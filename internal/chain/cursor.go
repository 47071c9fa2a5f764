package chain

import (
	"net/url"
	"strconv"

	"github.com/gabapcia/walletsync/internal/operation"
)

// Cursor is the opaque resumption marker of a synchronization. Which fields
// are used depends on the chain's Paging strategy.
type Cursor struct {
	Offset    uint64 `json:"offset,omitempty"`
	BlockHash string `json:"block_hash,omitempty"`
	Height    uint64 `json:"height,omitempty"`
	Token     string `json:"token,omitempty"`
}

// IsZero reports whether the cursor points at genesis.
func (c Cursor) IsZero() bool {
	return c == Cursor{}
}

// Paging resolves how a chain explorer is paginated.
type Paging interface {
	// Query returns the query parameters requesting the page at cursor.
	Query(cursor Cursor, limit int) url.Values

	// Advance computes the cursor following a page. count is the number of
	// transactions in the page and last the highest block they reference.
	Advance(cursor Cursor, meta PageMeta, count, limit int, last *operation.Block) (next Cursor, hasNext bool)
}

// BlockHashPaging pages by the hash of the last block seen. The explorer
// returns transactions from that block onwards, so the boundary block may be
// returned twice; idempotent persistence absorbs the overlap.
type BlockHashPaging struct{}

func (BlockHashPaging) Query(cursor Cursor, limit int) url.Values {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if cursor.BlockHash != "" {
		q.Set("blockHash", cursor.BlockHash)
	}

	return q
}

func (BlockHashPaging) Advance(cursor Cursor, meta PageMeta, _, _ int, last *operation.Block) (Cursor, bool) {
	next := cursor
	if last != nil && last.Height >= cursor.Height {
		next = Cursor{BlockHash: last.Hash, Height: last.Height}
	}

	return next, meta.Truncated
}

// OffsetPaging pages by the number of transactions already consumed.
type OffsetPaging struct{}

func (OffsetPaging) Query(cursor Cursor, limit int) url.Values {
	return url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.FormatUint(cursor.Offset, 10)},
	}
}

func (OffsetPaging) Advance(cursor Cursor, _ PageMeta, count, limit int, last *operation.Block) (Cursor, bool) {
	next := cursor
	next.Offset += uint64(count)
	if last != nil && last.Height > next.Height {
		next.Height = last.Height
		next.BlockHash = last.Hash
	}

	return next, count > 0 && count >= limit
}

// TokenPaging pages with a server issued continuation token.
type TokenPaging struct{}

func (TokenPaging) Query(cursor Cursor, limit int) url.Values {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if cursor.Token != "" {
		q.Set("token", cursor.Token)
	}

	return q
}

func (TokenPaging) Advance(cursor Cursor, meta PageMeta, count, _ int, last *operation.Block) (Cursor, bool) {
	next := cursor
	if meta.NextToken != "" {
		next.Token = meta.NextToken
	}

	if last != nil && last.Height > next.Height {
		next.Height = last.Height
		next.BlockHash = last.Hash
	}

	return next, count > 0 && meta.NextToken != "" && meta.NextToken != cursor.Token
}
