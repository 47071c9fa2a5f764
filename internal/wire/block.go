package wire

import (
	"io"
	"time"

	"github.com/gabapcia/walletsync/internal/operation"
)

// CtxBlock is the context of block objects, both at the top level of a
// current-block response and nested inside transactions.
const CtxBlock Context = "block"

// BlockFields registers the block attributes shared by every explorer under
// the given context. block selects the block being decoded.
func BlockFields[S any](rules *Rules[S], ctx Context, block func(s *S) *operation.Block) {
	if rules.Fields == nil {
		rules.Fields = map[Route]Setter[S]{}
	}

	rules.Fields[Route{ctx, "hash"}] = SetString(func(s *S) *string { return &block(s).Hash })
	rules.Fields[Route{ctx, "height"}] = SetUint64(func(s *S) *uint64 { return &block(s).Height })
	rules.Fields[Route{ctx, "time"}] = SetTime(func(s *S) *time.Time { return &block(s).Time })
}

var blockRules = func() *Rules[operation.Block] {
	r := &Rules[operation.Block]{
		Root:     CtxBlock,
		Required: map[Context][]string{CtxBlock: {"hash", "height"}},
	}
	BlockFields(r, CtxBlock, func(b *operation.Block) *operation.Block { return b })

	return r
}()

// DecodeBlock decodes a current-block response.
func DecodeBlock(r io.Reader, currency string) (operation.Block, error) {
	var b operation.Block
	if err := Decode(r, blockRules, &b); err != nil {
		return operation.Block{}, err
	}

	b.Currency = currency
	return b, nil
}
