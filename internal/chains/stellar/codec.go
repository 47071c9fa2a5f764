package stellar

import (
	"io"
	"math/big"
	"time"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/wire"
)

const (
	ctxPage     wire.Context = "page"
	ctxEmbedded wire.Context = "_embedded"
	ctxRecord   wire.Context = "record"
	ctxTxInfo   wire.Context = "transaction"
)

type state struct {
	page chain.Page[Record]
}

func (s *state) record() *Record {
	return &s.page.Transactions[len(s.page.Transactions)-1]
}

func (s *state) txInfo() *TxInfo {
	return &s.record().Transaction
}

func (s *state) block() *operation.Block {
	return s.record().Block
}

func newRules(currency string) *wire.Rules[state] {
	r := &wire.Rules[state]{
		Root: ctxPage,
		Fields: map[wire.Route]wire.Setter[state]{
			{ctxRecord, "id"}:                     wire.SetString(func(s *state) *string { return &s.record().ID }),
			{ctxRecord, "paging_token"}:           wire.SetString(func(s *state) *string { return &s.record().PagingToken }),
			{ctxRecord, "type"}:                   wire.SetString(func(s *state) *string { return &s.record().Type }),
			{ctxRecord, "source_account"}:         wire.SetString(func(s *state) *string { return &s.record().Source }),
			{ctxRecord, "created_at"}:             wire.SetTime(func(s *state) *time.Time { return &s.record().CreatedAt }),
			{ctxRecord, "transaction_successful"}: wire.SetBool(func(s *state) *bool { return &s.record().Successful }),
			{ctxRecord, "transaction_hash"}:       wire.SetString(func(s *state) *string { return &s.txInfo().Hash }),
			{ctxRecord, "from"}:                   wire.SetString(func(s *state) *string { return &s.record().From }),
			{ctxRecord, "to"}:                     wire.SetString(func(s *state) *string { return &s.record().To }),
			{ctxRecord, "amount"}:                 wire.SetDecimal(Scale, func(s *state) **big.Int { return &s.record().Amount }),
			{ctxRecord, "asset_type"}:             wire.SetString(func(s *state) *string { return &s.record().Asset.Type }),
			{ctxRecord, "asset_code"}:             wire.SetString(func(s *state) *string { return &s.record().Asset.Code }),
			{ctxRecord, "asset_issuer"}:           wire.SetString(func(s *state) *string { return &s.record().Asset.Issuer }),
			{ctxRecord, "funder"}:                 wire.SetString(func(s *state) *string { return &s.record().Funder }),
			{ctxRecord, "account"}:                wire.SetString(func(s *state) *string { return &s.record().Account }),
			{ctxRecord, "starting_balance"}:       wire.SetDecimal(Scale, func(s *state) **big.Int { return &s.record().StartingBalance }),
			{ctxRecord, "into"}:                   wire.SetString(func(s *state) *string { return &s.record().Into }),

			{ctxTxInfo, "hash"}:           wire.SetString(func(s *state) *string { return &s.txInfo().Hash }),
			{ctxTxInfo, "ledger"}:         wire.SetUint64(func(s *state) *uint64 { return &s.txInfo().Ledger }),
			{ctxTxInfo, "fee_charged"}:    wire.SetBigInt(func(s *state) **big.Int { return &s.txInfo().FeeCharged }),
			{ctxTxInfo, "fee_account"}:    wire.SetString(func(s *state) *string { return &s.txInfo().FeeAccount }),
			{ctxTxInfo, "source_account"}: wire.SetString(func(s *state) *string { return &s.txInfo().Source }),
			{ctxTxInfo, "memo"}:           wire.SetString(func(s *state) *string { return &s.txInfo().Memo }),
			{ctxTxInfo, "successful"}:     wire.SetBool(func(s *state) *bool { return &s.txInfo().Successful }),
		},
		Nested: map[wire.Route]wire.Context{
			{ctxPage, "_embedded"}:     ctxEmbedded,
			{ctxEmbedded, "records"}:   ctxRecord,
			{ctxRecord, "transaction"}: ctxTxInfo,
			{ctxRecord, "block"}:       wire.CtxBlock,
		},
		Enter: map[wire.Context]wire.Hook[state]{
			ctxRecord: func(s *state) error {
				s.page.Transactions = append(s.page.Transactions, Record{})
				return nil
			},
			wire.CtxBlock: func(s *state) error {
				s.record().Block = &operation.Block{Currency: currency}
				return nil
			},
		},
		Exit: map[wire.Context]wire.Hook[state]{
			// the paging token of the last record continues the listing
			ctxRecord: func(s *state) error {
				s.page.Meta.NextToken = s.record().PagingToken
				return nil
			},
		},
		Required: map[wire.Context][]string{
			ctxRecord:     {"id", "type", "transaction_hash"},
			wire.CtxBlock: {"hash", "height"},
		},
	}
	wire.BlockFields(r, wire.CtxBlock, (*state).block)

	return r
}

// Codec decodes Horizon style operation listings, paginated by paging
// token.
type Codec struct {
	currency string
	page     *wire.Rules[state]
	record   *wire.Rules[state]
}

// Compile-time check that *Codec implements chain.Codec.
var _ chain.Codec[Record] = (*Codec)(nil)

// NewCodec returns the Stellar codec.
func NewCodec(currency string) *Codec {
	page := newRules(currency)
	return &Codec{currency: currency, page: page, record: page.WithRoot(ctxRecord)}
}

func (c *Codec) Currency() string { return c.currency }

func (c *Codec) DecodePage(r io.Reader) (chain.Page[Record], error) {
	var s state
	if err := wire.Decode(r, c.page, &s); err != nil {
		return chain.Page[Record]{}, err
	}

	return s.page, nil
}

// DecodeTransaction decodes a single operation record.
func (c *Codec) DecodeTransaction(r io.Reader) (Record, error) {
	return wire.DecodeOne(r, c.record, func(s *state) []Record { return s.page.Transactions })
}

func (c *Codec) BlockOf(r Record) *operation.Block { return r.Block }

func (c *Codec) Paging() chain.Paging { return chain.TokenPaging{} }

func (c *Codec) NormalizeAddress(address string) string { return address }
