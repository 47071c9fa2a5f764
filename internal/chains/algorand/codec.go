package algorand

import (
	"io"
	"math/big"
	"time"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/wire"
)

const (
	ctxPage   wire.Context = "page"
	ctxLookup wire.Context = "lookup"
	ctxTx     wire.Context = "transactions"
	ctxPay    wire.Context = "payment-transaction"
	ctxAxfer  wire.Context = "asset-transfer-transaction"
)

type state struct {
	page chain.Page[Transaction]
}

func (s *state) tx() *Transaction {
	return &s.page.Transactions[len(s.page.Transactions)-1]
}

func (s *state) pay() *Payment {
	return s.tx().Payment
}

func (s *state) axfer() *AssetTransfer {
	return s.tx().AssetTransfer
}

var rules = &wire.Rules[state]{
	Root: ctxPage,
	Fields: map[wire.Route]wire.Setter[state]{
		{ctxPage, "next-token"}: wire.SetString(func(s *state) *string { return &s.page.Meta.NextToken }),

		{ctxTx, "id"}:               wire.SetString(func(s *state) *string { return &s.tx().ID }),
		{ctxTx, "tx-type"}:          wire.SetString(func(s *state) *string { return &s.tx().Type }),
		{ctxTx, "sender"}:           wire.SetString(func(s *state) *string { return &s.tx().Sender }),
		{ctxTx, "fee"}:              wire.SetBigInt(func(s *state) **big.Int { return &s.tx().Fee }),
		{ctxTx, "confirmed-round"}:  wire.SetUint64(func(s *state) *uint64 { return &s.tx().ConfirmedRound }),
		{ctxTx, "round-time"}:       wire.SetTime(func(s *state) *time.Time { return &s.tx().RoundTime }),
		{ctxTx, "group"}:            wire.SetString(func(s *state) *string { return &s.tx().Group }),
		{ctxTx, "note"}:             wire.SetString(func(s *state) *string { return &s.tx().Note }),
		{ctxTx, "sender-rewards"}:   wire.SetBigInt(func(s *state) **big.Int { return &s.tx().SenderRewards }),
		{ctxTx, "receiver-rewards"}: wire.SetBigInt(func(s *state) **big.Int { return &s.tx().ReceiverRewards }),
		{ctxTx, "close-rewards"}:    wire.SetBigInt(func(s *state) **big.Int { return &s.tx().CloseRewards }),

		{ctxPay, "receiver"}:           wire.SetString(func(s *state) *string { return &s.pay().Receiver }),
		{ctxPay, "amount"}:             wire.SetBigInt(func(s *state) **big.Int { return &s.pay().Amount }),
		{ctxPay, "close-remainder-to"}: wire.SetString(func(s *state) *string { return &s.pay().CloseRemainderTo }),
		{ctxPay, "close-amount"}:       wire.SetBigInt(func(s *state) **big.Int { return &s.pay().CloseAmount }),

		{ctxAxfer, "asset-id"}:     wire.SetUint64(func(s *state) *uint64 { return &s.axfer().AssetID }),
		{ctxAxfer, "receiver"}:     wire.SetString(func(s *state) *string { return &s.axfer().Receiver }),
		{ctxAxfer, "amount"}:       wire.SetBigInt(func(s *state) **big.Int { return &s.axfer().Amount }),
		{ctxAxfer, "close-to"}:     wire.SetString(func(s *state) *string { return &s.axfer().CloseTo }),
		{ctxAxfer, "close-amount"}: wire.SetBigInt(func(s *state) **big.Int { return &s.axfer().CloseAmount }),
	},
	Nested: map[wire.Route]wire.Context{
		{ctxPage, "transactions"}:             ctxTx,
		{ctxLookup, "transaction"}:            ctxTx,
		{ctxTx, "payment-transaction"}:        ctxPay,
		{ctxTx, "asset-transfer-transaction"}: ctxAxfer,
	},
	Enter: map[wire.Context]wire.Hook[state]{
		ctxTx: func(s *state) error {
			s.page.Transactions = append(s.page.Transactions, Transaction{})
			return nil
		},
		ctxPay: func(s *state) error {
			s.tx().Payment = &Payment{}
			return nil
		},
		ctxAxfer: func(s *state) error {
			s.tx().AssetTransfer = &AssetTransfer{}
			return nil
		},
	},
	Required: map[wire.Context][]string{
		ctxTx:    {"id", "tx-type", "sender"},
		ctxPay:   {"receiver", "amount"},
		ctxAxfer: {"asset-id", "receiver", "amount"},
	},
}

// single decodes the {"transaction": {...}} envelope of a lookup by id.
var single = rules.WithRoot(ctxLookup)

// Codec decodes indexer payloads, paginated by next-token.
type Codec struct {
	currency string
}

// Compile-time check that *Codec implements chain.Codec.
var _ chain.Codec[Transaction] = (*Codec)(nil)

// NewCodec returns the Algorand codec.
func NewCodec(currency string) *Codec {
	return &Codec{currency: currency}
}

func (c *Codec) Currency() string { return c.currency }

func (c *Codec) DecodePage(r io.Reader) (chain.Page[Transaction], error) {
	var s state
	if err := wire.Decode(r, rules, &s); err != nil {
		return chain.Page[Transaction]{}, err
	}

	return s.page, nil
}

func (c *Codec) DecodeTransaction(r io.Reader) (Transaction, error) {
	return wire.DecodeOne(r, single, func(s *state) []Transaction { return s.page.Transactions })
}

func (c *Codec) BlockOf(tx Transaction) *operation.Block { return tx.Block(c.currency) }

func (c *Codec) Paging() chain.Paging { return chain.TokenPaging{} }

func (c *Codec) NormalizeAddress(address string) string { return address }
