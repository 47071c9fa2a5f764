package bitcoin

import (
	"io"
	"math/big"
	"time"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/wire"
)

const (
	ctxPage    wire.Context = "page"
	ctxTx      wire.Context = "tx"
	ctxInputs  wire.Context = "inputs"
	ctxOutputs wire.Context = "outputs"
)

// state accumulates one decoded page.
type state struct {
	page chain.Page[Transaction]
}

func (s *state) tx() *Transaction {
	return &s.page.Transactions[len(s.page.Transactions)-1]
}

func (s *state) input() *Input {
	tx := s.tx()
	return &tx.Inputs[len(tx.Inputs)-1]
}

func (s *state) output() *Output {
	tx := s.tx()
	return &tx.Outputs[len(tx.Outputs)-1]
}

func (s *state) block() *operation.Block {
	return s.tx().Block
}

func newRules(currency string) *wire.Rules[state] {
	r := &wire.Rules[state]{
		Root: ctxPage,
		Fields: map[wire.Route]wire.Setter[state]{
			{ctxPage, "truncated"}: wire.SetBool(func(s *state) *bool { return &s.page.Meta.Truncated }),

			{ctxTx, "hash"}:          wire.SetString(func(s *state) *string { return &s.tx().Hash }),
			{ctxTx, "received_at"}:   wire.SetTime(func(s *state) *time.Time { return &s.tx().ReceivedAt }),
			{ctxTx, "lock_time"}:     wire.SetUint64(func(s *state) *uint64 { return &s.tx().LockTime }),
			{ctxTx, "fees"}:          wire.SetBigInt(func(s *state) **big.Int { return &s.tx().Fees }),
			{ctxTx, "confirmations"}: wire.SetUint64(func(s *state) *uint64 { return &s.tx().Confirmations }),

			{ctxInputs, "input_index"}:      wire.SetUint64(func(s *state) *uint64 { return &s.input().Index }),
			{ctxInputs, "output_hash"}:      wire.SetString(func(s *state) *string { return &s.input().PrevHash }),
			{ctxInputs, "output_index"}:     wire.SetUint64(func(s *state) *uint64 { return &s.input().PrevIndex }),
			{ctxInputs, "value"}:            wire.SetBigInt(func(s *state) **big.Int { return &s.input().Value }),
			{ctxInputs, "address"}:          wire.SetString(func(s *state) *string { return &s.input().Address }),
			{ctxInputs, "coinbase"}:         wire.SetString(func(s *state) *string { return &s.input().Coinbase }),
			{ctxInputs, "sequence"}:         wire.SetUint64(func(s *state) *uint64 { return &s.input().Sequence }),
			{ctxInputs, "script_signature"}: wire.SetString(func(s *state) *string { return &s.input().ScriptSig }),

			{ctxOutputs, "output_index"}: wire.SetUint64(func(s *state) *uint64 { return &s.output().Index }),
			{ctxOutputs, "value"}:        wire.SetBigInt(func(s *state) **big.Int { return &s.output().Value }),
			{ctxOutputs, "address"}:      wire.SetString(func(s *state) *string { return &s.output().Address }),
			{ctxOutputs, "script_hex"}:   wire.SetString(func(s *state) *string { return &s.output().Script }),
		},
		Nested: map[wire.Route]wire.Context{
			{ctxPage, "txs"}:   ctxTx,
			{ctxTx, "block"}:   wire.CtxBlock,
			{ctxTx, "inputs"}:  ctxInputs,
			{ctxTx, "outputs"}: ctxOutputs,
		},
		Enter: map[wire.Context]wire.Hook[state]{
			ctxTx: func(s *state) error {
				s.page.Transactions = append(s.page.Transactions, Transaction{})
				return nil
			},
			ctxInputs: func(s *state) error {
				s.tx().Inputs = append(s.tx().Inputs, Input{})
				return nil
			},
			ctxOutputs: func(s *state) error {
				s.tx().Outputs = append(s.tx().Outputs, Output{})
				return nil
			},
			wire.CtxBlock: func(s *state) error {
				s.tx().Block = &operation.Block{Currency: currency}
				return nil
			},
		},
		Required: map[wire.Context][]string{
			ctxTx:         {"hash", "inputs", "outputs"},
			ctxOutputs:    {"value"},
			wire.CtxBlock: {"hash", "height"},
		},
	}
	wire.BlockFields(r, wire.CtxBlock, (*state).block)

	return r
}

// Codec decodes Bitcoin-like explorer payloads.
type Codec struct {
	currency string
	page     *wire.Rules[state]
	tx       *wire.Rules[state]
}

// Compile-time check that *Codec implements chain.Codec.
var _ chain.Codec[Transaction] = (*Codec)(nil)

// NewCodec returns the codec of a UTXO chain named currency ("bitcoin",
// "litecoin", ...).
func NewCodec(currency string) *Codec {
	page := newRules(currency)
	return &Codec{
		currency: currency,
		page:     page,
		tx:       page.WithRoot(ctxTx),
	}
}

func (c *Codec) Currency() string { return c.currency }

func (c *Codec) DecodePage(r io.Reader) (chain.Page[Transaction], error) {
	var s state
	if err := wire.Decode(r, c.page, &s); err != nil {
		return chain.Page[Transaction]{}, err
	}

	return s.page, nil
}

func (c *Codec) DecodeTransaction(r io.Reader) (Transaction, error) {
	return wire.DecodeOne(r, c.tx, func(s *state) []Transaction { return s.page.Transactions })
}

func (c *Codec) BlockOf(tx Transaction) *operation.Block { return tx.Block }

func (c *Codec) Paging() chain.Paging { return chain.BlockHashPaging{} }

func (c *Codec) NormalizeAddress(address string) string { return address }
