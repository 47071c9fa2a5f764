package ethereum

import (
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/wire"
)

const (
	ctxPage     wire.Context = "page"
	ctxTx       wire.Context = "tx"
	ctxTransfer wire.Context = "transfer_events"
	ctxAction   wire.Context = "actions"
)

type state struct {
	page chain.Page[Transaction]
}

func (s *state) tx() *Transaction {
	return &s.page.Transactions[len(s.page.Transactions)-1]
}

func (s *state) transfer() *TransferEvent {
	tx := s.tx()
	return &tx.Transfers[len(tx.Transfers)-1]
}

func (s *state) action() *Action {
	tx := s.tx()
	return &tx.Actions[len(tx.Actions)-1]
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
			{ctxTx, "status"}:        wire.SetUint64(func(s *state) *uint64 { return &s.tx().Status }),
			{ctxTx, "received_at"}:   wire.SetTime(func(s *state) *time.Time { return &s.tx().ReceivedAt }),
			{ctxTx, "nonce"}:         wire.SetUint64(func(s *state) *uint64 { return &s.tx().Nonce }),
			{ctxTx, "value"}:         wire.SetBigInt(func(s *state) **big.Int { return &s.tx().Value }),
			{ctxTx, "gas"}:           wire.SetBigInt(func(s *state) **big.Int { return &s.tx().Gas }),
			{ctxTx, "gas_price"}:     wire.SetBigInt(func(s *state) **big.Int { return &s.tx().GasPrice }),
			{ctxTx, "gas_used"}:      wire.SetBigInt(func(s *state) **big.Int { return &s.tx().GasUsed }),
			{ctxTx, "from"}:          wire.SetString(func(s *state) *string { return &s.tx().From }),
			{ctxTx, "to"}:            wire.SetString(func(s *state) *string { return &s.tx().To }),
			{ctxTx, "input"}:         wire.SetString(func(s *state) *string { return &s.tx().Input }),
			{ctxTx, "confirmations"}: wire.SetUint64(func(s *state) *uint64 { return &s.tx().Confirmations }),

			{ctxTransfer, "contract"}: wire.SetString(func(s *state) *string { return &s.transfer().Contract }),
			{ctxTransfer, "from"}:     wire.SetString(func(s *state) *string { return &s.transfer().From }),
			{ctxTransfer, "to"}:       wire.SetString(func(s *state) *string { return &s.transfer().To }),
			{ctxTransfer, "count"}:    wire.SetBigInt(func(s *state) **big.Int { return &s.transfer().Count }),

			{ctxAction, "from"}:     wire.SetString(func(s *state) *string { return &s.action().From }),
			{ctxAction, "to"}:       wire.SetString(func(s *state) *string { return &s.action().To }),
			{ctxAction, "value"}:    wire.SetBigInt(func(s *state) **big.Int { return &s.action().Value }),
			{ctxAction, "gas"}:      wire.SetBigInt(func(s *state) **big.Int { return &s.action().Gas }),
			{ctxAction, "gas_used"}: wire.SetBigInt(func(s *state) **big.Int { return &s.action().GasUsed }),
			{ctxAction, "error"}:    wire.SetString(func(s *state) *string { return &s.action().Error }),
		},
		Nested: map[wire.Route]wire.Context{
			{ctxPage, "txs"}:           ctxTx,
			{ctxTx, "block"}:           wire.CtxBlock,
			{ctxTx, "transfer_events"}: ctxTransfer,
			{ctxTx, "actions"}:         ctxAction,
		},
		Enter: map[wire.Context]wire.Hook[state]{
			ctxTx: func(s *state) error {
				s.page.Transactions = append(s.page.Transactions, Transaction{})
				return nil
			},
			ctxTransfer: func(s *state) error {
				s.tx().Transfers = append(s.tx().Transfers, TransferEvent{})
				return nil
			},
			ctxAction: func(s *state) error {
				s.tx().Actions = append(s.tx().Actions, Action{})
				return nil
			},
			wire.CtxBlock: func(s *state) error {
				s.tx().Block = &operation.Block{Currency: currency}
				return nil
			},
		},
		Required: map[wire.Context][]string{
			ctxTx:         {"hash", "from", "value"},
			ctxTransfer:   {"contract", "count"},
			wire.CtxBlock: {"hash", "height"},
		},
	}
	wire.BlockFields(r, wire.CtxBlock, (*state).block)

	return r
}

// Codec decodes Ethereum-like explorer payloads.
type Codec struct {
	currency string
	page     *wire.Rules[state]
	tx       *wire.Rules[state]
}

// Compile-time check that *Codec implements chain.Codec.
var _ chain.Codec[Transaction] = (*Codec)(nil)

// NewCodec returns the codec of an account chain named currency
// ("ethereum", "ethereum_classic", ...).
func NewCodec(currency string) *Codec {
	page := newRules(currency)
	return &Codec{currency: currency, page: page, tx: page.WithRoot(ctxTx)}
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

func (c *Codec) NormalizeAddress(address string) string { return NormalizeAddress(address) }

// NormalizeAddress returns the checksummed form of a hex address so that
// comparisons ignore case. Values that are not addresses are lower-cased.
func NormalizeAddress(address string) string {
	if common.IsHexAddress(address) {
		return common.HexToAddress(address).Hex()
	}

	return strings.ToLower(address)
}
