package cosmos

import (
	"io"
	"time"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/wire"
)

const (
	ctxPage    wire.Context = "page"
	ctxTx      wire.Context = "tx"
	ctxFee     wire.Context = "fee"
	ctxMessage wire.Context = "messages"
	ctxInput   wire.Context = "inputs"
	ctxOutput  wire.Context = "outputs"
	ctxLog     wire.Context = "logs"
	ctxFeeCoin wire.Context = "fee.amount"
	ctxMsgCoin wire.Context = "messages.amount"
	ctxIOCoin  wire.Context = "transfer.coins"
)

// Amounts come either as a coin string ("100uatom") or as an array of
// {denom, amount} objects. Both end up as a coin string.
type coin struct {
	denom  string
	amount string
}

type state struct {
	page     chain.Page[Transaction]
	coin     coin
	transfer *Transfer
}

func (s *state) tx() *Transaction {
	return &s.page.Transactions[len(s.page.Transactions)-1]
}

func (s *state) msg() *Message {
	tx := s.tx()
	return &tx.Messages[len(tx.Messages)-1]
}

func (s *state) log() *Log {
	tx := s.tx()
	return &tx.Logs[len(tx.Logs)-1]
}

func (s *state) block() *operation.Block {
	return s.tx().Block
}

func appendCoin(dst *string, c coin) {
	if c.amount == "" {
		return
	}

	if *dst != "" {
		*dst += ","
	}

	*dst += c.amount + c.denom
}

func resetCoin(s *state) error {
	s.coin = coin{}
	return nil
}

func newRules(currency string) *wire.Rules[state] {
	r := &wire.Rules[state]{
		Root: ctxPage,
		Fields: map[wire.Route]wire.Setter[state]{
			{ctxTx, "txhash"}:     wire.SetString(func(s *state) *string { return &s.tx().Hash }),
			{ctxTx, "height"}:     wire.SetUint64(func(s *state) *uint64 { return &s.tx().Height }),
			{ctxTx, "timestamp"}:  wire.SetTime(func(s *state) *time.Time { return &s.tx().Timestamp }),
			{ctxTx, "code"}:       wire.SetUint64(func(s *state) *uint64 { return &s.tx().Code }),
			{ctxTx, "gas_wanted"}: wire.SetUint64(func(s *state) *uint64 { return &s.tx().GasWanted }),
			{ctxTx, "gas_used"}:   wire.SetUint64(func(s *state) *uint64 { return &s.tx().GasUsed }),
			{ctxTx, "memo"}:       wire.SetString(func(s *state) *string { return &s.tx().Memo }),

			{ctxFee, "amount"}:  wire.SetString(func(s *state) *string { return &s.tx().Fee }),
			{ctxFee, "payer"}:   wire.SetString(func(s *state) *string { return &s.tx().FeePayer }),
			{ctxFee, "granter"}: wire.SetString(func(s *state) *string { return &s.tx().FeeGranter }),

			{ctxMessage, "@type"}:                 wire.SetString(func(s *state) *string { return &s.msg().Type }),
			{ctxMessage, "from_address"}:          wire.SetString(func(s *state) *string { return &s.msg().From }),
			{ctxMessage, "to_address"}:            wire.SetString(func(s *state) *string { return &s.msg().To }),
			{ctxMessage, "delegator_address"}:     wire.SetString(func(s *state) *string { return &s.msg().Delegator }),
			{ctxMessage, "validator_address"}:     wire.SetString(func(s *state) *string { return &s.msg().Validator }),
			{ctxMessage, "validator_src_address"}: wire.SetString(func(s *state) *string { return &s.msg().ValidatorSrc }),
			{ctxMessage, "validator_dst_address"}: wire.SetString(func(s *state) *string { return &s.msg().ValidatorDst }),
			{ctxMessage, "amount"}:                wire.SetString(func(s *state) *string { return &s.msg().Amount }),

			{ctxInput, "address"}:  wire.SetString(func(s *state) *string { return &s.transfer.Address }),
			{ctxInput, "coins"}:    wire.SetString(func(s *state) *string { return &s.transfer.Coins }),
			{ctxOutput, "address"}: wire.SetString(func(s *state) *string { return &s.transfer.Address }),
			{ctxOutput, "coins"}:   wire.SetString(func(s *state) *string { return &s.transfer.Coins }),

			{ctxLog, "msg_index"}: wire.SetUint64(func(s *state) *uint64 { return &s.log().MsgIndex }),
			{ctxLog, "success"}:   wire.SetBool(func(s *state) *bool { return &s.log().Success }),
			{ctxLog, "log"}:       wire.SetString(func(s *state) *string { return &s.log().Log }),

			{ctxFeeCoin, "denom"}:  wire.SetString(func(s *state) *string { return &s.coin.denom }),
			{ctxFeeCoin, "amount"}: wire.SetString(func(s *state) *string { return &s.coin.amount }),
			{ctxMsgCoin, "denom"}:  wire.SetString(func(s *state) *string { return &s.coin.denom }),
			{ctxMsgCoin, "amount"}: wire.SetString(func(s *state) *string { return &s.coin.amount }),
			{ctxIOCoin, "denom"}:   wire.SetString(func(s *state) *string { return &s.coin.denom }),
			{ctxIOCoin, "amount"}:  wire.SetString(func(s *state) *string { return &s.coin.amount }),
		},
		Nested: map[wire.Route]wire.Context{
			{ctxPage, "txs"}:        ctxTx,
			{ctxTx, "block"}:        wire.CtxBlock,
			{ctxTx, "fee"}:          ctxFee,
			{ctxTx, "messages"}:     ctxMessage,
			{ctxTx, "logs"}:         ctxLog,
			{ctxMessage, "inputs"}:  ctxInput,
			{ctxMessage, "outputs"}: ctxOutput,
			{ctxFee, "amount"}:      ctxFeeCoin,
			{ctxMessage, "amount"}:  ctxMsgCoin,
			{ctxInput, "coins"}:     ctxIOCoin,
			{ctxOutput, "coins"}:    ctxIOCoin,
		},
		Enter: map[wire.Context]wire.Hook[state]{
			ctxTx: func(s *state) error {
				s.page.Transactions = append(s.page.Transactions, Transaction{})
				return nil
			},
			ctxMessage: func(s *state) error {
				s.tx().Messages = append(s.tx().Messages, Message{})
				return nil
			},
			ctxLog: func(s *state) error {
				s.tx().Logs = append(s.tx().Logs, Log{})
				return nil
			},
			ctxInput: func(s *state) error {
				s.transfer = &Transfer{}
				return nil
			},
			ctxOutput: func(s *state) error {
				s.transfer = &Transfer{}
				return nil
			},
			wire.CtxBlock: func(s *state) error {
				s.tx().Block = &operation.Block{Currency: currency}
				return nil
			},
			ctxFeeCoin: resetCoin,
			ctxMsgCoin: resetCoin,
			ctxIOCoin:  resetCoin,
		},
		Exit: map[wire.Context]wire.Hook[state]{
			ctxInput: func(s *state) error {
				s.msg().Inputs = append(s.msg().Inputs, *s.transfer)
				return nil
			},
			ctxOutput: func(s *state) error {
				s.msg().Outputs = append(s.msg().Outputs, *s.transfer)
				return nil
			},
			ctxFeeCoin: func(s *state) error {
				appendCoin(&s.tx().Fee, s.coin)
				return nil
			},
			ctxMsgCoin: func(s *state) error {
				appendCoin(&s.msg().Amount, s.coin)
				return nil
			},
			ctxIOCoin: func(s *state) error {
				appendCoin(&s.transfer.Coins, s.coin)
				return nil
			},
		},
		Required: map[wire.Context][]string{
			ctxTx:         {"txhash"},
			ctxMessage:    {"@type"},
			wire.CtxBlock: {"hash", "height"},
		},
		Fallback: map[wire.Context]wire.CatchAll[state]{
			ctxMessage: func(s *state, key string, v wire.Value) error {
				m := s.msg()
				if m.Attributes == nil {
					m.Attributes = map[string]string{}
				}

				m.Attributes[key] = v.String()
				return nil
			},
		},
	}
	wire.BlockFields(r, wire.CtxBlock, (*state).block)

	return r
}

// Codec decodes Cosmos explorer payloads, paginated by offset.
type Codec struct {
	currency string
	page     *wire.Rules[state]
	tx       *wire.Rules[state]
}

// Compile-time check that *Codec implements chain.Codec.
var _ chain.Codec[Transaction] = (*Codec)(nil)

// NewCodec returns the codec of a Cosmos SDK chain named currency.
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

func (c *Codec) Paging() chain.Paging { return chain.OffsetPaging{} }

func (c *Codec) NormalizeAddress(address string) string { return address }
