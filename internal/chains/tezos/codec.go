package tezos

import (
	"io"
	"math/big"
	"time"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/wire"
)

// Each account reference is an object with its own "address" key; the
// context tells which one is being decoded.
const (
	ctxOp          wire.Context = "operation"
	ctxSender      wire.Context = "sender"
	ctxTarget      wire.Context = "target"
	ctxNewDelegate wire.Context = "newDelegate"
	ctxOriginated  wire.Context = "originatedContract"
	ctxParameter   wire.Context = "parameter"
)

type state struct {
	ops []Transaction
}

func (s *state) op() *Transaction {
	return &s.ops[len(s.ops)-1]
}

func address(field func(tx *Transaction) *string) wire.Setter[state] {
	return wire.SetString(func(s *state) *string { return field(s.op()) })
}

var rules = &wire.Rules[state]{
	Root: ctxOp,
	Fields: map[wire.Route]wire.Setter[state]{
		{ctxOp, "id"}:              wire.SetUint64(func(s *state) *uint64 { return &s.op().ID }),
		{ctxOp, "type"}:            wire.SetString(func(s *state) *string { return &s.op().Kind }),
		{ctxOp, "hash"}:            wire.SetString(func(s *state) *string { return &s.op().Hash }),
		{ctxOp, "counter"}:         wire.SetUint64(func(s *state) *uint64 { return &s.op().Counter }),
		{ctxOp, "level"}:           wire.SetUint64(func(s *state) *uint64 { return &s.op().Level }),
		{ctxOp, "block"}:           wire.SetString(func(s *state) *string { return &s.op().BlockHash }),
		{ctxOp, "timestamp"}:       wire.SetTime(func(s *state) *time.Time { return &s.op().Timestamp }),
		{ctxOp, "status"}:          wire.SetString(func(s *state) *string { return &s.op().Status }),
		{ctxOp, "amount"}:          wire.SetBigInt(func(s *state) **big.Int { return &s.op().Amount }),
		{ctxOp, "contractBalance"}: wire.SetBigInt(func(s *state) **big.Int { return &s.op().ContractBalance }),
		{ctxOp, "bakerFee"}:        wire.SetBigInt(func(s *state) **big.Int { return &s.op().BakerFee }),
		{ctxOp, "storageFee"}:      wire.SetBigInt(func(s *state) **big.Int { return &s.op().StorageFee }),
		{ctxOp, "allocationFee"}:   wire.SetBigInt(func(s *state) **big.Int { return &s.op().AllocationFee }),
		{ctxOp, "nonce"}: func(s *state, v wire.Value) error {
			if v.IsNull() {
				return nil
			}

			n, err := v.Uint64()
			if err != nil {
				return err
			}

			s.op().Nonce = &n
			return nil
		},

		{ctxSender, "address"}:      address(func(tx *Transaction) *string { return &tx.Sender }),
		{ctxTarget, "address"}:      address(func(tx *Transaction) *string { return &tx.Target }),
		{ctxNewDelegate, "address"}: address(func(tx *Transaction) *string { return &tx.NewDelegate }),
		{ctxOriginated, "address"}:  address(func(tx *Transaction) *string { return &tx.Originated }),
	},
	Nested: map[wire.Route]wire.Context{
		{ctxOp, "sender"}:             ctxSender,
		{ctxOp, "target"}:             ctxTarget,
		{ctxOp, "newDelegate"}:        ctxNewDelegate,
		{ctxOp, "originatedContract"}: ctxOriginated,
		{ctxOp, "parameter"}:          ctxParameter,
	},
	Enter: map[wire.Context]wire.Hook[state]{
		ctxOp: func(s *state) error {
			s.ops = append(s.ops, Transaction{})
			return nil
		},
	},
	Required: map[wire.Context][]string{
		ctxOp:     {"type", "hash", "counter"},
		ctxSender: {"address"},
	},
	Fallback: map[wire.Context]wire.CatchAll[state]{
		ctxParameter: func(s *state, key string, v wire.Value) error {
			op := s.op()
			if op.Parameters == nil {
				op.Parameters = map[string]string{}
			}

			op.Parameters[key] = v.String()
			return nil
		},
	},
}

// Codec decodes Tezos explorer payloads. Pages are bare arrays of
// operations paginated by offset.
type Codec struct {
	currency string
}

// Compile-time check that *Codec implements chain.Codec.
var _ chain.Codec[Transaction] = (*Codec)(nil)

// NewCodec returns the Tezos codec.
func NewCodec(currency string) *Codec {
	return &Codec{currency: currency}
}

func (c *Codec) Currency() string { return c.currency }

func (c *Codec) DecodePage(r io.Reader) (chain.Page[Transaction], error) {
	var s state
	if err := wire.Decode(r, rules, &s); err != nil {
		return chain.Page[Transaction]{}, err
	}

	return chain.Page[Transaction]{Transactions: s.ops}, nil
}

func (c *Codec) DecodeTransaction(r io.Reader) (Transaction, error) {
	return wire.DecodeOne(r, rules, func(s *state) []Transaction { return s.ops })
}

func (c *Codec) BlockOf(tx Transaction) *operation.Block { return tx.Block(c.currency) }

func (c *Codec) Paging() chain.Paging { return chain.OffsetPaging{} }

func (c *Codec) NormalizeAddress(address string) string { return address }
