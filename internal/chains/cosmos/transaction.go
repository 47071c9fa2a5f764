// Package cosmos synchronizes Cosmos SDK accounts. Every message of a
// transaction becomes its own draft, and the fee paid by the account is
// attributed through an additional FEES draft.
package cosmos

import (
	"time"

	"github.com/gabapcia/walletsync/internal/operation"
)

// Message type URLs handled by the interpreter.
const (
	MsgSend                    = "/cosmos.bank.v1beta1.MsgSend"
	MsgMultiSend               = "/cosmos.bank.v1beta1.MsgMultiSend"
	MsgDelegate                = "/cosmos.staking.v1beta1.MsgDelegate"
	MsgUndelegate              = "/cosmos.staking.v1beta1.MsgUndelegate"
	MsgBeginRedelegate         = "/cosmos.staking.v1beta1.MsgBeginRedelegate"
	MsgWithdrawDelegatorReward = "/cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward"
)

// Transaction is the canonical form of a Cosmos SDK transaction.
type Transaction struct {
	Hash       string
	Height     uint64
	Timestamp  time.Time
	Code       uint64 // non zero when the transaction failed
	GasWanted  uint64
	GasUsed    uint64
	Fee        string // coin string, e.g. "5000uatom"
	FeePayer   string
	FeeGranter string
	Memo       string
	Block      *operation.Block
	Messages   []Message
	Logs       []Log
}

// Message is one message of a transaction. Fields not used by its type stay
// empty; scalar attributes without a dedicated field are kept in Attributes.
type Message struct {
	Type         string
	From         string
	To           string
	Delegator    string
	Validator    string
	ValidatorSrc string
	ValidatorDst string
	Amount       string // coin string
	Inputs       []Transfer
	Outputs      []Transfer
	Attributes   map[string]string
}

// Transfer is an input or output of a MsgMultiSend.
type Transfer struct {
	Address string
	Coins   string
}

// Log is the execution result of one message.
type Log struct {
	MsgIndex uint64
	Success  bool
	Log      string
}

// MessageSucceeded reports whether the message at index was executed. A
// failed transaction fails every message; otherwise the per message log
// decides, defaulting to success when the explorer sent none.
func (tx Transaction) MessageSucceeded(index int) bool {
	if tx.Code != 0 {
		return false
	}

	for _, l := range tx.Logs {
		if l.MsgIndex == uint64(index) {
			return l.Success
		}
	}

	return true
}

// Signer returns the address paying the fee: the explicit payer when set,
// or the signer of the first message.
func (tx Transaction) Signer() string {
	if tx.FeePayer != "" {
		return tx.FeePayer
	}

	if len(tx.Messages) == 0 {
		return ""
	}

	m := tx.Messages[0]
	switch {
	case m.From != "":
		return m.From
	case m.Delegator != "":
		return m.Delegator
	case len(m.Inputs) > 0:
		return m.Inputs[0].Address
	default:
		return ""
	}
}

// Date returns the block time when known, the transaction timestamp otherwise.
func (tx Transaction) Date() time.Time {
	if tx.Block != nil && !tx.Block.Time.IsZero() {
		return tx.Block.Time
	}

	return tx.Timestamp
}
