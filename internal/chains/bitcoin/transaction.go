// Package bitcoin synchronizes Bitcoin-like (UTXO) chains: the explorer
// payload decoder, its block-hash pagination and the interpreter turning
// inputs and outputs owned by the account into SEND and RECEIVE operations.
package bitcoin

import (
	"math/big"
	"time"

	"github.com/gabapcia/walletsync/internal/operation"
)

// Transaction is the canonical form of a UTXO transaction.
type Transaction struct {
	Hash          string
	ReceivedAt    time.Time
	LockTime      uint64
	Fees          *big.Int
	Confirmations uint64
	Block         *operation.Block
	Inputs        []Input
	Outputs       []Output
}

// Input spends a previous output. Coinbase inputs have no previous output
// and no address.
type Input struct {
	Index     uint64
	PrevHash  string
	PrevIndex uint64
	Value     *big.Int
	Address   string
	Coinbase  string
	Sequence  uint64
	ScriptSig string
}

// Output locks value to an address.
type Output struct {
	Index   uint64
	Value   *big.Int
	Address string
	Script  string
}
