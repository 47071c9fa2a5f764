// Package tezos synchronizes Tezos accounts. Explorer pages list individual
// operations (transactions, reveals, originations, delegations); several of
// them may share the same operation group hash and counter, so identities
// carry a disambiguator built from the operation kind, its counter and the
// originated contract when there is one.
package tezos

import (
	"math/big"
	"time"

	"github.com/gabapcia/walletsync/internal/operation"
)

// Operation kinds handled by the interpreter.
const (
	KindTransaction = "transaction"
	KindReveal      = "reveal"
	KindOrigination = "origination"
	KindDelegation  = "delegation"
)

// StatusApplied is the status of an operation that was included and executed.
const StatusApplied = "applied"

// Transaction is one Tezos operation as returned by the explorer.
type Transaction struct {
	ID        uint64
	Kind      string
	Hash      string
	Counter   uint64
	Nonce     *uint64 // set on internal operations
	Level     uint64
	BlockHash string
	Timestamp time.Time
	Status    string

	Sender      string
	Target      string
	NewDelegate string
	Originated  string

	Amount          *big.Int
	ContractBalance *big.Int
	BakerFee        *big.Int
	StorageFee      *big.Int
	AllocationFee   *big.Int

	Parameters map[string]string
}

// Block returns the block the operation was included in, or nil when it is
// still pending.
func (tx Transaction) Block(currency string) *operation.Block {
	if tx.BlockHash == "" {
		return nil
	}

	return &operation.Block{Hash: tx.BlockHash, Height: tx.Level, Time: tx.Timestamp, Currency: currency}
}

// Fees sums the baker, storage and allocation fees.
func (tx Transaction) Fees() *big.Int {
	total := new(big.Int)
	for _, f := range []*big.Int{tx.BakerFee, tx.StorageFee, tx.AllocationFee} {
		if f != nil {
			total.Add(total, f)
		}
	}

	return total
}
