// Package ethereum synchronizes Ethereum-like account chains. A transaction
// yields drafts for its main value transfer, for every token transfer event
// and for every internal value transfer (action) touching the account.
package ethereum

import (
	"math/big"
	"time"

	"github.com/gabapcia/walletsync/internal/operation"
)

// Transaction is the canonical form of an Ethereum-like transaction.
type Transaction struct {
	Hash          string
	Status        uint64
	ReceivedAt    time.Time
	Nonce         uint64
	Value         *big.Int
	Gas           *big.Int
	GasPrice      *big.Int
	GasUsed       *big.Int
	From          string
	To            string
	Input         string
	Confirmations uint64
	Block         *operation.Block
	Transfers     []TransferEvent
	Actions       []Action
}

// TransferEvent is a token transfer emitted by a contract during the
// transaction.
type TransferEvent struct {
	Contract string
	From     string
	To       string
	Count    *big.Int
}

// Action is an internal value transfer performed by a contract call.
type Action struct {
	From    string
	To      string
	Value   *big.Int
	Gas     *big.Int
	GasUsed *big.Int
	Error   string
}

// Fees returns gas price times gas used, or zero when either is unknown.
func (tx Transaction) Fees() *big.Int {
	if tx.GasPrice == nil || tx.GasUsed == nil {
		return new(big.Int)
	}

	return new(big.Int).Mul(tx.GasPrice, tx.GasUsed)
}

// Succeeded reports whether the transaction was executed successfully.
func (tx Transaction) Succeeded() bool {
	return tx.Status == 1
}
