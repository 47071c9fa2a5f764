// Package algorand synchronizes Algorand accounts from an indexer style
// explorer.
package algorand

import (
	"math/big"
	"strconv"
	"time"

	"github.com/gabapcia/walletsync/internal/operation"
)

// Transaction types handled by the interpreter.
const (
	TypePayment         = "pay"
	TypeAssetTransfer   = "axfer"
	TypeApplication     = "appl"
	TypeKeyRegistration = "keyreg"
	TypeAssetConfig     = "acfg"
	TypeAssetFreeze     = "afrz"
)

// Payment is the payment-transaction part of a pay transaction.
type Payment struct {
	Receiver         string
	Amount           *big.Int
	CloseRemainderTo string
	CloseAmount      *big.Int
}

// AssetTransfer is the asset-transfer-transaction part of an axfer
// transaction.
type AssetTransfer struct {
	AssetID     uint64
	Receiver    string
	Amount      *big.Int
	CloseTo     string
	CloseAmount *big.Int
}

// Transaction is the canonical form of an Algorand transaction.
type Transaction struct {
	ID             string
	Type           string
	Sender         string
	Fee            *big.Int
	ConfirmedRound uint64
	RoundTime      time.Time
	Group          string
	Note           string

	Payment       *Payment
	AssetTransfer *AssetTransfer

	SenderRewards   *big.Int
	ReceiverRewards *big.Int
	CloseRewards    *big.Int
}

// Block returns the round the transaction was confirmed in. Rounds are final
// once produced, so the round number doubles as the block hash.
func (tx Transaction) Block(currency string) *operation.Block {
	if tx.ConfirmedRound == 0 {
		return nil
	}

	return &operation.Block{
		Hash:     strconv.FormatUint(tx.ConfirmedRound, 10),
		Height:   tx.ConfirmedRound,
		Time:     tx.RoundTime,
		Currency: currency,
	}
}
