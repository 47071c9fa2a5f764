// Package stellar synchronizes Stellar accounts. Explorers list operations
// rather than transactions, so the unit decoded and interpreted here is one
// operation record together with the transaction that carried it.
package stellar

import (
	"math/big"
	"strconv"
	"time"

	"github.com/gabapcia/walletsync/internal/operation"
)

// Operation types handled by the interpreter.
const (
	TypePayment                  = "payment"
	TypeCreateAccount            = "create_account"
	TypeAccountMerge             = "account_merge"
	TypePathPaymentStrictSend    = "path_payment_strict_send"
	TypePathPaymentStrictReceive = "path_payment_strict_receive"
)

// AssetNative is the asset type of lumens.
const AssetNative = "native"

// Scale is the number of decimals of Stellar amounts, counted in stroops.
const Scale = 7

const (
	toidOperationMask  = 0xFFF
	toidFirstOperation = 1
)

// Asset identifies what a payment moves.
type Asset struct {
	Type   string
	Code   string
	Issuer string
}

// Native reports whether the asset is the lumen.
func (a Asset) Native() bool {
	return a.Type == "" || a.Type == AssetNative
}

// TxInfo is the transaction an operation belongs to.
type TxInfo struct {
	Hash       string
	Ledger     uint64
	FeeCharged *big.Int
	FeeAccount string
	Source     string
	Memo       string
	Successful bool
}

// FeePayer returns the account charged for the transaction: the fee bump
// account when set, the transaction source otherwise.
func (t TxInfo) FeePayer() string {
	if t.FeeAccount != "" {
		return t.FeeAccount
	}

	return t.Source
}

// Record is the canonical form of a Stellar operation record.
type Record struct {
	ID          string
	PagingToken string
	Type        string
	Source      string
	CreatedAt   time.Time
	Successful  bool

	// payment and path payments
	From   string
	To     string
	Amount *big.Int
	Asset  Asset

	// create_account
	Funder          string
	Account         string
	StartingBalance *big.Int

	// account_merge
	Into string

	Transaction TxInfo
	Block       *operation.Block
}

// FirstOfTransaction reports whether the record is the first operation of
// its transaction, the one the transaction fee is attributed to. Operation
// ids are TOIDs whose low 12 bits are the 1-based operation index.
func (r Record) FirstOfTransaction() bool {
	id, err := strconv.ParseUint(r.ID, 10, 64)
	if err != nil {
		return false
	}

	return id&toidOperationMask == toidFirstOperation
}

// Date returns the ledger close time when known, the record creation time
// otherwise.
func (r Record) Date() time.Time {
	if r.Block != nil && !r.Block.Time.IsZero() {
		return r.Block.Time
	}

	return r.CreatedAt
}
