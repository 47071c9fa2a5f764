// Package operation defines the persisted unit of account history and the
// content-derived identity that makes its persistence idempotent.
//
// Interpreters produce Drafts, which only know about the transaction they were
// derived from. A Draft becomes an Operation once it is bound to an account,
// at which point its UID is derived from the account and the draft's natural
// key. Re-deriving the same logical operation always yields the same UID, so
// inserting it a second time is a no-op.
package operation

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"
	"time"
)

// Type classifies the effect of an operation on the account.
type Type string

const (
	TypeSend       Type = "SEND"
	TypeReceive    Type = "RECEIVE"
	TypeNone       Type = "NONE"
	TypeDelegate   Type = "DELEGATE"
	TypeUndelegate Type = "UNDELEGATE"
	TypeReward     Type = "REWARD"
	TypeFees       Type = "FEES"
)

// Trust is the confidence classification of an operation derived from its
// confirmation depth.
type Trust string

const (
	TrustPending   Trust = "PENDING"
	TrustUntrusted Trust = "UNTRUSTED"
	TrustTrusted   Trust = "TRUSTED"
)

// Block identifies a block of a given chain. Blocks are upserted by hash and
// the last write received from the explorer wins.
type Block struct {
	Hash     string    `json:"hash"`
	Height   uint64    `json:"height"`
	Time     time.Time `json:"time"`
	Currency string    `json:"currency"`
}

// Account is the owner an operation is bound to.
type Account struct {
	UID       string
	WalletUID string
	Currency  string
}

// Draft is an operation derived from (part of) one transaction, before it is
// bound to an account.
type Draft struct {
	// NaturalKey identifies the logical sub-operation within the transaction.
	// It must be computed from immutable transaction fields only and be
	// distinct for every sub-operation (input, message, internal op, token
	// transfer) of the same transaction.
	NaturalKey string

	// Disambiguator is an optional extra identity token for chains where one
	// transaction bundles several operations sharing the same natural key.
	Disambiguator string

	Type Type

	// Amount is nil only when AmountUnknown is set.
	Amount        *big.Int
	AmountUnknown bool
	Fees          *big.Int

	Senders    []string
	Recipients []string
	Date       time.Time
	Block      *Block
	TxHash     string
	Success    bool

	// Payload carries chain specific attributes that have no column of their own.
	Payload map[string]string
}

// Operation is the persisted, account-bound ledger entry.
type Operation struct {
	UID           string
	AccountUID    string
	WalletUID     string
	Currency      string
	Type          Type
	Amount        *big.Int
	AmountUnknown bool
	Fees          *big.Int
	Senders       []string
	Recipients    []string
	Date          time.Time
	Block         *Block
	TxHash        string
	Success       bool
	Trust         Trust
	Payload       map[string]string
}

// DeriveUID returns the idempotent identifier of an operation: the hex
// encoded SHA-256 of the account uid, natural key, operation type and the
// optional disambiguator.
func DeriveUID(accountUID, naturalKey string, typ Type, disambiguator string) string {
	parts := []string{accountUID, naturalKey, string(typ)}
	if disambiguator != "" {
		parts = append(parts, disambiguator)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "+")))
	return hex.EncodeToString(sum[:])
}

// Bind turns the draft into an Operation owned by account.
func (d Draft) Bind(account Account, trust Trust) Operation {
	op := Operation{
		UID:           DeriveUID(account.UID, d.NaturalKey, d.Type, d.Disambiguator),
		AccountUID:    account.UID,
		WalletUID:     account.WalletUID,
		Currency:      account.Currency,
		Type:          d.Type,
		Amount:        d.Amount,
		AmountUnknown: d.AmountUnknown,
		Fees:          d.Fees,
		Senders:       d.Senders,
		Recipients:    d.Recipients,
		Date:          d.Date.UTC(),
		Block:         d.Block,
		TxHash:        d.TxHash,
		Success:       d.Success,
		Trust:         trust,
		Payload:       d.Payload,
	}

	if op.Amount == nil && !op.AmountUnknown {
		op.Amount = new(big.Int)
	}

	if op.Fees == nil {
		op.Fees = new(big.Int)
	}

	return op
}

// TrustPolicy computes the trust indicator of an operation given the
// current chain tip.
type TrustPolicy func(op Operation, tip Block) Trust

// ConfirmationTrust returns a TrustPolicy that marks operations without a
// block as pending, operations with fewer than minConfirmations as untrusted
// and everything deeper as trusted.
func ConfirmationTrust(minConfirmations uint64) TrustPolicy {
	return func(op Operation, tip Block) Trust {
		if op.Block == nil {
			return TrustPending
		}

		if tip.Height < op.Block.Height || tip.Height-op.Block.Height+1 < minConfirmations {
			return TrustUntrusted
		}

		return TrustTrusted
	}
}
