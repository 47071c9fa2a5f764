package stellar

import (
	"math/big"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
)

func assetPayload(a Asset) map[string]string {
	if a.Native() {
		return nil
	}

	return map[string]string{"asset_type": a.Type, "asset_code": a.Code, "asset_issuer": a.Issuer}
}

// Interpret applies the per-type policy to one operation record:
//   - payment: SEND from a watched account, RECEIVE to one;
//   - create_account: SEND of the starting balance by the funder, RECEIVE
//     by the created account;
//   - path payments and account merges move amounts the record does not
//     fully describe and are flagged as amount unknown;
//   - anything else sourced by a watched account is a NONE draft.
//
// The transaction fee is attributed once, on the first operation of the
// transaction, when the fee payer is watched.
func Interpret(r Record, keychain chain.Keychain) (chain.Interpretation, error) {
	watched := func(address string) bool {
		return address != "" && keychain.Contains(address)
	}

	base := operation.Draft{
		NaturalKey: r.ID,
		Date:       r.Date(),
		Block:      r.Block,
		TxHash:     r.Transaction.Hash,
		Success:    r.Successful,
	}

	var drafts []operation.Draft
	emit := func(typ operation.Type, amount *big.Int, unknown bool, from, to string) {
		d := base
		d.Type = typ
		d.Amount = amount
		d.AmountUnknown = unknown
		d.Senders = nonEmpty(from)
		d.Recipients = nonEmpty(to)
		if unknown {
			d.Amount = nil
		}

		drafts = append(drafts, d)
	}

	switch r.Type {
	case TypePayment:
		base.Payload = assetPayload(r.Asset)
		if watched(r.From) {
			emit(operation.TypeSend, r.Amount, false, r.From, r.To)
		}

		if watched(r.To) {
			emit(operation.TypeReceive, r.Amount, false, r.From, r.To)
		}
	case TypeCreateAccount:
		if watched(r.Funder) {
			emit(operation.TypeSend, r.StartingBalance, false, r.Funder, r.Account)
		}

		if watched(r.Account) {
			emit(operation.TypeReceive, r.StartingBalance, false, r.Funder, r.Account)
		}
	case TypePathPaymentStrictSend, TypePathPaymentStrictReceive:
		base.Payload = map[string]string{"type": r.Type}
		if watched(r.From) {
			emit(operation.TypeSend, nil, true, r.From, r.To)
		}

		if watched(r.To) {
			emit(operation.TypeReceive, nil, true, r.From, r.To)
		}
	case TypeAccountMerge:
		base.Payload = map[string]string{"type": r.Type}
		if watched(r.Source) {
			emit(operation.TypeSend, nil, true, r.Source, r.Into)
		}

		if watched(r.Into) {
			emit(operation.TypeReceive, nil, true, r.Source, r.Into)
		}
	default:
		if watched(r.Source) {
			base.Payload = map[string]string{"type": r.Type}
			emit(operation.TypeNone, nil, true, r.Source, "")
		}
	}

	if payer := r.Transaction.FeePayer(); r.FirstOfTransaction() && watched(payer) && r.Transaction.FeeCharged != nil {
		drafts = attributeFees(drafts, base, payer, r.Transaction.FeeCharged)
	}

	return chain.Interpretation{Drafts: drafts}, nil
}

// attributeFees puts the fee on the first outgoing draft, or on a dedicated
// FEES draft when the account only received in this operation. Fees are
// charged whether or not the transaction succeeded.
func attributeFees(drafts []operation.Draft, base operation.Draft, payer string, fee *big.Int) []operation.Draft {
	for i := range drafts {
		if drafts[i].Type != operation.TypeReceive {
			drafts[i].Fees = fee
			return drafts
		}
	}

	d := base
	d.NaturalKey = base.TxHash + ":fees"
	d.Type = operation.TypeFees
	d.Amount = new(big.Int)
	d.Fees = fee
	d.Senders = []string{payer}
	d.Payload = nil
	d.Success = true

	return append(drafts, d)
}

func nonEmpty(address string) []string {
	if address == "" {
		return nil
	}

	return []string{address}
}

// Interpreter is the Stellar interpreter.
var Interpreter = chain.InterpreterFunc[Record](Interpret)
