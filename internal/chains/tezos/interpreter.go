package tezos

import (
	"strconv"
	"strings"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/gabapcia/walletsync/internal/syncerr"
)

// disambiguator distinguishes operations of the same group that share a
// hash: kind, counter, internal nonce and originated contract.
func disambiguator(tx Transaction) string {
	parts := []string{tx.Kind, strconv.FormatUint(tx.Counter, 10)}
	if tx.Nonce != nil {
		parts = append(parts, "nonce", strconv.FormatUint(*tx.Nonce, 10))
	}

	if tx.Originated != "" {
		parts = append(parts, tx.Originated)
	}

	return strings.Join(parts, ":")
}

// Interpreter turns Tezos operations into drafts. It is bound to the
// currency name so that blocks carry it.
type Interpreter struct {
	currency string
}

// Compile-time check that *Interpreter implements chain.Interpreter.
var _ chain.Interpreter[Transaction] = (*Interpreter)(nil)

// NewInterpreter returns the Tezos interpreter.
func NewInterpreter(currency string) *Interpreter {
	return &Interpreter{currency: currency}
}

// Interpret applies the per-kind policy:
//   - transaction: SEND when the sender is watched, RECEIVE when the target is;
//   - reveal: a NONE draft carrying the fees;
//   - origination: a SEND of the initial balance, and the originated contract
//     is returned as a discovered address;
//   - delegation: DELEGATE, or UNDELEGATE when no new delegate is set.
//
// Unknown kinds involving the account yield a NONE draft.
func (i *Interpreter) Interpret(tx Transaction, keychain chain.Keychain) (chain.Interpretation, error) {
	if tx.Kind == KindDelegation && tx.Sender == "" {
		return chain.Interpretation{}, syncerr.Interpretation("delegation %s without sender", tx.Hash)
	}

	base := operation.Draft{
		NaturalKey:    tx.Hash,
		Disambiguator: disambiguator(tx),
		Date:          tx.Timestamp,
		Block:         tx.Block(i.currency),
		TxHash:        tx.Hash,
		Success:       tx.Status == StatusApplied,
		Senders:       nonEmpty(tx.Sender),
		Payload:       tx.Parameters,
	}

	var result chain.Interpretation

	fromUs := tx.Sender != "" && keychain.Contains(tx.Sender)
	draft := func(typ operation.Type) operation.Draft {
		d := base
		d.Type = typ
		if fromUs {
			d.Fees = tx.Fees()
		}

		return d
	}

	switch tx.Kind {
	case KindTransaction:
		if fromUs {
			d := draft(operation.TypeSend)
			d.Amount = tx.Amount
			d.Recipients = nonEmpty(tx.Target)
			result.Drafts = append(result.Drafts, d)
		}

		if tx.Target != "" && keychain.Contains(tx.Target) {
			d := base
			d.Type = operation.TypeReceive
			d.Amount = tx.Amount
			d.Recipients = []string{tx.Target}
			result.Drafts = append(result.Drafts, d)
		}
	case KindReveal:
		if fromUs {
			result.Drafts = append(result.Drafts, draft(operation.TypeNone))
		}
	case KindOrigination:
		if fromUs {
			d := draft(operation.TypeSend)
			d.Amount = tx.ContractBalance
			d.Recipients = nonEmpty(tx.Originated)
			result.Drafts = append(result.Drafts, d)

			if tx.Originated != "" && tx.Status == StatusApplied {
				result.Discovered = append(result.Discovered, tx.Originated)
			}
		}
	case KindDelegation:
		if fromUs {
			typ := operation.TypeDelegate
			if tx.NewDelegate == "" {
				typ = operation.TypeUndelegate
			}

			d := draft(typ)
			d.Recipients = nonEmpty(tx.NewDelegate)
			result.Drafts = append(result.Drafts, d)
		}
	default:
		if fromUs || (tx.Target != "" && keychain.Contains(tx.Target)) {
			d := draft(operation.TypeNone)
			d.Recipients = nonEmpty(tx.Target)
			d.Payload = map[string]string{"kind": tx.Kind}
			result.Drafts = append(result.Drafts, d)
		}
	}

	return result, nil
}

func nonEmpty(address string) []string {
	if address == "" {
		return nil
	}

	return []string{address}
}
