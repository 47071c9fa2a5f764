package ethereum

import (
	"strconv"
	"time"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
)

func date(tx Transaction) time.Time {
	if tx.Block != nil && !tx.Block.Time.IsZero() {
		return tx.Block.Time
	}

	return tx.ReceivedAt
}

// Interpret matches the sender and receiver of the transaction, of each of
// its token transfer events and of each internal action against the
// keychain. The gas fee is carried by the main SEND draft, which is emitted
// for every transaction sent by the account even when it moves no ether.
func Interpret(tx Transaction, keychain chain.Keychain) (chain.Interpretation, error) {
	var (
		result  chain.Interpretation
		success = tx.Succeeded()
		when    = date(tx)
	)

	base := operation.Draft{
		Date:    when,
		Block:   tx.Block,
		TxHash:  tx.Hash,
		Success: success,
	}

	if keychain.Contains(tx.From) {
		d := base
		d.NaturalKey = tx.Hash
		d.Type = operation.TypeSend
		d.Amount = tx.Value
		d.Fees = tx.Fees()
		d.Senders = []string{tx.From}
		d.Recipients = recipients(tx.To)
		d.Payload = map[string]string{"nonce": strconv.FormatUint(tx.Nonce, 10)}

		result.Drafts = append(result.Drafts, d)
	}

	if tx.To != "" && keychain.Contains(tx.To) {
		d := base
		d.NaturalKey = tx.Hash
		d.Type = operation.TypeReceive
		d.Amount = tx.Value
		d.Senders = []string{tx.From}
		d.Recipients = []string{tx.To}

		result.Drafts = append(result.Drafts, d)
	}

	for i, ev := range tx.Transfers {
		key := tx.Hash + ":transfer:" + strconv.Itoa(i)
		payload := map[string]string{"contract": ev.Contract}

		if keychain.Contains(ev.From) {
			d := base
			d.NaturalKey = key
			d.Type = operation.TypeSend
			d.Amount = ev.Count
			d.Senders = []string{ev.From}
			d.Recipients = recipients(ev.To)
			d.Payload = payload

			result.Drafts = append(result.Drafts, d)
		}

		if ev.To != "" && keychain.Contains(ev.To) {
			d := base
			d.NaturalKey = key
			d.Type = operation.TypeReceive
			d.Amount = ev.Count
			d.Senders = []string{ev.From}
			d.Recipients = []string{ev.To}
			d.Payload = payload

			result.Drafts = append(result.Drafts, d)
		}
	}

	for i, ac := range tx.Actions {
		// the top level call is already covered by the transaction itself
		if ac.From == tx.From && ac.To == tx.To && ac.Value != nil && tx.Value != nil && ac.Value.Cmp(tx.Value) == 0 {
			continue
		}

		key := tx.Hash + ":action:" + strconv.Itoa(i)
		actionSuccess := success && ac.Error == ""

		if keychain.Contains(ac.From) {
			d := base
			d.NaturalKey = key
			d.Type = operation.TypeSend
			d.Amount = ac.Value
			d.Senders = []string{ac.From}
			d.Recipients = recipients(ac.To)
			d.Success = actionSuccess

			result.Drafts = append(result.Drafts, d)
		}

		if ac.To != "" && keychain.Contains(ac.To) {
			d := base
			d.NaturalKey = key
			d.Type = operation.TypeReceive
			d.Amount = ac.Value
			d.Senders = []string{ac.From}
			d.Recipients = []string{ac.To}
			d.Success = actionSuccess

			result.Drafts = append(result.Drafts, d)
		}
	}

	return result, nil
}

func recipients(to string) []string {
	if to == "" {
		return nil
	}

	return []string{to}
}

// Interpreter is the chain.Interpreter of Ethereum-like chains.
var Interpreter chain.Interpreter[Transaction] = chain.InterpreterFunc[Transaction](Interpret)
