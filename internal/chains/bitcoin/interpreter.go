package bitcoin

import (
	"iter"
	"math/big"
	"strconv"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
)

// owned groups the value a single account address moves in one direction.
type owned struct {
	address string
	amount  *big.Int
}

// collect sums values per owning address, keeping the order in which owners
// first appear.
func collect(keychain chain.Keychain, entries iter.Seq2[string, *big.Int]) []owned {
	var (
		out   []owned
		index = map[string]int{}
	)

	for address, value := range entries {
		if address == "" || !keychain.Contains(address) {
			continue
		}

		i, ok := index[address]
		if !ok {
			i = len(out)
			index[address] = i
			out = append(out, owned{address: address, amount: new(big.Int)})
		}

		if value != nil {
			out[i].amount.Add(out[i].amount, value)
		}
	}

	return out
}

// Interpret produces one SEND draft per account address found among the
// inputs and one RECEIVE draft per account address found among the outputs.
// The transaction fees are carried by the first SEND draft only.
func Interpret(tx Transaction, keychain chain.Keychain) (chain.Interpretation, error) {
	var (
		senders    = make([]string, 0, len(tx.Inputs))
		recipients = make([]string, 0, len(tx.Outputs))
	)

	for _, in := range tx.Inputs {
		if in.Address != "" {
			senders = append(senders, in.Address)
		}
	}

	for _, out := range tx.Outputs {
		if out.Address != "" {
			recipients = append(recipients, out.Address)
		}
	}

	date := tx.ReceivedAt
	if tx.Block != nil && !tx.Block.Time.IsZero() {
		date = tx.Block.Time
	}

	base := operation.Draft{
		Senders:    senders,
		Recipients: recipients,
		Date:       date,
		Block:      tx.Block,
		TxHash:     tx.Hash,
		Success:    true,
		Payload:    map[string]string{"lock_time": strconv.FormatUint(tx.LockTime, 10)},
	}

	spent := collect(keychain, func(yield func(string, *big.Int) bool) {
		for _, in := range tx.Inputs {
			if !yield(in.Address, in.Value) {
				return
			}
		}
	})

	received := collect(keychain, func(yield func(string, *big.Int) bool) {
		for _, out := range tx.Outputs {
			if !yield(out.Address, out.Value) {
				return
			}
		}
	})

	var result chain.Interpretation
	for i, o := range spent {
		d := base
		d.NaturalKey = tx.Hash + ":in:" + o.address
		d.Type = operation.TypeSend
		d.Amount = o.amount
		if i == 0 {
			d.Fees = tx.Fees
		}

		result.Drafts = append(result.Drafts, d)
	}

	for _, o := range received {
		d := base
		d.NaturalKey = tx.Hash + ":out:" + o.address
		d.Type = operation.TypeReceive
		d.Amount = o.amount

		result.Drafts = append(result.Drafts, d)
	}

	return result, nil
}

// Interpreter is the chain.Interpreter of UTXO chains.
var Interpreter chain.Interpreter[Transaction] = chain.InterpreterFunc[Transaction](Interpret)
