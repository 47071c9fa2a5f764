package algorand

import (
	"math/big"
	"strconv"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
)

// Interpreter turns Algorand transactions into drafts.
type Interpreter struct {
	currency string
}

// Compile-time check that *Interpreter implements chain.Interpreter.
var _ chain.Interpreter[Transaction] = (*Interpreter)(nil)

// NewInterpreter returns the Algorand interpreter.
func NewInterpreter(currency string) *Interpreter {
	return &Interpreter{currency: currency}
}

func positive(n *big.Int) bool {
	return n != nil && n.Sign() > 0
}

func sum(values ...*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}

	return total
}

// Interpret applies the per-type policy:
//   - pay: SEND of amount plus close amount by the sender, RECEIVE by the
//     receiver, and a separate RECEIVE for the close-remainder account;
//   - axfer: the same for asset units, tagged with the asset id;
//   - appl: a NONE draft with an unknown amount, application effects are
//     not visible in the transaction;
//   - other types sent by the account: a NONE draft moving nothing.
//
// Rewards paid to watched accounts yield REWARD drafts, and the fee is
// carried by the sender's draft.
func (i *Interpreter) Interpret(tx Transaction, keychain chain.Keychain) (chain.Interpretation, error) {
	watched := func(address string) bool {
		return address != "" && keychain.Contains(address)
	}

	base := operation.Draft{
		NaturalKey: tx.ID,
		Date:       tx.RoundTime,
		Block:      tx.Block(i.currency),
		TxHash:     tx.ID,
		Success:    true,
	}

	if tx.Group != "" {
		base.Payload = map[string]string{"group": tx.Group}
	}

	var drafts []operation.Draft
	add := func(key string, typ operation.Type, amount *big.Int, from, to string, payload map[string]string) {
		d := base
		if key != "" {
			d.NaturalKey = tx.ID + ":" + key
		}

		d.Type = typ
		d.Amount = amount
		d.Senders = nonEmpty(from)
		d.Recipients = nonEmpty(to)
		if typ != operation.TypeReceive && typ != operation.TypeReward {
			d.Fees = tx.Fee
		}

		if payload != nil {
			d.Payload = merge(base.Payload, payload)
		}

		drafts = append(drafts, d)
	}

	fromUs := watched(tx.Sender)

	switch {
	case tx.Type == TypePayment && tx.Payment != nil:
		p := tx.Payment
		if fromUs {
			add("", operation.TypeSend, sum(p.Amount, p.CloseAmount), tx.Sender, p.Receiver, nil)
		}

		if watched(p.Receiver) {
			add("", operation.TypeReceive, p.Amount, tx.Sender, p.Receiver, nil)
		}

		if watched(p.CloseRemainderTo) && positive(p.CloseAmount) {
			add("close", operation.TypeReceive, p.CloseAmount, tx.Sender, p.CloseRemainderTo, nil)
		}

		if watched(p.Receiver) && positive(tx.ReceiverRewards) {
			add("rewards:receiver", operation.TypeReward, tx.ReceiverRewards, "", p.Receiver, nil)
		}

		if watched(p.CloseRemainderTo) && positive(tx.CloseRewards) {
			add("rewards:close", operation.TypeReward, tx.CloseRewards, "", p.CloseRemainderTo, nil)
		}
	case tx.Type == TypeAssetTransfer && tx.AssetTransfer != nil:
		a := tx.AssetTransfer
		asset := map[string]string{"asset_id": strconv.FormatUint(a.AssetID, 10)}
		if fromUs {
			add("", operation.TypeSend, sum(a.Amount, a.CloseAmount), tx.Sender, a.Receiver, asset)
		}

		if watched(a.Receiver) {
			add("", operation.TypeReceive, a.Amount, tx.Sender, a.Receiver, asset)
		}

		if watched(a.CloseTo) && positive(a.CloseAmount) {
			add("close", operation.TypeReceive, a.CloseAmount, tx.Sender, a.CloseTo, asset)
		}
	case fromUs:
		payload := map[string]string{"tx_type": tx.Type}
		add("", operation.TypeNone, new(big.Int), tx.Sender, "", payload)
		if tx.Type == TypeApplication {
			last := &drafts[len(drafts)-1]
			last.Amount = nil
			last.AmountUnknown = true
		}
	}

	if fromUs && positive(tx.SenderRewards) {
		add("rewards:sender", operation.TypeReward, tx.SenderRewards, "", tx.Sender, nil)
	}

	return chain.Interpretation{Drafts: drafts}, nil
}

func merge(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}

	for k, v := range b {
		out[k] = v
	}

	return out
}

func nonEmpty(address string) []string {
	if address == "" {
		return nil
	}

	return []string{address}
}
