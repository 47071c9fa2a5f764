package cosmos

import (
	"math/big"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
)

// Interpreter turns Cosmos transactions into drafts, counting amounts in
// the account's native denomination.
type Interpreter struct {
	denom string
}

// Compile-time check that *Interpreter implements chain.Interpreter.
var _ chain.Interpreter[Transaction] = (*Interpreter)(nil)

// NewInterpreter returns an interpreter counting amounts in denom
// (e.g. "uatom").
func NewInterpreter(denom string) *Interpreter {
	return &Interpreter{denom: denom}
}

// amount extracts the native denomination from a coin string. Unparsable
// strings, and coins holding only other denominations, are reported as
// unknown instead of zero.
func (i *Interpreter) amount(coins string) (*big.Int, bool) {
	if coins == "" {
		return new(big.Int), true
	}

	parsed, err := sdk.ParseCoinsNormalized(coins)
	if err != nil {
		return nil, false
	}

	found, coin := parsed.Find(i.denom)
	if !found {
		return nil, false
	}

	return coin.Amount.BigInt(), true
}

func (i *Interpreter) withAmount(d operation.Draft, coins string) operation.Draft {
	amount, ok := i.amount(coins)
	if !ok {
		d.AmountUnknown = true
		d.Payload = withAttr(d.Payload, "amount_raw", coins)
		return d
	}

	d.Amount = amount
	return d
}

func withAttr(m map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for k, v := range m {
		out[k] = v
	}

	out[key] = value
	return out
}

// Interpret emits one draft per message touching the account, a generic
// NONE draft for message types it does not understand, and a FEES draft
// when the account paid the transaction fee.
func (i *Interpreter) Interpret(tx Transaction, keychain chain.Keychain) (chain.Interpretation, error) {
	var result chain.Interpretation

	watched := func(address string) bool {
		return address != "" && keychain.Contains(address)
	}

	for idx, msg := range tx.Messages {
		key := tx.Hash + ":" + strconv.Itoa(idx)
		base := operation.Draft{
			NaturalKey: key,
			Date:       tx.Date(),
			Block:      tx.Block,
			TxHash:     tx.Hash,
			Success:    tx.MessageSucceeded(idx),
			Payload:    map[string]string{"message_type": msg.Type},
		}

		emit := func(typ operation.Type, coins string, senders, recipients []string) {
			d := base
			d.Type = typ
			d.Senders = senders
			d.Recipients = recipients
			result.Drafts = append(result.Drafts, i.withAmount(d, coins))
		}

		switch msg.Type {
		case MsgSend:
			if watched(msg.From) {
				emit(operation.TypeSend, msg.Amount, []string{msg.From}, []string{msg.To})
			}

			if watched(msg.To) {
				emit(operation.TypeReceive, msg.Amount, []string{msg.From}, []string{msg.To})
			}
		case MsgMultiSend:
			for j, in := range msg.Inputs {
				if watched(in.Address) {
					base.NaturalKey = key + ":in:" + strconv.Itoa(j)
					emit(operation.TypeSend, in.Coins, []string{in.Address}, addresses(msg.Outputs))
				}
			}

			for j, out := range msg.Outputs {
				if watched(out.Address) {
					base.NaturalKey = key + ":out:" + strconv.Itoa(j)
					emit(operation.TypeReceive, out.Coins, addresses(msg.Inputs), []string{out.Address})
				}
			}
		case MsgDelegate:
			if watched(msg.Delegator) {
				emit(operation.TypeDelegate, msg.Amount, []string{msg.Delegator}, []string{msg.Validator})
			}
		case MsgUndelegate:
			if watched(msg.Delegator) {
				emit(operation.TypeUndelegate, msg.Amount, []string{msg.Validator}, []string{msg.Delegator})
			}
		case MsgBeginRedelegate:
			if watched(msg.Delegator) {
				base.Payload = withAttr(base.Payload, "validator_src_address", msg.ValidatorSrc)
				base.Payload = withAttr(base.Payload, "validator_dst_address", msg.ValidatorDst)
				emit(operation.TypeNone, msg.Amount, []string{msg.ValidatorSrc}, []string{msg.ValidatorDst})
			}
		case MsgWithdrawDelegatorReward:
			if watched(msg.Delegator) {
				d := base
				d.Type = operation.TypeReward
				d.Senders = []string{msg.Validator}
				d.Recipients = []string{msg.Delegator}

				// the withdrawn amount is only known when the explorer attached
				// the execution events to the message
				if msg.Amount != "" {
					d = i.withAmount(d, msg.Amount)
				} else {
					d.AmountUnknown = true
				}

				result.Drafts = append(result.Drafts, d)
			}
		default:
			d := base
			d.Type = operation.TypeNone
			d.AmountUnknown = true
			for k, v := range msg.Attributes {
				d.Payload = withAttr(d.Payload, k, v)
			}

			result.Drafts = append(result.Drafts, d)
		}
	}

	if payer := tx.Signer(); watched(payer) && tx.Fee != "" {
		fees, ok := i.amount(tx.Fee)
		d := operation.Draft{
			NaturalKey: tx.Hash + ":fees",
			Type:       operation.TypeFees,
			Amount:     new(big.Int),
			Fees:       fees,
			Senders:    []string{payer},
			Date:       tx.Date(),
			Block:      tx.Block,
			TxHash:     tx.Hash,
			Success:    true,
		}

		if !ok {
			d.AmountUnknown = true
			d.Fees = nil
			d.Payload = map[string]string{"fee_raw": tx.Fee}
		}

		result.Drafts = append(result.Drafts, d)
	}

	return result, nil
}

func addresses(transfers []Transfer) []string {
	out := make([]string, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, t.Address)
	}

	return out
}
