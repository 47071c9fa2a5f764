package ethereum

import (
	"math/big"
	"strings"
	"testing"

	"github.com/gabapcia/walletsync/internal/chain"
	"github.com/gabapcia/walletsync/internal/operation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	me       = "0x71c7656ec7ab88b098defb751b7401b5f6d8976f"
	other    = "0x8ba1f109551bd432803012645ac136ddd64dba72"
	contract = "0xdac17f958d2ee523a2206206994597c13d831ec7"
)

var pagePayload = strings.NewReplacer("ME", me, "OTHER", other, "CONTRACT", contract).Replace(`{
	"truncated": false,
	"txs": [{
		"hash": "0xaaa",
		"status": 1,
		"received_at": "2024-04-01T00:00:00Z",
		"nonce": "0x2",
		"value": "1000000000000000000",
		"gas": "21000",
		"gas_price": "0x3b9aca00",
		"gas_used": "21000",
		"from": "ME",
		"to": "OTHER",
		"input": "0x",
		"block": {"hash": "0xb1", "height": 19000000, "time": "2024-04-01T00:00:12Z"},
		"transfer_events": [
			{"contract": "CONTRACT", "from": "OTHER", "to": "ME", "count": "500"},
			{"contract": "CONTRACT", "from": "OTHER", "to": "OTHER", "count": "1"}
		],
		"actions": [
			{"from": "OTHER", "to": "ME", "value": "7", "gas": "0", "gas_used": "0"}
		]
	}]
}`)

func TestCodecDecodePage(t *testing.T) {
	page, err := NewCodec("ethereum").DecodePage(strings.NewReader(pagePayload))
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)

	tx := page.Transactions[0]
	assert.Equal(t, uint64(2), tx.Nonce)
	assert.Equal(t, "1000000000000000000", tx.Value.String())
	assert.Equal(t, big.NewInt(21000*1_000_000_000), tx.Fees())
	assert.True(t, tx.Succeeded())
	require.Len(t, tx.Transfers, 2)
	assert.Equal(t, contract, tx.Transfers[0].Contract)
	require.Len(t, tx.Actions, 1)
	assert.Equal(t, "ethereum", tx.Block.Currency)
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, NormalizeAddress(strings.ToUpper(me[2:])), NormalizeAddress(me))
	assert.Equal(t, "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", NormalizeAddress(me))
	assert.Equal(t, "not-an-address", NormalizeAddress("NOT-an-address"))
}

func keychain(addresses ...string) *chain.AddressSet {
	return chain.NewAddressSet(NormalizeAddress, addresses...)
}

func TestInterpret(t *testing.T) {
	page, err := NewCodec("ethereum").DecodePage(strings.NewReader(pagePayload))
	require.NoError(t, err)
	tx := page.Transactions[0]

	t.Run("main transfer, token transfer and action", func(t *testing.T) {
		res, err := Interpret(tx, keychain(strings.ToUpper(me)))
		require.NoError(t, err)
		require.Len(t, res.Drafts, 3)

		send := res.Drafts[0]
		assert.Equal(t, operation.TypeSend, send.Type)
		assert.Equal(t, "0xaaa", send.NaturalKey)
		assert.Equal(t, tx.Fees(), send.Fees)

		token := res.Drafts[1]
		assert.Equal(t, operation.TypeReceive, token.Type)
		assert.Equal(t, big.NewInt(500), token.Amount)
		assert.Equal(t, contract, token.Payload["contract"])

		action := res.Drafts[2]
		assert.Equal(t, operation.TypeReceive, action.Type)
		assert.Equal(t, big.NewInt(7), action.Amount)

		assert.NotEqual(t, send.NaturalKey, token.NaturalKey)
		assert.NotEqual(t, token.NaturalKey, action.NaturalKey)
	})

	t.Run("self transfer yields send and receive with distinct uids", func(t *testing.T) {
		self := Transaction{Hash: "0xself", Status: 1, From: me, To: me, Value: big.NewInt(5), GasPrice: big.NewInt(1), GasUsed: big.NewInt(21000)}

		res, err := Interpret(self, keychain(me))
		require.NoError(t, err)
		require.Len(t, res.Drafts, 2)

		account := operation.Account{UID: "acc"}
		send := res.Drafts[0].Bind(account, operation.TrustPending)
		receive := res.Drafts[1].Bind(account, operation.TrustPending)

		assert.Equal(t, operation.TypeSend, send.Type)
		assert.Equal(t, operation.TypeReceive, receive.Type)
		assert.Equal(t, send.TxHash, receive.TxHash)
		assert.NotEqual(t, send.UID, receive.UID)
	})

	t.Run("failed transaction keeps fees and is flagged", func(t *testing.T) {
		failed := Transaction{Hash: "0xfail", Status: 0, From: me, To: other, Value: big.NewInt(5), GasPrice: big.NewInt(2), GasUsed: big.NewInt(10)}

		res, err := Interpret(failed, keychain(me))
		require.NoError(t, err)
		require.Len(t, res.Drafts, 1)
		assert.False(t, res.Drafts[0].Success)
		assert.Equal(t, big.NewInt(20), res.Drafts[0].Fees)
	})

	t.Run("top level call action is not duplicated", func(t *testing.T) {
		call := Transaction{
			Hash: "0xcall", Status: 1, From: other, To: me, Value: big.NewInt(3),
			Actions: []Action{{From: other, To: me, Value: big.NewInt(3)}},
		}

		res, err := Interpret(call, keychain(me))
		require.NoError(t, err)
		assert.Len(t, res.Drafts, 1)
	})

	t.Run("unrelated", func(t *testing.T) {
		res, err := Interpreter.Interpret(tx, keychain("0x0000000000000000000000000000000000000001"))
		require.NoError(t, err)
		assert.Empty(t, res.Drafts)
	})
}
