package moneyflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chainswarm/substrate-indexer/chain"
)

func TestAssetAttributionNative(t *testing.T) {
	ev := chain.Event{ModuleID: "Balances", EventID: "Transfer"}
	symbol, contract := assetAttribution(chain.Torus, ev)
	assert.Equal(t, "TOR", symbol)
	assert.Equal(t, chain.NativeContract, contract)
}

func TestAssetAttributionToken(t *testing.T) {
	ev := chain.Event{ModuleID: "Assets", EventID: "Transferred", Attributes: map[string]interface{}{"asset_id": "42"}}
	symbol, contract := assetAttribution(chain.Bittensor, ev)
	assert.Equal(t, "TOKEN_42", symbol)
	assert.Equal(t, "42", contract)
}

func TestAttrUint(t *testing.T) {
	ev := chain.Event{Attributes: map[string]interface{}{"network_id": "7"}}
	assert.Equal(t, uint64(7), attrUint(ev, "network_id"))
	assert.Equal(t, uint64(0), attrUint(ev, "missing"))

	bad := chain.Event{Attributes: map[string]interface{}{"network_id": "not-a-number"}}
	assert.Equal(t, uint64(0), attrUint(bad, "network_id"))
}

func TestSignerForEvent(t *testing.T) {
	block := chain.CanonicalBlock{
		Transactions: []chain.Transaction{
			{ExtrinsicID: "10-0", Signer: "alice"},
			{ExtrinsicID: "10-1", Signer: "bob"},
		},
	}

	ev := chain.Event{ExtrinsicID: "10-1"}
	assert.Equal(t, "bob", signerForEvent(block, ev))

	noExtrinsic := chain.Event{}
	assert.Equal(t, "", signerForEvent(block, noExtrinsic))

	unmatched := chain.Event{ExtrinsicID: "99-0"}
	assert.Equal(t, "", signerForEvent(block, unmatched))
}
