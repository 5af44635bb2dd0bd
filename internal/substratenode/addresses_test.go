package substratenode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chainswarm/substrate-indexer/chain"
)

func TestCollectAddressesDedupesSignersAndEventAttrs(t *testing.T) {
	block := chain.CanonicalBlock{
		Transactions: []chain.Transaction{
			{Signer: "alice"},
			{Signer: "alice"},
			{Signer: ""},
		},
		Events: []chain.Event{
			{Attributes: map[string]interface{}{"from": "alice", "to": "bob"}},
			{Attributes: map[string]interface{}{"stash": "validator1"}},
			{Attributes: map[string]interface{}{"unrelated_field": "xyz"}},
		},
	}

	got := collectAddresses(block)
	assert.Equal(t, []string{"alice", "bob", "validator1"}, got)
}

func TestCollectAddressesEmptyBlock(t *testing.T) {
	assert.Empty(t, collectAddresses(chain.CanonicalBlock{}))
}
