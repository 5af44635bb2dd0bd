package balancetransfers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainswarm/substrate-indexer/chain"
)

func ev(extrinsicID, eventIdx, module, event string, attrs map[string]interface{}) chain.Event {
	return chain.Event{ExtrinsicID: extrinsicID, EventIdx: eventIdx, ModuleID: module, EventID: event, Attributes: attrs}
}

func TestExtractTransferWithFee(t *testing.T) {
	block := chain.CanonicalBlock{
		Height:    10,
		Timestamp: 1000,
		Events: []chain.Event{
			ev("10-0", "10-0", "Balances", "Transfer", map[string]interface{}{
				"from": "alice", "to": "bob", "amount": "5000000000000000000",
			}),
			ev("10-0", "10-1", "TransactionPayment", "TransactionFeePaid", map[string]interface{}{
				"who": "alice", "actual_fee": "1000000000000000",
			}),
		},
	}

	rows := Extract(chain.Torus, block)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0].From)
	assert.Equal(t, "bob", rows[0].To)
	assert.Equal(t, "TOR", rows[0].Asset)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(5)))
	assert.True(t, rows[0].Fee.Equal(decimal.NewFromFloat(0.001)))
}

func TestExtractSkipsFailedExtrinsic(t *testing.T) {
	block := chain.CanonicalBlock{
		Height: 10,
		Events: []chain.Event{
			ev("10-0", "10-0", "Balances", "Transfer", map[string]interface{}{
				"from": "alice", "to": "bob", "amount": "1000000000000000000",
			}),
			ev("10-0", "10-1", "System", "ExtrinsicFailed", nil),
		},
	}

	rows := Extract(chain.Torus, block)
	assert.Empty(t, rows)
}

func TestExtractTorusPseudoTransferStakingReward(t *testing.T) {
	block := chain.CanonicalBlock{
		Height: 10,
		Events: []chain.Event{
			ev("", "10-0", "Staking", "Reward", map[string]interface{}{
				"stash": "validator1", "amount": "3000000000000000000",
			}),
		},
	}

	rows := Extract(chain.Torus, block)
	require.Len(t, rows, 1)
	assert.Equal(t, "system", rows[0].From)
	assert.Equal(t, "validator1", rows[0].To)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(3)))
}

func TestExtractBittensorStakeAdded(t *testing.T) {
	block := chain.CanonicalBlock{
		Height: 10,
		Events: []chain.Event{
			ev("20-0", "20-0", "SubtensorModule", "StakeAdded", map[string]interface{}{
				"coldkey": "cold1", "hotkey": "hot1", "amount": "2000000000000000000",
			}),
		},
	}

	rows := Extract(chain.Bittensor, block)
	require.Len(t, rows, 1)
	assert.Equal(t, "cold1", rows[0].From)
	assert.Equal(t, "hot1", rows[0].To)
	assert.Equal(t, "TAO", rows[0].Asset)
}

func TestExtractPolkadotCrowdloanContribution(t *testing.T) {
	block := chain.CanonicalBlock{
		Height: 10,
		Events: []chain.Event{
			ev("30-0", "30-0", "Crowdloan", "Contributed", map[string]interface{}{
				"who": "contributor1", "fund_index": "7", "amount": "100000000000",
			}),
		},
	}

	rows := Extract(chain.Polkadot, block)
	require.Len(t, rows, 1)
	assert.Equal(t, "contributor1", rows[0].From)
	assert.Equal(t, "crowdloan-7", rows[0].To)
	assert.Equal(t, "DOT", rows[0].Asset)
}
