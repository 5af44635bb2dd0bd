package substratenode

import (
	"testing"

	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/assert"
)

func TestPhaseExtrinsicIndexApplyExtrinsic(t *testing.T) {
	phase := gsrpctypes.Phase{IsApplyExtrinsic: true, AsApplyExtrinsic: 7}
	idx, ok := phaseExtrinsicIndex(phase)
	assert.True(t, ok)
	assert.Equal(t, 7, idx)
}

func TestPhaseExtrinsicIndexNonExtrinsicPhase(t *testing.T) {
	_, ok := phaseExtrinsicIndex(gsrpctypes.Phase{IsFinalization: true})
	assert.False(t, ok)
}

func TestNewEventSetsExtrinsicIDOnlyWhenPresent(t *testing.T) {
	withExtrinsic := newEvent(100, 2, 5, true, "Balances", "Transfer", map[string]interface{}{"amount": "1"})
	assert.Equal(t, "100-5", withExtrinsic.ExtrinsicID)
	assert.Equal(t, "100-2", withExtrinsic.EventIdx)
	assert.Equal(t, "Balances", withExtrinsic.ModuleID)

	withoutExtrinsic := newEvent(100, 3, 0, false, "Staking", "Reward", map[string]interface{}{})
	assert.Empty(t, withoutExtrinsic.ExtrinsicID)
}
