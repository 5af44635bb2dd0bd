package blockstream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chainswarm/substrate-indexer/chain"
)

func TestPartition(t *testing.T) {
	assert.Equal(t, uint64(0), Partition(0, 100))
	assert.Equal(t, uint64(0), Partition(99, 100))
	assert.Equal(t, uint64(1), Partition(100, 100))
	assert.Equal(t, uint64(3), Partition(324_050, 100_000))
}

func TestBounds(t *testing.T) {
	lo, hi := Bounds(0, 100)
	assert.Equal(t, uint64(0), lo)
	assert.Equal(t, uint64(99), hi)

	lo, hi = Bounds(2, 100)
	assert.Equal(t, uint64(200), lo)
	assert.Equal(t, uint64(299), hi)
}

// TestPlanHistoricalPartitionsNeverSplitsABlock checks the invariant of
// spec.md §3 point 6: partition boundaries never split a block, and
// every historical partition's Hi is exactly one less than the next
// partition's Lo.
func TestPlanHistoricalPartitionsNeverSplitsABlock(t *testing.T) {
	plan := PlanHistoricalPartitions(chain.Torus, 700_000)
	for i := 1; i < len(plan); i++ {
		assert.Equal(t, plan[i-1].Hi+1, plan[i].Lo)
	}
}

func TestPlanHistoricalPartitionsTailCoversHead(t *testing.T) {
	chainHead := uint64(700_000)
	plan := PlanHistoricalPartitions(chain.Torus, chainHead)

	last := plan[len(plan)-1]
	assert.True(t, last.Tail)
	assert.Equal(t, chainHead, last.Hi)
	assert.LessOrEqual(t, last.Lo, chainHead)

	for _, p := range plan[:len(plan)-1] {
		assert.False(t, p.Tail)
	}
}

func TestPlanHistoricalPartitionsEmptyChainIsOnlyTail(t *testing.T) {
	plan := PlanHistoricalPartitions(chain.Torus, 50)
	assert.Len(t, plan, 1)
	assert.True(t, plan[0].Tail)
	assert.Equal(t, uint64(0), plan[0].Index)
}
