package balanceseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriodMillis(t *testing.T) {
	assert.Equal(t, uint64(4*3600*1000), PeriodMillis(4))
	assert.Equal(t, uint64(3600*1000), PeriodMillis(1))
}

func TestPeriodBounds(t *testing.T) {
	p := PeriodMillis(4)
	start, end := PeriodBounds(0, p)
	assert.Equal(t, uint64(0), start)
	assert.Equal(t, p, end)

	start, end = PeriodBounds(2, p)
	assert.Equal(t, 2*p, start)
	assert.Equal(t, 3*p, end)
}

func TestPeriodIndexForTime(t *testing.T) {
	p := PeriodMillis(4)
	assert.Equal(t, uint64(0), PeriodIndexForTime(0, p))
	assert.Equal(t, uint64(0), PeriodIndexForTime(p-1, p))
	assert.Equal(t, uint64(1), PeriodIndexForTime(p, p))
}

// TestPeriodGridHasNoGapsOrOverlaps verifies consecutive periods tile
// the timeline exactly, per spec.md §4.4's "periods are exactly
// period_hours long, aligned to Unix epoch."
func TestPeriodGridHasNoGapsOrOverlaps(t *testing.T) {
	p := PeriodMillis(4)
	for i := uint64(0); i < 10; i++ {
		_, end := PeriodBounds(i, p)
		nextStart, _ := PeriodBounds(i+1, p)
		assert.Equal(t, end, nextStart)
	}
}
