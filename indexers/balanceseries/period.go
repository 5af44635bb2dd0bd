// Package balanceseries implements BalanceSeriesIndexer (spec.md
// §4.4): periodic balance snapshots on a fixed wall-clock grid,
// delta computation against the previous snapshot, and Torus-only
// genesis seeding. Grounded on chaindatafetcher's checkpoint-driven
// consumer loop, generalized from "next block" to "next period
// boundary."
package balanceseries

import "time"

// PeriodMillis returns P_ms = period_hours * 3600 * 1000, the period
// grid's width (spec.md §4.4).
func PeriodMillis(periodHours int) uint64 {
	return uint64(periodHours) * 3600 * 1000
}

// PeriodBounds returns the [start, end) boundaries of period i on the
// Unix-epoch-aligned grid.
func PeriodBounds(i uint64, periodMillis uint64) (start, end uint64) {
	start = i * periodMillis
	end = start + periodMillis
	return
}

// PeriodIndexForTime returns the period index containing a wall-clock
// timestamp (ms since epoch).
func PeriodIndexForTime(nowMillis uint64, periodMillis uint64) uint64 {
	return nowMillis / periodMillis
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
