package blockstream

import (
	"context"

	"github.com/chainswarm/substrate-indexer/internal/chstore"
)

// Status is one partition's progress report (spec.md §4.2
// get_indexing_status): expected vs actual block count, the observed
// height range, whether any heights in that range are missing, and a
// coarse state label.
type Status struct {
	Partition       uint64
	ExpectedBlocks  uint64
	ActualBlocks    uint64
	FirstIndexed    uint64
	LastIndexed     uint64
	HasGaps         bool
	MissingHeights  []uint64
	State           string
}

const (
	StateNotStarted          = "not_started"
	StateIncomplete          = "incomplete"
	StateIncompleteWithGaps  = "incomplete_with_gaps"
	StateCompleted           = "completed"
)

// IndexingStatus computes the progress report for one partition by
// scanning block_stream directly — the checkpoint table is only a
// resume hint, never consulted here (spec.md §4.2). chainHead bounds
// the produced window: a partition's target end (bounds.Hi) may sit
// far past the chain's current tip, and heights above the tip simply
// don't exist yet — they are not gaps (spec.md §8 invariant: completion
// is checked against `min((k+1)P−1, chain_head)`, not the partition's
// full target end).
func IndexingStatus(ctx context.Context, store *chstore.Store, bounds PartitionBounds, chainHead uint64) (Status, error) {
	expected := bounds.Hi - bounds.Lo + 1

	actual, err := store.IndexedHeightCount(ctx, bounds.Lo, bounds.Hi)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		Partition:      bounds.Index,
		ExpectedBlocks: expected,
		ActualBlocks:   actual,
	}

	if actual == 0 {
		st.State = StateNotStarted
		return st, nil
	}

	last, _, err := store.LastIndexedHeightForPartition(ctx, bounds.Lo, bounds.Hi)
	if err != nil {
		return Status{}, err
	}
	st.LastIndexed = last

	first, _, err := store.FirstIndexedHeightForPartition(ctx, bounds.Lo, bounds.Hi)
	if err != nil {
		return Status{}, err
	}
	st.FirstIndexed = first

	effectiveEnd := bounds.Hi
	if chainHead < effectiveEnd {
		effectiveEnd = chainHead
	}

	missing, err := store.MissingHeights(ctx, bounds.Lo, effectiveEnd)
	if err != nil {
		return Status{}, err
	}
	st.MissingHeights = missing
	st.HasGaps = len(missing) > 0

	complete := actual == expected && last == bounds.Hi && !st.HasGaps
	switch {
	case complete:
		st.State = StateCompleted
	case st.HasGaps:
		st.State = StateIncompleteWithGaps
	default:
		st.State = StateIncomplete
	}
	return st, nil
}
