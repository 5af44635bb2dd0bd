// Package blockstream implements BlockStreamIndexer (spec.md §4.2):
// partitioned parallel backfill plus a continuous tail follower,
// writing canonical blocks into the block_stream table. Grounded on
// datasync/chaindatafetcher/chaindata_fetcher.go's range-bounded
// consumer loop (rangeHead/latestHead bookkeeping, batch fetch-then-
// insert, gauge updates per batch) generalized from klaytn's single
// global range into N independent, fixed-size partitions plus one
// open-ended tail partition.
package blockstream

import "github.com/chainswarm/substrate-indexer/chain"

// PartitionBounds is the inclusive block range [Lo, Hi] owned by one
// partition worker. For the tail partition Hi is the chain head at
// planning time; the tail worker keeps following the live head past
// it.
type PartitionBounds struct {
	Index uint64
	Lo    uint64
	Hi    uint64
	Tail  bool
}

// Partition returns the deterministic partition index a height belongs
// to: height / P, per spec.md §4.2.
func Partition(height uint64, blocksPerPartition uint64) uint64 {
	return height / blocksPerPartition
}

// Bounds returns the inclusive range [kP, (k+1)P-1] for partition k.
func Bounds(k uint64, blocksPerPartition uint64) (lo, hi uint64) {
	lo = k * blocksPerPartition
	hi = lo + blocksPerPartition - 1
	return
}

// PlanHistoricalPartitions returns one PartitionBounds per partition
// strictly below the partition containing chainHead, i.e. every
// partition that is fully in the past and can therefore have a known,
// finite expected block count, followed by one Tail entry for the
// partition containing chainHead, covering [headPartition*P, chainHead].
func PlanHistoricalPartitions(network chain.Network, chainHead uint64) []PartitionBounds {
	blocksPerPartition := network.Constants().PartitionBlocks
	headPartition := Partition(chainHead, blocksPerPartition)

	var out []PartitionBounds
	for k := uint64(0); k < headPartition; k++ {
		lo, hi := Bounds(k, blocksPerPartition)
		out = append(out, PartitionBounds{Index: k, Lo: lo, Hi: hi})
	}
	out = append(out, PartitionBounds{Index: headPartition, Lo: headPartition * blocksPerPartition, Hi: chainHead, Tail: true})
	return out
}
