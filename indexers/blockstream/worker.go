package blockstream

import (
	"context"
	"strconv"
	"time"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/checkpoint"
	"github.com/chainswarm/substrate-indexer/internal/chstore"
	"github.com/chainswarm/substrate-indexer/internal/metrics"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

const componentName = "block_stream"

// NodeClient is the subset of substratenode.Client a partition worker
// needs, narrowed to an interface so tests can supply a fake instead
// of a live substrate connection.
type NodeClient interface {
	BlocksByRange(lo, hi uint64) ([]chain.CanonicalBlock, error)
	CurrentHeight() (uint64, error)
}

// Worker drives one partition: historical partitions run to
// completion and exit; the tail partition never exits, polling chain
// head at PollInterval once caught up (spec.md §4.2, §5).
type Worker struct {
	network    chain.Network
	bounds     PartitionBounds
	batchSize  uint64
	node       NodeClient
	store      *chstore.Store
	checkpoint *checkpoint.Store
	token      *cancel.Token
	log        *xlog.Logger
	metrics    *metrics.Registry
	sleep      time.Duration
}

// PollInterval is how often the tail worker checks chain head again
// once it has caught up, matching spec.md §5's "polling chain head at
// a fixed interval instead of busy-waiting."
const PollInterval = 6 * time.Second

func NewWorker(network chain.Network, bounds PartitionBounds, batchSize uint64, node NodeClient, store *chstore.Store, cp *checkpoint.Store, token *cancel.Token, log *xlog.Logger, reg *metrics.Registry) *Worker {
	return &Worker{
		network: network, bounds: bounds, batchSize: batchSize,
		node: node, store: store, checkpoint: cp, token: token, log: log, metrics: reg,
		sleep: PollInterval,
	}
}

// SetSleepInterval overrides the tail-poll interval, the CLI's
// --sleep-time flag (spec.md §6).
func (w *Worker) SetSleepInterval(d time.Duration) {
	if d > 0 {
		w.sleep = d
	}
}

func (w *Worker) partitionLabel() string {
	if w.bounds.Tail {
		return "tail"
	}
	return strconv.FormatUint(w.bounds.Index, 10)
}

// Run drives this partition to completion (historical) or forever
// (tail). It resumes from the checkpoint hint if present, otherwise
// from the store's actual last-indexed height, falling back to the
// partition's Lo.
func (w *Worker) Run(ctx context.Context) error {
	next := w.resumeHeight(ctx)

	for {
		if w.token.IsCancelled() {
			return nil
		}

		effectiveEnd := w.bounds.Hi
		if w.bounds.Tail {
			head, err := w.node.CurrentHeight()
			if err != nil {
				return err
			}
			w.metrics.SetGauge(metrics.GaugeChainHeadHeight, int64(head))
			effectiveEnd = head
		}

		if next > effectiveEnd {
			if !w.bounds.Tail {
				w.log.Info("partition complete", "partition", w.partitionLabel(), "last_indexed", next-1)
				return nil
			}
			select {
			case <-w.token.Done():
				return nil
			case <-time.After(w.sleep):
			}
			continue
		}

		batchEnd := next + w.batchSize - 1
		if batchEnd > effectiveEnd {
			batchEnd = effectiveEnd
		}

		blocks, err := w.node.BlocksByRange(next, batchEnd)
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			continue
		}

		start := time.Now()
		if err := w.store.InsertBlocks(ctx, blocks); err != nil {
			return err
		}
		if err := w.store.RecordEventCatalog(ctx, blocks); err != nil {
			return err
		}
		w.metrics.SetGauge(metrics.GaugeBatchInsertMillis, time.Since(start).Milliseconds())
		w.metrics.IncCounter(metrics.CounterBlocksIndexed, int64(len(blocks)))

		last := blocks[len(blocks)-1].Height
		w.metrics.SetGauge(metrics.GaugeLastIndexedHeight, int64(last))
		next = last + 1

		if w.checkpoint != nil {
			if err := w.checkpoint.Set(w.network.String(), componentName, w.partitionLabel(), next-1, uint64(time.Now().UnixMilli())); err != nil {
				w.log.Warn("checkpoint write failed, continuing (authoritative state is block_stream)", "err", err)
			}
		}
	}
}

func (w *Worker) resumeHeight(ctx context.Context) uint64 {
	if w.checkpoint != nil {
		if h, ok, err := w.checkpoint.Get(w.network.String(), componentName, w.partitionLabel()); err == nil && ok {
			return h + 1
		}
	}
	if h, ok, err := w.store.LastIndexedHeightForPartition(ctx, w.bounds.Lo, w.bounds.Hi); err == nil && ok {
		return h + 1
	}
	return w.bounds.Lo
}
