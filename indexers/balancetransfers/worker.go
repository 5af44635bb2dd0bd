package balancetransfers

import (
	"context"
	"time"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/checkpoint"
	"github.com/chainswarm/substrate-indexer/internal/chstore"
	"github.com/chainswarm/substrate-indexer/internal/metrics"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

const componentName = "balance_transfers"

// PollInterval is how long the worker sleeps when block_stream has
// nothing new past its last processed height (spec.md §5).
const PollInterval = 6 * time.Second

// Worker reads batches of canonical blocks back out of block_stream
// (never the node) and projects balance_transfers rows (spec.md §4.3).
type Worker struct {
	network    chain.Network
	batchSize  uint64
	store      *chstore.Store
	checkpoint *checkpoint.Store
	token      *cancel.Token
	log        *xlog.Logger
	metrics    *metrics.Registry
	sleep      time.Duration
}

func NewWorker(network chain.Network, batchSize uint64, store *chstore.Store, cp *checkpoint.Store, token *cancel.Token, log *xlog.Logger, reg *metrics.Registry) *Worker {
	return &Worker{network: network, batchSize: batchSize, store: store, checkpoint: cp, token: token, log: log, metrics: reg, sleep: PollInterval}
}

// SetSleepInterval overrides the idle-poll interval, the CLI's
// --sleep-time flag (spec.md §6).
func (w *Worker) SetSleepInterval(d time.Duration) {
	if d > 0 {
		w.sleep = d
	}
}

// Run processes block_stream forever, starting from the checkpoint
// (or balance_transfers' own max height if no checkpoint hint exists).
func (w *Worker) Run(ctx context.Context, startHeight uint64) error {
	next := w.resumeHeight(startHeight)

	for {
		if w.token.IsCancelled() {
			return nil
		}

		lastIndexed, ok, err := w.store.LastIndexedHeightForPartition(ctx, 0, ^uint64(0))
		if err != nil {
			return err
		}
		if !ok || next > lastIndexed {
			select {
			case <-w.token.Done():
				return nil
			case <-time.After(w.sleep):
			}
			continue
		}

		hi := next + w.batchSize - 1
		if hi > lastIndexed {
			hi = lastIndexed
		}

		blocks, err := w.store.GetByRange(ctx, next, hi, false)
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			next = hi + 1
			continue
		}

		var rows []chain.BalanceTransfer
		for _, block := range blocks {
			if w.token.IsCancelled() {
				return nil
			}
			rows = append(rows, Extract(w.network, block)...)
		}

		if len(rows) > 0 {
			if err := w.store.InsertBalanceTransfers(ctx, rows); err != nil {
				return err
			}
			w.metrics.IncCounter(metrics.CounterRowsWritten, int64(len(rows)))
		}

		next = hi + 1
		w.metrics.SetGauge(metrics.GaugeLastIndexedHeight, int64(hi))
		if w.checkpoint != nil {
			if err := w.checkpoint.Set(w.network.String(), componentName, "0", hi, uint64(time.Now().UnixMilli())); err != nil {
				w.log.Warn("checkpoint write failed, continuing", "err", err)
			}
		}
	}
}

func (w *Worker) resumeHeight(startHeight uint64) uint64 {
	if w.checkpoint != nil {
		if h, ok, err := w.checkpoint.Get(w.network.String(), componentName, "0"); err == nil && ok {
			return h + 1
		}
	}
	if h, ok, err := w.store.MaxTransferHeight(context.Background()); err == nil && ok {
		return h + 1
	}
	return startHeight
}
