package moneyflow

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/indexers/assets"
	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/chstore"
	"github.com/chainswarm/substrate-indexer/internal/graphstore"
	"github.com/chainswarm/substrate-indexer/internal/metrics"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

// PollInterval is how long the worker sleeps when block_stream has no
// new height past the last one it processed (spec.md §5).
const PollInterval = 6 * time.Second

// Worker is the single MoneyFlowIndexer writer (spec.md §5: "The
// design assumes a single MoneyFlow worker").
type Worker struct {
	network  chain.Network
	chStore  *chstore.Store
	gStore   *graphstore.Store
	assetMgr *assets.Manager
	token    *cancel.Token
	log      *xlog.Logger
	metrics  *metrics.Registry
	sleep    time.Duration
}

func NewWorker(network chain.Network, chStore *chstore.Store, gStore *graphstore.Store, assetMgr *assets.Manager, token *cancel.Token, log *xlog.Logger, reg *metrics.Registry) *Worker {
	return &Worker{network: network, chStore: chStore, gStore: gStore, assetMgr: assetMgr, token: token, log: log, metrics: reg, sleep: PollInterval}
}

// SetSleepInterval overrides the idle-poll interval, the CLI's
// --sleep-time flag (spec.md §6).
func (w *Worker) SetSleepInterval(d time.Duration) {
	if d > 0 {
		w.sleep = d
	}
}

// analyticsEveryBlocks returns the blocks-per-4h period named in
// spec.md §4.5 ("every 4h / block_time_seconds blocks").
func (w *Worker) analyticsEveryBlocks() uint64 {
	blockTime := w.network.Constants().BlockTimeSeconds
	return uint64(4 * 3600 / blockTime)
}

// Run reads block_stream in order, starting from GlobalState's
// recorded height plus one, and applies each block to the graph.
// Every analyticsEveryBlocks() blocks it runs the periodic analytics
// pass (spec.md §8 scenario 6).
func (w *Worker) Run(ctx context.Context) error {
	next, err := w.resumeHeight(ctx)
	if err != nil {
		return err
	}
	analyticsEvery := w.analyticsEveryBlocks()

	for {
		if w.token.IsCancelled() {
			return nil
		}

		lastIndexed, ok, err := w.chStore.LastIndexedHeightForPartition(ctx, 0, ^uint64(0))
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

		blocks, err := w.chStore.GetByRange(ctx, next, next, false)
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			next++
			continue
		}
		block := blocks[0]

		if err := ProcessBlock(ctx, w.gStore, w.network, w.assetMgr, w.log, block); err != nil {
			return err
		}
		w.metrics.SetGauge(metrics.GaugeLastIndexedHeight, int64(block.Height))

		if analyticsEvery > 0 && block.Height%analyticsEvery == 0 {
			if err := RunPeriodicAnalytics(ctx, w.gStore, w.token, w.log); err != nil {
				return err
			}
		}

		next = block.Height + 1
	}
}

func (w *Worker) resumeHeight(ctx context.Context) (uint64, error) {
	var height uint64
	err := w.gStore.Read(ctx, func(tx neo4j.ManagedTransaction) error {
		h, ok, err := graphstore.GlobalHeight(ctx, tx)
		if err != nil {
			return err
		}
		if ok {
			height = h + 1
		}
		return nil
	})
	return height, err
}
