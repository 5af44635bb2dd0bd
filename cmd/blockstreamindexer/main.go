// Command blockstreamindexer runs BlockStreamIndexer (spec.md §4.2):
// partitioned parallel backfill plus a continuous tail follower,
// writing canonical blocks into block_stream.
//
// With --partition given, the process drives exactly that one
// partition (the production deployment: one OS process per partition,
// per spec.md §5's "N partition workers run in parallel"). Without it,
// the process plans every historical partition for the current chain
// head and runs them all as sibling goroutines alongside the tail
// worker — a convenience single-process mode for development and
// small deployments.
package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/indexers/blockstream"
	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/chstore"
	"github.com/chainswarm/substrate-indexer/internal/cliutil"
	"github.com/chainswarm/substrate-indexer/internal/config"
	"github.com/chainswarm/substrate-indexer/internal/metrics"
	"github.com/chainswarm/substrate-indexer/internal/substratenode"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

var (
	networkFlag     = cli.StringFlag{Name: "network", Usage: "network name"}
	batchSizeFlag   = cli.Uint64Flag{Name: "batch-size", Usage: "heights fetched per iteration", Value: 100}
	partitionFlag   = cli.Int64Flag{Name: "partition", Usage: "partition index to run; omit to run every historical partition plus the tail", Value: -1}
	startHeightFlag = cli.Uint64Flag{Name: "start-height", Usage: "override the selected partition's lower bound"}
	endHeightFlag   = cli.Uint64Flag{Name: "end-height", Usage: "override the partition's upper bound; the partition is then not run as the tail"}
	sleepTimeFlag   = cli.Uint64Flag{Name: "sleep-time", Usage: "seconds to sleep between idle polls"}
)

func main() {
	app := cli.NewApp()
	app.Name = "blockstreamindexer"
	app.Usage = "range-partitioned substrate block ingestion"
	app.Flags = []cli.Flag{networkFlag, batchSizeFlag, partitionFlag, startHeightFlag, endHeightFlag, sleepTimeFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := xlog.New("blockstreamindexer")

	network, err := chain.ParseNetwork(c.String("network"))
	if err != nil {
		return err
	}

	overlay, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	cfg, err := config.Load(network, overlay)
	if err != nil {
		return err
	}

	token := cancel.New()
	cancel.InstallSignalHandler(token)

	chStore, err := chstore.New(cfg.ClickHouse, log)
	if err != nil {
		return err
	}
	defer chStore.Close()

	cp, err := cliutil.OptionalCheckpoint()
	if err != nil {
		return err
	}
	if cp != nil {
		defer cp.Close()
	}

	node := substratenode.New(network, cfg.NodeWSURL, token, log)
	defer node.Close()

	reg := metrics.New()
	batchSize := c.Uint64("batch-size")
	var sleep time.Duration
	if s := c.Uint64("sleep-time"); s > 0 {
		sleep = time.Duration(s) * time.Second
	}

	head, err := node.CurrentHeight()
	if err != nil {
		return err
	}

	if p := c.Int64("partition"); p >= 0 {
		bounds := singlePartitionBounds(network, uint64(p), head, c)
		w := blockstream.NewWorker(network, bounds, batchSize, node, chStore, cp, token, log.With("partition", strconv.FormatInt(p, 10)), reg)
		w.SetSleepInterval(sleep)
		return w.Run(context.Background())
	}

	plan := blockstream.PlanHistoricalPartitions(network, head)

	errCh := make(chan error, len(plan))
	for _, bounds := range plan {
		bounds := bounds
		label := "tail"
		if !bounds.Tail {
			label = strconv.FormatUint(bounds.Index, 10)
		}
		w := blockstream.NewWorker(network, bounds, batchSize, node, chStore, cp, token, log.With("partition", label), reg)
		w.SetSleepInterval(sleep)
		go func() {
			errCh <- w.Run(context.Background())
		}()
	}

	var first error
	for range plan {
		if err := <-errCh; err != nil && first == nil {
			first = err
			token.Cancel()
		}
	}
	return first
}

// singlePartitionBounds computes the bounds for one explicitly
// requested partition, honoring --start-height/--end-height overrides.
// It is the tail partition only when it is the one currently covering
// the chain head and the caller did not pin an explicit --end-height
// (spec.md §4.2: "the final partition is open-ended").
func singlePartitionBounds(network chain.Network, index, head uint64, c *cli.Context) blockstream.PartitionBounds {
	blocksPerPartition := network.Constants().PartitionBlocks
	lo, hi := blockstream.Bounds(index, blocksPerPartition)
	bounds := blockstream.PartitionBounds{Index: index, Lo: lo, Hi: hi}

	if index == blockstream.Partition(head, blocksPerPartition) {
		bounds.Hi = head
		bounds.Tail = true
	}
	if s := c.Uint64("start-height"); s > 0 {
		bounds.Lo = s
	}
	if e := c.Uint64("end-height"); e > 0 {
		bounds.Hi = e
		bounds.Tail = false
	}
	return bounds
}
