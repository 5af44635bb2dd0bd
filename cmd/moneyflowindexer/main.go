// Command moneyflowindexer runs MoneyFlowIndexer (spec.md §4.5): the
// single graph-store writer that projects balance movement events into
// a money-flow graph and periodically refreshes community detection,
// PageRank, and address embeddings.
package main

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/indexers/assets"
	"github.com/chainswarm/substrate-indexer/indexers/moneyflow"
	"github.com/chainswarm/substrate-indexer/internal/cache"
	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/chstore"
	"github.com/chainswarm/substrate-indexer/internal/cliutil"
	"github.com/chainswarm/substrate-indexer/internal/config"
	"github.com/chainswarm/substrate-indexer/internal/graphstore"
	"github.com/chainswarm/substrate-indexer/internal/metrics"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

var (
	networkFlag   = cli.StringFlag{Name: "network", Usage: "network name"}
	sleepTimeFlag = cli.Uint64Flag{Name: "sleep-time", Usage: "seconds to sleep while waiting for new block_stream rows"}
)

func main() {
	app := cli.NewApp()
	app.Name = "moneyflowindexer"
	app.Usage = "money-flow graph projection and periodic analytics"
	app.Flags = []cli.Flag{networkFlag, sleepTimeFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := xlog.New("moneyflowindexer")

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

	ctx := context.Background()

	chStore, err := chstore.New(cfg.ClickHouse, log)
	if err != nil {
		return err
	}
	defer chStore.Close()

	gStore, err := graphstore.New(ctx, cfg.Memgraph)
	if err != nil {
		return err
	}
	defer gStore.Close(ctx)

	reg := metrics.New()
	l1 := cache.NewAssetCache(1024)
	l2 := cliutil.OptionalRedisClient()
	if l2 != nil {
		defer l2.Close()
	}
	assetMgr := assets.New(network, chStore, l1, l2, log, reg)

	w := moneyflow.NewWorker(network, chStore, gStore, assetMgr, token, log, reg)
	if s := c.Uint64("sleep-time"); s > 0 {
		w.SetSleepInterval(time.Duration(s) * time.Second)
	}

	return w.Run(ctx)
}
