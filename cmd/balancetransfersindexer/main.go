// Command balancetransfersindexer runs BalanceTransfersIndexer
// (spec.md §4.3): a single worker that reads canonical blocks back out
// of block_stream and projects pseudo-transfer-normalized
// balance_transfers rows.
package main

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/indexers/balancetransfers"
	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/chstore"
	"github.com/chainswarm/substrate-indexer/internal/cliutil"
	"github.com/chainswarm/substrate-indexer/internal/config"
	"github.com/chainswarm/substrate-indexer/internal/metrics"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

var (
	networkFlag     = cli.StringFlag{Name: "network", Usage: "network name"}
	batchSizeFlag   = cli.Uint64Flag{Name: "batch-size", Usage: "heights read per iteration", Value: 500}
	startHeightFlag = cli.Uint64Flag{Name: "start-height", Usage: "height to resume from when no checkpoint or prior rows exist"}
	sleepTimeFlag   = cli.Uint64Flag{Name: "sleep-time", Usage: "seconds to sleep between idle polls"}
)

func main() {
	app := cli.NewApp()
	app.Name = "balancetransfersindexer"
	app.Usage = "pseudo-transfer-normalized balance movement projection"
	app.Flags = []cli.Flag{networkFlag, batchSizeFlag, startHeightFlag, sleepTimeFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := xlog.New("balancetransfersindexer")

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

	reg := metrics.New()
	w := balancetransfers.NewWorker(network, c.Uint64("batch-size"), chStore, cp, token, log, reg)
	if s := c.Uint64("sleep-time"); s > 0 {
		w.SetSleepInterval(time.Duration(s) * time.Second)
	}

	return w.Run(context.Background(), c.Uint64("start-height"))
}
