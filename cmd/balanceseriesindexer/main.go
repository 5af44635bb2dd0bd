// Command balanceseriesindexer runs BalanceSeriesIndexer (spec.md
// §4.4): a period-grid worker that snapshots address balances at the
// end of each period_hours-long window, aligned to Unix epoch.
package main

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/indexers/balanceseries"
	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/chstore"
	"github.com/chainswarm/substrate-indexer/internal/config"
	"github.com/chainswarm/substrate-indexer/internal/metrics"
	"github.com/chainswarm/substrate-indexer/internal/substratenode"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

var (
	networkFlag     = cli.StringFlag{Name: "network", Usage: "network name"}
	periodHoursFlag = cli.IntFlag{Name: "period-hours", Usage: "length of each balance-snapshot period, in hours", Value: 4}
	sleepTimeFlag   = cli.Uint64Flag{Name: "sleep-time", Usage: "seconds to sleep while waiting for the next period boundary"}
)

func main() {
	app := cli.NewApp()
	app.Name = "balanceseriesindexer"
	app.Usage = "period-grid balance snapshot projection"
	app.Flags = []cli.Flag{networkFlag, periodHoursFlag, sleepTimeFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := xlog.New("balanceseriesindexer")

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

	node := substratenode.New(network, cfg.NodeWSURL, token, log)
	defer node.Close()

	reg := metrics.New()
	w := balanceseries.NewWorker(network, c.Int("period-hours"), node, chStore, token, log, reg)
	if s := c.Uint64("sleep-time"); s > 0 {
		w.SetSleepInterval(time.Duration(s) * time.Second)
	}

	return w.Run(context.Background())
}
