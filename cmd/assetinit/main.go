// Command assetinit runs AssetManager's one-time bootstrap
// (init_native_assets, spec.md §4.6): it inserts the network's native
// asset row, verified by construction, then exits. It is the first
// leaf in the dependency order of spec.md §4's component table
// (AssetManager -> NodeClient -> BlockStreamIndexer -> ...).
package main

import (
	"context"
	"os"

	"github.com/urfave/cli"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/indexers/assets"
	"github.com/chainswarm/substrate-indexer/internal/cache"
	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/chstore"
	"github.com/chainswarm/substrate-indexer/internal/cliutil"
	"github.com/chainswarm/substrate-indexer/internal/config"
	"github.com/chainswarm/substrate-indexer/internal/metrics"
	"github.com/chainswarm/substrate-indexer/internal/substratenode"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

var (
	networkFlag = cli.StringFlag{Name: "network", Usage: "network name (torus, torus-testnet, bittensor, bittensor-testnet, polkadot)"}
)

func main() {
	app := cli.NewApp()
	app.Name = "assetinit"
	app.Usage = "seed the assets dictionary with a network's native asset"
	app.Flags = []cli.Flag{networkFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := xlog.New("assetinit")

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

	l1 := cache.NewAssetCache(1024)
	l2 := cliutil.OptionalRedisClient()
	if l2 != nil {
		defer l2.Close()
	}

	reg := metrics.New()
	assetMgr := assets.New(network, chStore, l1, l2, log, reg)

	node := substratenode.New(network, cfg.NodeWSURL, token, log)
	defer node.Close()

	genesis, err := node.BlockByHeight(0)
	if err != nil {
		return err
	}

	if err := assetMgr.InitNativeAssets(context.Background(), genesis.Height, genesis.Timestamp); err != nil {
		return err
	}
	log.Info("native asset initialized", "network", network.String())
	return nil
}
