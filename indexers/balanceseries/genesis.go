package balanceseries

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainswarm/substrate-indexer/chain"
)

// GenesisFileEnv names the environment variable pointing at the
// Torus-only genesis balances file, a JSON array of [address, amount]
// pairs (SPEC_FULL.md supplement, spec.md §4.4 "Genesis seeding").
const GenesisFileEnv = "TORUS_GENESIS_BALANCES_FILE"

// seedGenesis loads the genesis balances file and inserts snapshots at
// height 0 with only Free populated, skipping entirely if
// balance_series already has rows (the caller already checked this via
// MaxPeriodEnd before calling) or the file is not configured.
func (w *Worker) seedGenesis(ctx context.Context) error {
	path := os.Getenv(GenesisFileEnv)
	if path == "" {
		w.log.Info("no genesis balances file configured, skipping genesis seeding")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var entries [][2]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	symbol := w.network.Constants().NativeSymbol
	decimals := w.network.Constants().NativeDecimals
	shift := decimal.New(1, decimals)

	var snapshots []chain.BalanceSnapshot
	for _, entry := range entries {
		address, rawAmount := entry[0], entry[1]
		raw, err := decimal.NewFromString(rawAmount)
		if err != nil {
			w.log.Warn("skipping malformed genesis balance entry", "address", address, "err", err)
			continue
		}
		free := raw.DivRound(shift, 18)
		snapshots = append(snapshots, chain.BalanceSnapshot{
			PeriodStart:   0,
			PeriodEnd:     0,
			BlockHeight:   0,
			Address:       address,
			Asset:         symbol,
			AssetContract: chain.NativeContract,
			Free:          free,
			Reserved:      decimal.Zero,
			Staked:        decimal.Zero,
			Total:         free,
			DeltaFree:     decimal.Zero,
			DeltaReserved: decimal.Zero,
			DeltaStaked:   decimal.Zero,
			DeltaTotal:    decimal.Zero,
			Version:       uint64(time.Now().UnixMilli()),
		})
	}

	w.log.Info("genesis balances seeded", "count", len(snapshots))
	return w.store.InsertBalanceSnapshots(ctx, snapshots)
}
