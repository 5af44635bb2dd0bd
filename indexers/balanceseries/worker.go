package balanceseries

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/chstore"
	"github.com/chainswarm/substrate-indexer/internal/metrics"
	"github.com/chainswarm/substrate-indexer/internal/xerrors"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

// NodeClient is the balance-query subset of substratenode.Client a
// period worker needs.
type NodeClient interface {
	BalancesAt(address string, atHeight uint64) (chain.Balances, error)
}

// Worker drives the period grid, sleeping between completed periods
// until the next boundary passes (spec.md §4.4).
type Worker struct {
	network     chain.Network
	periodHours int
	node        NodeClient
	store       *chstore.Store
	token       *cancel.Token
	log         *xlog.Logger
	metrics     *metrics.Registry
	sleep       time.Duration
}

// WakeInterval bounds how long the worker sleeps before re-checking
// whether the next period boundary and cancellation token, per spec.md
// §5's "waking periodically to honour cancellation."
const WakeInterval = 30 * time.Second

func NewWorker(network chain.Network, periodHours int, node NodeClient, store *chstore.Store, token *cancel.Token, log *xlog.Logger, reg *metrics.Registry) *Worker {
	return &Worker{network: network, periodHours: periodHours, node: node, store: store, token: token, log: log, metrics: reg, sleep: WakeInterval}
}

// SetSleepInterval overrides the wake-poll interval, the CLI's
// --sleep-time flag (spec.md §6).
func (w *Worker) SetSleepInterval(d time.Duration) {
	if d > 0 {
		w.sleep = d
	}
}

// Run processes every completed period since the last one recorded in
// balance_series, sleeping until the next period completes once caught
// up to wall-clock time.
func (w *Worker) Run(ctx context.Context) error {
	periodMillis := PeriodMillis(w.periodHours)

	nextIndex, err := w.resumePeriodIndex(ctx, periodMillis)
	if err != nil {
		return err
	}

	for {
		if w.token.IsCancelled() {
			return nil
		}

		start, end := PeriodBounds(nextIndex, periodMillis)
		if end > nowMillis() {
			select {
			case <-w.token.Done():
				return nil
			case <-time.After(w.sleep):
			}
			continue
		}

		if err := w.processPeriod(ctx, start, end); err != nil {
			return err
		}
		nextIndex++
	}
}

func (w *Worker) resumePeriodIndex(ctx context.Context, periodMillis uint64) (uint64, error) {
	maxEnd, ok, err := w.store.MaxPeriodEnd(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		if w.network.IsTorus() {
			if err := w.seedGenesis(ctx); err != nil {
				return 0, err
			}
		}
		return 0, nil
	}
	return maxEnd / periodMillis, nil
}

func (w *Worker) processPeriod(ctx context.Context, start, end uint64) error {
	heightAtEnd, ok, err := w.store.HeightAtOrBefore(ctx, end)
	if err != nil {
		return err
	}
	if !ok {
		// No block in block_stream has a timestamp at or before this
		// period's end, so there is nothing to snapshot; Run moves on
		// to the next period.
		return nil
	}

	heightAtStart, _, err := w.store.HeightAtOrBefore(ctx, start)
	if err != nil {
		return err
	}

	blocks, err := w.store.GetByRange(ctx, heightAtStart, heightAtEnd, true)
	if err != nil {
		return err
	}

	addresses := affectedAddresses(blocks)
	symbol := w.network.Constants().NativeSymbol
	decimals := w.network.Constants().NativeDecimals

	var snapshots []chain.BalanceSnapshot
	for _, addr := range addresses {
		if w.token.IsCancelled() {
			return nil
		}

		bal, err := w.node.BalancesAt(addr, heightAtEnd)
		if err != nil {
			return err
		}
		bal = normalizeBalances(bal, decimals)

		if bal.Total.IsNegative() {
			return xerrors.Fatal(negativeBalanceErr(addr), "balanceseries: negative balance invariant")
		}
		if !bal.Total.Equal(bal.Free.Add(bal.Reserved).Add(bal.Staked)) {
			w.log.Warn("balance components do not sum to total, correcting", "address", addr)
			bal.Total = bal.Free.Add(bal.Reserved).Add(bal.Staked)
		}

		snap := chain.BalanceSnapshot{
			PeriodStart:   start,
			PeriodEnd:     end,
			BlockHeight:   heightAtEnd,
			Address:       addr,
			Asset:         symbol,
			AssetContract: chain.NativeContract,
			Free:          bal.Free,
			Reserved:      bal.Reserved,
			Staked:        bal.Staked,
			Total:         bal.Total,
			Version:       uint64(time.Now().UnixMilli()),
		}

		prev, found, err := w.store.LatestSnapshotBefore(ctx, addr, symbol, start)
		if err != nil {
			return err
		}
		if found {
			snap.DeltaFree = snap.Free.Sub(prev.Free)
			snap.DeltaReserved = snap.Reserved.Sub(prev.Reserved)
			snap.DeltaStaked = snap.Staked.Sub(prev.Staked)
			snap.DeltaTotal = snap.Total.Sub(prev.Total)
			if !prev.Total.IsZero() {
				pct := snap.DeltaTotal.Div(prev.Total).Mul(decimal.NewFromInt(100))
				snap.PercentChangeTotal = decimal.NewNullDecimal(pct)
			}
		} else {
			snap.DeltaFree = decimal.Zero
			snap.DeltaReserved = decimal.Zero
			snap.DeltaStaked = decimal.Zero
			snap.DeltaTotal = decimal.Zero
		}

		snapshots = append(snapshots, snap)
	}

	if err := w.store.InsertBalanceSnapshots(ctx, snapshots); err != nil {
		return err
	}
	w.metrics.IncCounter(metrics.CounterRowsWritten, int64(len(snapshots)))
	return nil
}

func negativeBalanceErr(address string) error {
	return fmt.Errorf("negative total balance computed for %s", address)
}

func affectedAddresses(blocks []chain.CanonicalBlock) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, b := range blocks {
		for _, a := range b.Addresses {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

func normalizeBalances(b chain.Balances, decimals int32) chain.Balances {
	shift := decimal.New(1, decimals)
	return chain.Balances{
		Free:     b.Free.DivRound(shift, 18),
		Reserved: b.Reserved.DivRound(shift, 18),
		Staked:   b.Staked.DivRound(shift, 18),
		Total:    b.Total.DivRound(shift, 18),
	}
}
