package chstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/chainswarm/substrate-indexer/chain"
)

// InsertBalanceSnapshots appends balance_series rows (spec.md §4.4).
func (s *Store) InsertBalanceSnapshots(ctx context.Context, snaps []chain.BalanceSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO balance_series (
		period_start, period_end, block_height, address, asset, asset_contract,
		free, reserved, staked, total,
		delta_free, delta_reserved, delta_staked, delta_total, percent_change_total,
		_version
	)`)
	if err != nil {
		return errors.Wrap(err, "chstore: preparing balance_series batch")
	}
	for _, sn := range snaps {
		var pct *float64
		if sn.PercentChangeTotal.Valid {
			f, _ := sn.PercentChangeTotal.Decimal.Float64()
			pct = &f
		}
		if err := batch.Append(
			sn.PeriodStart, sn.PeriodEnd, sn.BlockHeight, sn.Address, sn.Asset, sn.AssetContract,
			sn.Free.String(), sn.Reserved.String(), sn.Staked.String(), sn.Total.String(),
			sn.DeltaFree.String(), sn.DeltaReserved.String(), sn.DeltaStaked.String(), sn.DeltaTotal.String(),
			pct, sn.Version,
		); err != nil {
			return errors.Wrapf(err, "chstore: appending snapshot for %s/%s", sn.Address, sn.Asset)
		}
	}
	return errors.Wrap(batch.Send(), "chstore: sending balance_series batch")
}

// LatestSnapshotBefore returns the most recent snapshot for
// (address, asset) with period_start strictly before before, used to
// compute deltas (spec.md §4.4 step 5, invariant 3).
func (s *Store) LatestSnapshotBefore(ctx context.Context, address, asset string, before uint64) (chain.BalanceSnapshot, bool, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT period_start, period_end, block_height, address, asset, asset_contract,
			free, reserved, staked, total
		FROM balance_series FINAL
		WHERE address = ? AND asset = ? AND period_start < ?
		ORDER BY period_start DESC
		LIMIT 1`, address, asset, before)

	var (
		sn                                chain.BalanceSnapshot
		free, reserved, staked, total string
	)
	if err := row.Scan(
		&sn.PeriodStart, &sn.PeriodEnd, &sn.BlockHeight, &sn.Address, &sn.Asset, &sn.AssetContract,
		&free, &reserved, &staked, &total,
	); err != nil {
		if isNoRows(err) {
			return chain.BalanceSnapshot{}, false, nil
		}
		return chain.BalanceSnapshot{}, false, errors.Wrap(err, "chstore: scanning previous snapshot")
	}

	var err error
	if sn.Free, err = decimal.NewFromString(free); err != nil {
		return chain.BalanceSnapshot{}, false, errors.Wrap(err, "chstore: parsing free")
	}
	if sn.Reserved, err = decimal.NewFromString(reserved); err != nil {
		return chain.BalanceSnapshot{}, false, errors.Wrap(err, "chstore: parsing reserved")
	}
	if sn.Staked, err = decimal.NewFromString(staked); err != nil {
		return chain.BalanceSnapshot{}, false, errors.Wrap(err, "chstore: parsing staked")
	}
	if sn.Total, err = decimal.NewFromString(total); err != nil {
		return chain.BalanceSnapshot{}, false, errors.Wrap(err, "chstore: parsing total")
	}
	return sn, true, nil
}

// MaxPeriodEnd returns the latest processed period, MAX(period_end) in
// balance_series (spec.md §4.4).
func (s *Store) MaxPeriodEnd(ctx context.Context) (uint64, bool, error) {
	row := s.conn.QueryRow(ctx, `SELECT max(period_end) FROM balance_series FINAL`)
	var max *uint64
	if err := row.Scan(&max); err != nil {
		return 0, false, errors.Wrap(err, "chstore: scanning max period end")
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

// HasAnySnapshots reports whether balance_series already has rows. The
// balance-series worker does not call it: genesis seeding is gated on
// MaxPeriodEnd in resumePeriodIndex.
func (s *Store) HasAnySnapshots(ctx context.Context) (bool, error) {
	row := s.conn.QueryRow(ctx, `SELECT count() FROM balance_series FINAL LIMIT 1`)
	var count uint64
	if err := row.Scan(&count); err != nil {
		return false, errors.Wrap(err, "chstore: scanning snapshot count")
	}
	return count > 0, nil
}
