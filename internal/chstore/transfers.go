package chstore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/chainswarm/substrate-indexer/chain"
)

// InsertBalanceTransfers appends rows to balance_transfers, keyed by
// (extrinsic_id, event_idx), idempotent via _version = block_height
// (spec.md §4.3).
func (s *Store) InsertBalanceTransfers(ctx context.Context, transfers []chain.BalanceTransfer) error {
	if len(transfers) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO balance_transfers (
		extrinsic_id, event_idx, block_height, block_timestamp,
		from_address, to_address, asset, asset_contract, amount, fee, _version
	)`)
	if err != nil {
		return errors.Wrap(err, "chstore: preparing balance_transfers batch")
	}
	for _, t := range transfers {
		version := t.Version
		if version == 0 {
			version = t.BlockHeight
		}
		if err := batch.Append(
			t.ExtrinsicID, t.EventIdx, t.BlockHeight, t.BlockTimestamp,
			t.From, t.To, t.Asset, t.AssetContract, t.Amount.String(), t.Fee.String(), version,
		); err != nil {
			return errors.Wrapf(err, "chstore: appending transfer %s/%s", t.ExtrinsicID, t.EventIdx)
		}
	}
	return errors.Wrap(batch.Send(), "chstore: sending balance_transfers batch")
}

// MaxTransferHeight returns the BalanceTransfersIndexer progress
// marker: max(block_height) in balance_transfers (spec.md §4.3).
func (s *Store) MaxTransferHeight(ctx context.Context) (uint64, bool, error) {
	row := s.conn.QueryRow(ctx, `SELECT max(block_height) FROM balance_transfers FINAL`)
	var max *uint64
	if err := row.Scan(&max); err != nil {
		return 0, false, errors.Wrap(err, "chstore: scanning max transfer height")
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}
