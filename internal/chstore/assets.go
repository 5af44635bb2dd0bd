package chstore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/chainswarm/substrate-indexer/chain"
)

// UpsertAsset inserts or overwrites an asset row; ReplacingMergeTree on
// last_updated means the most recently written row wins on a FINAL read
// (spec.md §6).
func (s *Store) UpsertAsset(ctx context.Context, a chain.Asset) error {
	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO assets (
		network, symbol, asset_contract, verified, name, type, decimals,
		first_seen_block, first_seen_timestamp, notes, last_updated
	)`)
	if err != nil {
		return errors.Wrap(err, "chstore: preparing assets batch")
	}
	if err := batch.Append(
		a.Network.String(), a.Symbol, a.Contract, string(a.Verified), a.Name, string(a.Type), a.Decimals,
		a.FirstSeenBlock, a.FirstSeenTS, a.Notes, a.LastUpdated,
	); err != nil {
		return errors.Wrap(err, "chstore: appending asset row")
	}
	return errors.Wrap(batch.Send(), "chstore: sending assets batch")
}

// GetAsset reads the latest version of one (network, contract) asset
// row, or (Asset{}, false) if none exists.
func (s *Store) GetAsset(ctx context.Context, network chain.Network, contract string) (chain.Asset, bool, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT network, symbol, asset_contract, verified, name, type, decimals,
			first_seen_block, first_seen_timestamp, notes, last_updated
		FROM assets FINAL
		WHERE network = ? AND asset_contract = ?`, network.String(), contract)

	var (
		a                  chain.Asset
		netName            string
		verified, typeName string
	)
	if err := row.Scan(
		&netName, &a.Symbol, &a.Contract, &verified, &a.Name, &typeName, &a.Decimals,
		&a.FirstSeenBlock, &a.FirstSeenTS, &a.Notes, &a.LastUpdated,
	); err != nil {
		if isNoRows(err) {
			return chain.Asset{}, false, nil
		}
		return chain.Asset{}, false, errors.Wrap(err, "chstore: scanning asset row")
	}
	a.Network = network
	a.Verified = chain.AssetVerification(verified)
	a.Type = chain.AssetType(typeName)
	return a, true, nil
}
