package chstore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/chainswarm/substrate-indexer/chain"
)

// InsertBlocks is BlockStreamIndexer.index_blocks (spec.md §4.2): an
// idempotent bulk insert keyed by block_height, with _version supplied
// so a later re-ingest at a higher version overwrites the prior row on
// merge (spec.md invariant 1).
func (s *Store) InsertBlocks(ctx context.Context, blocks []chain.CanonicalBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO block_stream (
		block_height, block_hash, block_timestamp,
		"transactions.extrinsic_id", "transactions.extrinsic_hash", "transactions.signer",
		"transactions.call_module", "transactions.call_function", "transactions.status",
		addresses,
		"events.event_idx", "events.extrinsic_id", "events.module_id", "events.event_id", "events.attributes",
		_version
	)`)
	if err != nil {
		return errors.Wrap(err, "chstore: preparing block_stream batch")
	}

	for _, b := range blocks {
		var (
			txExtrinsicID, txExtrinsicHash, txSigner, txModule, txFunc, txStatus []string
			evIdx, evExtrinsicID, evModule, evEvent, evAttrs                     []string
		)
		for _, tx := range b.Transactions {
			txExtrinsicID = append(txExtrinsicID, tx.ExtrinsicID)
			txExtrinsicHash = append(txExtrinsicHash, tx.ExtrinsicHash)
			txSigner = append(txSigner, tx.Signer)
			txModule = append(txModule, tx.CallModule)
			txFunc = append(txFunc, tx.CallFunction)
			txStatus = append(txStatus, tx.Status)
		}
		for _, ev := range dedupeEvents(b.Events) {
			attrsJSON, err := json.Marshal(ev.Attributes)
			if err != nil {
				return errors.Wrapf(err, "chstore: marshaling attributes for event %s", ev.EventIdx)
			}
			evIdx = append(evIdx, ev.EventIdx)
			evExtrinsicID = append(evExtrinsicID, ev.ExtrinsicID)
			evModule = append(evModule, ev.ModuleID)
			evEvent = append(evEvent, ev.EventID)
			evAttrs = append(evAttrs, string(attrsJSON))
		}

		version := b.Version
		if version == 0 {
			version = b.Height
		}

		if err := batch.Append(
			b.Height, b.Hash.String(), b.Timestamp,
			txExtrinsicID, txExtrinsicHash, txSigner, txModule, txFunc, txStatus,
			dedupeAddresses(b.Addresses),
			evIdx, evExtrinsicID, evModule, evEvent, evAttrs,
			version,
		); err != nil {
			return errors.Wrapf(err, "chstore: appending block %d", b.Height)
		}
	}
	return errors.Wrap(batch.Send(), "chstore: sending block_stream batch")
}

func dedupeEvents(events []chain.Event) []chain.Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]chain.Event, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.EventIdx]; ok {
			continue
		}
		seen[e.EventIdx] = struct{}{}
		out = append(out, e)
	}
	return out
}

func dedupeAddresses(addrs []string) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// LastIndexedHeightForPartition scans block_stream within [lo, hi] and
// returns the highest indexed height, or (0, false) if none (spec.md
// §4.2).
func (s *Store) LastIndexedHeightForPartition(ctx context.Context, lo, hi uint64) (uint64, bool, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT max(block_height) FROM block_stream FINAL
		WHERE block_height >= ? AND block_height <= ?`, lo, hi)

	var max *uint64
	if err := row.Scan(&max); err != nil {
		return 0, false, errors.Wrap(err, "chstore: scanning last indexed height")
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

// FirstIndexedHeightForPartition scans block_stream within [lo, hi] and
// returns the lowest indexed height, or (0, false) if none (spec.md
// §4.2).
func (s *Store) FirstIndexedHeightForPartition(ctx context.Context, lo, hi uint64) (uint64, bool, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT min(block_height) FROM block_stream FINAL
		WHERE block_height >= ? AND block_height <= ?`, lo, hi)

	var min *uint64
	if err := row.Scan(&min); err != nil {
		return 0, false, errors.Wrap(err, "chstore: scanning first indexed height")
	}
	if min == nil {
		return 0, false, nil
	}
	return *min, true, nil
}

// IndexedHeightCount returns the number of distinct heights indexed in
// [lo, hi], used by get_indexing_status as the actual block count
// (spec.md §4.2).
func (s *Store) IndexedHeightCount(ctx context.Context, lo, hi uint64) (uint64, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT count(DISTINCT block_height) FROM block_stream FINAL
		WHERE block_height >= ? AND block_height <= ?`, lo, hi)
	var count uint64
	if err := row.Scan(&count); err != nil {
		return 0, errors.Wrap(err, "chstore: scanning indexed height count")
	}
	return count, nil
}

// MissingHeights returns the heights in [lo, hi] absent from
// block_stream, used to report remaining_ranges in get_indexing_status
// (spec.md §4.2). Callers should only use this for reasonably small
// ranges (a single partition window), not the whole chain.
func (s *Store) MissingHeights(ctx context.Context, lo, hi uint64) ([]uint64, error) {
	rows, err := s.conn.Query(ctx, `
		WITH range(?, ? + 1) AS wanted
		SELECT arrayJoin(wanted) AS h
		FROM (SELECT wanted) AS w
		WHERE h NOT IN (
			SELECT DISTINCT block_height FROM block_stream FINAL
			WHERE block_height >= ? AND block_height <= ?
		)`, lo, hi, lo, hi)
	if err != nil {
		return nil, errors.Wrap(err, "chstore: querying missing heights")
	}
	defer rows.Close()

	var missing []uint64
	for rows.Next() {
		var h uint64
		if err := rows.Scan(&h); err != nil {
			return nil, errors.Wrap(err, "chstore: scanning missing height")
		}
		missing = append(missing, h)
	}
	return missing, rows.Err()
}

// GetByRange reconstructs the nested CanonicalBlock shape for heights in
// [lo, hi], optionally filtering to blocks that touched at least one
// address (the only_with_addresses accelerator of spec.md §4.2, backed
// by the addresses Array(String) column).
func (s *Store) GetByRange(ctx context.Context, lo, hi uint64, onlyWithAddresses bool) ([]chain.CanonicalBlock, error) {
	query := `
		SELECT
			block_height, block_hash, block_timestamp,
			"transactions.extrinsic_id", "transactions.extrinsic_hash", "transactions.signer",
			"transactions.call_module", "transactions.call_function", "transactions.status",
			addresses,
			"events.event_idx", "events.extrinsic_id", "events.module_id", "events.event_id", "events.attributes"
		FROM block_stream FINAL
		WHERE block_height >= ? AND block_height <= ?`
	if onlyWithAddresses {
		query += ` AND length(addresses) > 0`
	}
	query += ` ORDER BY block_height`

	rows, err := s.conn.Query(ctx, query, lo, hi)
	if err != nil {
		return nil, errors.Wrap(err, "chstore: querying block range")
	}
	defer rows.Close()

	var blocks []chain.CanonicalBlock
	for rows.Next() {
		var (
			b                                                                 chain.CanonicalBlock
			hash                                                              string
			txExtrinsicID, txExtrinsicHash, txSigner, txModule, txFunc, txSta []string
			evIdx, evExtrinsicID, evModule, evEvent, evAttrs                  []string
		)
		if err := rows.Scan(
			&b.Height, &hash, &b.Timestamp,
			&txExtrinsicID, &txExtrinsicHash, &txSigner, &txModule, &txFunc, &txSta,
			&b.Addresses,
			&evIdx, &evExtrinsicID, &evModule, &evEvent, &evAttrs,
		); err != nil {
			return nil, errors.Wrap(err, "chstore: scanning block row")
		}
		b.Hash = chain.BlockHash(hash)

		for i := range txExtrinsicID {
			b.Transactions = append(b.Transactions, chain.Transaction{
				ExtrinsicID:   txExtrinsicID[i],
				ExtrinsicHash: txExtrinsicHash[i],
				Signer:        txSigner[i],
				CallModule:    txModule[i],
				CallFunction:  txFunc[i],
				Status:        txSta[i],
			})
		}

		seen := make(map[string]struct{}, len(evIdx))
		for i := range evIdx {
			if _, dup := seen[evIdx[i]]; dup {
				continue
			}
			seen[evIdx[i]] = struct{}{}
			var attrs map[string]interface{}
			if err := json.Unmarshal([]byte(evAttrs[i]), &attrs); err != nil {
				return nil, errors.Wrapf(err, "chstore: decoding attributes for event %s", evIdx[i])
			}
			b.Events = append(b.Events, chain.Event{
				EventIdx:    evIdx[i],
				ExtrinsicID: evExtrinsicID[i],
				ModuleID:    evModule[i],
				EventID:     evEvent[i],
				Attributes:  attrs,
			})
		}

		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// HeightAtOrBefore returns the highest block_height whose
// block_timestamp is <= ts, used by BalanceSeriesIndexer to locate H_e
// for a period's end boundary (spec.md §4.4 step 1).
func (s *Store) HeightAtOrBefore(ctx context.Context, ts uint64) (uint64, bool, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT block_height FROM block_stream FINAL
		WHERE block_timestamp <= ?
		ORDER BY block_timestamp DESC, block_height DESC
		LIMIT 1`, ts)
	var height uint64
	if err := row.Scan(&height); err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "chstore: scanning height at or before timestamp")
	}
	return height, true, nil
}

// RecordEventCatalog upserts the (module_id, event_id) pairs observed in
// a batch into event_catalog, the SPEC_FULL.md-supplemented operational
// catalog grounded on original_source's event_catalog_extractor.py.
func (s *Store) RecordEventCatalog(ctx context.Context, blocks []chain.CanonicalBlock) error {
	firstSeen := map[[2]string]uint64{}
	for _, b := range blocks {
		for _, ev := range b.Events {
			key := [2]string{ev.ModuleID, ev.EventID}
			if h, ok := firstSeen[key]; !ok || b.Height < h {
				firstSeen[key] = b.Height
			}
		}
	}
	if len(firstSeen) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO event_catalog (module_id, event_id, first_seen_block, _version)`)
	if err != nil {
		return errors.Wrap(err, "chstore: preparing event_catalog batch")
	}
	for key, height := range firstSeen {
		if err := batch.Append(key[0], key[1], height, height); err != nil {
			return errors.Wrap(err, "chstore: appending event_catalog row")
		}
	}
	return errors.Wrap(batch.Send(), "chstore: sending event_catalog batch")
}
