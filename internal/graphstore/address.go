package graphstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
)

// UpsertAddressSeen merges an Address node, setting first_activity_*
// only if absent and always advancing last_activity_* — the shared
// "touch" operation behind Endowed and Transfer handling (spec.md
// §4.5).
func UpsertAddressSeen(ctx context.Context, tx neo4j.ManagedTransaction, address string, ts, height uint64) error {
	_, err := tx.Run(ctx, `
		MERGE (a:Address {address: $address})
		ON CREATE SET
			a.first_activity_ts = $ts,
			a.first_activity_height = $height,
			a.transfer_count = 0,
			a.neighbor_count = 0,
			a.unique_senders = 0,
			a.unique_receivers = 0,
			a.labels = []
		SET
			a.last_activity_ts = $ts,
			a.last_activity_height = $height`,
		map[string]interface{}{"address": address, "ts": int64(ts), "height": int64(height)})
	return errors.Wrap(err, "graphstore: upserting address")
}

// IncrementTransferCount bumps Address.transfer_count by one — applied
// to both the sender and receiver on every Balances.Transfer (spec.md
// §4.5).
func IncrementTransferCount(ctx context.Context, tx neo4j.ManagedTransaction, address string) error {
	_, err := tx.Run(ctx, `
		MATCH (a:Address {address: $address})
		SET a.transfer_count = coalesce(a.transfer_count, 0) + 1`,
		map[string]interface{}{"address": address})
	return errors.Wrap(err, "graphstore: incrementing transfer count")
}

// IncrementNeighborStats bumps neighbor_count and, depending on role,
// unique_senders or unique_receivers — applied only when a TO edge is
// newly created, per spec.md §4.5 ("On create: ... increment
// sender.{neighbor_count, unique_receivers} and
// receiver.{neighbor_count, unique_senders}").
func IncrementNeighborStats(ctx context.Context, tx neo4j.ManagedTransaction, address string, asSender bool) error {
	field := "unique_senders"
	if asSender {
		field = "unique_receivers"
	}
	_, err := tx.Run(ctx, `
		MATCH (a:Address {address: $address})
		SET a.neighbor_count = coalesce(a.neighbor_count, 0) + 1,
			a.`+field+` = coalesce(a.`+field+`, 0) + 1`,
		map[string]interface{}{"address": address})
	return errors.Wrap(err, "graphstore: incrementing neighbor stats")
}

// AddLabel appends label to Address.labels if not already present —
// used by Torus AgentRegistered, Bittensor NeuronRegistered/
// NetworkAdded, and the best-effort KnownAddress label merge
// (spec.md §4.5, SPEC_FULL.md supplement 5).
func AddLabel(ctx context.Context, tx neo4j.ManagedTransaction, address, label string) error {
	_, err := tx.Run(ctx, `
		MERGE (a:Address {address: $address})
		SET a.labels = CASE WHEN $label IN coalesce(a.labels, []) THEN a.labels ELSE coalesce(a.labels, []) + $label END`,
		map[string]interface{}{"address": address, "label": label})
	return errors.Wrap(err, "graphstore: adding label")
}
