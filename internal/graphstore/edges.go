package graphstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// UpsertTOEdgeResult reports whether the MERGE created a new edge, so
// the caller knows whether to also bump neighbor/unique-sender stats
// (spec.md §4.5: those only apply "on create").
type UpsertTOEdgeResult struct {
	Created bool
}

// UpsertTOEdge merges a TO edge keyed by its id, accumulating volume
// and transfer_count on every observation, per spec.md §3 invariant 4
// and §4.5.
func UpsertTOEdge(ctx context.Context, tx neo4j.ManagedTransaction, from, to, asset, contract string, amount decimal.Decimal, ts, height uint64) (UpsertTOEdgeResult, error) {
	id := from + "-" + to + "-" + asset + "-" + contract
	result, err := tx.Run(ctx, `
		MATCH (f:Address {address: $from}), (t:Address {address: $to})
		MERGE (f)-[e:TO {id: $id}]->(t)
		ON CREATE SET
			e.asset = $asset,
			e.asset_contract = $contract,
			e.volume = $amount,
			e.transfer_count = 1,
			e.first_activity_ts = $ts,
			e.last_activity_ts = $ts,
			e.first_activity_height = $height,
			e.last_activity_height = $height
		ON MATCH SET
			e.volume = e.volume + $amount,
			e.transfer_count = e.transfer_count + 1,
			e.last_activity_ts = $ts,
			e.last_activity_height = $height
		RETURN e.transfer_count = 1 AS created`,
		map[string]interface{}{
			"from": from, "to": to, "id": id, "asset": asset, "contract": contract,
			"amount": amount.InexactFloat64(), "ts": int64(ts), "height": int64(height),
		})
	if err != nil {
		return UpsertTOEdgeResult{}, errors.Wrap(err, "graphstore: upserting TO edge")
	}
	record, err := result.Single(ctx)
	if err != nil {
		return UpsertTOEdgeResult{}, errors.Wrap(err, "graphstore: reading TO edge upsert result")
	}
	created, _ := record.Get("created")
	c, _ := created.(bool)
	return UpsertTOEdgeResult{Created: c}, nil
}
