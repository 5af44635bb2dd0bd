package graphstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
)

const globalStateName = "last_block_height"

// GlobalHeight reads GlobalState.block_height (spec.md §3/§4.5). A
// missing GlobalState node means no block has ever been processed,
// returned as (0, false).
func GlobalHeight(ctx context.Context, tx neo4j.ManagedTransaction) (uint64, bool, error) {
	result, err := tx.Run(ctx, `
		MATCH (g:GlobalState {name: $name})
		RETURN g.block_height AS height`, map[string]interface{}{"name": globalStateName})
	if err != nil {
		return 0, false, errors.Wrap(err, "graphstore: reading GlobalState")
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, false, nil // no GlobalState node yet
	}
	height, _ := record.Get("height")
	h, ok := height.(int64)
	if !ok {
		return 0, false, nil
	}
	return uint64(h), true, nil
}

// SetGlobalHeight upserts GlobalState.block_height. Callers must only
// invoke this after checking the monotonicity invariant
// (spec.md invariant 5): a block whose height is <= the current value
// is never written here.
func SetGlobalHeight(ctx context.Context, tx neo4j.ManagedTransaction, height uint64) error {
	_, err := tx.Run(ctx, `
		MERGE (g:GlobalState {name: $name})
		SET g.block_height = $height`, map[string]interface{}{
		"name":   globalStateName,
		"height": int64(height),
	})
	return errors.Wrap(err, "graphstore: writing GlobalState")
}
