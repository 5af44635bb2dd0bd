package moneyflow

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/graphstore"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

// RunPeriodicAnalytics executes spec.md §4.5's three-step periodic
// pass — community detection, then per-community PageRank, then
// embedding refresh — each in its own graph transaction, honouring
// cancellation between communities. A step's error is returned to the
// caller as is; no step is retried.
func RunPeriodicAnalytics(ctx context.Context, store *graphstore.Store, token *cancel.Token, log *xlog.Logger) error {
	if err := runCommunityDetection(ctx, store, log); err != nil {
		return err
	}
	if err := runCommunityPageRank(ctx, store, token, log); err != nil {
		return err
	}
	return runEmbeddingRefresh(ctx, store, log)
}

func runCommunityDetection(ctx context.Context, store *graphstore.Store, log *xlog.Logger) error {
	return store.Tx(ctx, func(tx neo4j.ManagedTransaction) error {
		assignments, err := graphstore.DetectCommunities(ctx, tx)
		if err != nil {
			return err
		}
		log.Info("community detection complete", "addresses_assigned", len(assignments))
		return nil
	})
}

func runCommunityPageRank(ctx context.Context, store *graphstore.Store, token *cancel.Token, log *xlog.Logger) error {
	var ids []string
	if err := store.Read(ctx, func(tx neo4j.ManagedTransaction) error {
		found, err := graphstore.AllCommunityIDs(ctx, tx)
		ids = found
		return err
	}); err != nil {
		return err
	}

	for _, cid := range ids {
		if token.IsCancelled() {
			return nil
		}
		if err := store.Tx(ctx, func(tx neo4j.ManagedTransaction) error {
			members, err := graphstore.CommunityMembers(ctx, tx, cid)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				return nil
			}
			_, err = graphstore.CommunityPageRank(ctx, tx, members)
			return err
		}); err != nil {
			return err
		}
	}
	log.Info("community pagerank complete", "communities", len(ids))
	return nil
}

func runEmbeddingRefresh(ctx context.Context, store *graphstore.Store, log *xlog.Logger) error {
	var inputs []graphstore.AddressEmbeddingInputs
	if err := store.Read(ctx, func(tx neo4j.ManagedTransaction) error {
		found, err := graphstore.AllAddressesForEmbedding(ctx, tx)
		inputs = found
		return err
	}); err != nil {
		return err
	}

	return store.Tx(ctx, func(tx neo4j.ManagedTransaction) error {
		for _, in := range inputs {
			if err := graphstore.RefreshEmbedding(ctx, tx, in); err != nil {
				return err
			}
		}
		log.Info("embedding refresh complete", "addresses", len(inputs))
		return nil
	})
}
