// Package graphstore is the money-flow graph store client: Memgraph
// over the bolt protocol (OpenCypher-compatible), spec.md §6. No graph
// driver is present anywhere in the retrieval pack, so this adopts the
// standard neo4j-go-driver — Memgraph implements the same bolt wire
// protocol neo4j does, and the driver appears (indirectly) in
// other_examples/manifests/evalgo-org-eve/go.mod, giving it pack
// grounding. Exactly one writer uses this package: MoneyFlowIndexer
// (spec.md §5).
package graphstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"

	"github.com/chainswarm/substrate-indexer/internal/config"
)

// Store is an owned-resource handle over the graph database connection,
// constructed in New and released in Close (spec.md §9).
type Store struct {
	driver neo4j.DriverWithContext
}

// New opens a driver connection against the network's Memgraph
// instance and ensures the indexes/constraints required by spec.md §6
// exist (Address(address) index, TO edge index, the 6-dimension
// cosine-metric NetworkEmbeddings vector index).
func New(ctx context.Context, cfg config.MemgraphConfig) (*Store, error) {
	auth := neo4j.NoAuth()
	if cfg.User != "" {
		auth = neo4j.BasicAuth(cfg.User, cfg.Password, "")
	}
	drv, err := neo4j.NewDriverWithContext(cfg.URL, auth)
	if err != nil {
		return nil, errors.Wrap(err, "graphstore: opening driver")
	}
	s := &Store{driver: drv}
	if err := s.ensureIndexes(ctx); err != nil {
		drv.Close(ctx)
		return nil, errors.Wrap(err, "graphstore: ensuring indexes")
	}
	return s, nil
}

// Close releases the underlying driver connection.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
}

var indexStatements = []string{
	`CREATE INDEX ON :Address(address)`,
	`CREATE INDEX ON :Address(first_activity_ts)`,
	`CREATE INDEX ON :Address(last_activity_ts)`,
	`CREATE INDEX ON :Address(community_id)`,
	`CREATE EDGE INDEX ON :TO(id)`,
	`CREATE EDGE INDEX ON :TO(asset)`,
	`CREATE EDGE INDEX ON :TO(volume)`,
	`CREATE EDGE INDEX ON :TO(transfer_count)`,
	`CREATE VECTOR INDEX NetworkEmbeddings ON :Address(network_embedding) WITH CONFIG {"dimension": 6, "capacity": 1000, "metric": "cos"}`,
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	sess := s.session(ctx)
	defer sess.Close(ctx)

	for _, stmt := range indexStatements {
		if _, err := sess.Run(ctx, stmt, nil); err != nil {
			// A failure to create any index is returned; New then
			// closes the driver and fails, so startup stops here.
			return errors.Wrapf(err, "graphstore: running %q", stmt)
		}
	}
	return nil
}

// Tx runs fn inside a single Memgraph write transaction, the "inside
// one transaction per block" contract of spec.md §4.5.
func (s *Store) Tx(ctx context.Context, fn func(tx neo4j.ManagedTransaction) error) error {
	sess := s.session(ctx)
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return nil, fn(tx)
	})
	return err
}

// Read runs fn inside a single read transaction, used by analytics
// steps that only need a consistent read of the graph (e.g. listing
// community ids or the per-address embedding inputs).
func (s *Store) Read(ctx context.Context, fn func(tx neo4j.ManagedTransaction) error) error {
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer sess.Close(ctx)

	_, err := sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return nil, fn(tx)
	})
	return err
}
