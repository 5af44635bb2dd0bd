// Package chstore is the canonical analytics store client: block_stream,
// assets, balance_transfers and balance_series, all ClickHouse tables
// per spec.md §6. There is no ClickHouse driver anywhere in the
// retrieval pack (grounded on original_source's
// packages/indexers/base/clickhouse_schema.py instead, which is the
// Python original's equivalent schema module), so this package adopts
// the standard ClickHouse Go driver rather than hand-rolling a client
// over raw HTTP, same as klaytn reaches for go-sql-driver/mysql instead
// of a hand-rolled MySQL wire client.
package chstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"

	"github.com/chainswarm/substrate-indexer/internal/config"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

// Store is an owned-resource handle: one per component, constructed in
// New and released in Close, per spec.md §9 ("owned-resource handles;
// each component constructs its own in new() and releases in close();
// no global singletons"). It wraps clickhouse-go's native driver.Conn
// rather than the database/sql shim, since the Nested/Array columns of
// block_stream are far more natural to populate through PrepareBatch
// than through placeholder-bound SQL text.
type Store struct {
	conn driver.Conn
	log  *xlog.Logger
}

// New opens a connection to the network's ClickHouse instance and
// ensures the canonical schema exists.
func New(cfg config.ClickHouseConfig, log *xlog.Logger) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": cfg.MaxExecutionTime,
		},
		MaxQuerySize:    cfg.MaxQuerySize,
		DialTimeout:     10 * time.Second,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, errors.Wrap(err, "chstore: opening connection")
	}

	s := &Store{conn: conn, log: log}
	if err := s.ensureSchema(context.Background()); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "chstore: ensuring schema")
	}
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS block_stream (
	block_height UInt64,
	block_hash String,
	block_timestamp UInt64,
	transactions Nested(
		extrinsic_id String,
		extrinsic_hash String,
		signer String,
		call_module String,
		call_function String,
		status String
	),
	addresses Array(String),
	events Nested(
		event_idx String,
		extrinsic_id String,
		module_id String,
		event_id String,
		attributes String
	),
	_version UInt64
) ENGINE = ReplacingMergeTree(_version)
ORDER BY (block_height);

CREATE TABLE IF NOT EXISTS assets (
	network String,
	symbol String,
	asset_contract String,
	verified String,
	name String,
	type String,
	decimals Int32,
	first_seen_block UInt64,
	first_seen_timestamp UInt64,
	notes String,
	last_updated UInt64
) ENGINE = ReplacingMergeTree(last_updated)
ORDER BY (network, asset_contract);

CREATE TABLE IF NOT EXISTS balance_transfers (
	extrinsic_id String,
	event_idx String,
	block_height UInt64,
	block_timestamp UInt64,
	from_address String,
	to_address String,
	asset String,
	asset_contract String,
	amount String,
	fee String,
	_version UInt64
) ENGINE = ReplacingMergeTree(_version)
ORDER BY (extrinsic_id, event_idx);

CREATE TABLE IF NOT EXISTS balance_series (
	period_start UInt64,
	period_end UInt64,
	block_height UInt64,
	address String,
	asset String,
	asset_contract String,
	free String,
	reserved String,
	staked String,
	total String,
	delta_free String,
	delta_reserved String,
	delta_staked String,
	delta_total String,
	percent_change_total Nullable(Float64),
	_version UInt64
) ENGINE = ReplacingMergeTree(_version)
ORDER BY (period_start, address, asset);

CREATE TABLE IF NOT EXISTS event_catalog (
	module_id String,
	event_id String,
	first_seen_block UInt64,
	_version UInt64
) ENGINE = ReplacingMergeTree(_version)
ORDER BY (module_id, event_id);
`

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range splitStatements(schemaDDL) {
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return errors.Wrapf(err, "chstore: executing %q", stmt)
		}
	}
	return nil
}

func splitStatements(ddl string) []string {
	var stmts []string
	start := 0
	for i := 0; i < len(ddl); i++ {
		if ddl[i] == ';' {
			stmt := trimSpace(ddl[start:i])
			if stmt != "" {
				stmts = append(stmts, stmt)
			}
			start = i + 1
		}
	}
	return stmts
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
