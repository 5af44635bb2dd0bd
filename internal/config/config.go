// Package config loads per-network configuration from environment
// variables (spec.md §6), with an optional TOML file overlay in the
// style of klaytn's generated gen_config.go structs (naoina/toml is a
// klaytn dependency, used there to marshal genesis/node configs).
// Environment variables always take precedence over the file, matching
// "defaults overridden by explicit settings."
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/naoina/toml"
	"github.com/pkg/errors"

	"github.com/chainswarm/substrate-indexer/chain"
)

// ClickHouseConfig holds the <NET>_CLICKHOUSE_* settings of spec.md §6.
type ClickHouseConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	Database          string `toml:"database"`
	User              string `toml:"user"`
	Password          string `toml:"password"`
	MaxExecutionTime  int    `toml:"max_execution_time"`
	MaxQuerySize      int    `toml:"max_query_size"`
}

// MemgraphConfig holds the <NET>_MEMGRAPH_* settings of spec.md §6.
type MemgraphConfig struct {
	URL      string `toml:"url"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// NetworkConfig is the full configuration for one network's indexers.
type NetworkConfig struct {
	Network     chain.Network
	NodeWSURL   string `toml:"node_ws_url"`
	ClickHouse  ClickHouseConfig
	Memgraph    MemgraphConfig
}

// fileOverlay is the shape of an optional TOML config file: one table
// per network, keyed by the network's canonical name.
type fileOverlay struct {
	Networks map[string]struct {
		NodeWSURL  string           `toml:"node_ws_url"`
		ClickHouse ClickHouseConfig `toml:"clickhouse"`
		Memgraph   MemgraphConfig   `toml:"memgraph"`
	} `toml:"networks"`
}

// LoadFile reads an optional TOML overlay. A missing file is not an
// error: the caller falls back to environment variables alone.
func LoadFile(path string) (*fileOverlay, error) {
	if path == "" {
		return &fileOverlay{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileOverlay{}, nil
		}
		return nil, errors.Wrap(err, "config: opening overlay file")
	}
	defer f.Close()

	var ov fileOverlay
	if err := toml.NewDecoder(f).Decode(&ov); err != nil {
		return nil, errors.Wrap(err, "config: decoding overlay file")
	}
	return &ov, nil
}

// Load resolves a NetworkConfig for net from the overlay (if any) and
// the environment, with the environment always winning.
func Load(net chain.Network, overlay *fileOverlay) (*NetworkConfig, error) {
	if overlay == nil {
		overlay = &fileOverlay{}
	}
	base := overlay.Networks[net.String()]

	prefix := net.EnvPrefix()
	cfg := &NetworkConfig{
		Network:   net,
		NodeWSURL: envOr(prefix+"NODE_WS_URL", base.NodeWSURL),
		ClickHouse: ClickHouseConfig{
			Host:             envOr(prefix+"CLICKHOUSE_HOST", base.ClickHouse.Host),
			Port:             envIntOr(prefix+"CLICKHOUSE_PORT", base.ClickHouse.Port, 9000),
			Database:         envOr(prefix+"CLICKHOUSE_DATABASE", base.ClickHouse.Database),
			User:             envOr(prefix+"CLICKHOUSE_USER", base.ClickHouse.User),
			Password:         envOr(prefix+"CLICKHOUSE_PASSWORD", base.ClickHouse.Password),
			MaxExecutionTime: envIntOr(prefix+"CLICKHOUSE_MAX_EXECUTION_TIME", base.ClickHouse.MaxExecutionTime, 60),
			MaxQuerySize:     envIntOr(prefix+"CLICKHOUSE_MAX_QUERY_SIZE", base.ClickHouse.MaxQuerySize, 262144),
		},
		Memgraph: MemgraphConfig{
			URL:      envOr(prefix+"MEMGRAPH_URL", base.Memgraph.URL),
			User:     envOr(prefix+"MEMGRAPH_USER", base.Memgraph.User),
			Password: envOr(prefix+"MEMGRAPH_PASSWORD", base.Memgraph.Password),
		},
	}

	if cfg.NodeWSURL == "" {
		return nil, fmt.Errorf("config: %sNODE_WS_URL is required", prefix)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	if fallback != 0 {
		return fallback
	}
	return defaultVal
}
