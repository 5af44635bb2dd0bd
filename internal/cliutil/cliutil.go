// Package cliutil holds the small pieces of environment-driven wiring
// shared by every cmd/<indexer>/main.go, the same role klaytn's
// cmd/utils package plays for its node binaries (kcn/kbn/kscn), scaled
// down to this module's much smaller set of optional collaborators.
package cliutil

import (
	"os"

	redis "github.com/go-redis/redis/v7"

	"github.com/chainswarm/substrate-indexer/internal/checkpoint"
)

// OptionalRedisClient wires AssetManager's shared L2 cache tier
// (spec.md §4.6) when ASSET_CACHE_REDIS_ADDR is set; nil otherwise,
// which Manager treats as "run without the shared cache."
func OptionalRedisClient() *redis.Client {
	addr := os.Getenv("ASSET_CACHE_REDIS_ADDR")
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("ASSET_CACHE_REDIS_PASSWORD")})
}

// OptionalCheckpoint wires the operational MySQL resume-hint table
// (internal/checkpoint) when CHECKPOINT_MYSQL_DSN is set; nil
// otherwise, which every worker treats as "fall back to scanning the
// authoritative store directly" (spec.md §4.2).
func OptionalCheckpoint() (*checkpoint.Store, error) {
	dsn := os.Getenv("CHECKPOINT_MYSQL_DSN")
	if dsn == "" {
		return nil, nil
	}
	return checkpoint.New(dsn)
}
