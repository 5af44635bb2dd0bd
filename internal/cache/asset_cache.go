// Package cache provides the in-process caches used by AssetManager and
// NodeClient. AssetManager's L1 cache is a bounded LRU
// (hashicorp/golang-lru, a klaytn dependency used for its various trie
// and block caches) keyed by (network, contract). NodeClient's
// metadata/decimals cache uses VictoriaMetrics/fastcache (also a
// klaytn dependency) since it is keyed by a (network,
// connection-generation) pair
// where fastcache's byte-oriented API is a better fit than a typed LRU.
package cache

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/chainswarm/substrate-indexer/chain"
)

// AssetKey is the (network, contract) primary key of the assets
// dictionary (spec.md §3).
type AssetKey struct {
	Network  chain.Network
	Contract string
}

// AssetCache is AssetManager's L1, in-memory cache (spec.md §4.6).
type AssetCache struct {
	lru *lru.Cache
}

// NewAssetCache builds an AssetCache holding up to size entries.
func NewAssetCache(size int) *AssetCache {
	c, err := lru.New(size)
	if err != nil {
		// Only returns an error for a non-positive size, which is a
		// programmer error at construction time, not a runtime
		// condition to recover from.
		panic(err)
	}
	return &AssetCache{lru: c}
}

// Get returns the cached asset for key, if present.
func (c *AssetCache) Get(key AssetKey) (chain.Asset, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return chain.Asset{}, false
	}
	return v.(chain.Asset), true
}

// Put populates the cache on the DB-hit and DB-miss-then-insert paths
// (spec.md §4.6); a verification update invalidates instead.
func (c *AssetCache) Put(asset chain.Asset) {
	c.lru.Add(AssetKey{Network: asset.Network, Contract: asset.Contract}, asset)
}

// Purge is the clear_cache() invalidation hook of spec.md §4.6.
func (c *AssetCache) Purge() {
	c.lru.Purge()
}
