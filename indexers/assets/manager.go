// Package assets implements AssetManager (spec.md §4.6): the
// cross-cutting component that guarantees every asset referenced by
// any projection exists in the assets dictionary before a caller
// writes rows that reference it. Grounded on klaytn's
// chaindatafetcher repository pattern (a thin struct wrapping a store
// plus an in-process cache, called from multiple independent
// consumers) and on original_source/packages/indexers/base/asset_manager.py
// for the two-tier cache-then-DB-then-insert lookup order.
package assets

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/go-redis/redis/v7"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/internal/cache"
	"github.com/chainswarm/substrate-indexer/internal/chstore"
	"github.com/chainswarm/substrate-indexer/internal/metrics"
	"github.com/chainswarm/substrate-indexer/internal/xerrors"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

// Manager maintains the assets dictionary's referential integrity
// (spec.md §4.6). Any failure here is fatal to the calling projection:
// asset integrity is a hard invariant, never a best-effort one.
type Manager struct {
	network chain.Network
	store   *chstore.Store
	l1      *cache.AssetCache
	l2      *redis.Client
	log     *xlog.Logger
	metrics *metrics.Registry
}

// New constructs a Manager. l2 may be nil, in which case the L2 tier
// is skipped and every L1 miss goes straight to the store — this lets
// a single-process deployment run without Redis (see DESIGN.md's
// "Open Question decisions").
func New(network chain.Network, store *chstore.Store, l1 *cache.AssetCache, l2 *redis.Client, log *xlog.Logger, reg *metrics.Registry) *Manager {
	return &Manager{network: network, store: store, l1: l1, l2: l2, log: log, metrics: reg}
}

// InitNativeAssets idempotently inserts the network's native asset row
// verified by construction (spec.md §4.6): the chain itself is the
// authority on its native token's existence.
func (m *Manager) InitNativeAssets(ctx context.Context, firstSeenBlock chain.BlockHeight, firstSeenTS chain.BlockTimestamp) error {
	c := m.network.Constants()
	asset := chain.Asset{
		Network:        m.network,
		Symbol:         c.NativeSymbol,
		Contract:       chain.NativeContract,
		Verified:       chain.Verified,
		Name:           c.NativeSymbol,
		Type:           chain.AssetNative,
		Decimals:       c.NativeDecimals,
		FirstSeenBlock: firstSeenBlock,
		FirstSeenTS:    firstSeenTS,
		LastUpdated:    uint64(firstSeenTS),
	}
	if err := m.store.UpsertAsset(ctx, asset); err != nil {
		return xerrors.Fatal(err, "assets: init native asset")
	}
	m.l1.Put(asset)
	m.putL2(asset)
	return nil
}

// EnsureAssetExists implements spec.md §4.6's ensure_asset_exists:
// cache hit short-circuits; cache miss checks the store; store miss
// inserts a new row with Verified=unknown. Every path populates the
// cache before returning, so a second call for the same (network,
// contract) within this process never round-trips to the store.
func (m *Manager) EnsureAssetExists(ctx context.Context, symbol, contract string, assetType chain.AssetType, decimals int32, seenBlock chain.BlockHeight, seenTS chain.BlockTimestamp, name, notes string) (created bool, err error) {
	key := cache.AssetKey{Network: m.network, Contract: contract}

	if _, ok := m.l1.Get(key); ok {
		return false, nil
	}
	if a, ok := m.getL2(key); ok {
		m.l1.Put(a)
		return false, nil
	}

	existing, found, err := m.store.GetAsset(ctx, m.network, contract)
	if err != nil {
		return false, xerrors.Fatal(err, "assets: checking asset existence")
	}
	if found {
		m.l1.Put(existing)
		m.putL2(existing)
		return false, nil
	}

	asset := chain.Asset{
		Network:        m.network,
		Symbol:         symbol,
		Contract:       contract,
		Verified:       chain.Unknown,
		Name:           name,
		Type:           assetType,
		Decimals:       decimals,
		FirstSeenBlock: seenBlock,
		FirstSeenTS:    seenTS,
		Notes:          notes,
		LastUpdated:    uint64(seenTS),
	}
	if err := m.store.UpsertAsset(ctx, asset); err != nil {
		return false, xerrors.Fatal(err, "assets: inserting new asset")
	}
	m.l1.Put(asset)
	m.putL2(asset)
	m.metrics.IncCounter(metrics.CounterAssetsCreated, 1)
	m.log.Info("asset created", "network", m.network.String(), "contract", contract, "symbol", symbol)
	return true, nil
}

// GetAssetInfo is spec.md §4.6's get_asset_info: a DB read that
// populates the cache, used by projections that need an asset's
// decimals/verification status but are not themselves discovering it.
func (m *Manager) GetAssetInfo(ctx context.Context, contract string) (chain.Asset, bool, error) {
	key := cache.AssetKey{Network: m.network, Contract: contract}
	if a, ok := m.l1.Get(key); ok {
		return a, true, nil
	}
	if a, ok := m.getL2(key); ok {
		m.l1.Put(a)
		return a, true, nil
	}
	a, found, err := m.store.GetAsset(ctx, m.network, contract)
	if err != nil {
		return chain.Asset{}, false, xerrors.Fatal(err, "assets: get asset info")
	}
	if found {
		m.l1.Put(a)
		m.putL2(a)
	}
	return a, found, nil
}

// UpdateVerification implements spec.md §4.6's update_verification:
// the asset row is re-inserted with the new status through UpsertAsset
// (no ALTER UPDATE is issued; the assets table's replacing merge keeps
// the latest write), then the cache is invalidated so the next read
// picks up the new status instead of serving a stale cached row.
func (m *Manager) UpdateVerification(ctx context.Context, contract string, status chain.AssetVerification, updatedBy, notes string) error {
	a, found, err := m.store.GetAsset(ctx, m.network, contract)
	if err != nil {
		return xerrors.Fatal(err, "assets: loading asset for verification update")
	}
	if !found {
		return xerrors.Fatal(fmt.Errorf("asset %s/%s not found", m.network.String(), contract), "assets: update verification")
	}
	a.Verified = status
	if notes != "" {
		a.Notes = notes
	}
	if err := m.store.UpsertAsset(ctx, a); err != nil {
		return xerrors.Fatal(err, "assets: persisting verification update")
	}
	m.log.Info("asset verification updated", "contract", contract, "status", status, "by", updatedBy)
	m.clearOne(key(m.network, contract))
	return nil
}

// ClearCache is spec.md §4.6's clear_cache invalidation hook.
func (m *Manager) ClearCache() {
	m.l1.Purge()
}

func key(network chain.Network, contract string) cache.AssetKey {
	return cache.AssetKey{Network: network, Contract: contract}
}

func (m *Manager) putL2(a chain.Asset) {
	if m.l2 == nil {
		return
	}
	rk := redisKey(a.Network, a.Contract)
	payload := strings.Join([]string{a.Symbol, fmt.Sprintf("%d", a.Decimals), string(a.Verified), string(a.Type), a.Name}, "|")
	if err := m.l2.Set(rk, payload, 0).Err(); err != nil {
		m.log.Debug("assets: L2 cache write failed, continuing without it", "err", err)
	}
}

func (m *Manager) getL2(k cache.AssetKey) (chain.Asset, bool) {
	if m.l2 == nil {
		return chain.Asset{}, false
	}
	val, err := m.l2.Get(redisKey(k.Network, k.Contract)).Result()
	if err != nil {
		return chain.Asset{}, false
	}
	parts := strings.SplitN(val, "|", 5)
	if len(parts) != 5 {
		return chain.Asset{}, false
	}
	var decimals int64
	fmt.Sscanf(parts[1], "%d", &decimals)
	return chain.Asset{
		Network:  k.Network,
		Symbol:   parts[0],
		Contract: k.Contract,
		Decimals: int32(decimals),
		Verified: chain.AssetVerification(parts[2]),
		Type:     chain.AssetType(parts[3]),
		Name:     parts[4],
	}, true
}

func (m *Manager) clearOne(k cache.AssetKey) {
	if m.l2 != nil {
		m.l2.Del(redisKey(k.Network, k.Contract))
	}
	m.l1.Purge()
}

func redisKey(network chain.Network, contract string) string {
	return fmt.Sprintf("asset:%s:%s", network.String(), contract)
}
