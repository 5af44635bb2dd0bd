package assets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/internal/cache"
	"github.com/chainswarm/substrate-indexer/internal/metrics"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

// newTestManager builds a Manager with nil store and nil L2 client. Every
// test below only exercises paths that short-circuit before touching
// either, by pre-populating the L1 cache the same way a prior store
// round-trip would have.
func newTestManager() *Manager {
	return New(chain.Torus, nil, cache.NewAssetCache(8), nil, xlog.New("test"), metrics.New())
}

func TestEnsureAssetExistsL1HitSkipsStore(t *testing.T) {
	m := newTestManager()
	asset := chain.Asset{Network: chain.Torus, Symbol: "TOR", Contract: chain.NativeContract}
	m.l1.Put(asset)

	created, err := m.EnsureAssetExists(context.Background(), "TOR", chain.NativeContract, chain.AssetNative, 18, 1, 1000, "", "")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestGetAssetInfoL1Hit(t *testing.T) {
	m := newTestManager()
	asset := chain.Asset{Network: chain.Torus, Symbol: "TOR", Contract: chain.NativeContract, Decimals: 18}
	m.l1.Put(asset)

	got, found, err := m.GetAssetInfo(context.Background(), chain.NativeContract)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int32(18), got.Decimals)
}

func TestClearCachePurgesL1(t *testing.T) {
	m := newTestManager()
	key := cache.AssetKey{Network: chain.Torus, Contract: chain.NativeContract}
	m.l1.Put(chain.Asset{Network: chain.Torus, Contract: chain.NativeContract})

	_, ok := m.l1.Get(key)
	require.True(t, ok)

	m.ClearCache()
	_, ok = m.l1.Get(key)
	assert.False(t, ok)
}

func TestRedisKeyFormat(t *testing.T) {
	assert.Equal(t, "asset:torus:0xabc", redisKey(chain.Torus, "0xabc"))
	assert.Equal(t, "asset:bittensor:42", redisKey(chain.Bittensor, "42"))
}

func TestKeyHelper(t *testing.T) {
	k := key(chain.Polkadot, "contractX")
	assert.Equal(t, cache.AssetKey{Network: chain.Polkadot, Contract: "contractX"}, k)
}

func TestPutL2AndClearOneNoopWithoutRedis(t *testing.T) {
	m := newTestManager()
	assert.NotPanics(t, func() {
		m.putL2(chain.Asset{Network: chain.Torus, Contract: chain.NativeContract})
		m.clearOne(key(chain.Torus, chain.NativeContract))
	})
}
