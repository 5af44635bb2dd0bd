package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork("torus")
	require.NoError(t, err)
	assert.Equal(t, Torus, n)

	_, err = ParseNetwork("not-a-network")
	assert.Error(t, err)
}

func TestNetworkConstants(t *testing.T) {
	cases := []struct {
		network  Network
		symbol   string
		decimals int32
	}{
		{Torus, "TOR", 18},
		{Bittensor, "TAO", 18},
		{Polkadot, "DOT", 10},
	}
	for _, c := range cases {
		got := c.network.Constants()
		assert.Equal(t, c.symbol, got.NativeSymbol)
		assert.Equal(t, c.decimals, got.NativeDecimals)
	}
}

func TestNetworkEnvPrefix(t *testing.T) {
	assert.Equal(t, "TORUS_", Torus.EnvPrefix())
	assert.Equal(t, "BITTENSOR_TESTNET_", BittensorTestnet.EnvPrefix())
}

func TestIsTorusIsBittensorIsPolkadot(t *testing.T) {
	assert.True(t, Torus.IsTorus())
	assert.True(t, TorusTestnet.IsTorus())
	assert.False(t, Bittensor.IsTorus())

	assert.True(t, Bittensor.IsBittensor())
	assert.False(t, Polkadot.IsBittensor())

	assert.True(t, Polkadot.IsPolkadot())
	assert.False(t, Torus.IsPolkadot())
}

func TestStringRoundTrip(t *testing.T) {
	for _, n := range []Network{Torus, TorusTestnet, Bittensor, BittensorTestnet, Polkadot} {
		parsed, err := ParseNetwork(n.String())
		require.NoError(t, err)
		assert.Equal(t, n, parsed)
	}
}
