package substratenode

import (
	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// fallbackDecimalsU128 and fallbackDecimalsU256 are SPEC_FULL.md
// supplement 6: when a runtime's chain properties storage item is
// absent or unparseable, original_source fell back to a width-based
// guess rather than failing asset discovery outright. u128-backed
// balances guess 12 decimals, u256-backed (rare, seen on some
// parachain custom assets) guess 18. They are read only by
// decimalsForEncodingWidth; TokenDecimals falls back to the network
// constant instead.
const (
	fallbackDecimalsU128 = 12
	fallbackDecimalsU256 = 18
)

// TokenDecimals returns the chain's native asset decimals, preferring
// the runtime's System.Properties tokenDecimals value and falling back
// to the network's known constant (chain.NetworkConstants.NativeDecimals)
// when the node does not expose it.
func (c *Client) TokenDecimals() (int, error) {
	var decimals int
	err := c.withRetry(5, func() error {
		c.mu.RLock()
		api := c.blockAPI
		gen := c.generation
		c.mu.RUnlock()

		if d, ok := c.cache.GetDecimals(c.network.String(), gen); ok {
			decimals = int(d)
			return nil
		}
		props, err := api.RPC.System.Properties()
		if err != nil {
			return wrapTransport(err, "substratenode: fetching system properties")
		}
		if d, ok := firstTokenDecimal(props); ok {
			decimals = d
			c.cache.PutDecimals(c.network.String(), gen, int32(d))
			return nil
		}
		decimals = int(c.network.Constants().NativeDecimals)
		return nil
	})
	return decimals, err
}

func firstTokenDecimal(props gsrpctypes.SystemPropertiesDetails) (int, bool) {
	if len(props.TokenDecimals) == 0 {
		return 0, false
	}
	return int(props.TokenDecimals[0]), true
}

// decimalsForEncodingWidth is the fallback table used when decoding a
// balance field whose encoding width implies a decimals guess absent
// any asset registry entry (chain.Asset.Decimals == 0 and unverified).
func decimalsForEncodingWidth(isU256 bool) int {
	if isU256 {
		return fallbackDecimalsU256
	}
	return fallbackDecimalsU128
}
