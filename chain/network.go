// Package chain defines the network-independent data model of spec.md
// §3: Network, BlockHeight, BlockHash, CanonicalBlock, Asset,
// BalanceTransfer, BalanceSnapshot, and the money-flow graph shapes.
package chain

import "fmt"

// Network identifies one of the five supported substrate chains.
type Network int

const (
	Torus Network = iota
	TorusTestnet
	Bittensor
	BittensorTestnet
	Polkadot
)

// NetworkConstants holds the per-network constants named in spec.md §3:
// native asset symbol, native decimals, block time, and backfill
// partition size in blocks.
type NetworkConstants struct {
	NativeSymbol     string
	NativeDecimals   int32
	BlockTimeSeconds int
	PartitionBlocks  uint64
}

var networkConstants = map[Network]NetworkConstants{
	Torus:            {NativeSymbol: "TOR", NativeDecimals: 18, BlockTimeSeconds: 8, PartitionBlocks: 324_000},
	TorusTestnet:     {NativeSymbol: "TOR", NativeDecimals: 18, BlockTimeSeconds: 8, PartitionBlocks: 324_000},
	Bittensor:        {NativeSymbol: "TAO", NativeDecimals: 18, BlockTimeSeconds: 12, PartitionBlocks: 216_000},
	BittensorTestnet: {NativeSymbol: "TAO", NativeDecimals: 18, BlockTimeSeconds: 12, PartitionBlocks: 216_000},
	Polkadot:         {NativeSymbol: "DOT", NativeDecimals: 10, BlockTimeSeconds: 6, PartitionBlocks: 432_000},
}

var networkNames = map[Network]string{
	Torus:            "torus",
	TorusTestnet:     "torus-testnet",
	Bittensor:        "bittensor",
	BittensorTestnet: "bittensor-testnet",
	Polkadot:         "polkadot",
}

// Constants returns the per-network constants of spec.md §3.
func (n Network) Constants() NetworkConstants {
	c, ok := networkConstants[n]
	if !ok {
		panic(fmt.Sprintf("chain: unknown network %d", n))
	}
	return c
}

// String returns the canonical lower-kebab name, used for the
// env-var prefix (uppercased) and CLI --network values.
func (n Network) String() string {
	return networkNames[n]
}

// IsTorus reports whether n is one of the Torus variants, used to gate
// Torus-only behavior: StakingTo balance aggregation, genesis seeding,
// and the Torus network-specific event strategies.
func (n Network) IsTorus() bool {
	return n == Torus || n == TorusTestnet
}

// IsBittensor reports whether n is one of the Bittensor variants.
func (n Network) IsBittensor() bool {
	return n == Bittensor || n == BittensorTestnet
}

// IsPolkadot reports whether n is the Polkadot network.
func (n Network) IsPolkadot() bool {
	return n == Polkadot
}

// ParseNetwork maps a CLI/env network name to its Network value.
func ParseNetwork(name string) (Network, error) {
	for n, s := range networkNames {
		if s == name {
			return n, nil
		}
	}
	return 0, fmt.Errorf("chain: unrecognized network %q", name)
}

// EnvPrefix returns the uppercased prefix used for this network's
// environment variables, e.g. TORUS_, BITTENSOR_TESTNET_ (spec.md §6).
func (n Network) EnvPrefix() string {
	switch n {
	case Torus:
		return "TORUS_"
	case TorusTestnet:
		return "TORUS_TESTNET_"
	case Bittensor:
		return "BITTENSOR_"
	case BittensorTestnet:
		return "BITTENSOR_TESTNET_"
	case Polkadot:
		return "POLKADOT_"
	default:
		panic(fmt.Sprintf("chain: unknown network %d", n))
	}
}

// NativeContract is the reserved contract string identifying the
// native asset in the assets dictionary (spec.md §3).
const NativeContract = "native"
