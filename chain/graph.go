package chain

import "github.com/shopspring/decimal"

// Address is the Address node of the money-flow graph (spec.md §3).
type Address struct {
	Address            string
	FirstActivityTS    uint64
	LastActivityTS     uint64
	FirstActivityHt    BlockHeight
	LastActivityHt     BlockHeight
	TransferCount      uint64
	NeighborCount      uint64
	UniqueSenders      uint64
	UniqueReceivers    uint64
	Labels             []string
	CommunityID        string
	CommunityPageRank  float64
	NetworkEmbedding   [6]float64
}

// HasLabel reports whether label is already present on the address, so
// handlers can upsert labels idempotently.
func (a *Address) HasLabel(label string) bool {
	for _, l := range a.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// AddLabel appends label if not already present.
func (a *Address) AddLabel(label string) {
	if !a.HasLabel(label) {
		a.Labels = append(a.Labels, label)
	}
}

// TOEdgeID builds the edge id "<from>-<to>-<asset>-<contract>" of
// spec.md §3.
func TOEdgeID(from, to, asset, contract string) string {
	return from + "-" + to + "-" + asset + "-" + contract
}

// TOEdge is the TO edge of the money-flow graph (spec.md §3).
type TOEdge struct {
	ID             string
	From           string
	To             string
	Asset          string
	AssetContract  string
	Volume         decimal.Decimal
	TransferCount  uint64
	FirstActivityTS uint64
	LastActivityTS  uint64
	FirstActivityHt BlockHeight
	LastActivityHt  BlockHeight
}

// GlobalState is the singleton graph node tracking the last height
// fully processed by MoneyFlowIndexer (spec.md §3).
type GlobalState struct {
	Name        string // always "last_block_height"
	BlockHeight BlockHeight
}

// Community is an optional node produced by community detection.
type Community struct {
	CommunityID string
}

// Subnet and Agent/Neuron are network-specific graph nodes (spec.md
// §3): Subnet and Neuron for Bittensor, Agent-labeled addresses for
// Torus (Agent itself is represented as a label, not a distinct node
// type, following money_flow_indexer_torus.py which only ever labels
// the Address node).
type Subnet struct {
	NetworkID uint64
}

type Neuron struct {
	NetworkID uint64
	NeuronID  uint64
}
