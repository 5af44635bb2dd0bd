// Package moneyflow implements MoneyFlowIndexer (spec.md §4.5): a
// single graph-store writer that projects balance movement events into
// a money-flow graph (Address nodes, TO edges) plus periodic community
// detection, PageRank, and embedding refresh. Grounded on
// chaindatafetcher's one-handler-per-event-type dispatch
// (handleRequestByType) and on
// original_source/packages/indexers/substrate/graph/money_flow_indexer.py
// for the GlobalState skip-if-already-processed guard and the
// event-to-mutation mapping.
package moneyflow

import (
	"context"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/shopspring/decimal"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/indexers/assets"
	"github.com/chainswarm/substrate-indexer/internal/graphstore"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

// ProcessBlock applies one block's events to the graph inside a single
// transaction, honouring the GlobalState monotonicity guard: a block
// whose height is <= the stored marker is skipped entirely, not
// partially reapplied (spec.md §4.5).
func ProcessBlock(ctx context.Context, store *graphstore.Store, network chain.Network, assetMgr *assets.Manager, log *xlog.Logger, block chain.CanonicalBlock) error {
	return store.Tx(ctx, func(tx neo4j.ManagedTransaction) error {
		current, ok, err := graphstore.GlobalHeight(ctx, tx)
		if err != nil {
			return err
		}
		if ok && block.Height <= current {
			return nil
		}

		for _, ev := range block.Events {
			if err := applyEvent(ctx, tx, network, assetMgr, log, block, ev); err != nil {
				return err
			}
		}

		return graphstore.SetGlobalHeight(ctx, tx, block.Height)
	})
}

func applyEvent(ctx context.Context, tx neo4j.ManagedTransaction, network chain.Network, assetMgr *assets.Manager, log *xlog.Logger, block chain.CanonicalBlock, ev chain.Event) error {
	switch {
	case ev.ModuleID == "Balances" && ev.EventID == "Endowed":
		return handleEndowed(ctx, tx, block, ev)
	case ev.ModuleID == "Balances" && ev.EventID == "Transfer":
		return handleTransfer(ctx, tx, network, assetMgr, block, ev)
	case network.IsTorus() && ev.ModuleID == "Torus0" && ev.EventID == "AgentRegistered":
		return handleTorusAgentRegistered(ctx, tx, ev)
	case network.IsBittensor() && ev.ModuleID == "SubtensorModule" && ev.EventID == "NeuronRegistered":
		return handleNeuronRegistered(ctx, tx, ev)
	case network.IsBittensor() && ev.ModuleID == "SubtensorModule" && ev.EventID == "NetworkAdded":
		return handleNetworkAdded(ctx, tx, block, ev)
	default:
		return nil
	}
}

func handleEndowed(ctx context.Context, tx neo4j.ManagedTransaction, block chain.CanonicalBlock, ev chain.Event) error {
	account, ok := ev.Attr("account")
	if !ok {
		return nil
	}
	if err := graphstore.UpsertAddressSeen(ctx, tx, account, block.Timestamp, block.Height); err != nil {
		return err
	}
	return applyKnownLabels(ctx, tx, account)
}

// applyKnownLabels enriches a newly-touched address with the labels of
// any matching KnownAddress node in the graph store (SPEC_FULL.md
// supplement 5; the ClickHouse known_addresses table is not read).
// Best-effort: KnownLabels already swallows
// its own errors, so this never fails the calling transaction.
func applyKnownLabels(ctx context.Context, tx neo4j.ManagedTransaction, address string) error {
	for _, label := range graphstore.KnownLabels(ctx, tx, address) {
		if err := graphstore.AddLabel(ctx, tx, address, label); err != nil {
			return err
		}
	}
	return nil
}

func handleTransfer(ctx context.Context, tx neo4j.ManagedTransaction, network chain.Network, assetMgr *assets.Manager, block chain.CanonicalBlock, ev chain.Event) error {
	from, ok1 := ev.Attr("from")
	to, ok2 := ev.Attr("to")
	if !ok1 || !ok2 {
		return nil
	}
	amountRaw, _ := ev.Attr("amount")
	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		amount = decimal.Zero
	}

	symbol, contract := assetAttribution(network, ev)
	if contract != chain.NativeContract {
		if _, err := assetMgr.EnsureAssetExists(ctx, symbol, contract, chain.AssetToken, 18, block.Height, block.Timestamp, "", ""); err != nil {
			return err
		}
	}

	if err := graphstore.UpsertAddressSeen(ctx, tx, from, block.Timestamp, block.Height); err != nil {
		return err
	}
	if err := applyKnownLabels(ctx, tx, from); err != nil {
		return err
	}
	if err := graphstore.UpsertAddressSeen(ctx, tx, to, block.Timestamp, block.Height); err != nil {
		return err
	}
	if err := applyKnownLabels(ctx, tx, to); err != nil {
		return err
	}
	if err := graphstore.IncrementTransferCount(ctx, tx, from); err != nil {
		return err
	}
	if err := graphstore.IncrementTransferCount(ctx, tx, to); err != nil {
		return err
	}

	result, err := graphstore.UpsertTOEdge(ctx, tx, from, to, symbol, contract, amount, block.Timestamp, block.Height)
	if err != nil {
		return err
	}
	if result.Created {
		if err := graphstore.IncrementNeighborStats(ctx, tx, from, true); err != nil {
			return err
		}
		if err := graphstore.IncrementNeighborStats(ctx, tx, to, false); err != nil {
			return err
		}
	}
	return nil
}

// assetAttribution maps a transfer-like event to (symbol, contract)
// per spec.md §4.5: Balances.Transfer/Endowed use the network's native
// asset; Assets.Transferred (token pallets) derive a TOKEN_<id> symbol
// keyed by the asset id as contract.
func assetAttribution(network chain.Network, ev chain.Event) (symbol, contract string) {
	if ev.ModuleID == "Assets" && ev.EventID == "Transferred" {
		if id, ok := ev.Attr("asset_id"); ok {
			return "TOKEN_" + id, id
		}
	}
	return network.Constants().NativeSymbol, chain.NativeContract
}

func handleTorusAgentRegistered(ctx context.Context, tx neo4j.ManagedTransaction, ev chain.Event) error {
	agent, ok := ev.Attr("agent")
	if !ok {
		return nil
	}
	return graphstore.AddLabel(ctx, tx, agent, "agent")
}

func handleNeuronRegistered(ctx context.Context, tx neo4j.ManagedTransaction, ev chain.Event) error {
	owner, ok := ev.Attr("owner")
	if !ok {
		return nil
	}
	networkID := attrUint(ev, "network_id")
	neuronID := attrUint(ev, "neuron_id")

	if err := graphstore.AddLabel(ctx, tx, owner, "neuron_owner"); err != nil {
		return err
	}
	return graphstore.UpsertNeuronOwnership(ctx, tx, owner, networkID, neuronID)
}

func handleNetworkAdded(ctx context.Context, tx neo4j.ManagedTransaction, block chain.CanonicalBlock, ev chain.Event) error {
	networkID := attrUint(ev, "network_id")
	if err := graphstore.UpsertSubnet(ctx, tx, networkID); err != nil {
		return err
	}

	signer := signerForEvent(block, ev)
	if signer == "" {
		return nil
	}
	if err := graphstore.AddLabel(ctx, tx, signer, "subnet_creator"); err != nil {
		return err
	}
	return graphstore.UpsertSubnetCreator(ctx, tx, signer, networkID)
}

func signerForEvent(block chain.CanonicalBlock, ev chain.Event) string {
	if ev.ExtrinsicID == "" {
		return ""
	}
	for _, tx := range block.Transactions {
		if tx.ExtrinsicID == ev.ExtrinsicID {
			return tx.Signer
		}
	}
	return ""
}

func attrUint(ev chain.Event, key string) uint64 {
	raw, ok := ev.Attr(key)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
