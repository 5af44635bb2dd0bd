package balancetransfers

import (
	"github.com/shopspring/decimal"

	"github.com/chainswarm/substrate-indexer/chain"
)

// Extract runs spec.md §4.3's event extraction algorithm over one
// block's events: group by extrinsic, drop failed extrinsics whole,
// emit one row per Balances.Transfer with fee attribution from the
// same extrinsic's TransactionPayment.TransactionFeePaid, then apply
// the network-specific strategy to every surviving group (and to
// events with no owning extrinsic — era-end rewards fire outside any
// extrinsic's phase).
func Extract(network chain.Network, block chain.CanonicalBlock) []chain.BalanceTransfer {
	strategy := strategyFor(network)
	constants := network.Constants()
	symbol := constants.NativeSymbol

	groups, order, ungrouped := groupByExtrinsic(block.Events)

	var out []chain.BalanceTransfer

	for _, key := range order {
		group := groups[key]
		if containsExtrinsicFailed(group) {
			continue
		}
		out = append(out, extractTransfers(block.Height, block.Timestamp, group, symbol)...)
		out = append(out, strategy.ExtractPseudoTransfers(block.Height, block.Timestamp, group)...)
	}

	out = append(out, strategy.ExtractPseudoTransfers(block.Height, block.Timestamp, ungrouped)...)

	for i := range out {
		out[i].Asset = symbol
		out[i].Amount = out[i].Amount.Shift(-constants.NativeDecimals)
		out[i].Fee = out[i].Fee.Shift(-constants.NativeDecimals)
	}

	return out
}

func groupByExtrinsic(events []chain.Event) (groups map[string][]chain.Event, order []string, ungrouped []chain.Event) {
	groups = make(map[string][]chain.Event)
	for _, ev := range events {
		if ev.ExtrinsicID == "" {
			ungrouped = append(ungrouped, ev)
			continue
		}
		if _, ok := groups[ev.ExtrinsicID]; !ok {
			order = append(order, ev.ExtrinsicID)
		}
		groups[ev.ExtrinsicID] = append(groups[ev.ExtrinsicID], ev)
	}
	return
}

func containsExtrinsicFailed(group []chain.Event) bool {
	for _, ev := range group {
		if ev.ModuleID == "System" && ev.EventID == "ExtrinsicFailed" {
			return true
		}
	}
	return false
}

func extractTransfers(height chain.BlockHeight, ts chain.BlockTimestamp, group []chain.Event, symbol string) []chain.BalanceTransfer {
	var out []chain.BalanceTransfer
	for _, ev := range group {
		if ev.ModuleID != "Balances" || ev.EventID != "Transfer" {
			continue
		}
		from, _ := ev.Attr("from")
		to, _ := ev.Attr("to")
		amount := decimalAttr(ev, "amount")
		fee := feeFor(group, from)

		out = append(out, chain.BalanceTransfer{
			ExtrinsicID:    ev.ExtrinsicID,
			EventIdx:       ev.EventIdx,
			BlockHeight:    height,
			BlockTimestamp: ts,
			From:           from,
			To:             to,
			Asset:          symbol,
			AssetContract:  chain.NativeContract,
			Amount:         amount,
			Fee:            fee,
			Version:        height,
		})
	}
	return out
}

// feeFor finds the TransactionFeePaid event in the same extrinsic
// whose "who" matches the transfer's "from", returning zero if none
// (spec.md §4.3 step 3).
func feeFor(group []chain.Event, from string) decimal.Decimal {
	for _, ev := range group {
		if ev.ModuleID != "TransactionPayment" || ev.EventID != "TransactionFeePaid" {
			continue
		}
		who, _ := ev.Attr("who")
		if who == from {
			return decimalAttr(ev, "actual_fee")
		}
	}
	return decimal.Zero
}
