// Package balancetransfers implements BalanceTransfersIndexer (spec.md
// §4.3): reads canonical blocks back out of block_stream (never the
// node directly) and projects Balances.Transfer plus network-specific
// pseudo-transfer events into balance_transfers. Grounded on
// chaindatafetcher's Repository.HandleChainEvent pattern — a pure
// function from one block's data to a batch of rows, independent of
// how the block arrived — generalized here to a per-network strategy
// so Torus/Bittensor/Polkadot's distinct reward/stake pallets share one
// extraction skeleton (spec.md §4.3 "Apply network-specific event
// extraction").
package balancetransfers

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chainswarm/substrate-indexer/chain"
)

// NetworkStrategy extracts a network's pseudo-transfer events — those
// with no Balances.Transfer event but still representing value moving
// between addresses (staking rewards, treasury awards, stake
// delegation, crowdloan contributions, auction bids) — per spec.md
// §4.3's network-specific emissions table.
type NetworkStrategy interface {
	ExtractPseudoTransfers(height chain.BlockHeight, ts chain.BlockTimestamp, group []chain.Event) []chain.BalanceTransfer
}

func strategyFor(network chain.Network) NetworkStrategy {
	switch {
	case network.IsTorus():
		return torusStrategy{}
	case network.IsBittensor():
		return bittensorStrategy{}
	default:
		return polkadotStrategy{}
	}
}

type torusStrategy struct{}

func (torusStrategy) ExtractPseudoTransfers(height chain.BlockHeight, ts chain.BlockTimestamp, group []chain.Event) []chain.BalanceTransfer {
	var out []chain.BalanceTransfer
	for _, ev := range group {
		switch {
		case ev.ModuleID == "Staking" && ev.EventID == "Reward":
			stash, _ := ev.Attr("stash")
			amount := decimalAttr(ev, "amount")
			out = append(out, pseudoTransfer(height, ts, ev, "system", stash, amount))
		case ev.ModuleID == "Treasury" && ev.EventID == "Awarded":
			account, _ := ev.Attr("account")
			amount := decimalAttr(ev, "amount")
			out = append(out, pseudoTransfer(height, ts, ev, "treasury", account, amount))
		}
	}
	return out
}

type bittensorStrategy struct{}

func (bittensorStrategy) ExtractPseudoTransfers(height chain.BlockHeight, ts chain.BlockTimestamp, group []chain.Event) []chain.BalanceTransfer {
	var out []chain.BalanceTransfer
	for _, ev := range group {
		switch {
		case ev.ModuleID == "SubtensorModule" && ev.EventID == "StakeAdded":
			coldkey, _ := ev.Attr("coldkey")
			hotkey, _ := ev.Attr("hotkey")
			amount := decimalAttr(ev, "amount")
			out = append(out, pseudoTransfer(height, ts, ev, coldkey, hotkey, amount))
		case ev.ModuleID == "SubtensorModule" && ev.EventID == "StakeRemoved":
			hotkey, _ := ev.Attr("hotkey")
			coldkey, _ := ev.Attr("coldkey")
			amount := decimalAttr(ev, "amount")
			out = append(out, pseudoTransfer(height, ts, ev, hotkey, coldkey, amount))
		case ev.ModuleID == "SubtensorModule" && ev.EventID == "EmissionReceived":
			hotkey, _ := ev.Attr("hotkey")
			amount := decimalAttr(ev, "amount")
			out = append(out, pseudoTransfer(height, ts, ev, "emission", hotkey, amount))
		}
	}
	return out
}

type polkadotStrategy struct{}

func (polkadotStrategy) ExtractPseudoTransfers(height chain.BlockHeight, ts chain.BlockTimestamp, group []chain.Event) []chain.BalanceTransfer {
	var out []chain.BalanceTransfer
	for _, ev := range group {
		switch {
		case ev.ModuleID == "Staking" && ev.EventID == "Rewarded":
			stash, _ := ev.Attr("stash")
			amount := decimalAttr(ev, "amount")
			out = append(out, pseudoTransfer(height, ts, ev, "staking", stash, amount))
		case ev.ModuleID == "Treasury" && ev.EventID == "Awarded":
			account, _ := ev.Attr("account")
			amount := decimalAttr(ev, "amount")
			out = append(out, pseudoTransfer(height, ts, ev, "treasury", account, amount))
		case ev.ModuleID == "Crowdloan" && ev.EventID == "Contributed":
			who, _ := ev.Attr("who")
			fundIndex, _ := ev.Attr("fund_index")
			amount := decimalAttr(ev, "amount")
			out = append(out, pseudoTransfer(height, ts, ev, who, fmt.Sprintf("crowdloan-%s", fundIndex), amount))
		case ev.ModuleID == "Auctions" && ev.EventID == "BidAccepted":
			bidder, _ := ev.Attr("bidder")
			paraID, _ := ev.Attr("para_id")
			out = append(out, pseudoTransfer(height, ts, ev, bidder, fmt.Sprintf("auction-%s", paraID), decimal.Zero))
		}
	}
	return out
}

func pseudoTransfer(height chain.BlockHeight, ts chain.BlockTimestamp, ev chain.Event, from, to string, amount decimal.Decimal) chain.BalanceTransfer {
	return chain.BalanceTransfer{
		ExtrinsicID:    ev.ExtrinsicID,
		EventIdx:       ev.EventIdx,
		BlockHeight:    height,
		BlockTimestamp: ts,
		From:           from,
		To:             to,
		AssetContract:  chain.NativeContract,
		Amount:         amount,
		Fee:            decimal.Zero,
		Version:        height,
	}
}

func decimalAttr(ev chain.Event, key string) decimal.Decimal {
	raw, ok := ev.Attr(key)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
