package substratenode

import (
	"fmt"

	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"github.com/chainswarm/substrate-indexer/chain"
)

// decodeEvents decodes the raw System.Events storage value into the
// tagged-variant event list of spec.md §9 ("dynamic attribute access on
// events -> tagged-variant event types decoded once from the JSON
// attributes column"). Network-specific pallets are decoded via an
// extended EventRecords struct selected by c.network; event types this
// package has no struct field for are not emitted (spec.md §9: "Unknown
// variants are ignored"). If DecodeEventRecords fails, a warning is
// logged and the block gets no events at all.
func (c *Client) decodeEventsForNetwork(height uint64, meta *gsrpctypes.Metadata, raw gsrpctypes.StorageDataRaw) []chain.Event {
	switch {
	case c.network.IsTorus():
		var records torusEventRecords
		if err := gsrpctypes.EventRecordsRaw(raw).DecodeEventRecords(meta, &records); err != nil {
			c.log.Warn("failed to decode events, treating block as eventless", "height", height, "err", err)
			return nil
		}
		return flattenTorusEvents(height, &records)
	case c.network.IsBittensor():
		var records bittensorEventRecords
		if err := gsrpctypes.EventRecordsRaw(raw).DecodeEventRecords(meta, &records); err != nil {
			c.log.Warn("failed to decode events, treating block as eventless", "height", height, "err", err)
			return nil
		}
		return flattenBittensorEvents(height, &records)
	default:
		var records polkadotEventRecords
		if err := gsrpctypes.EventRecordsRaw(raw).DecodeEventRecords(meta, &records); err != nil {
			c.log.Warn("failed to decode events, treating block as eventless", "height", height, "err", err)
			return nil
		}
		return flattenPolkadotEvents(height, &records)
	}
}

func phaseExtrinsicIndex(phase gsrpctypes.Phase) (int, bool) {
	if !phase.IsApplyExtrinsic {
		return 0, false
	}
	return int(phase.AsApplyExtrinsic), true
}

func newEvent(height uint64, eventIndex int, extrinsicIndex int, hasExtrinsic bool, module, eventID string, attrs map[string]interface{}) chain.Event {
	ev := chain.Event{
		EventIdx:   chain.EventIdx(height, eventIndex),
		ModuleID:   module,
		EventID:    eventID,
		Attributes: attrs,
	}
	if hasExtrinsic {
		ev.ExtrinsicID = chain.ExtrinsicID(height, extrinsicIndex)
	}
	return ev
}

func flattenCommonEvents(height uint64, idx *int, base *gsrpctypes.EventRecords) []chain.Event {
	var events []chain.Event

	for _, e := range base.Balances_Transfer {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, *idx, xi, ok, "Balances", "Transfer", map[string]interface{}{
			"from":   e.From.ToHexString(),
			"to":     e.To.ToHexString(),
			"amount": e.Value.String(),
		}))
		*idx++
	}
	for _, e := range base.Balances_Endowed {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, *idx, xi, ok, "Balances", "Endowed", map[string]interface{}{
			"account": e.Who.ToHexString(),
			"free":    e.Balance.String(),
		}))
		*idx++
	}
	for _, e := range base.System_ExtrinsicFailed {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, *idx, xi, ok, "System", "ExtrinsicFailed", map[string]interface{}{}))
		*idx++
	}
	for _, e := range base.TransactionPayment_TransactionFeePaid {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, *idx, xi, ok, "TransactionPayment", "TransactionFeePaid", map[string]interface{}{
			"who":         e.Who.ToHexString(),
			"actual_fee":  e.ActualFee.String(),
			"tip":         e.Tip.String(),
		}))
		*idx++
	}
	return events
}

func flattenTorusEvents(height uint64, r *torusEventRecords) []chain.Event {
	idx := 0
	events := flattenCommonEvents(height, &idx, &r.EventRecords)

	for _, e := range r.Staking_Reward {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "Staking", "Reward", map[string]interface{}{
			"stash": e.Stash.ToHexString(),
		}))
		idx++
	}
	for _, e := range r.Treasury_Awarded {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "Treasury", "Awarded", map[string]interface{}{
			"proposal_index": fmt.Sprintf("%d", e.Index),
			"amount":         e.Amount.String(),
			"account":        e.Account.ToHexString(),
		}))
		idx++
	}
	for _, e := range r.Torus0_AgentRegistered {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "Torus0", "AgentRegistered", map[string]interface{}{
			"agent": e.Agent.ToHexString(),
		}))
		idx++
	}
	return events
}

func flattenBittensorEvents(height uint64, r *bittensorEventRecords) []chain.Event {
	idx := 0
	events := flattenCommonEvents(height, &idx, &r.EventRecords)

	for _, e := range r.SubtensorModule_StakeAdded {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "SubtensorModule", "StakeAdded", map[string]interface{}{
			"coldkey": e.Coldkey.ToHexString(),
			"hotkey":  e.Hotkey.ToHexString(),
			"amount":  e.Amount.String(),
		}))
		idx++
	}
	for _, e := range r.SubtensorModule_StakeRemoved {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "SubtensorModule", "StakeRemoved", map[string]interface{}{
			"hotkey":  e.Hotkey.ToHexString(),
			"coldkey": e.Coldkey.ToHexString(),
			"amount":  e.Amount.String(),
		}))
		idx++
	}
	for _, e := range r.SubtensorModule_EmissionReceived {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "SubtensorModule", "EmissionReceived", map[string]interface{}{
			"hotkey": e.Hotkey.ToHexString(),
			"amount": e.Amount.String(),
		}))
		idx++
	}
	for _, e := range r.SubtensorModule_NeuronRegistered {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "SubtensorModule", "NeuronRegistered", map[string]interface{}{
			"network_id": fmt.Sprintf("%d", e.NetworkID),
			"neuron_id":  fmt.Sprintf("%d", e.NeuronID),
			"owner":      e.Owner.ToHexString(),
		}))
		idx++
	}
	for _, e := range r.SubtensorModule_NetworkAdded {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "SubtensorModule", "NetworkAdded", map[string]interface{}{
			"network_id": fmt.Sprintf("%d", e.NetworkID),
		}))
		idx++
	}
	return events
}

func flattenPolkadotEvents(height uint64, r *polkadotEventRecords) []chain.Event {
	idx := 0
	events := flattenCommonEvents(height, &idx, &r.EventRecords)

	for _, e := range r.Staking_Rewarded {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "Staking", "Rewarded", map[string]interface{}{
			"stash":  e.Stash.ToHexString(),
			"amount": e.Amount.String(),
		}))
		idx++
	}
	for _, e := range r.Treasury_Awarded {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "Treasury", "Awarded", map[string]interface{}{
			"proposal_index": fmt.Sprintf("%d", e.Index),
			"amount":         e.Amount.String(),
			"account":        e.Account.ToHexString(),
		}))
		idx++
	}
	for _, e := range r.Crowdloan_Contributed {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "Crowdloan", "Contributed", map[string]interface{}{
			"who":        e.Who.ToHexString(),
			"fund_index": fmt.Sprintf("%d", e.FundIndex),
			"amount":     e.Amount.String(),
		}))
		idx++
	}
	for _, e := range r.Auctions_BidAccepted {
		xi, ok := phaseExtrinsicIndex(e.Phase)
		events = append(events, newEvent(height, idx, xi, ok, "Auctions", "BidAccepted", map[string]interface{}{
			"bidder":  e.Bidder.ToHexString(),
			"para_id": fmt.Sprintf("%d", e.ParaID),
		}))
		idx++
	}
	return events
}
