package substratenode

import gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"

// torusEventRecords, bittensorEventRecords and polkadotEventRecords
// extend the library's base EventRecords (which only covers standard
// pallets: System, Balances, TransactionPayment, ...) with the
// per-network pallets named in spec.md §4.3/§4.5. The scale decoder
// matches struct fields named "<Module>_<Event>" against the runtime
// metadata, the same convention the base EventRecords type uses for
// Balances_Transfer, System_ExtrinsicFailed, and so on.
type torusEventRecords struct {
	gsrpctypes.EventRecords
	Staking_Reward         []stakingRewardEvent         `json:"staking_Reward"`
	Treasury_Awarded       []treasuryAwardedEvent       `json:"treasury_Awarded"`
	Torus0_AgentRegistered []torus0AgentRegisteredEvent `json:"torus0_AgentRegistered"`
}

type bittensorEventRecords struct {
	gsrpctypes.EventRecords
	SubtensorModule_StakeAdded       []stakeAddedEvent       `json:"subtensorModule_StakeAdded"`
	SubtensorModule_StakeRemoved     []stakeRemovedEvent     `json:"subtensorModule_StakeRemoved"`
	SubtensorModule_EmissionReceived []emissionReceivedEvent `json:"subtensorModule_EmissionReceived"`
	SubtensorModule_NeuronRegistered []neuronRegisteredEvent `json:"subtensorModule_NeuronRegistered"`
	SubtensorModule_NetworkAdded     []networkAddedEvent     `json:"subtensorModule_NetworkAdded"`
}

type polkadotEventRecords struct {
	gsrpctypes.EventRecords
	Staking_Rewarded       []stakingRewardedEvent   `json:"staking_Rewarded"`
	Treasury_Awarded       []treasuryAwardedEvent   `json:"treasury_Awarded"`
	Crowdloan_Contributed  []crowdloanContribEvent  `json:"crowdloan_Contributed"`
	Auctions_BidAccepted   []auctionsBidAcceptEvent `json:"auctions_BidAccepted"`
}

type stakingRewardEvent struct {
	Phase gsrpctypes.Phase
	Stash gsrpctypes.AccountID
	Topics []gsrpctypes.Hash
}

type stakingRewardedEvent struct {
	Phase  gsrpctypes.Phase
	Stash  gsrpctypes.AccountID
	Amount gsrpctypes.U128
	Topics []gsrpctypes.Hash
}

type treasuryAwardedEvent struct {
	Phase   gsrpctypes.Phase
	Index   gsrpctypes.U32
	Amount  gsrpctypes.U128
	Account gsrpctypes.AccountID
	Topics  []gsrpctypes.Hash
}

type torus0AgentRegisteredEvent struct {
	Phase  gsrpctypes.Phase
	Agent  gsrpctypes.AccountID
	Topics []gsrpctypes.Hash
}

type stakeAddedEvent struct {
	Phase   gsrpctypes.Phase
	Coldkey gsrpctypes.AccountID
	Hotkey  gsrpctypes.AccountID
	Amount  gsrpctypes.U128
	Topics  []gsrpctypes.Hash
}

type stakeRemovedEvent struct {
	Phase   gsrpctypes.Phase
	Hotkey  gsrpctypes.AccountID
	Coldkey gsrpctypes.AccountID
	Amount  gsrpctypes.U128
	Topics  []gsrpctypes.Hash
}

type emissionReceivedEvent struct {
	Phase  gsrpctypes.Phase
	Hotkey gsrpctypes.AccountID
	Amount gsrpctypes.U128
	Topics []gsrpctypes.Hash
}

type neuronRegisteredEvent struct {
	Phase     gsrpctypes.Phase
	NetworkID gsrpctypes.U16
	NeuronID  gsrpctypes.U16
	Owner     gsrpctypes.AccountID
	Topics    []gsrpctypes.Hash
}

type networkAddedEvent struct {
	Phase     gsrpctypes.Phase
	NetworkID gsrpctypes.U16
	Topics    []gsrpctypes.Hash
}

type crowdloanContribEvent struct {
	Phase     gsrpctypes.Phase
	Who       gsrpctypes.AccountID
	FundIndex gsrpctypes.U32
	Amount    gsrpctypes.U128
	Topics    []gsrpctypes.Hash
}

type auctionsBidAcceptEvent struct {
	Phase   gsrpctypes.Phase
	Bidder  gsrpctypes.AccountID
	ParaID  gsrpctypes.U32
	Amount  gsrpctypes.U128
	Topics  []gsrpctypes.Hash
}
