package substratenode

import (
	"math/big"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/shopspring/decimal"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/internal/xerrors"
)

// accountInfo mirrors the System.Account storage value's AccountData,
// decoded with the free/reserved/miscFrozen/feeFrozen layout common to
// every substrate runtime in scope.
type accountInfo struct {
	Nonce gsrpctypes.U32
	Data  struct {
		Free       gsrpctypes.U128
		Reserved   gsrpctypes.U128
		MiscFrozen gsrpctypes.U128
		FeeFrozen  gsrpctypes.U128
	}
}

// BalancesAt reads an address's native-asset balance components as of
// the block at atHeight (its hash is resolved first), aggregating Torus's Torus0.StakingTo map into
// Staked the way original_source/packages/indexers/substrate/node/substrate_node.py
// does (a double-map keyed by staker, summed over all validators it
// delegates to). Non-Torus networks leave Staked at zero; they do not
// model delegated stake as a balance component in spec.md §4.1.
func (c *Client) BalancesAt(address string, atHeight uint64) (chain.Balances, error) {
	accountID, err := gsrpctypes.NewAccountIDFromHexString(address)
	if err != nil {
		return chain.Balances{}, xerrors.Fatal(err, "substratenode: invalid address")
	}

	var result chain.Balances
	err = c.withRetry(5, func() error {
		c.mu.RLock()
		api := c.blockAPI
		c.mu.RUnlock()

		hash, err := api.RPC.Chain.GetBlockHash(atHeight)
		if err != nil {
			return wrapTransport(err, "substratenode: resolving balance query hash")
		}

		meta, err := api.RPC.State.GetMetadataLatest()
		if err != nil {
			return wrapTransport(err, "substratenode: fetching metadata for balance query")
		}

		key, err := gsrpctypes.CreateStorageKey(meta, "System", "Account", accountID[:], nil)
		if err != nil {
			return wrapTransport(err, "substratenode: deriving account storage key")
		}

		var info accountInfo
		ok, err := api.RPC.State.GetStorage(key, &info, hash)
		if err != nil {
			return wrapTransport(err, "substratenode: fetching account storage")
		}
		if !ok {
			result = chain.Balances{
				Free:     decimal.Zero,
				Reserved: decimal.Zero,
				Staked:   decimal.Zero,
				Total:    decimal.Zero,
			}
			return nil
		}

		free := bigToDecimal(info.Data.Free.Int)
		reserved := bigToDecimal(info.Data.Reserved.Int)

		staked := decimal.Zero
		if c.network.IsTorus() {
			s, stakeErr := torusStakingTo(api, accountID, hash, meta)
			if stakeErr != nil {
				return stakeErr
			}
			staked = s
		}

		result = chain.Balances{
			Free:     free,
			Reserved: reserved,
			Staked:   staked,
			Total:    free.Add(reserved).Add(staked),
		}
		return nil
	})
	return result, err
}

// torusStakingTo sums every entry of Torus0.StakingTo(staker, *), the
// delegated-stake double map, for one staker at one block.
func torusStakingTo(api *gsrpc.SubstrateAPI, staker gsrpctypes.AccountID, hash gsrpctypes.Hash, meta *gsrpctypes.Metadata) (decimal.Decimal, error) {
	prefix, err := gsrpctypes.CreateStorageKey(meta, "Torus0", "StakingTo", staker[:], nil)
	if err != nil {
		return decimal.Zero, wrapTransport(err, "substratenode: deriving StakingTo prefix")
	}

	keys, err := api.RPC.State.GetKeys(prefix, hash)
	if err != nil {
		return decimal.Zero, wrapTransport(err, "substratenode: listing StakingTo keys")
	}

	total := decimal.Zero
	for _, k := range keys {
		var amount gsrpctypes.U128
		ok, err := api.RPC.State.GetStorage(k, &amount, hash)
		if err != nil {
			return decimal.Zero, wrapTransport(err, "substratenode: fetching StakingTo entry")
		}
		if !ok {
			continue
		}
		total = total.Add(bigToDecimal(amount.Int))
	}
	return total, nil
}

func bigToDecimal(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, 0)
}
