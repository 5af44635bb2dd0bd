package substratenode

import (
	"fmt"

	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"github.com/chainswarm/substrate-indexer/chain"
	"github.com/chainswarm/substrate-indexer/internal/xerrors"
)

// fetchResult carries one sibling task's outcome back to the joiner in
// BlockByHeight's structured-concurrency fetch.
type fetchResult struct {
	extrinsics []chain.Transaction
	timestamp  chain.BlockTimestamp
	events     []chain.Event
	err        error
}

// BlockByHeight fetches block body and events concurrently from the two
// independent connections and returns once both complete, per spec.md
// §4.1 and the "spawn two sibling tasks, join both, cancel together on
// parent failure" contract of spec.md §9. The timestamp is derived from
// the block's timestamp extrinsic; its absence is a Fatal, non-retried
// error (spec.md §3, §7).
func (c *Client) BlockByHeight(height uint64) (chain.CanonicalBlock, error) {
	var blockResult, eventsResult fetchResult
	done := make(chan struct{}, 2)

	var hash gsrpctypes.Hash
	err := c.withRetry(10, func() error {
		c.mu.RLock()
		api := c.blockAPI
		c.mu.RUnlock()
		h, err := api.RPC.Chain.GetBlockHash(height)
		if err != nil {
			return wrapTransport(err, "substratenode: resolving block hash")
		}
		hash = h
		return nil
	})
	if err != nil {
		return chain.CanonicalBlock{}, err
	}

	go func() {
		blockResult = c.fetchBlockBody(height, hash)
		done <- struct{}{}
	}()
	go func() {
		eventsResult = c.fetchBlockEvents(height, hash)
		done <- struct{}{}
	}()
	<-done
	<-done

	if blockResult.err != nil {
		return chain.CanonicalBlock{}, blockResult.err
	}
	if eventsResult.err != nil {
		return chain.CanonicalBlock{}, eventsResult.err
	}

	block := chain.CanonicalBlock{
		Height:       height,
		Hash:         chain.BlockHash(hash[:]),
		Timestamp:    blockResult.timestamp,
		Transactions: blockResult.extrinsics,
		Events:       eventsResult.events,
		Version:      height,
	}
	block.Addresses = collectAddresses(block)
	return block, nil
}

func (c *Client) fetchBlockBody(height uint64, hash gsrpctypes.Hash) fetchResult {
	var result fetchResult
	err := c.withRetry(10, func() error {
		c.mu.RLock()
		api := c.blockAPI
		c.mu.RUnlock()

		signedBlock, err := api.RPC.Chain.GetBlock(hash)
		if err != nil {
			return wrapTransport(err, "substratenode: fetching block body")
		}

		extrinsics, timestamp, err := decodeExtrinsics(height, signedBlock)
		if err != nil {
			// A missing timestamp extrinsic is fatal per-block, not
			// retried (spec.md §7).
			return err
		}
		result.extrinsics = extrinsics
		result.timestamp = timestamp
		return nil
	})
	result.err = err
	return result
}

func (c *Client) fetchBlockEvents(height uint64, hash gsrpctypes.Hash) fetchResult {
	var result fetchResult
	err := c.withRetry(10, func() error {
		c.mu.RLock()
		api := c.eventsAPI
		c.mu.RUnlock()

		meta, err := api.RPC.State.GetMetadataLatest()
		if err != nil {
			return wrapTransport(err, "substratenode: fetching metadata for events")
		}
		key, err := gsrpctypes.CreateStorageKey(meta, "System", "Events", nil, nil)
		if err != nil {
			return wrapTransport(err, "substratenode: deriving events storage key")
		}
		raw, err := api.RPC.State.GetStorageRaw(key, hash)
		if err != nil {
			return wrapTransport(err, "substratenode: fetching events storage")
		}

		result.events = c.decodeEventsForNetwork(height, meta, raw)
		return nil
	})
	result.err = err
	return result
}

func missingTimestampErr(height uint64) error {
	return xerrors.Fatal(fmt.Errorf("block %d has no Timestamp.set extrinsic", height), "substratenode: missing timestamp")
}
