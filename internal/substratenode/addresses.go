package substratenode

import "github.com/chainswarm/substrate-indexer/chain"

// collectAddresses builds the deduplicated address set stored
// alongside each block (spec.md §4.1's "addresses" projection), the
// union of every extrinsic signer and every address-shaped event
// attribute. Populating it at fetch time, once, is what lets
// chstore.GetByRange's onlyWithAddresses filter skip blocks cheaply
// instead of re-deriving this set from transactions/events on read.
func collectAddresses(block chain.CanonicalBlock) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(addr string) {
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}

	for _, tx := range block.Transactions {
		add(tx.Signer)
	}

	addressKeys := []string{"from", "to", "who", "account", "stash", "signer", "coldkey", "hotkey", "owner", "agent", "bidder"}
	for _, ev := range block.Events {
		for _, key := range addressKeys {
			if v, ok := ev.Attr(key); ok {
				add(v)
			}
		}
	}

	return out
}
