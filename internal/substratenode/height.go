package substratenode

// CurrentHeight returns the latest block height known to the node
// (spec.md §4.1), retried forever per the client's retry contract.
func (c *Client) CurrentHeight() (uint64, error) {
	var height uint64
	err := c.withRetry(10, func() error {
		c.mu.RLock()
		api := c.blockAPI
		c.mu.RUnlock()

		header, err := api.RPC.Chain.GetHeaderLatest()
		if err != nil {
			return wrapTransport(err, "substratenode: fetching latest header")
		}
		height = uint64(header.Number)
		return nil
	})
	return height, err
}
