package graphstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
)

// CommunityAssignment is one Address's computed community, per spec.md
// §4.5 step 1.
type CommunityAssignment struct {
	Address     string
	CommunityID string
}

// DetectCommunities runs Memgraph's community_detection.get_subgraph
// MAGE procedure over the induced subgraph of Address nodes and TO
// edges, writes community_id on each node, and creates Community
// nodes, per spec.md §4.5 step 1.
func DetectCommunities(ctx context.Context, tx neo4j.ManagedTransaction) ([]CommunityAssignment, error) {
	result, err := tx.Run(ctx, `
		CALL community_detection.get_subgraph() YIELD node, community_id
		SET node.community_id = toString(community_id)
		MERGE (c:Community {community_id: toString(community_id)})
		RETURN node.address AS address, toString(community_id) AS community_id`, nil)
	if err != nil {
		return nil, errors.Wrap(err, "graphstore: running community_detection.get_subgraph")
	}

	var assignments []CommunityAssignment
	for result.Next(ctx) {
		record := result.Record()
		addr, _ := record.Get("address")
		cid, _ := record.Get("community_id")
		a, _ := addr.(string)
		c, _ := cid.(string)
		if a == "" {
			continue
		}
		assignments = append(assignments, CommunityAssignment{Address: a, CommunityID: c})
	}
	return assignments, result.Err()
}

// CommunityMembers returns the addresses currently assigned to
// communityID, iterated one community at a time by the caller so
// cancellation can be honoured between communities (spec.md §5).
func CommunityMembers(ctx context.Context, tx neo4j.ManagedTransaction, communityID string) ([]string, error) {
	result, err := tx.Run(ctx, `
		MATCH (a:Address {community_id: $cid})
		RETURN a.address AS address`, map[string]interface{}{"cid": communityID})
	if err != nil {
		return nil, errors.Wrap(err, "graphstore: listing community members")
	}
	var addrs []string
	for result.Next(ctx) {
		record := result.Record()
		if a, ok := record.Get("address"); ok {
			if s, ok := a.(string); ok {
				addrs = append(addrs, s)
			}
		}
	}
	return addrs, result.Err()
}

// AllCommunityIDs lists the distinct community ids currently assigned,
// used to drive the per-community PageRank loop of spec.md §4.5 step 2.
func AllCommunityIDs(ctx context.Context, tx neo4j.ManagedTransaction) ([]string, error) {
	result, err := tx.Run(ctx, `
		MATCH (c:Community)
		RETURN c.community_id AS community_id`, nil)
	if err != nil {
		return nil, errors.Wrap(err, "graphstore: listing communities")
	}
	var ids []string
	for result.Next(ctx) {
		record := result.Record()
		if v, ok := record.Get("community_id"); ok {
			if s, ok := v.(string); ok {
				ids = append(ids, s)
			}
		}
	}
	return ids, result.Err()
}

// PageRankResult is one Address's computed score within a community
// subgraph.
type PageRankResult struct {
	Address  string
	PageRank float64
}

// CommunityPageRank computes PageRank on the subgraph reachable within
// up to 3 TO hops from any member of the given addresses, using
// Memgraph's pagerank.get MAGE procedure scoped via path.expand, and
// writes community_page_rank on each Address — spec.md §4.5 step 2.
func CommunityPageRank(ctx context.Context, tx neo4j.ManagedTransaction, members []string) ([]PageRankResult, error) {
	result, err := tx.Run(ctx, `
		UNWIND $members AS seed
		MATCH (s:Address {address: seed})
		CALL path.expand(s, ["TO>"], [], 0, 3) YIELD result AS path
		WITH project(path) AS subgraph
		CALL pagerank.get(subgraph) YIELD node, rank
		WHERE node.address IN $members
		SET node.community_page_rank = rank
		RETURN node.address AS address, rank AS rank`,
		map[string]interface{}{"members": members})
	if err != nil {
		return nil, errors.Wrap(err, "graphstore: running pagerank.get")
	}

	var out []PageRankResult
	for result.Next(ctx) {
		record := result.Record()
		addr, _ := record.Get("address")
		rank, _ := record.Get("rank")
		a, _ := addr.(string)
		r, _ := rank.(float64)
		if a == "" {
			continue
		}
		out = append(out, PageRankResult{Address: a, PageRank: r})
	}
	return out, result.Err()
}

// AddressEmbeddingInputs is the set of per-address fields used to
// derive the 6-dimension network_embedding vector of spec.md §4.5 step
// 3: [transfer_count, unique_senders, unique_receivers, neighbor_count,
// community_id, community_page_rank].
type AddressEmbeddingInputs struct {
	Address           string
	TransferCount     float64
	UniqueSenders     float64
	UniqueReceivers   float64
	NeighborCount     float64
	CommunityIDNumber float64
	CommunityPageRank float64
}

// RefreshEmbedding writes network_embedding for one address. Called
// once per address during the periodic analytics pass.
func RefreshEmbedding(ctx context.Context, tx neo4j.ManagedTransaction, in AddressEmbeddingInputs) error {
	vec := []float64{
		in.TransferCount, in.UniqueSenders, in.UniqueReceivers,
		in.NeighborCount, in.CommunityIDNumber, in.CommunityPageRank,
	}
	_, err := tx.Run(ctx, `
		MATCH (a:Address {address: $address})
		SET a.network_embedding = $vec`,
		map[string]interface{}{"address": in.Address, "vec": vec})
	return errors.Wrap(err, "graphstore: refreshing embedding")
}

// AllAddressesForEmbedding lists every Address along with the raw
// counters needed to build its embedding, for the refresh pass.
func AllAddressesForEmbedding(ctx context.Context, tx neo4j.ManagedTransaction) ([]AddressEmbeddingInputs, error) {
	result, err := tx.Run(ctx, `
		MATCH (a:Address)
		RETURN a.address AS address,
			coalesce(a.transfer_count, 0) AS transfer_count,
			coalesce(a.unique_senders, 0) AS unique_senders,
			coalesce(a.unique_receivers, 0) AS unique_receivers,
			coalesce(a.neighbor_count, 0) AS neighbor_count,
			coalesce(a.community_id, "0") AS community_id,
			coalesce(a.community_page_rank, 0.0) AS community_page_rank`, nil)
	if err != nil {
		return nil, errors.Wrap(err, "graphstore: listing addresses for embedding")
	}

	var out []AddressEmbeddingInputs
	for result.Next(ctx) {
		record := result.Record()
		in := AddressEmbeddingInputs{}
		if v, ok := record.Get("address"); ok {
			in.Address, _ = v.(string)
		}
		in.TransferCount = numField(record, "transfer_count")
		in.UniqueSenders = numField(record, "unique_senders")
		in.UniqueReceivers = numField(record, "unique_receivers")
		in.NeighborCount = numField(record, "neighbor_count")
		in.CommunityIDNumber = communityIDAsNumber(record)
		in.CommunityPageRank = numField(record, "community_page_rank")
		out = append(out, in)
	}
	return out, result.Err()
}

func numField(record *neo4j.Record, key string) float64 {
	v, ok := record.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

func communityIDAsNumber(record *neo4j.Record) float64 {
	v, ok := record.Get("community_id")
	if !ok {
		return 0
	}
	s, ok := v.(string)
	if !ok {
		return 0
	}
	var n float64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + float64(r-'0')
	}
	return n
}
