package graphstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
)

// UpsertNeuronOwnership maintains the Bittensor Neuron{network_id,
// neuron_id} node and the Address -[OWNS]-> Neuron relationship,
// labeling the owner "neuron_owner" — spec.md §4.5.
func UpsertNeuronOwnership(ctx context.Context, tx neo4j.ManagedTransaction, owner string, networkID, neuronID uint64) error {
	_, err := tx.Run(ctx, `
		MERGE (a:Address {address: $owner})
		ON CREATE SET a.labels = []
		MERGE (n:Neuron {network_id: $network_id, neuron_id: $neuron_id})
		MERGE (a)-[:OWNS]->(n)
		SET a.labels = CASE WHEN "neuron_owner" IN coalesce(a.labels, []) THEN a.labels ELSE coalesce(a.labels, []) + "neuron_owner" END`,
		map[string]interface{}{"owner": owner, "network_id": int64(networkID), "neuron_id": int64(neuronID)})
	return errors.Wrap(err, "graphstore: upserting neuron ownership")
}

// UpsertSubnet upserts the Subnet{network_id} node for Bittensor's
// SubtensorModule.NetworkAdded — spec.md §4.5.
func UpsertSubnet(ctx context.Context, tx neo4j.ManagedTransaction, networkID uint64) error {
	_, err := tx.Run(ctx, `MERGE (:Subnet {network_id: $network_id})`,
		map[string]interface{}{"network_id": int64(networkID)})
	return errors.Wrap(err, "graphstore: upserting subnet")
}

// UpsertSubnetCreator labels the signer "subnet_creator" and creates
// Address -[CREATED]-> Subnet, only called when the extrinsic carries a
// signer (spec.md §9 Open Question: "treat as optional and skip the
// creator-labeling branch when absent").
func UpsertSubnetCreator(ctx context.Context, tx neo4j.ManagedTransaction, signer string, networkID uint64) error {
	_, err := tx.Run(ctx, `
		MERGE (a:Address {address: $signer})
		ON CREATE SET a.labels = []
		MERGE (s:Subnet {network_id: $network_id})
		MERGE (a)-[:CREATED]->(s)
		SET a.labels = CASE WHEN "subnet_creator" IN coalesce(a.labels, []) THEN a.labels ELSE coalesce(a.labels, []) + "subnet_creator" END`,
		map[string]interface{}{"signer": signer, "network_id": int64(networkID)})
	return errors.Wrap(err, "graphstore: upserting subnet creator")
}

// KnownLabels is the SPEC_FULL.md-supplemented, best-effort label
// lookup for an address: it returns the label of every KnownAddress
// node in the graph store with that address. The ClickHouse
// known_addresses table is not queried. It returns nil when the query
// cannot be run rather than failing the caller: this is an enrichment,
// not a correctness dependency.
func KnownLabels(ctx context.Context, tx neo4j.ManagedTransaction, address string) []string {
	result, err := tx.Run(ctx, `
		MATCH (k:KnownAddress {address: $address})
		RETURN k.label AS label`, map[string]interface{}{"address": address})
	if err != nil {
		return nil
	}
	var labels []string
	for result.Next(ctx) {
		if v, ok := result.Record().Get("label"); ok {
			if s, ok := v.(string); ok {
				labels = append(labels, s)
			}
		}
	}
	return labels
}
