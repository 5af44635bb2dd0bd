// Package metrics provides the internal-only gauges and counters used
// by every indexer, modeled directly on the gauge set declared at the
// top of datasync/chaindatafetcher/chaindata_fetcher.go
// (checkpointGauge, txsInsertionTimeGauge, txsInsertionRetryGauge,
// etc). No HTTP exposition server is included: metrics HTTP endpoints
// are an out-of-scope external collaborator per spec.md §1.
package metrics

import "github.com/rcrowley/go-metrics"

// Registry namespaces one component's gauges/counters, the way
// chaindatafetcher registers its gauges directly into
// metrics.DefaultRegistry under fixed names.
type Registry struct {
	r metrics.Registry
}

// New creates a fresh, unregistered-from-default registry for one
// component instance so multiple indexer processes in the same test
// binary don't collide on metric names.
func New() *Registry {
	return &Registry{r: metrics.NewRegistry()}
}

func (reg *Registry) gauge(name string) metrics.Gauge {
	return metrics.GetOrRegisterGauge(name, reg.r)
}

func (reg *Registry) counter(name string) metrics.Counter {
	return metrics.GetOrRegisterCounter(name, reg.r)
}

// SetGauge records an instantaneous value, e.g. last-indexed height or
// batch insertion time in milliseconds.
func (reg *Registry) SetGauge(name string, value int64) {
	reg.gauge(name).Update(value)
}

// IncCounter increments a monotonic counter, e.g. retry attempts or
// blocks processed.
func (reg *Registry) IncCounter(name string, delta int64) {
	reg.counter(name).Inc(delta)
}

// Gauge returns the current value of a previously-set gauge, used by
// get_indexing_status style progress reporting and by tests.
func (reg *Registry) Gauge(name string) int64 {
	return reg.gauge(name).Value()
}

// Counter returns the current value of a previously-incremented counter.
func (reg *Registry) Counter(name string) int64 {
	return reg.counter(name).Count()
}

// Standard metric names shared across components, named after their
// chaindatafetcher counterparts.
const (
	GaugeCheckpoint        = "checkpoint"
	GaugeLastIndexedHeight = "last_indexed_height"
	GaugeBatchInsertMillis = "batch_insert_millis"
	GaugeChainHeadHeight   = "chain_head_height"
	CounterRetries         = "retries"
	CounterBlocksIndexed   = "blocks_indexed"
	CounterRowsWritten     = "rows_written"
	CounterAssetsCreated   = "assets_created"
)
