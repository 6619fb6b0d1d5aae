package metrics

import "github.com/arloliu/chunkmerge/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. This is the default collector used by the
// optimizer when none is configured.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	opt, err := chunkmerge.NewOptimizer(&cfg, graph, chunkmerge.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// SearchMetrics implementation

// RecordPass discards the search pass metric.
func (n *NopMetrics) RecordPass(_ /* eligible */, _ /* candidates */ int, _ /* duration */ float64) {
	// No-op
}

// RecordBestImprovement discards the best improvement metric.
func (n *NopMetrics) RecordBestImprovement(_ /* improvement */ float64) {
	// No-op
}

// LoopMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.LoopState) {
	// No-op
}

// RecordMerge discards the merge metric.
func (n *NopMetrics) RecordMerge(_ /* improvement */ float64) {
	// No-op
}

// RecordRunResult discards the run result metric.
func (n *NopMetrics) RecordRunResult(_ /* merges */ int, _ /* success */ bool) {
	// No-op
}

// RecordChunkCount discards the chunk count metric.
func (n *NopMetrics) RecordChunkCount(_ /* count */ int) {
	// No-op
}
