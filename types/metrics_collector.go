package types

// MetricsCollector defines methods for recording optimizer metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// The optimizer calls them synchronously from the goroutine running the loop.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	SearchMetrics
	LoopMetrics
}

// SearchMetrics defines metrics for candidate search passes.
type SearchMetrics interface {
	// RecordPass records a completed search pass.
	//
	// Parameters:
	//   - eligible: Number of merge-eligible (non-initial) chunks
	//   - candidates: Number of scored candidate pairs
	//   - duration: Time taken in seconds
	RecordPass(eligible, candidates int, duration float64)

	// RecordBestImprovement records the best improvement ratio found in a pass,
	// whether or not it cleared the threshold.
	RecordBestImprovement(improvement float64)
}

// LoopMetrics defines metrics for the optimization loop.
type LoopMetrics interface {
	// RecordStateTransition records a loop state transition.
	RecordStateTransition(from, to LoopState)

	// RecordMerge records a performed merge.
	//
	// Parameters:
	//   - improvement: Improvement ratio of the merged pair
	RecordMerge(improvement float64)

	// RecordRunResult records the outcome of a complete Run.
	//
	// Parameters:
	//   - merges: Number of merges performed
	//   - success: false when the run aborted with an error
	RecordRunResult(merges int, success bool)

	// RecordChunkCount sets the current chunk count (gauge metric).
	RecordChunkCount(count int)
}
