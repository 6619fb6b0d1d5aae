// Package chunkmerge provides a greedy optimizer that merges redundant
// non-entry chunks of a module bundler's chunk graph.
//
// Two async chunks that carry many of the same modules ship those modules
// twice. The optimizer scores every pair of non-entry chunks by how much
// output merging them would save and merges the best pair, one at a time,
// until no pair clears a configurable threshold.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import "github.com/arloliu/chunkmerge"
//
//	cfg := chunkmerge.DefaultConfig() // MinSizeReduce: 1.5
//
//	opt, err := chunkmerge.NewOptimizer(&cfg, graph)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := opt.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("merged %d chunks", len(result.Merges))
//
// The graph is any implementation of ChunkGraph. The memgraph package
// provides an in-memory one that can be loaded from YAML.
//
// # Scoring
//
// For a pair (a, b) the improvement ratio is
//
//	(size(a) + size(b)) / size(a ∪ b)
//
// with per-chunk overhead excluded. Chunks that share nothing score 1.0 and
// identical chunks score 2.0. Entry chunks (CanBeInitial) never take part.
//
// # Architecture
//
// The optimizer is a state machine:
//
//	Scanning → Merging → Scanning → ... → Done
//
// Every Scanning pass reads a fresh snapshot of the graph's chunks and runs a
// full candidate search (see the search package). If the winner reaches
// MinSizeReduce, the optimizer enters Merging, integrates the later chunk of
// the pair into the earlier one and removes it. Each merge removes one chunk,
// so a run over n chunks ends after at most n-1 merges.
//
// Hosts that drive optimization themselves can call Step instead of Run: it
// performs one pass and reports whether a merge happened.
//
// # Advanced Usage
//
// Logging, metrics and hooks. Any Logger works (zap's SugaredLogger satisfies
// it as is); metrics go to any MetricsCollector implementation:
//
//	opt, err := chunkmerge.NewOptimizer(&cfg, graph,
//	    chunkmerge.WithLogger(zap.NewExample().Sugar()),
//	    chunkmerge.WithMetrics(myCollector),
//	    chunkmerge.WithHooks(&chunkmerge.Hooks{
//	        OnMerge: func(c chunkmerge.Candidate) error {
//	            log.Printf("merged %s", c)
//	            return nil
//	        },
//	    }),
//	)
//
// Set Config.CacheSizes when the graph's size model is expensive: sizes of
// chunks untouched by a merge are then reused across passes.
//
// # Errors
//
// Size query and integration failures abort the run. The returned error wraps
// both a sentinel from this package (ErrSizeQuery, ErrInvalidSize,
// ErrIntegrationFailed) and the collaborator's own error, so errors.Is works
// for either.
package chunkmerge
