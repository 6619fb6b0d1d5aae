package chunkmerge

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/chunkmerge/internal/hooks"
	"github.com/arloliu/chunkmerge/internal/logger"
	"github.com/arloliu/chunkmerge/internal/metrics"
	"github.com/arloliu/chunkmerge/search"
	"github.com/arloliu/chunkmerge/sizecache"
)

// MergeRecord describes a merge performed by the optimizer.
//
// Records hold chunk names rather than chunk references so that a Result never
// keeps chunks alive after the run.
type MergeRecord struct {
	Keep        string
	Absorbed    string
	Improvement float64
}

// Result summarizes a Run.
type Result struct {
	// Passes is the number of candidate searches performed.
	Passes int

	// Merges lists performed merges in order.
	Merges []MergeRecord

	// InitialChunks and FinalChunks are the chunk counts before and after the run.
	InitialChunks int
	FinalChunks   int

	// Truncated is true when the run stopped at Config.MaxMerges while a
	// qualifying candidate was still left.
	Truncated bool
}

// Merged reports whether at least one merge was performed.
func (r Result) Merged() bool {
	return len(r.Merges) > 0
}

// Optimizer greedily merges the pair of non-initial chunks with the best
// improvement ratio until no pair reaches Config.MinSizeReduce.
//
// The loop is a state machine:
//
//	Scanning → Merging → Scanning → ... → Done
//
// Each Scanning pass reads a fresh snapshot of the graph's chunks, so no
// candidate computed before a merge is ever reused. Each Merging transition
// removes exactly one chunk, which bounds a run to n-1 merges.
//
// An Optimizer is not safe for concurrent use.
type Optimizer struct {
	cfg      Config
	graph    ChunkGraph
	cache    *sizecache.Graph
	searcher *search.Searcher

	hooks   Hooks
	metrics MetricsCollector
	logger  Logger

	state LoopState
	// chunkLimit is the chunk count the next snapshot must stay below; 0 when
	// no merge is pending verification.
	chunkLimit int
}

// NewOptimizer creates an optimizer for the given chunk graph.
//
// Parameters:
//   - cfg: Configuration (missing values are filled with defaults; cfg itself is modified)
//   - graph: Chunk graph to optimize
//   - opts: Optional dependencies (logger, metrics, hooks)
//
// Returns:
//   - *Optimizer: Optimizer in the Scanning state
//   - error: ErrInvalidConfig or ErrGraphRequired
//
// Example:
//
//	cfg := chunkmerge.DefaultConfig()
//	opt, err := chunkmerge.NewOptimizer(&cfg, graph)
//	if err != nil { /* handle */ }
//	result, err := opt.Run(ctx)
func NewOptimizer(cfg *Config, graph ChunkGraph, opts ...Option) (*Optimizer, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if graph == nil {
		return nil, ErrGraphRequired
	}

	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &optimizerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	o := &Optimizer{
		cfg:      *cfg,
		graph:    graph,
		searcher: search.New(cfg.MinSizeReduce),
		hooks:    hooks.Fill(options.hooks),
		metrics:  metricsCollector,
		logger:   loggerInstance,
		state:    StateScanning,
	}

	if cfg.CacheSizes {
		o.cache = sizecache.Wrap(graph)
		o.graph = o.cache
	}

	return o, nil
}

// State returns the current loop state.
func (o *Optimizer) State() LoopState {
	return o.state
}

// Step runs one pass: a candidate search and, if a candidate qualifies, one merge.
//
// This is the single-shot host contract: true means a merge happened and the
// host should call Step again, false means the graph is at a fixpoint.
//
// Returns:
//   - bool: true when a merge was performed
//   - error: Size query or integration failure (the optimizer is then Done)
func (o *Optimizer) Step() (bool, error) {
	o.begin()

	_, merged, err := o.pass()

	return merged, err
}

// Run merges chunks until no pair qualifies.
//
// The context is checked between passes only; a pass itself never blocks.
// Stopping between passes always leaves the graph in a consistent state.
//
// Parameters:
//   - ctx: Context for cancellation between passes
//
// Returns:
//   - Result: Summary of the run, populated even on error
//   - error: Context error, size query failure or integration failure
func (o *Optimizer) Run(ctx context.Context) (Result, error) {
	o.begin()

	res := Result{InitialChunks: len(o.graph.Chunks())}
	err := o.loop(ctx, &res)

	res.FinalChunks = len(o.graph.Chunks())
	o.metrics.RecordChunkCount(res.FinalChunks)
	o.metrics.RecordRunResult(len(res.Merges), err == nil)

	if err != nil {
		o.logger.Error("chunk optimization aborted",
			"error", err,
			"passes", res.Passes,
			"merges", len(res.Merges),
		)

		return res, err
	}

	o.logger.Info("chunk optimization finished",
		"passes", res.Passes,
		"merges", len(res.Merges),
		"chunksBefore", res.InitialChunks,
		"chunksAfter", res.FinalChunks,
		"truncated", res.Truncated,
	)

	return res, nil
}

func (o *Optimizer) loop(ctx context.Context, res *Result) error {
	for {
		if err := ctx.Err(); err != nil {
			o.transition(StateDone)
			return err
		}

		if o.cfg.MaxMerges > 0 && len(res.Merges) >= o.cfg.MaxMerges {
			// Only report truncation when the cap actually left a merge undone.
			_, ok, _, err := o.scan()
			res.Passes++
			o.transition(StateDone)
			if err != nil {
				return err
			}
			res.Truncated = ok

			return nil
		}

		rec, merged, err := o.pass()
		res.Passes++
		if err != nil {
			return err
		}
		if !merged {
			return nil
		}
		res.Merges = append(res.Merges, rec)
	}
}

// begin starts a new invocation. Done is terminal only for the invocation
// that reached it. The shrink check only spans passes of one invocation since
// the host may add chunks between calls.
func (o *Optimizer) begin() {
	if o.state == StateDone {
		o.state = StateScanning
	}
	o.chunkLimit = 0

	if o.cache != nil {
		// The graph may have changed since the last call without going through the cache.
		o.cache.Reset()
	}
}

// pass performs Scanning and, when a candidate qualifies, Merging. It leaves
// the optimizer in Scanning after a merge and in Done otherwise.
func (o *Optimizer) pass() (MergeRecord, bool, error) {
	o.transition(StateScanning)

	best, ok, count, err := o.scan()
	if err != nil || !ok {
		o.transition(StateDone)
		return MergeRecord{}, false, err
	}

	o.transition(StateMerging)

	if err := o.integrate(best); err != nil {
		o.transition(StateDone)
		return MergeRecord{}, false, err
	}
	o.chunkLimit = count

	rec := MergeRecord{
		Keep:        best.Keep.Name(),
		Absorbed:    best.Absorbed.Name(),
		Improvement: best.Improvement,
	}
	o.transition(StateScanning)

	return rec, true, nil
}

// scan runs one candidate search over a fresh snapshot of the graph and
// returns the winner together with the snapshot's chunk count.
func (o *Optimizer) scan() (Candidate, bool, int, error) {
	snapshot := o.graph.Chunks()
	if o.chunkLimit > 0 && len(snapshot) >= o.chunkLimit {
		return Candidate{}, false, len(snapshot), fmt.Errorf("%w: %d chunks before merge, %d after",
			ErrGraphNotShrinking, o.chunkLimit, len(snapshot))
	}
	o.chunkLimit = 0

	start := time.Now()
	best, ok, stats, err := o.searcher.Find(snapshot, o.graph)
	o.metrics.RecordPass(stats.Eligible, stats.Candidates, time.Since(start).Seconds())
	o.metrics.RecordChunkCount(len(snapshot))
	if err != nil {
		return Candidate{}, false, len(snapshot), err
	}
	if stats.Candidates > 0 {
		o.metrics.RecordBestImprovement(stats.Best)
	}

	o.logger.Debug("candidate search complete",
		"chunks", len(snapshot),
		"eligible", stats.Eligible,
		"candidates", stats.Candidates,
		"best", stats.Best,
		"minSizeReduce", o.searcher.MinSizeReduce(),
		"qualified", ok,
	)

	return best, ok, len(snapshot), nil
}

// integrate merges the candidate into the graph: absorbed's modules move into
// keep, then absorbed is removed from the collection. Failures are returned
// without retry and without trying another candidate.
func (o *Optimizer) integrate(c Candidate) error {
	if err := o.graph.Integrate(c.Keep, c.Absorbed); err != nil {
		return fmt.Errorf("%w: merging %q into %q: %w",
			ErrIntegrationFailed, c.Absorbed.Name(), c.Keep.Name(), err)
	}

	if err := o.graph.RemoveChunk(c.Absorbed); err != nil {
		return fmt.Errorf("%w: removing %q: %w", ErrIntegrationFailed, c.Absorbed.Name(), err)
	}

	o.metrics.RecordMerge(c.Improvement)
	o.logger.Info("merged chunks",
		"keep", c.Keep.Name(),
		"absorbed", c.Absorbed.Name(),
		"improvement", c.Improvement,
	)

	if err := o.hooks.OnMerge(c); err != nil {
		o.logger.Warn("merge hook failed", "error", err)
	}

	return nil
}

func (o *Optimizer) transition(to LoopState) {
	from := o.state
	if from == to {
		return
	}
	o.state = to

	o.metrics.RecordStateTransition(from, to)
	if err := o.hooks.OnStateChanged(from, to); err != nil {
		o.logger.Warn("state hook failed", "from", from, "to", to, "error", err)
	}
}
