package chunkmerge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/chunkmerge/internal/logger"
	"github.com/arloliu/chunkmerge/internal/metrics"
	"github.com/arloliu/chunkmerge/memgraph"
)

var errCollaborator = errors.New("collaborator failed")

// faultyGraph wraps a memgraph and injects failures into selected calls.
type faultyGraph struct {
	*memgraph.Graph

	sizeErr      error
	unionErr     error
	integrateErr error
	removeErr    error
	// skipRemove makes RemoveChunk report success without removing anything.
	skipRemove bool
}

func (g *faultyGraph) Size(c Chunk, overhead float64) (float64, error) {
	if g.sizeErr != nil {
		return 0, g.sizeErr
	}

	return g.Graph.Size(c, overhead)
}

func (g *faultyGraph) IntegratedSize(a, b Chunk, overhead float64) (float64, error) {
	if g.unionErr != nil {
		return 0, g.unionErr
	}

	return g.Graph.IntegratedSize(a, b, overhead)
}

func (g *faultyGraph) Integrate(keep, absorbed Chunk) error {
	if g.integrateErr != nil {
		return g.integrateErr
	}

	return g.Graph.Integrate(keep, absorbed)
}

func (g *faultyGraph) RemoveChunk(c Chunk) error {
	if g.removeErr != nil {
		return g.removeErr
	}
	if g.skipRemove {
		return nil
	}

	return g.Graph.RemoveChunk(c)
}

// recordingMetrics keeps every call for assertions.
type recordingMetrics struct {
	metrics.NopMetrics

	passes      int
	merges      []float64
	transitions []string
	runs        []bool
	chunkCounts []int
}

func (m *recordingMetrics) RecordPass(_, _ int, _ float64) { m.passes++ }
func (m *recordingMetrics) RecordMerge(improvement float64) {
	m.merges = append(m.merges, improvement)
}

func (m *recordingMetrics) RecordStateTransition(from, to LoopState) {
	m.transitions = append(m.transitions, from.String()+"->"+to.String())
}

func (m *recordingMetrics) RecordRunResult(_ int, success bool) {
	m.runs = append(m.runs, success)
}

func (m *recordingMetrics) RecordChunkCount(count int) {
	m.chunkCounts = append(m.chunkCounts, count)
}

// pairGraph builds two async chunks of 100 bytes each that share `shared` bytes.
func pairGraph(t *testing.T, shared float64) *memgraph.Graph {
	t.Helper()

	g, err := memgraph.New([]memgraph.Module{
		{ID: "shared", Size: shared},
		{ID: "only-a", Size: 100 - shared},
		{ID: "only-b", Size: 100 - shared},
	})
	require.NoError(t, err)

	_, err = g.AddChunk("a", false, "shared", "only-a")
	require.NoError(t, err)
	_, err = g.AddChunk("b", false, "shared", "only-b")
	require.NoError(t, err)

	return g
}

// tripleGraph builds chunks a, b and c of 80 bytes each where a+b scores 2.0
// and both a+c and b+c score 1.6.
func tripleGraph(t *testing.T) *memgraph.Graph {
	t.Helper()

	g, err := memgraph.New([]memgraph.Module{
		{ID: "p", Size: 60},
		{ID: "q", Size: 20},
		{ID: "r", Size: 20},
	})
	require.NoError(t, err)

	_, err = g.AddChunk("a", false, "p", "q")
	require.NoError(t, err)
	_, err = g.AddChunk("b", false, "p", "q")
	require.NoError(t, err)
	_, err = g.AddChunk("c", false, "p", "r")
	require.NoError(t, err)

	return g
}

// identicalGraph builds n async chunks with the same single module.
func identicalGraph(t *testing.T, n int) *memgraph.Graph {
	t.Helper()

	g, err := memgraph.New([]memgraph.Module{{ID: "vendor", Size: 100}})
	require.NoError(t, err)

	for i := range n {
		_, err = g.AddChunk(fmt.Sprintf("c%d", i), false, "vendor")
		require.NoError(t, err)
	}

	return g
}

func newTestOptimizer(t *testing.T, cfg Config, graph ChunkGraph, opts ...Option) *Optimizer {
	t.Helper()

	opts = append([]Option{WithLogger(logger.NewTest(t))}, opts...)
	opt, err := NewOptimizer(&cfg, graph, opts...)
	require.NoError(t, err)

	return opt
}

func TestNewOptimizer(t *testing.T) {
	g := pairGraph(t, 80)

	t.Run("nil config", func(t *testing.T) {
		_, err := NewOptimizer(nil, g)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("nil graph", func(t *testing.T) {
		cfg := DefaultConfig()
		_, err := NewOptimizer(&cfg, nil)
		require.ErrorIs(t, err, ErrGraphRequired)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		cfg := Config{MinSizeReduce: -1}
		_, err := NewOptimizer(&cfg, g)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("defaults applied", func(t *testing.T) {
		cfg := Config{}
		opt, err := NewOptimizer(&cfg, g)
		require.NoError(t, err)
		require.InDelta(t, 1.5, cfg.MinSizeReduce, 1e-9)
		require.Equal(t, StateScanning, opt.State())
	})
}

func TestOptimizer_Run_MergesRedundantPair(t *testing.T) {
	g := pairGraph(t, 80) // 100 + 100 over 120

	opt := newTestOptimizer(t, DefaultConfig(), g)
	res, err := opt.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Merges, 1)
	require.Equal(t, "a", res.Merges[0].Keep)
	require.Equal(t, "b", res.Merges[0].Absorbed)
	require.InDelta(t, 200.0/120.0, res.Merges[0].Improvement, 1e-9)
	require.Equal(t, 2, res.Passes)
	require.Equal(t, 2, res.InitialChunks)
	require.Equal(t, 1, res.FinalChunks)
	require.False(t, res.Truncated)
	require.True(t, res.Merged())
	require.Equal(t, StateDone, opt.State())

	chunks := g.Chunks()
	require.Len(t, chunks, 1)
	size, err := g.Size(chunks[0], 0)
	require.NoError(t, err)
	require.InDelta(t, 120.0, size, 1e-9)
}

func TestOptimizer_Run_KeepsDisjointPair(t *testing.T) {
	g := pairGraph(t, 10) // 100 + 100 over 190

	opt := newTestOptimizer(t, DefaultConfig(), g)
	res, err := opt.Run(context.Background())
	require.NoError(t, err)

	require.False(t, res.Merged())
	require.Equal(t, 1, res.Passes)
	require.Equal(t, 2, g.Len())
	require.Equal(t, StateDone, opt.State())
}

func TestOptimizer_Run_RescoresAfterMerge(t *testing.T) {
	t.Run("second pair clears threshold", func(t *testing.T) {
		g := tripleGraph(t)

		opt := newTestOptimizer(t, DefaultConfig(), g)
		res, err := opt.Run(context.Background())
		require.NoError(t, err)

		require.Len(t, res.Merges, 2)
		require.InDelta(t, 2.0, res.Merges[0].Improvement, 1e-9)
		require.Equal(t, "a", res.Merges[0].Keep)
		require.Equal(t, "b", res.Merges[0].Absorbed)
		require.InDelta(t, 1.6, res.Merges[1].Improvement, 1e-9)
		require.Equal(t, "c", res.Merges[1].Absorbed)
		require.Equal(t, 1, g.Len())
	})

	t.Run("second pair below threshold", func(t *testing.T) {
		g := tripleGraph(t)

		cfg := DefaultConfig()
		cfg.MinSizeReduce = 1.7
		opt := newTestOptimizer(t, cfg, g)
		res, err := opt.Run(context.Background())
		require.NoError(t, err)

		require.Len(t, res.Merges, 1)
		require.InDelta(t, 2.0, res.Merges[0].Improvement, 1e-9)
		require.Equal(t, 2, g.Len())
	})
}

func TestOptimizer_Run_SkipsInitialChunks(t *testing.T) {
	g, err := memgraph.New([]memgraph.Module{{ID: "app", Size: 100}})
	require.NoError(t, err)
	_, err = g.AddChunk("main", true, "app")
	require.NoError(t, err)
	_, err = g.AddChunk("lazy", false, "app")
	require.NoError(t, err)

	m := &recordingMetrics{}
	opt := newTestOptimizer(t, DefaultConfig(), g, WithMetrics(m))
	res, err := opt.Run(context.Background())
	require.NoError(t, err)

	require.False(t, res.Merged())
	require.Equal(t, 1, res.Passes)
	require.Equal(t, 2, g.Len())
	require.Equal(t, []string{"Scanning->Done"}, m.transitions)
}

func TestOptimizer_Run_TerminatesWithinNMinusOneMerges(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 9} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			g := identicalGraph(t, n)

			cfg := DefaultConfig()
			cfg.MinSizeReduce = 1.0
			opt := newTestOptimizer(t, cfg, g)
			res, err := opt.Run(context.Background())
			require.NoError(t, err)

			want := max(n-1, 0)
			require.Len(t, res.Merges, want)
			require.Equal(t, want+1, res.Passes)
			require.Equal(t, n-want, g.Len())
		})
	}
}

func TestOptimizer_Run_IdempotentAtFixpoint(t *testing.T) {
	g := tripleGraph(t)

	opt := newTestOptimizer(t, DefaultConfig(), g)
	_, err := opt.Run(context.Background())
	require.NoError(t, err)
	before := g.Spec()

	res, err := opt.Run(context.Background())
	require.NoError(t, err)
	require.False(t, res.Merged())
	require.Equal(t, 1, res.Passes)
	require.Equal(t, before, g.Spec())
}

func TestOptimizer_Run_ThresholdIsInclusive(t *testing.T) {
	g := pairGraph(t, 80)

	cfg := DefaultConfig()
	cfg.MinSizeReduce = 200.0 / 120.0
	opt := newTestOptimizer(t, cfg, g)
	res, err := opt.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Merges, 1)
}

func TestOptimizer_Run_MaxMerges(t *testing.T) {
	g := identicalGraph(t, 5)

	cfg := DefaultConfig()
	cfg.MaxMerges = 2
	opt := newTestOptimizer(t, cfg, g)
	res, err := opt.Run(context.Background())
	require.NoError(t, err)

	require.True(t, res.Truncated)
	require.Len(t, res.Merges, 2)
	require.Equal(t, 3, g.Len())
	require.Equal(t, StateDone, opt.State())

	// A later run picks up where the capped one stopped and reaches the
	// fixpoint exactly at the cap.
	res, err = opt.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Merges, 2)
	require.False(t, res.Truncated)
	require.Equal(t, 1, g.Len())
}

func TestOptimizer_Run_MaxMergesAtFixpoint(t *testing.T) {
	tests := []struct {
		name      string
		maxMerges int
		truncated bool
	}{
		{name: "cap leaves a qualifying pair", maxMerges: 1, truncated: true},
		{name: "cap reached at fixpoint", maxMerges: 2, truncated: false},
		{name: "cap above merges needed", maxMerges: 3, truncated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tripleGraph(t)

			cfg := DefaultConfig()
			cfg.MaxMerges = tt.maxMerges
			opt := newTestOptimizer(t, cfg, g)
			res, err := opt.Run(context.Background())
			require.NoError(t, err)

			require.Equal(t, tt.truncated, res.Truncated)
			require.Len(t, res.Merges, min(tt.maxMerges, 2))
			require.Equal(t, StateDone, opt.State())
		})
	}
}

func TestOptimizer_Run_ContextCanceled(t *testing.T) {
	g := pairGraph(t, 80)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opt := newTestOptimizer(t, DefaultConfig(), g)
	res, err := opt.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, res.Passes)
	require.Equal(t, 2, g.Len())
	require.Equal(t, StateDone, opt.State())
}

func TestOptimizer_Run_StopsOnCancelBetweenPasses(t *testing.T) {
	g := identicalGraph(t, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hooks := &Hooks{
		OnMerge: func(Candidate) error {
			cancel()
			return nil
		},
	}

	cfg := DefaultConfig()
	opt := newTestOptimizer(t, cfg, g, WithHooks(hooks))
	res, err := opt.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, res.Merges, 1)
	require.Equal(t, 3, g.Len())
}

func TestOptimizer_Run_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*faultyGraph)
		sentinel error
	}{
		{
			name:     "size query",
			setup:    func(g *faultyGraph) { g.sizeErr = errCollaborator },
			sentinel: ErrSizeQuery,
		},
		{
			name:     "union size query",
			setup:    func(g *faultyGraph) { g.unionErr = errCollaborator },
			sentinel: ErrSizeQuery,
		},
		{
			name:     "integrate",
			setup:    func(g *faultyGraph) { g.integrateErr = errCollaborator },
			sentinel: ErrIntegrationFailed,
		},
		{
			name:     "remove",
			setup:    func(g *faultyGraph) { g.removeErr = errCollaborator },
			sentinel: ErrIntegrationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &faultyGraph{Graph: pairGraph(t, 80)}
			tt.setup(g)

			m := &recordingMetrics{}
			opt := newTestOptimizer(t, DefaultConfig(), g, WithMetrics(m))
			res, err := opt.Run(context.Background())
			require.ErrorIs(t, err, tt.sentinel)
			require.ErrorIs(t, err, errCollaborator)
			require.False(t, res.Merged())
			require.Equal(t, 1, res.Passes)
			require.Equal(t, StateDone, opt.State())
			require.Equal(t, []bool{false}, m.runs)
		})
	}
}

func TestOptimizer_Run_GraphNotShrinking(t *testing.T) {
	g := &faultyGraph{Graph: identicalGraph(t, 3), skipRemove: true}

	opt := newTestOptimizer(t, DefaultConfig(), g)
	res, err := opt.Run(context.Background())
	require.ErrorIs(t, err, ErrGraphNotShrinking)
	require.Len(t, res.Merges, 1)
	require.Equal(t, StateDone, opt.State())
}

func TestOptimizer_Step(t *testing.T) {
	g := tripleGraph(t)
	opt := newTestOptimizer(t, DefaultConfig(), g)

	merged, err := opt.Step()
	require.NoError(t, err)
	require.True(t, merged)
	require.Equal(t, StateScanning, opt.State())
	require.Equal(t, 2, g.Len())

	merged, err = opt.Step()
	require.NoError(t, err)
	require.True(t, merged)
	require.Equal(t, 1, g.Len())

	merged, err = opt.Step()
	require.NoError(t, err)
	require.False(t, merged)
	require.Equal(t, StateDone, opt.State())

	// Done ends one invocation only; the host may call again.
	merged, err = opt.Step()
	require.NoError(t, err)
	require.False(t, merged)
}

func TestOptimizer_Step_AllowsGrowthBetweenCalls(t *testing.T) {
	g := identicalGraph(t, 2)
	opt := newTestOptimizer(t, DefaultConfig(), g)

	merged, err := opt.Step()
	require.NoError(t, err)
	require.True(t, merged)

	_, err = g.AddChunk("late", false, "vendor")
	require.NoError(t, err)
	_, err = g.AddChunk("later", false, "vendor")
	require.NoError(t, err)

	merged, err = opt.Step()
	require.NoError(t, err)
	require.True(t, merged)
}

func TestOptimizer_HooksAndMetrics(t *testing.T) {
	g := pairGraph(t, 80)

	var merged []Candidate
	var states []string
	hooks := &Hooks{
		OnMerge: func(c Candidate) error {
			merged = append(merged, c)
			return errors.New("hook errors are logged only")
		},
		OnStateChanged: func(from, to LoopState) error {
			states = append(states, from.String()+"->"+to.String())
			return nil
		},
	}

	m := &recordingMetrics{}
	opt := newTestOptimizer(t, DefaultConfig(), g, WithHooks(hooks), WithMetrics(m))
	res, err := opt.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Merged())

	require.Len(t, merged, 1)
	require.Equal(t, "a", merged[0].Keep.Name())
	require.Equal(t, "b", merged[0].Absorbed.Name())

	want := []string{"Scanning->Merging", "Merging->Scanning", "Scanning->Done"}
	require.Equal(t, want, states)
	require.Equal(t, want, m.transitions)
	require.Equal(t, 2, m.passes)
	require.Len(t, m.merges, 1)
	require.Equal(t, []bool{true}, m.runs)
	require.Equal(t, []int{2, 1, 1}, m.chunkCounts)
}

func TestOptimizer_PrometheusMetrics(t *testing.T) {
	g := tripleGraph(t)

	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(reg, "test")

	opt := newTestOptimizer(t, DefaultConfig(), g, WithMetrics(collector))
	_, err := opt.Run(context.Background())
	require.NoError(t, err)

	expected := `
# HELP test_loop_merges_total Total chunk merges performed.
# TYPE test_loop_merges_total counter
test_loop_merges_total 2
# HELP test_search_passes_total Total candidate search passes.
# TYPE test_search_passes_total counter
test_search_passes_total 3
# HELP test_loop_chunks Current number of chunks in the working collection.
# TYPE test_loop_chunks gauge
test_loop_chunks 1
# HELP test_loop_runs_total Total optimization runs by outcome (success, failure).
# TYPE test_loop_runs_total counter
test_loop_runs_total{result="success"} 1
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"test_loop_merges_total", "test_search_passes_total", "test_loop_chunks", "test_loop_runs_total")
	require.NoError(t, err)
}

func TestOptimizer_CachedSizesMatchUncached(t *testing.T) {
	plain := tripleGraph(t)
	cached := tripleGraph(t)

	optPlain := newTestOptimizer(t, DefaultConfig(), plain)
	optCached := newTestOptimizer(t, TestConfig(), cached)

	resPlain, err := optPlain.Run(context.Background())
	require.NoError(t, err)
	resCached, err := optCached.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, resPlain.Merges, resCached.Merges)
	require.Equal(t, plain.Spec(), cached.Spec())
}

func TestOptimizer_Step_SeesGraphChangesWithCache(t *testing.T) {
	plain := pairGraph(t, 10)
	cached := pairGraph(t, 10)

	optPlain := newTestOptimizer(t, DefaultConfig(), plain)
	optCached := newTestOptimizer(t, TestConfig(), cached)

	for _, opt := range []*Optimizer{optPlain, optCached} {
		merged, err := opt.Step()
		require.NoError(t, err)
		require.False(t, merged, "200/190 is below the threshold")
	}

	// The host grows the shared module between calls: 2180/1180 now qualifies.
	require.NoError(t, plain.AddModule("shared", 1000))
	require.NoError(t, cached.AddModule("shared", 1000))

	mergedPlain, err := optPlain.Step()
	require.NoError(t, err)
	mergedCached, err := optCached.Step()
	require.NoError(t, err)

	require.True(t, mergedPlain)
	require.Equal(t, mergedPlain, mergedCached)
	require.Equal(t, plain.Spec(), cached.Spec())
}
