package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/chunkmerge/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are created and registered lazily on first use so that constructing
// a collector never panics on duplicate registration.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	passes          prometheus.Counter
	passDuration    prometheus.Histogram
	eligibleChunks  prometheus.Gauge
	candidatePairs  prometheus.Gauge
	bestImprovement prometheus.Gauge
	merges          prometheus.Counter
	mergeImprove    prometheus.Histogram
	transitions     *prometheus.CounterVec
	runs            *prometheus.CounterVec
	chunkCount      prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "chunkmerge" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "chunkmerge"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.passes = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "search",
			Name:      "passes_total",
			Help:      "Total candidate search passes.",
		})
		p.passDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "search",
			Name:      "pass_duration_seconds",
			Help:      "Duration of candidate search passes in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs .. ~1.6s
		})
		p.eligibleChunks = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "search",
			Name:      "eligible_chunks",
			Help:      "Number of merge-eligible chunks seen by the last pass.",
		})
		p.candidatePairs = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "search",
			Name:      "candidate_pairs",
			Help:      "Number of candidate pairs scored by the last pass.",
		})
		p.bestImprovement = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "search",
			Name:      "best_improvement_ratio",
			Help:      "Best improvement ratio found by the last pass.",
		})

		p.merges = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "loop",
			Name:      "merges_total",
			Help:      "Total chunk merges performed.",
		})
		p.mergeImprove = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "loop",
			Name:      "merge_improvement_ratio",
			Help:      "Improvement ratios of performed merges.",
			Buckets:   []float64{1, 1.25, 1.5, 1.75, 2, 3, 5, 10},
		})
		p.transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "loop",
			Name:      "state_transitions_total",
			Help:      "Total loop state transitions by source and target state.",
		}, []string{"from", "to"})
		p.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "loop",
			Name:      "runs_total",
			Help:      "Total optimization runs by outcome (success, failure).",
		}, []string{"result"})
		p.chunkCount = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "loop",
			Name:      "chunks",
			Help:      "Current number of chunks in the working collection.",
		})

		p.reg.MustRegister(p.passes)
		p.reg.MustRegister(p.passDuration)
		p.reg.MustRegister(p.eligibleChunks)
		p.reg.MustRegister(p.candidatePairs)
		p.reg.MustRegister(p.bestImprovement)
		p.reg.MustRegister(p.merges)
		p.reg.MustRegister(p.mergeImprove)
		p.reg.MustRegister(p.transitions)
		p.reg.MustRegister(p.runs)
		p.reg.MustRegister(p.chunkCount)
	})
}

// SearchMetrics implementation

// RecordPass counts a search pass and records its size and duration.
func (p *PrometheusCollector) RecordPass(eligible, candidates int, duration float64) {
	p.ensureRegistered()
	p.passes.Inc()
	p.passDuration.Observe(duration)
	p.eligibleChunks.Set(float64(eligible))
	p.candidatePairs.Set(float64(candidates))
}

// RecordBestImprovement sets the best improvement gauge.
func (p *PrometheusCollector) RecordBestImprovement(improvement float64) {
	p.ensureRegistered()
	p.bestImprovement.Set(improvement)
}

// LoopMetrics implementation

// RecordStateTransition increments the transition counter.
func (p *PrometheusCollector) RecordStateTransition(from, to types.LoopState) {
	p.ensureRegistered()
	p.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

// RecordMerge counts a merge and observes its improvement.
func (p *PrometheusCollector) RecordMerge(improvement float64) {
	p.ensureRegistered()
	p.merges.Inc()
	p.mergeImprove.Observe(improvement)
}

// RecordRunResult counts a completed run by outcome.
func (p *PrometheusCollector) RecordRunResult(_ /* merges */ int, success bool) {
	p.ensureRegistered()
	p.runs.WithLabelValues(result(success)).Inc()
}

// RecordChunkCount sets the chunk count gauge.
func (p *PrometheusCollector) RecordChunkCount(count int) {
	p.ensureRegistered()
	p.chunkCount.Set(float64(count))
}

func result(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}
