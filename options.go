package chunkmerge

// Option configures an Optimizer with optional dependencies.
type Option func(*optimizerOptions)

// optimizerOptions holds optional Optimizer configuration.
type optimizerOptions struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
}

// WithHooks sets optimizer event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewOptimizer
//
// Example:
//
//	hooks := &chunkmerge.Hooks{
//	    OnMerge: func(c chunkmerge.Candidate) error {
//	        log.Printf("merged %s", c)
//	        return nil
//	    },
//	}
//	opt, err := chunkmerge.NewOptimizer(&cfg, graph, chunkmerge.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *optimizerOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewOptimizer
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *optimizerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewOptimizer
//
// Example:
//
//	logger := zap.NewExample().Sugar()
//	opt, err := chunkmerge.NewOptimizer(&cfg, graph, chunkmerge.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *optimizerOptions) {
		o.logger = logger
	}
}
