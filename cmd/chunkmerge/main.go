// chunkmerge loads a chunk graph from YAML, merges redundant async chunks
// and prints what it merged.
//
// Usage:
//
//	chunkmerge --graph graph.yaml [--config chunkmerge.yaml] [flags]
//
// The graph format is described in the memgraph package. Flags override
// values from the config file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/arloliu/chunkmerge"
	"github.com/arloliu/chunkmerge/internal/logging"
	"github.com/arloliu/chunkmerge/internal/metrics"
	"github.com/arloliu/chunkmerge/memgraph"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	graphPath     string
	configPath    string
	minSizeReduce float64
	maxMerges     int
	cacheSizes    bool
	logLevel      string
	outputPath    string
	overhead      float64
	showMetrics   bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("chunkmerge", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.graphPath, "graph", "g", "", "path to the chunk graph YAML file (required)")
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to the optimizer config YAML file")
	flagSet.Float64Var(&opts.minSizeReduce, "min-size-reduce", chunkmerge.DefaultConfig().MinSizeReduce,
		"minimum improvement ratio for a merge")
	flagSet.IntVar(&opts.maxMerges, "max-merges", 0, "maximum number of merges, 0 for unlimited")
	flagSet.BoolVar(&opts.cacheSizes, "cache-sizes", false, "memoize size queries between passes")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flagSet.StringVarP(&opts.outputPath, "output", "o", "", "write the optimized graph as YAML to this file, - for stdout")
	flagSet.Float64Var(&opts.overhead, "overhead", 0, "per-chunk overhead used in the size report")
	flagSet.BoolVar(&opts.showMetrics, "metrics", false, "print a metrics summary")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	if opts.graphPath == "" {
		return errors.New("--graph is required")
	}

	cfg, err := loadConfig(flagSet, &opts)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}

	graph, err := memgraph.LoadFile(opts.graphPath)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	sizeBefore := graph.TotalSize(opts.overhead)

	reg := prometheus.NewRegistry()
	opt, err := chunkmerge.NewOptimizer(cfg, graph,
		chunkmerge.WithLogger(logging.NewText(stderr, level)),
		chunkmerge.WithMetrics(metrics.NewPrometheus(reg, "chunkmerge")),
	)
	if err != nil {
		return err
	}

	result, err := opt.Run(ctx)
	if err != nil {
		return err
	}

	printResult(stdout, graph, result, sizeBefore, opts.overhead)

	if opts.showMetrics {
		if err := printMetrics(stdout, reg); err != nil {
			return err
		}
	}

	return writeGraph(stdout, graph, opts.outputPath)
}

// loadConfig reads the config file, if any, and applies flags the user set
// explicitly on top of it.
func loadConfig(flagSet *pflag.FlagSet, opts *options) (*chunkmerge.Config, error) {
	cfg := chunkmerge.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := chunkmerge.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if flagSet.Changed("min-size-reduce") {
		cfg.MinSizeReduce = opts.minSizeReduce
	}
	if flagSet.Changed("max-merges") {
		cfg.MaxMerges = opts.maxMerges
	}
	if flagSet.Changed("cache-sizes") {
		cfg.CacheSizes = opts.cacheSizes
	}

	return &cfg, nil
}

func printResult(w io.Writer, graph *memgraph.Graph, result chunkmerge.Result, sizeBefore, overhead float64) {
	fmt.Fprintf(w, "passes: %d, merges: %d, chunks: %d -> %d\n",
		result.Passes, len(result.Merges), result.InitialChunks, result.FinalChunks)
	if result.Truncated {
		fmt.Fprintln(w, "stopped at max merges")
	}

	for _, m := range result.Merges {
		fmt.Fprintf(w, "  merged %s into %s (%.4f)\n", m.Absorbed, m.Keep, m.Improvement)
	}

	fmt.Fprintln(w, "chunks:")
	for _, c := range graph.Chunks() {
		chunk := c.(*memgraph.Chunk)
		size, err := graph.Size(chunk, overhead)
		if err != nil {
			continue
		}

		kind := "async"
		if chunk.CanBeInitial() {
			kind = "initial"
		}
		fmt.Fprintf(w, "  %-40s %-8s %6d modules %12.0f bytes\n", chunk.Output(), kind, chunk.Len(), size)
	}

	fmt.Fprintf(w, "total size: %.0f -> %.0f bytes\n", sizeBefore, graph.TotalSize(overhead))
}

// printMetrics writes every counter and gauge sample in the registry.
func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	fmt.Fprintln(w, "metrics:")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}

			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			fmt.Fprintf(w, "  %s%s %g\n", mf.GetName(), labels, value)
		}
	}

	return nil
}

func writeGraph(stdout io.Writer, graph *memgraph.Graph, path string) error {
	switch path {
	case "":
		return nil
	case "-":
		return graph.Dump(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := graph.Dump(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
