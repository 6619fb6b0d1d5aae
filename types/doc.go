// Package types provides core type definitions and interfaces for the chunkmerge library.
//
// This package contains shared types that are used across multiple packages in the
// chunkmerge library. By keeping these types in a separate package, we avoid import cycles
// between the main chunkmerge package and its internal implementations.
//
// Key types:
//   - Chunk: Opaque unit of bundler output, compared by identity
//   - ChunkGraph: External chunk graph consumed by the optimizer
//   - Candidate: Scored merge pair produced during one search pass
//   - LoopState: Optimization loop state
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
