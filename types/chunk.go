package types

// Chunk is an opaque unit of bundler output.
//
// Chunks are identified by reference, never by value. Implementations must be
// pointer types (or otherwise comparable by identity) so that a Chunk can be
// used as a map key and compared with ==.
//
// Chunks are owned by the ChunkGraph. The optimizer only holds references to
// them for the duration of a single pass.
type Chunk interface {
	// CanBeInitial reports whether the chunk is reachable from an application
	// entry point. Such chunks are never merge candidates.
	CanBeInitial() bool

	// Name returns a human-readable label used in logs and errors.
	// It carries no identity semantics.
	Name() string
}
