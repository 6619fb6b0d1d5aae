package types

// SizeModel estimates the output byte size of chunks.
//
// Sizes are expressed in bytes as float64 to allow fractional overhead factors.
// The overhead parameter is the fixed per-chunk cost added on top of module
// content; the merge heuristic always passes 0.
//
// Implementations may cache results, but must return results consistent with
// the current state of the graph after every mutation.
type SizeModel interface {
	// Size returns the estimated output size of a single chunk.
	//
	// Parameters:
	//   - chunk: Chunk to measure
	//   - overhead: Fixed per-chunk overhead to include
	//
	// Returns:
	//   - float64: Estimated size in bytes
	//   - error: Non-nil when the size cannot be computed
	Size(chunk Chunk, overhead float64) (float64, error)

	// IntegratedSize returns the estimated output size of the hypothetical
	// union of two chunks. Modules shared by both chunks are counted once.
	//
	// Parameters:
	//   - a, b: Chunks to combine
	//   - overhead: Fixed per-chunk overhead to include (once, for the union)
	//
	// Returns:
	//   - float64: Estimated size in bytes of the merged chunk
	//   - error: Non-nil when the size cannot be computed
	IntegratedSize(a, b Chunk, overhead float64) (float64, error)
}

// ChunkGraph is the external chunk graph mutated by the optimizer.
//
// The graph owns every Chunk and the working chunk collection. The optimizer
// reads Chunks at the start of every pass and applies exactly one
// Integrate/RemoveChunk pair per merge.
//
// Implementations are not required to be safe for concurrent use; the
// optimizer runs single-threaded.
type ChunkGraph interface {
	SizeModel

	// Chunks returns the current chunk collection in a stable order.
	// The returned slice must not be retained by the implementation after
	// the call; callers may keep it as a snapshot.
	Chunks() []Chunk

	// Integrate transfers all module ownership of absorbed into keep.
	//
	// Returns:
	//   - error: Non-nil when the graph rejects the merge
	Integrate(keep, absorbed Chunk) error

	// RemoveChunk removes a chunk from the working collection.
	//
	// Returns:
	//   - error: Non-nil when the chunk is not part of the collection
	RemoveChunk(chunk Chunk) error
}
