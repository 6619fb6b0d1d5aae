package types

import "fmt"

// Candidate is a scored merge pair produced during a single search pass.
//
// Candidates are transient: they are discarded after selection and must never
// be reused once the graph has been mutated.
type Candidate struct {
	// Keep is the chunk that survives the merge.
	Keep Chunk

	// Absorbed is the chunk whose modules are moved into Keep and which is
	// then removed from the graph.
	Absorbed Chunk

	// Improvement is (size(Keep) + size(Absorbed)) / size(Keep ∪ Absorbed),
	// all sizes excluding per-chunk overhead. Values above 1 mean the merge
	// removes redundancy.
	Improvement float64
}

// String returns a compact description of the candidate for logs.
func (c Candidate) String() string {
	return fmt.Sprintf("%s<-%s (%.4f)", chunkName(c.Keep), chunkName(c.Absorbed), c.Improvement)
}

func chunkName(c Chunk) string {
	if c == nil {
		return "<nil>"
	}

	return c.Name()
}
