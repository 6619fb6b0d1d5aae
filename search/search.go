package search

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/chunkmerge/types"
)

// DefaultMinSizeReduce is the improvement ratio a pair must reach to be merged
// when no threshold is configured.
const DefaultMinSizeReduce = 1.5

// Stats describes a single search pass.
type Stats struct {
	// Eligible is the number of non-initial chunks considered.
	Eligible int

	// Candidates is the number of scored pairs (Eligible*(Eligible-1)/2).
	Candidates int

	// Best is the highest improvement found, 0 when there were no candidates.
	Best float64
}

// Searcher finds the best merge candidate subject to a minimum improvement.
type Searcher struct {
	minSizeReduce float64
}

// New creates a searcher with the given minimum improvement threshold.
//
// Parameters:
//   - minSizeReduce: Minimum improvement ratio; non-positive values fall back
//     to DefaultMinSizeReduce
//
// Returns:
//   - *Searcher: Initialized searcher
func New(minSizeReduce float64) *Searcher {
	if minSizeReduce <= 0 {
		minSizeReduce = DefaultMinSizeReduce
	}

	return &Searcher{minSizeReduce: minSizeReduce}
}

// MinSizeReduce returns the configured threshold.
func (s *Searcher) MinSizeReduce() float64 {
	return s.minSizeReduce
}

// Find runs one search pass over the given chunks.
//
// Parameters:
//   - chunks: Snapshot of the current chunk collection
//   - model: Size model used to score pairs
//
// Returns:
//   - types.Candidate: Winning candidate (zero value when none)
//   - bool: true when a candidate clears the threshold
//   - Stats: Pass statistics, populated even when no candidate qualifies
//   - error: Size query failure (wraps types.ErrSizeQuery or types.ErrInvalidSize)
func (s *Searcher) Find(chunks []types.Chunk, model types.SizeModel) (types.Candidate, bool, Stats, error) {
	eligible := Eligible(chunks)
	stats := Stats{Eligible: len(eligible)}

	candidates, err := Enumerate(eligible, model)
	if err != nil {
		return types.Candidate{}, false, stats, err
	}
	stats.Candidates = len(candidates)

	best, ok := Best(candidates)
	if !ok {
		return types.Candidate{}, false, stats, nil
	}
	stats.Best = best.Improvement

	if best.Improvement < s.minSizeReduce {
		return types.Candidate{}, false, stats, nil
	}

	return best, true, stats, nil
}

// Find is a convenience wrapper around New(minSizeReduce).Find.
//
// Returns:
//   - types.Candidate: Winning candidate (zero value when none)
//   - bool: true when a candidate clears the threshold
//   - error: Size query failure
func Find(chunks []types.Chunk, model types.SizeModel, minSizeReduce float64) (types.Candidate, bool, error) {
	c, ok, _, err := New(minSizeReduce).Find(chunks, model)

	return c, ok, err
}

// Eligible returns the chunks that may take part in a merge, preserving order.
//
// Initial chunks are excluded so that entry points keep loading separately.
func Eligible(chunks []types.Chunk) []types.Chunk {
	eligible := make([]types.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c == nil || c.CanBeInitial() {
			continue
		}
		eligible = append(eligible, c)
	}

	return eligible
}

// Enumerate scores every unordered pair of eligible chunks.
//
// Initial chunks in the input are skipped. Each chunk's standalone size is
// queried once per call; the union size is queried once per pair. The first
// failing query aborts the enumeration and no candidates are returned.
//
// Parameters:
//   - chunks: Chunks to pair up
//   - model: Size model used to score pairs
//
// Returns:
//   - []types.Candidate: One candidate per unordered pair, in enumeration order
//   - error: Size query failure
func Enumerate(chunks []types.Chunk, model types.SizeModel) ([]types.Candidate, error) {
	eligible := Eligible(chunks)
	if len(eligible) < 2 {
		return nil, nil
	}

	sizes := make([]float64, len(eligible))
	for i, c := range eligible {
		size, err := model.Size(c, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %q: %w", types.ErrSizeQuery, c.Name(), err)
		}
		if size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
			return nil, fmt.Errorf("%w: chunk %q has size %v", types.ErrInvalidSize, c.Name(), size)
		}
		sizes[i] = size
	}

	candidates := make([]types.Candidate, 0, len(eligible)*(len(eligible)-1)/2)
	for i, absorbed := range eligible {
		for j, keep := range eligible[:i] {
			union, err := model.IntegratedSize(keep, absorbed, 0)
			if err != nil {
				return nil, fmt.Errorf("%w: chunks %q and %q: %w",
					types.ErrSizeQuery, keep.Name(), absorbed.Name(), err)
			}
			if union <= 0 || math.IsNaN(union) || math.IsInf(union, 0) {
				return nil, fmt.Errorf("%w: merged size of %q and %q is %v",
					types.ErrInvalidSize, keep.Name(), absorbed.Name(), union)
			}

			candidates = append(candidates, types.Candidate{
				Keep:        keep,
				Absorbed:    absorbed,
				Improvement: (sizes[j] + sizes[i]) / union,
			})
		}
	}

	return candidates, nil
}

// Best sorts candidates by improvement, highest first, and returns the first.
//
// The sort is stable, so exact ties keep their enumeration order. The slice is
// sorted in place.
//
// Returns:
//   - types.Candidate: Candidate with the maximum improvement
//   - bool: false when candidates is empty
func Best(candidates []types.Candidate) (types.Candidate, bool) {
	if len(candidates) == 0 {
		return types.Candidate{}, false
	}

	slices.SortStableFunc(candidates, func(a, b types.Candidate) int {
		return cmp.Compare(b.Improvement, a.Improvement)
	})

	return candidates[0], true
}
