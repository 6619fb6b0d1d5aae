// Package sizecache memoizes chunk size queries.
//
// A search pass asks for the size of every eligible chunk and for the union
// size of every pair. After a merge only entries involving the two merged
// chunks change, so wrapping a graph whose size model is expensive with
// sizecache.Wrap lets every following pass reuse the remaining answers.
//
// Entries touching a chunk are dropped whenever that chunk is integrated or
// removed through the wrapper. Mutations made to the underlying graph directly
// are invisible to the cache; call Reset after them.
package sizecache

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/chunkmerge/types"
)

type sizeKey struct {
	chunk    types.Chunk
	overhead float64
}

type unionKey struct {
	a, b     types.Chunk
	overhead float64
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   uint64
	Misses uint64
	// Entries is the number of cached values.
	Entries int
}

// Graph is a types.ChunkGraph decorator that caches Size and IntegratedSize.
//
// Graph is safe for concurrent size queries; mutations follow the
// concurrency rules of the wrapped graph.
type Graph struct {
	inner  types.ChunkGraph
	sizes  *xsync.Map[sizeKey, float64]
	unions *xsync.Map[unionKey, float64]
	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ types.ChunkGraph = (*Graph)(nil)

// Wrap returns a caching view of inner.
//
// Parameters:
//   - inner: Graph whose size queries are cached
//
// Returns:
//   - *Graph: Caching decorator
func Wrap(inner types.ChunkGraph) *Graph {
	return &Graph{
		inner:  inner,
		sizes:  xsync.NewMap[sizeKey, float64](),
		unions: xsync.NewMap[unionKey, float64](),
	}
}

// Unwrap returns the wrapped graph.
func (g *Graph) Unwrap() types.ChunkGraph {
	return g.inner
}

// Chunks delegates to the wrapped graph.
func (g *Graph) Chunks() []types.Chunk {
	return g.inner.Chunks()
}

// Size returns the cached size of chunk, querying the wrapped graph on a miss.
// Errors are never cached.
func (g *Graph) Size(chunk types.Chunk, overhead float64) (float64, error) {
	key := sizeKey{chunk: chunk, overhead: overhead}
	if v, ok := g.sizes.Load(key); ok {
		g.hits.Add(1)
		return v, nil
	}

	g.misses.Add(1)
	v, err := g.inner.Size(chunk, overhead)
	if err != nil {
		return 0, err
	}
	g.sizes.Store(key, v)

	return v, nil
}

// IntegratedSize returns the cached union size, querying the wrapped graph on a miss.
// Errors are never cached.
func (g *Graph) IntegratedSize(a, b types.Chunk, overhead float64) (float64, error) {
	key := unionKey{a: a, b: b, overhead: overhead}
	if v, ok := g.unions.Load(key); ok {
		g.hits.Add(1)
		return v, nil
	}

	g.misses.Add(1)
	v, err := g.inner.IntegratedSize(a, b, overhead)
	if err != nil {
		return 0, err
	}
	g.unions.Store(key, v)

	return v, nil
}

// Integrate delegates to the wrapped graph and drops every entry involving
// keep or absorbed, whether or not the merge succeeded.
func (g *Graph) Integrate(keep, absorbed types.Chunk) error {
	defer g.invalidate(keep, absorbed)

	return g.inner.Integrate(keep, absorbed)
}

// RemoveChunk delegates to the wrapped graph and drops every entry involving chunk.
func (g *Graph) RemoveChunk(chunk types.Chunk) error {
	defer g.invalidate(chunk)

	return g.inner.RemoveChunk(chunk)
}

// Reset drops all cached entries. Counters are kept.
func (g *Graph) Reset() {
	g.sizes.Clear()
	g.unions.Clear()
}

// Stats returns hit/miss counters and the current entry count.
func (g *Graph) Stats() Stats {
	return Stats{
		Hits:    g.hits.Load(),
		Misses:  g.misses.Load(),
		Entries: g.sizes.Size() + g.unions.Size(),
	}
}

func (g *Graph) invalidate(chunks ...types.Chunk) {
	touches := func(c types.Chunk) bool {
		for _, t := range chunks {
			if c == t {
				return true
			}
		}

		return false
	}

	g.sizes.Range(func(k sizeKey, _ float64) bool {
		if touches(k.chunk) {
			g.sizes.Delete(k)
		}

		return true
	})
	g.unions.Range(func(k unionKey, _ float64) bool {
		if touches(k.a) || touches(k.b) {
			g.unions.Delete(k)
		}

		return true
	})
}
