package memgraph

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/chunkmerge/types"
)

// DefaultEntryMultiplier scales the per-chunk overhead of initial chunks,
// which also carry the runtime and bootstrap code.
const DefaultEntryMultiplier = 10

// Module is a unit of code with a byte size.
type Module struct {
	ID   string
	Size float64
}

// Graph is an in-memory types.ChunkGraph.
type Graph struct {
	modules         map[string]float64
	chunks          []*Chunk
	entryMultiplier float64
}

var _ types.ChunkGraph = (*Graph)(nil)

// Option configures a Graph.
type Option func(*Graph)

// WithEntryMultiplier sets the overhead multiplier applied to initial chunks.
// Values below 1 are ignored.
func WithEntryMultiplier(m float64) Option {
	return func(g *Graph) {
		if m >= 1 {
			g.entryMultiplier = m
		}
	}
}

// New creates a graph with the given modules and no chunks.
//
// Parameters:
//   - modules: Modules to register (later duplicates overwrite earlier sizes)
//   - opts: Optional configuration
//
// Returns:
//   - *Graph: Initialized graph
//   - error: ErrInvalidModuleSize if any module size is unusable
func New(modules []Module, opts ...Option) (*Graph, error) {
	g := &Graph{
		modules:         make(map[string]float64, len(modules)),
		entryMultiplier: DefaultEntryMultiplier,
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, m := range modules {
		if err := g.AddModule(m.ID, m.Size); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// AddModule registers a module or updates its size.
func (g *Graph) AddModule(id string, size float64) error {
	if size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return fmt.Errorf("%w: module %q has size %v", ErrInvalidModuleSize, id, size)
	}
	g.modules[id] = size

	return nil
}

// AddChunk appends a chunk owning the given modules.
//
// Parameters:
//   - name: Unique chunk name (empty names are allowed and never collide)
//   - initial: Whether the chunk is loaded from an entry point
//   - moduleIDs: Registered module IDs; duplicates are ignored
//
// Returns:
//   - *Chunk: The new chunk
//   - error: ErrUnknownModule or ErrDuplicateChunk
func (g *Graph) AddChunk(name string, initial bool, moduleIDs ...string) (*Chunk, error) {
	if name != "" {
		if _, ok := g.Lookup(name); ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateChunk, name)
		}
	}

	c := &Chunk{name: name, initial: initial, modules: make(map[string]struct{}, len(moduleIDs))}
	for _, id := range moduleIDs {
		if _, ok := g.modules[id]; !ok {
			return nil, fmt.Errorf("%w: chunk %q references %q", ErrUnknownModule, name, id)
		}
		c.modules[id] = struct{}{}
	}
	g.chunks = append(g.chunks, c)

	return c, nil
}

// Lookup returns the chunk with the given name.
func (g *Graph) Lookup(name string) (*Chunk, bool) {
	for _, c := range g.chunks {
		if c.name == name {
			return c, true
		}
	}

	return nil, false
}

// Len returns the number of chunks in the graph.
func (g *Graph) Len() int {
	return len(g.chunks)
}

// Chunks returns a snapshot of the chunk collection in insertion order.
func (g *Graph) Chunks() []types.Chunk {
	out := make([]types.Chunk, len(g.chunks))
	for i, c := range g.chunks {
		out[i] = c
	}

	return out
}

// Size returns the output size of a chunk.
func (g *Graph) Size(chunk types.Chunk, overhead float64) (float64, error) {
	c, err := g.own(chunk)
	if err != nil {
		return 0, err
	}

	return overhead*g.multiplier(c.initial) + g.modulesSize(c.modules), nil
}

// IntegratedSize returns the output size of the union of two chunks.
// Shared modules are counted once.
func (g *Graph) IntegratedSize(a, b types.Chunk, overhead float64) (float64, error) {
	ca, err := g.own(a)
	if err != nil {
		return 0, err
	}
	cb, err := g.own(b)
	if err != nil {
		return 0, err
	}

	union := make(map[string]struct{}, len(ca.modules)+len(cb.modules))
	for id := range ca.modules {
		union[id] = struct{}{}
	}
	for id := range cb.modules {
		union[id] = struct{}{}
	}

	return overhead*g.multiplier(ca.initial || cb.initial) + g.modulesSize(union), nil
}

// Integrate moves every module of absorbed into keep.
//
// keep becomes initial if either chunk was initial, and inherits absorbed's
// name when it has none. absorbed is left empty but stays in the collection
// until RemoveChunk is called.
func (g *Graph) Integrate(keep, absorbed types.Chunk) error {
	ck, err := g.own(keep)
	if err != nil {
		return err
	}
	ca, err := g.own(absorbed)
	if err != nil {
		return err
	}
	if ck == ca {
		return fmt.Errorf("%w: %q", types.ErrSelfIntegrate, ck.name)
	}

	for id := range ca.modules {
		ck.modules[id] = struct{}{}
	}
	ck.initial = ck.initial || ca.initial
	if ck.name == "" {
		ck.name = ca.name
	}
	ca.modules = map[string]struct{}{}

	return nil
}

// RemoveChunk removes a chunk, preserving the order of the remaining chunks.
func (g *Graph) RemoveChunk(chunk types.Chunk) error {
	c, ok := chunk.(*Chunk)
	if !ok {
		return fmt.Errorf("%w: %T is not a memgraph chunk", types.ErrUnknownChunk, chunk)
	}
	idx := slices.Index(g.chunks, c)
	if idx < 0 {
		return fmt.Errorf("%w: %q", types.ErrUnknownChunk, c.name)
	}
	g.chunks = slices.Delete(g.chunks, idx, idx+1)

	return nil
}

// TotalSize returns the sum of all chunk sizes with the given overhead.
// Modules shared by several chunks are counted once per chunk.
func (g *Graph) TotalSize(overhead float64) float64 {
	total := 0.0
	for _, c := range g.chunks {
		total += overhead*g.multiplier(c.initial) + g.modulesSize(c.modules)
	}

	return total
}

func (g *Graph) own(chunk types.Chunk) (*Chunk, error) {
	c, ok := chunk.(*Chunk)
	if !ok || c == nil {
		return nil, fmt.Errorf("%w: %T is not a memgraph chunk", types.ErrUnknownChunk, chunk)
	}
	if !slices.Contains(g.chunks, c) {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownChunk, c.name)
	}

	return c, nil
}

func (g *Graph) multiplier(initial bool) float64 {
	if initial {
		return g.entryMultiplier
	}

	return 1
}

// modulesSize sums module sizes in ID order so repeated queries return
// bit-identical results.
func (g *Graph) modulesSize(modules map[string]struct{}) float64 {
	ids := make([]string, 0, len(modules))
	for id := range modules {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	total := 0.0
	for _, id := range ids {
		total += g.modules[id]
	}

	return total
}
