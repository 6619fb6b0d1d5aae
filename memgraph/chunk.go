package memgraph

import (
	"maps"
	"slices"

	"github.com/arloliu/chunkmerge/internal/hash"
	"github.com/arloliu/chunkmerge/types"
)

// Chunk is a group of modules emitted together.
type Chunk struct {
	name    string
	initial bool
	modules map[string]struct{}
}

var _ types.Chunk = (*Chunk)(nil)

// CanBeInitial reports whether the chunk is loaded from an entry point.
func (c *Chunk) CanBeInitial() bool {
	return c.initial
}

// Name returns the chunk name.
func (c *Chunk) Name() string {
	return c.name
}

// Modules returns the IDs of the modules owned by the chunk, sorted.
func (c *Chunk) Modules() []string {
	ids := make([]string, 0, len(c.modules))
	for id := range c.modules {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Has reports whether the chunk owns the module.
func (c *Chunk) Has(moduleID string) bool {
	_, ok := c.modules[moduleID]
	return ok
}

// Len returns the number of modules in the chunk.
func (c *Chunk) Len() int {
	return len(c.modules)
}

// Hash returns a content hash over the chunk's module IDs.
//
// Two chunks owning the same modules share a hash regardless of their names.
func (c *Chunk) Hash() string {
	return hash.Hex(hash.SortedKeys(slices.Collect(maps.Keys(c.modules)), 0))
}

// Output returns the emitted file name: "<name>-<hash>.js".
func (c *Chunk) Output() string {
	name := c.name
	if name == "" {
		name = "chunk"
	}

	return name + "-" + c.Hash() + ".js"
}
