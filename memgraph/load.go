package memgraph

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// GraphSpec is the YAML representation of a Graph.
type GraphSpec struct {
	// Modules maps module IDs to their byte sizes.
	Modules map[string]float64 `yaml:"modules"`

	// Chunks lists chunks in graph order.
	Chunks []ChunkSpec `yaml:"chunks"`

	// EntryMultiplier overrides DefaultEntryMultiplier when non-zero.
	EntryMultiplier float64 `yaml:"entryMultiplier,omitempty"`
}

// ChunkSpec is the YAML representation of a Chunk.
type ChunkSpec struct {
	Name    string   `yaml:"name"`
	Initial bool     `yaml:"initial,omitempty"`
	Modules []string `yaml:"modules"`
}

// Build creates a Graph from the description.
//
// Returns:
//   - *Graph: Graph with modules and chunks in listed order
//   - error: ErrInvalidModuleSize, ErrUnknownModule or ErrDuplicateChunk
func (s GraphSpec) Build() (*Graph, error) {
	g, err := New(nil, WithEntryMultiplier(s.EntryMultiplier))
	if err != nil {
		return nil, err
	}

	for id, size := range s.Modules {
		if err := g.AddModule(id, size); err != nil {
			return nil, err
		}
	}

	for _, c := range s.Chunks {
		if _, err := g.AddChunk(c.Name, c.Initial, c.Modules...); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Load reads a YAML graph description.
//
// Unknown fields are rejected so that typos do not silently drop chunks.
//
// Parameters:
//   - r: Reader with the YAML document
//
// Returns:
//   - *Graph: Loaded graph
//   - error: Parse or build error
func Load(r io.Reader) (*Graph, error) {
	var spec GraphSpec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}

	return spec.Build()
}

// LoadFile reads a YAML graph description from a file.
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Spec returns the YAML representation of the graph's current state.
func (g *Graph) Spec() GraphSpec {
	spec := GraphSpec{
		Modules: make(map[string]float64, len(g.modules)),
		Chunks:  make([]ChunkSpec, 0, len(g.chunks)),
	}
	if g.entryMultiplier != DefaultEntryMultiplier {
		spec.EntryMultiplier = g.entryMultiplier
	}
	for id, size := range g.modules {
		spec.Modules[id] = size
	}
	for _, c := range g.chunks {
		spec.Chunks = append(spec.Chunks, ChunkSpec{
			Name:    c.name,
			Initial: c.initial,
			Modules: c.Modules(),
		})
	}

	return spec
}

// Dump writes the graph's current state as YAML.
func (g *Graph) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g.Spec()); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}

	return enc.Close()
}
