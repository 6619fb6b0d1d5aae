// Package memgraph provides an in-memory chunk graph.
//
// The graph models a bundler's output as a set of modules with byte sizes and
// a list of chunks, each owning a set of modules. Modules may be shared by
// several chunks; that duplication is what the chunk-merge optimizer removes.
//
// Sizes follow the usual bundler model:
//
//	size(c)     = overhead * m(c) + Σ size(module ∈ c)
//	size(a ∪ b) = overhead * m(a ∪ b) + Σ size(module ∈ a ∪ b)
//
// where m is EntryMultiplier for initial chunks and 1 otherwise. Shared modules
// are counted once in the union.
//
// Graphs can be built in code or loaded from YAML:
//
//	modules:
//	  react: 120000
//	  lodash: 70000
//	  app: 4000
//	chunks:
//	  - name: main
//	    initial: true
//	    modules: [app]
//	  - name: route-a
//	    modules: [react, lodash]
//
// Graph is not safe for concurrent use.
package memgraph
