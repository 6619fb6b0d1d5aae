package chunkmerge

import "github.com/arloliu/chunkmerge/types"

// Re-export types from the types package.
//
// Internal packages depend on types rather than on the root package, which
// avoids import cycles while still letting users write chunkmerge.Chunk,
// chunkmerge.Logger and so on.
type (
	Chunk      = types.Chunk
	ChunkGraph = types.ChunkGraph
	SizeModel  = types.SizeModel
	Candidate  = types.Candidate
	LoopState  = types.LoopState
)

// Re-export interfaces from the types package for convenience.
type (
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export LoopState constants from the types package.
const (
	StateScanning = types.StateScanning
	StateMerging  = types.StateMerging
	StateDone     = types.StateDone
)
