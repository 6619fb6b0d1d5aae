package chunkmerge

import "github.com/arloliu/chunkmerge/types"

// Sentinel errors returned by the Optimizer. They alias the definitions in the
// types package so errors.Is works with either import.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrGraphRequired is returned when NewOptimizer receives a nil graph.
	ErrGraphRequired = types.ErrGraphRequired

	// ErrGraphNotShrinking is returned when a merge did not reduce the chunk count.
	ErrGraphNotShrinking = types.ErrGraphNotShrinking

	// ErrSizeQuery wraps size model failures.
	ErrSizeQuery = types.ErrSizeQuery

	// ErrInvalidSize is returned for unusable sizes reported by the size model.
	ErrInvalidSize = types.ErrInvalidSize

	// ErrIntegrationFailed wraps chunk graph mutation failures.
	ErrIntegrationFailed = types.ErrIntegrationFailed
)
