package types

import "errors"

// Sentinel errors for the chunkmerge library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// Collaborator errors are never replaced: components wrap them together with
// one of these sentinels using fmt.Errorf("%w: ...: %w", sentinel, err), so
// both remain matchable.

// Optimizer errors - Public API errors returned by the Optimizer.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrGraphRequired is returned when the chunk graph is nil.
	ErrGraphRequired = errors.New("chunk graph is required")

	// ErrGraphNotShrinking is returned when the chunk collection did not get
	// smaller after a merge, which would break loop termination.
	ErrGraphNotShrinking = errors.New("chunk count did not decrease after merge")
)

// Search errors - Candidate enumeration and scoring errors.
var (
	// ErrSizeQuery is returned when the size model fails to compute a size.
	ErrSizeQuery = errors.New("size query failed")

	// ErrInvalidSize is returned when the size model reports a merged size
	// that cannot be used as a divisor (zero, negative, NaN or infinite).
	ErrInvalidSize = errors.New("invalid chunk size")
)

// Integration errors - Graph mutation errors.
var (
	// ErrIntegrationFailed is returned when the chunk graph rejects a merge
	// or fails to remove the absorbed chunk.
	ErrIntegrationFailed = errors.New("chunk integration failed")

	// ErrUnknownChunk is returned by graph implementations when a chunk is not
	// part of the working collection.
	ErrUnknownChunk = errors.New("unknown chunk")

	// ErrSelfIntegrate is returned by graph implementations when asked to
	// merge a chunk into itself.
	ErrSelfIntegrate = errors.New("cannot integrate chunk into itself")
)
