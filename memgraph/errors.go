package memgraph

import "errors"

var (
	// ErrUnknownModule is returned when a chunk references a module that is not registered.
	ErrUnknownModule = errors.New("unknown module")

	// ErrInvalidModuleSize is returned for negative, NaN or infinite module sizes.
	ErrInvalidModuleSize = errors.New("invalid module size")

	// ErrDuplicateChunk is returned when a chunk name is already in use.
	ErrDuplicateChunk = errors.New("duplicate chunk name")
)
