package hooks

import "github.com/arloliu/chunkmerge/types"

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the optimizer.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(types.Candidate) error                  = (*NopHooks)(nil).OnMerge
	_ func(types.LoopState, types.LoopState) error = (*NopHooks)(nil).OnStateChanged
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnMerge:        h.OnMerge,
		OnStateChanged: h.OnStateChanged,
	}
}

// Fill returns a copy of hooks with every nil callback replaced by a no-op.
//
// Parameters:
//   - hooks: User supplied hooks (may be nil)
//
// Returns:
//   - types.Hooks: Hooks safe to call without nil checks
func Fill(hooks *types.Hooks) types.Hooks {
	nop := NewNop()
	if hooks == nil {
		return nop
	}

	filled := *hooks
	if filled.OnMerge == nil {
		filled.OnMerge = nop.OnMerge
	}
	if filled.OnStateChanged == nil {
		filled.OnStateChanged = nop.OnStateChanged
	}

	return filled
}

// OnMerge is a no-op implementation.
func (h *NopHooks) OnMerge(_ types.Candidate) error {
	return nil
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(_, _ types.LoopState) error {
	return nil
}
