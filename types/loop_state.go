package types

// LoopState represents the state of the optimization loop.
//
// The loop transitions through these states:
//
//	Scanning → Merging → Scanning → ... → Done
//	Scanning → Done (fixpoint or failure)
//
// Done is terminal for a single Run invocation.
type LoopState int

const (
	// StateScanning indicates the loop is searching for the best merge candidate.
	StateScanning LoopState = iota

	// StateMerging indicates the winning candidate is being integrated into the graph.
	StateMerging

	// StateDone indicates the loop reached a fixpoint or aborted on error.
	StateDone
)

// String returns the string representation of the loop state.
//
// Returns:
//   - string: Human-readable state name
func (s LoopState) String() string {
	switch s {
	case StateScanning:
		return "Scanning"
	case StateMerging:
		return "Merging"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}
