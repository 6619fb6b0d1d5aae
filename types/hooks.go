package types

// Hooks defines callbacks for optimizer events.
//
// All hooks are optional. They are invoked synchronously on the goroutine
// running the optimizer, so they must complete quickly and must not mutate the
// chunk graph.
//
// Hook errors are logged but never fail the optimization run.
//
// Example:
//
//	hooks := &chunkmerge.Hooks{
//	    OnMerge: func(c chunkmerge.Candidate) error {
//	        fmt.Printf("merged %s into %s\n", c.Absorbed.Name(), c.Keep.Name())
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnMerge is called after a candidate has been integrated and the absorbed
	// chunk removed from the graph.
	OnMerge func(candidate Candidate) error

	// OnStateChanged is called when the loop transitions between states.
	OnStateChanged func(from, to LoopState) error
}
