// Package search implements merge candidate search over a chunk graph.
//
// A search pass filters out initial (entry-reachable) chunks, scores every
// unordered pair of the remaining chunks and selects the pair with the highest
// improvement ratio:
//
//	improvement = (size(keep) + size(absorbed)) / size(keep ∪ absorbed)
//
// All sizes are queried with zero per-chunk overhead. A ratio above 1 means
// the two chunks share modules, so merging them removes duplicated output.
//
// # Enumeration Order
//
// Pairs are visited with an outer loop over eligible chunks and an inner loop
// over the chunks preceding it, so every unordered pair is scored exactly once.
// The earlier chunk of a pair is kept and the later one is absorbed.
//
// # Selection
//
// Candidates are stable-sorted by improvement, highest first. Among exact ties
// the earliest enumerated pair wins; callers should treat this as an
// implementation detail and only rely on the winner carrying the maximum
// improvement.
//
// The threshold is applied once, at selection time: Enumerate records every
// pair, Find rejects the winner if its improvement is below the threshold.
//
// Searches never mutate the graph.
package search
