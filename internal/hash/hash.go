// Package hash provides stable 64-bit content hashes based on XXH3.
package hash

import (
	"slices"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Keys folds a sequence of keys into a single XXH3 hash.
//
// Each key is hashed with the previous result as seed, so no joined string is
// built and key boundaries are preserved ("ab","c" differs from "a","bc").
// Order matters; use SortedKeys for set semantics.
//
// Parameters:
//   - keys: Keys to fold
//   - seed: Initial seed (0 for unseeded)
//
// Returns:
//   - uint64: Folded hash
func Keys(keys []string, seed uint64) uint64 {
	h := seed
	for i, k := range keys {
		if i == 0 && seed == 0 {
			h = xxh3.HashString(k)
			continue
		}
		h = xxh3.HashStringSeed(k, h)
	}

	return h
}

// SortedKeys hashes the keys as a set: the result does not depend on input order.
// The input slice is not modified.
func SortedKeys(keys []string, seed uint64) uint64 {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)

	return Keys(sorted, seed)
}

// Hex renders a hash as a fixed-width, 16 character lowercase hex string.
func Hex(h uint64) string {
	s := strconv.FormatUint(h, 16)
	for len(s) < 16 {
		s = "0" + s
	}

	return s
}
