// Package variants holds the replacement pairs that drive spelling variant
// generation and the prefix index built from them.
package variants

import (
	"errors"
	"sort"
)

// ErrInvalidPair is returned when a replacement pair can never be applied.
var ErrInvalidPair = errors.New("invalid replacement pair")

// Pair replaces Source with Replacement. Several pairs may share a source.
type Pair struct {
	Source      string
	Replacement string
}

// SortPairs orders pairs by source, then replacement.
func SortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Source != pairs[j].Source {
			return pairs[i].Source < pairs[j].Source
		}
		return pairs[i].Replacement < pairs[j].Replacement
	})
}

// EqualMultiset reports whether a and b contain the same pairs with the same
// multiplicity, ignoring order.
func EqualMultiset(a, b []Pair) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[Pair]int, len(a))
	for _, p := range a {
		counts[p]++
	}
	for _, p := range b {
		counts[p]--
		if counts[p] < 0 {
			return false
		}
	}
	return true
}
