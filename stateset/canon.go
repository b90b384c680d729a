package stateset

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/btree"
)

// Key is the canonical, comparable identity of a composite state (a
// subset of NFA states reached by subset construction, or a product
// tuple reached by DFA union). Grounded on the teacher's productionID
// (nihei9-vartan grammar/production.go), which hashes a production's
// LHS/RHS into a fixed-size array so it can be used as a plain map key
// without re-deriving a string representation at every lookup. Here the
// hash comes from xxhash/v2 rather than crypto/sha256: composite states
// are not security-sensitive, and subset construction can visit a large
// number of them, so a fast non-cryptographic hash is the right trade.
type Key uint64

// CanonicalizeSet computes the canonical Key and canonical label for a
// composite state whose members are members. The label is the members
// sorted and comma-joined; the Key is the xxhash of the members sorted
// and joined with a NUL separator, which cannot appear in a one-character
// automaton symbol or in any state label built by this package.
func CanonicalizeSet(members []string) (Key, string) {
	sorted := make([]string, len(members))
	copy(sorted, members)
	sort.Strings(sorted)
	return Key(xxhash.Sum64String(strings.Join(sorted, "\x00"))), strings.Join(sorted, ",")
}

// CanonicalizePair computes the canonical Key and label for a product
// state (left, right), as DFA union builds.
func CanonicalizePair(left, right string) (Key, string) {
	return Key(xxhash.Sum64String(left + "\x00" + right)), "(" + left + "," + right + ")"
}

// OrderedLabels is a set of string labels that supports deterministic,
// sorted iteration and removal of the lexicographically smallest member.
// Used by the GNFA state-elimination loop inside DFA.Encode so that
// encode() produces the same regex for the same DFA on every call,
// rather than depending on Go's randomized map iteration order.
//
// Backed by github.com/google/btree rather than a sort.Strings call on
// every mutation: encode() eliminates one state per iteration, and a
// B-tree keeps each removal/min-lookup close to O(log n) instead of
// O(n log n) for a full re-sort.
type OrderedLabels struct {
	t *btree.BTreeG[string]
}

// NewOrderedLabels returns an OrderedLabels containing labels.
func NewOrderedLabels(labels ...string) *OrderedLabels {
	ol := &OrderedLabels{t: btree.NewG(32, func(a, b string) bool { return a < b })}
	for _, l := range labels {
		ol.t.ReplaceOrInsert(l)
	}
	return ol
}

// PopMin removes and returns the lexicographically smallest label. ok is
// false if OrderedLabels is empty.
func (ol *OrderedLabels) PopMin() (label string, ok bool) {
	min, ok := ol.t.Min()
	if !ok {
		return "", false
	}
	ol.t.Delete(min)
	return min, true
}

// Remove deletes label, if present.
func (ol *OrderedLabels) Remove(label string) {
	ol.t.Delete(label)
}

// Len returns the number of labels remaining.
func (ol *OrderedLabels) Len() int {
	return ol.t.Len()
}
