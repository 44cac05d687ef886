// Package intset provides a sparse bitset over non-negative integer ids.
//
// It backs the solver's dataflow-fact domains (§6 of the tabulation spec):
// fact ids are small non-negative integers, but a problem's domain size is
// not bounded up front, so the set grows its backing storage on demand
// rather than being sized to a fixed word count.
package intset

import "math/bits"

const wordBits = 64

// IntSet is a mutable set of non-negative ints backed by a word slice.
//
// The zero value is an empty, ready-to-use set. IntSet is not safe for
// concurrent use without external synchronization.
type IntSet struct {
	words []uint64
}

// New returns an empty IntSet.
func New() *IntSet {
	return &IntSet{}
}

// Of returns an IntSet containing exactly the given values.
func Of(values ...int) *IntSet {
	s := New()
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Empty is a shared, never-mutated empty set. Callers must not mutate it;
// it exists so flow-function adapters can normalize a nil/empty result to
// a single canonical value instead of allocating (§9 Design Notes:
// "normalize null-as-empty at the boundary").
var Empty = New()

func wordIndex(i int) int { return i / wordBits }
func bitMask(i int) uint64 { return uint64(1) << uint(i%wordBits) }

// Add inserts i into the set. i must be non-negative.
func (s *IntSet) Add(i int) {
	if i < 0 {
		panic("intset: negative fact id")
	}
	w := wordIndex(i)
	if w >= len(s.words) {
		grown := make([]uint64, w+1)
		copy(grown, s.words)
		s.words = grown
	}
	s.words[w] |= bitMask(i)
}

// Remove deletes i from the set, if present.
func (s *IntSet) Remove(i int) {
	if i < 0 {
		return
	}
	w := wordIndex(i)
	if w >= len(s.words) {
		return
	}
	s.words[w] &^= bitMask(i)
}

// Contains reports whether i is a member of the set.
func (s *IntSet) Contains(i int) bool {
	if i < 0 {
		return false
	}
	w := wordIndex(i)
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&bitMask(i) != 0
}

// Size returns the number of elements in the set.
func (s *IntSet) Size() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether the set has no members.
func (s *IntSet) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Foreach calls action once for every member, in ascending order.
func (s *IntSet) Foreach(action func(int)) {
	for wi, w := range s.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			action(wi*wordBits + tz)
			w &= w - 1
		}
	}
}

// Slice returns the set's members as a sorted slice.
func (s *IntSet) Slice() []int {
	out := make([]int, 0, s.Size())
	s.Foreach(func(i int) { out = append(out, i) })
	return out
}

// AddAll inserts every member of other into s.
func (s *IntSet) AddAll(other *IntSet) {
	if other == nil {
		return
	}
	other.Foreach(s.Add)
}

// Union returns a new set containing every member of s and other.
func (s *IntSet) Union(other *IntSet) *IntSet {
	out := New()
	out.AddAll(s)
	out.AddAll(other)
	return out
}

// Equal reports whether s and other contain exactly the same members.
func (s *IntSet) Equal(other *IntSet) bool {
	if other == nil {
		return s.IsEmpty()
	}
	a, b := s.words, other.words
	if len(a) < len(b) {
		a, b = b, a
	}
	for i := range a {
		var bv uint64
		if i < len(b) {
			bv = b[i]
		}
		if a[i] != bv {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of s.
func (s *IntSet) Clone() *IntSet {
	out := &IntSet{words: make([]uint64, len(s.words))}
	copy(out.words, s.words)
	return out
}
