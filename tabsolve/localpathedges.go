package tabsolve

import "github.com/ifds-go/tabsolve/intset"

// forwardKey indexes LocalPathEdges' forward map by (target-local-number,
// d1).
type forwardKey struct {
	n  int
	d1 Fact
}

// inverseKey indexes LocalPathEdges' inverse index by (target-local-number,
// d2).
type inverseKey struct {
	n  int
	d2 Fact
}

// LocalPathEdges memoizes, for one procedure entry s_p, every path edge
// reached so far: forward[n, d1] = {d2 : (s_p, d1, n, d2) recorded}, plus an
// inverse index keyed by (n, d2) for the reverse lookup processExit needs
// (§4.2).
//
// The two maps are kept consistent by construction: AddPathEdge and
// ReplacePathEdge are the only mutators and each updates both (invariant 3
// of §3).
type LocalPathEdges struct {
	mergeMode bool

	forward map[forwardKey]*intset.IntSet
	inverse map[inverseKey]*intset.IntSet

	// reachedNodes tracks every target local number ever recorded, for
	// getReachedNodeNumbers.
	reachedNodes *intset.IntSet
}

// NewLocalPathEdges constructs an empty LocalPathEdges. mergeMode records
// whether getReachable(n, d1) will be used by the caller; when false,
// implementations are free to skip maintaining it, though this
// implementation always maintains both maps since the cost is the same.
func NewLocalPathEdges(mergeMode bool) *LocalPathEdges {
	return &LocalPathEdges{
		mergeMode:    mergeMode,
		forward:      make(map[forwardKey]*intset.IntSet),
		inverse:      make(map[inverseKey]*intset.IntSet),
		reachedNodes: intset.New(),
	}
}

// Contains reports whether (d1 at n) -> d2 is already recorded.
func (l *LocalPathEdges) Contains(d1 Fact, n int, d2 Fact) bool {
	set, ok := l.forward[forwardKey{n, d1}]
	return ok && set.Contains(int(d2))
}

// AddPathEdge records (d1 at n) -> d2 if absent and reports whether it was
// newly inserted. Together with ReplacePathEdge it is the only mutator of
// the forward map and the inverse index; the solver calls either one only
// from propagate.
func (l *LocalPathEdges) AddPathEdge(d1 Fact, n int, d2 Fact) (inserted bool) {
	fk := forwardKey{n, d1}
	fwd, ok := l.forward[fk]
	if !ok {
		fwd = intset.New()
		l.forward[fk] = fwd
	}
	if fwd.Contains(int(d2)) {
		return false
	}
	fwd.Add(int(d2))

	ik := inverseKey{n, d2}
	inv, ok := l.inverse[ik]
	if !ok {
		inv = intset.New()
		l.inverse[ik] = inv
	}
	inv.Add(int(d1))

	l.reachedNodes.Add(n)
	return true
}

// ReplacePathEdge evicts any fact(s) already recorded at (n, d1) and
// records exactly d2, keeping the inverse index consistent. Used in place
// of AddPathEdge when a merge function is configured, so that forward[n,
// d1] never holds more than one fact once the merge function has collapsed
// it (§8 Testable Property 6: "the cardinality of forward[n, i] after
// fixed point is at most 1 iff alpha.merge always collapses to a single
// element").
func (l *LocalPathEdges) ReplacePathEdge(d1 Fact, n int, d2 Fact) (changed bool) {
	fk := forwardKey{n, d1}
	if old, ok := l.forward[fk]; ok {
		if old.Size() == 1 && old.Contains(int(d2)) {
			return false
		}
		old.Foreach(func(prev int) {
			if prev == int(d2) {
				return
			}
			if inv, exists := l.inverse[inverseKey{n, Fact(prev)}]; exists {
				inv.Remove(int(d1))
			}
		})
	}
	l.forward[fk] = intset.Of(int(d2))

	ik := inverseKey{n, d2}
	inv, ok := l.inverse[ik]
	if !ok {
		inv = intset.New()
		l.inverse[ik] = inv
	}
	inv.Add(int(d1))

	l.reachedNodes.Add(n)
	return true
}

// GetInverse returns every d1 such that (d1 at n) -> d2 is recorded.
func (l *LocalPathEdges) GetInverse(n int, d2 Fact) *intset.IntSet {
	if set, ok := l.inverse[inverseKey{n, d2}]; ok {
		return set
	}
	return intset.Empty
}

// GetReachable returns every d2 reached at n given entry fact d1. Required
// only when a merge function is configured (§4.2).
func (l *LocalPathEdges) GetReachable(n int, d1 Fact) *intset.IntSet {
	if set, ok := l.forward[forwardKey{n, d1}]; ok {
		return set
	}
	return intset.Empty
}

// GetReachableAny returns every d2 reached at n, regardless of which d1
// produced it.
func (l *LocalPathEdges) GetReachableAny(n int) *intset.IntSet {
	out := intset.New()
	for k, v := range l.forward {
		if k.n == n {
			out.AddAll(v)
		}
	}
	return out
}

// GetReachedNodeNumbers returns every local node number with at least one
// recorded path edge.
func (l *LocalPathEdges) GetReachedNodeNumbers() *intset.IntSet {
	return l.reachedNodes
}

// Size returns the total number of (n, d1) -> d2 facts recorded in the
// forward map, for the memo_size metric.
func (l *LocalPathEdges) Size() int {
	n := 0
	for _, set := range l.forward {
		n += set.Size()
	}
	return n
}
