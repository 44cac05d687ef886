package tabsolve

import "github.com/ifds-go/tabsolve/intset"

// summaryKey indexes LocalSummaryEdges by (entry-local, exit-local, d1).
type summaryKey struct {
	sLocal int
	xLocal int
	d1     Fact
}

// LocalSummaryEdges memoizes procedure-level transfer functions, one table
// per procedure, indexed by callee entry/exit local numbers rather than by
// caller call/return site (§4.3). A summary (s_p, x, d1, d2) is reusable at
// every call site of s_p's procedure — this callee-indexing is what makes
// summary reuse (Testable Property 4) possible.
type LocalSummaryEdges struct {
	edges map[summaryKey]*intset.IntSet
}

// NewLocalSummaryEdges constructs an empty LocalSummaryEdges for one
// procedure.
func NewLocalSummaryEdges() *LocalSummaryEdges {
	return &LocalSummaryEdges{edges: make(map[summaryKey]*intset.IntSet)}
}

// Contains reports whether the summary (sLocal, xLocal, d1) -> d2 is
// already recorded.
func (l *LocalSummaryEdges) Contains(sLocal, xLocal int, d1, d2 Fact) bool {
	set, ok := l.edges[summaryKey{sLocal, xLocal, d1}]
	return ok && set.Contains(int(d2))
}

// InsertSummaryEdge records the summary (sLocal, xLocal, d1) -> d2 if
// absent, reporting whether it was newly inserted.
func (l *LocalSummaryEdges) InsertSummaryEdge(sLocal, xLocal int, d1, d2 Fact) (inserted bool) {
	key := summaryKey{sLocal, xLocal, d1}
	set, ok := l.edges[key]
	if !ok {
		set = intset.New()
		l.edges[key] = set
	}
	if set.Contains(int(d2)) {
		return false
	}
	set.Add(int(d2))
	return true
}

// GetSummaryEdges returns every d2 already proven reachable from d1 via
// the procedure-level transfer sLocal -> xLocal.
func (l *LocalSummaryEdges) GetSummaryEdges(sLocal, xLocal int, d1 Fact) *intset.IntSet {
	if set, ok := l.edges[summaryKey{sLocal, xLocal, d1}]; ok {
		return set
	}
	return intset.Empty
}

// Size returns the total number of recorded summary facts, for the
// memo_size metric.
func (l *LocalSummaryEdges) Size() int {
	n := 0
	for _, set := range l.edges {
		n += set.Size()
	}
	return n
}
