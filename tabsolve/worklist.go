package tabsolve

import "container/heap"

// Worklist is a priority heap of pending PathEdges (§4.5), ordered by the
// problem's Domain.HasPriorityOver. It is the solver's only pending-work
// structure: a PathEdge is enqueued exactly once, at the moment it is first
// recorded in a LocalPathEdges table (§3 invariant 1), and only propagate
// ever calls Insert.
//
// Worklist is not safe for concurrent use; the solver's main loop is
// single-threaded (§5).
type Worklist struct {
	domain   Domain
	tieBreak func(a, b PathEdge) bool
	items    worklistHeap
	seq      uint64
}

// NewWorklist constructs an empty Worklist ordered by domain.
func NewWorklist(domain Domain) *Worklist {
	if domain == nil {
		domain = DefaultDomain{}
	}
	w := &Worklist{domain: domain}
	heap.Init(&w.items)
	return w
}

// SetTieBreak installs a secondary comparator consulted when domain
// expresses no preference between two edges, before the worklist falls back
// to stable insertion order (WithWorklistTieBreak).
func (w *Worklist) SetTieBreak(fn func(a, b PathEdge) bool) {
	w.tieBreak = fn
}

// Insert adds e to the worklist.
func (w *Worklist) Insert(e PathEdge) {
	w.seq++
	heap.Push(&w.items, worklistEntry{edge: e, seq: w.seq, domain: w.domain, tieBreak: w.tieBreak})
}

// Take removes and returns the highest-priority edge. ok is false when the
// worklist is empty.
func (w *Worklist) Take() (e PathEdge, ok bool) {
	if w.items.Len() == 0 {
		return PathEdge{}, false
	}
	entry := heap.Pop(&w.items).(worklistEntry)
	return entry.edge, true
}

// Peek returns the highest-priority edge without removing it. This is a
// direct O(1) read of the heap root rather than a pop-then-reinsert; §9
// Design Notes flags the source's pop-then-reinsert peek as
// "performance-poor", so this implementation avoids it.
func (w *Worklist) Peek() (e PathEdge, ok bool) {
	if w.items.Len() == 0 {
		return PathEdge{}, false
	}
	return w.items[0].edge, true
}

// Len returns the number of pending edges.
func (w *Worklist) Len() int { return w.items.Len() }

// Empty reports whether the worklist has no pending edges.
func (w *Worklist) Empty() bool { return w.items.Len() == 0 }

// worklistEntry wraps a PathEdge with the sequence number used to break
// ties when the domain expresses no preference between two edges.
type worklistEntry struct {
	edge     PathEdge
	seq      uint64
	domain   Domain
	tieBreak func(a, b PathEdge) bool
}

// worklistHeap implements heap.Interface over worklistEntry, mirroring the
// teacher's workHeap[S] in graph/scheduler.go. Unlike the teacher's
// channel-backed Frontier, this heap has no concurrent producers: the
// solver's propagation loop is single-threaded (§5), so no mutex or
// backpressure channel is needed here.
type worklistHeap []worklistEntry

func (h worklistHeap) Len() int { return len(h) }

func (h worklistHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	// §9 resolves the source's "should we remove this check?" open
	// question by dropping the d1 != d2 guard entirely and relying solely
	// on HasPriorityOver, falling back to insertion order for a total,
	// stable ordering.
	if a.domain.HasPriorityOver(a.edge, b.edge) {
		return true
	}
	if b.domain.HasPriorityOver(b.edge, a.edge) {
		return false
	}
	if a.tieBreak != nil {
		if a.tieBreak(a.edge, b.edge) {
			return true
		}
		if a.tieBreak(b.edge, a.edge) {
			return false
		}
	}
	return a.seq < b.seq
}

func (h worklistHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *worklistHeap) Push(x interface{}) {
	*h = append(*h, x.(worklistEntry))
}

func (h *worklistHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
