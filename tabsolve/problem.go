package tabsolve

// Domain provides the priority ordering over path edges used by the
// Worklist (§4.5, §6). HasPriorityOver(a, b) reports whether a must be
// processed before b; implementations need not provide a total order, but
// the solver's fixed point is independent of whichever order they choose
// (§5: "tie-breaks in the worklist affect only work-count, not final
// output").
type Domain interface {
	HasPriorityOver(a, b PathEdge) bool
}

// DefaultDomain orders path edges solely by insertion order, giving FIFO
// worklist processing when a problem has no ordering preference of its own.
type DefaultDomain struct{}

// HasPriorityOver always reports false: no edge has priority over another,
// so the worklist falls back to its stable insertion-sequence tie-break.
func (DefaultDomain) HasPriorityOver(a, b PathEdge) bool { return false }

// TabulationProblem supplies everything the solver needs beyond the
// supergraph and flow functions themselves (§6).
type TabulationProblem interface {
	// InitialSeeds returns the path edges that seed the computation.
	InitialSeeds() []PathEdge
	// Supergraph returns the interprocedural control-flow graph to solve
	// over.
	Supergraph() Supergraph
	// FunctionMap returns the per-edge flow function dispatcher.
	FunctionMap() FlowFunctionMap
	// MergeFunction returns the problem's merge operator, or nil if the
	// problem is plain IFDS (no merging).
	MergeFunction() MergeFunction
	// Domain returns the fact domain's priority ordering.
	Domain() Domain
}
