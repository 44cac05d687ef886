package tabsolve

import "github.com/ifds-go/tabsolve/intset"

// Result is a read-only view over a Solver's memo tables (§4.6). It is
// valid only for the lifetime of the Solver that produced it; callers must
// not retain a Result past the Solver being discarded or mutated further.
type Result struct {
	sg                 Supergraph
	pathEdgesByEntry   map[NodeID]*LocalPathEdges
	summaryEdgesByProc map[ProcID]*LocalSummaryEdges
	seeds              []PathEdge
}

// GetResult returns the set of facts proven reachable at node, unioned
// across every entry of node's enclosing procedure.
func (r *Result) GetResult(node NodeID) *intset.IntSet {
	proc := r.sg.ProcOf(node)
	nLocal := r.sg.LocalBlockNumber(node)

	out := intset.New()
	for _, sp := range r.sg.EntriesForProcedure(proc) {
		lpe, ok := r.pathEdgesByEntry[sp]
		if !ok {
			continue
		}
		out.AddAll(lpe.GetReachableAny(nLocal))
	}
	return out
}

// GetSummaryTargets returns the set of facts d2 such that a summary edge
// (n1, d1) -> (n2, d2) has been recorded for n1's enclosing procedure.
func (r *Result) GetSummaryTargets(n1 NodeID, d1 Fact, n2 NodeID) *intset.IntSet {
	proc := r.sg.ProcOf(n1)
	se, ok := r.summaryEdgesByProc[proc]
	if !ok {
		return intset.Empty
	}
	return se.GetSummaryEdges(r.sg.LocalBlockNumber(n1), r.sg.LocalBlockNumber(n2), d1)
}

// GetSummarySources is not supported: the solver does not maintain an
// inverse index over summary edges (§4.6). Callers needing this must
// invert GetSummaryTargets themselves.
func (r *Result) GetSummarySources(NodeID, NodeID, Fact) (*intset.IntSet, error) {
	return nil, ErrUnsupported
}

// GetSupergraphNodesReached returns every supergraph node that appears as
// the target of at least one recorded path edge, across every procedure.
func (r *Result) GetSupergraphNodesReached() []NodeID {
	seen := make(map[NodeID]bool)
	var out []NodeID
	for entry, lpe := range r.pathEdgesByEntry {
		proc := r.sg.ProcOf(entry)
		lpe.GetReachedNodeNumbers().Foreach(func(local int) {
			n := r.sg.LocalBlock(proc, local)
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		})
	}
	return out
}

// GetSeeds returns an immutable snapshot of every seed inserted into the
// originating solver, in insertion order.
func (r *Result) GetSeeds() []PathEdge {
	return append([]PathEdge(nil), r.seeds...)
}

// GetReachedFacts returns every NodeFact proven reachable at node, unioned
// across every entry of node's enclosing procedure — the NodeFact-typed
// counterpart of GetResult's raw fact set.
func (r *Result) GetReachedFacts(node NodeID) []NodeFact {
	facts := r.GetResult(node)
	out := make([]NodeFact, 0, facts.Size())
	facts.Foreach(func(d int) {
		out = append(out, NodeFact{Node: node, Fact: Fact(d)})
	})
	return out
}
