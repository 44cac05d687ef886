// Package tabsolve implements a precise interprocedural tabulation solver
// for distributive dataflow problems over finite, exploded supergraphs —
// the IFDS/IDE tabulation algorithm of Reps, Horwitz and Sagiv (POPL'95),
// extended with multiple exit blocks per procedure, an optional merge
// operator for widening, and callee-indexed summary edges.
//
// The package consumes an abstract supergraph and flow-function map from a
// host analysis (see Supergraph, FlowFunctionMap, TabulationProblem) and
// computes path edges, summary edges and call-flow edges to a fixed point.
// Supergraph construction, flow-function factories and bitset
// implementations are the host's responsibility; this package only
// implements the fixed-point computation itself.
package tabsolve

// NodeID identifies a block in the exploded supergraph. It is an opaque,
// host-assigned handle rather than a pointer or struct, so the solver's
// memo tables can use it directly as a map key (§9: "opaque integer handles
// into host-owned arenas").
type NodeID int

// ProcID identifies a procedure in the supergraph.
type ProcID int

// Fact is a dataflow-fact id. Fact 0 is conventionally the zero/bottom
// fact; fact ids are otherwise problem-defined.
type Fact int

// NodeFact pairs a supergraph node with a fact holding at that node. It is
// the building block of PathEdge: "if d1 holds at entry, then d2 holds at
// target" is represented as two NodeFact values.
type NodeFact struct {
	Node NodeID
	Fact Fact
}

// PathEdge is the solver-internal assertion that, given fact D1 at
// procedure entry Entry, fact D2 holds at Target (§3). PathEdge values are
// immutable once constructed and compare by value equality of all four
// fields.
type PathEdge struct {
	Entry  NodeID
	D1     Fact
	Target NodeID
	D2     Fact
}

// NewPathEdge constructs a PathEdge from its four components.
func NewPathEdge(entry NodeID, d1 Fact, target NodeID, d2 Fact) PathEdge {
	return PathEdge{Entry: entry, D1: d1, Target: target, D2: d2}
}

// NewPathEdgeFromFacts constructs a PathEdge from its two NodeFact
// components: source is (Entry, D1), dest is (Target, D2).
func NewPathEdgeFromFacts(source, dest NodeFact) PathEdge {
	return PathEdge{Entry: source.Node, D1: source.Fact, Target: dest.Node, D2: dest.Fact}
}

// Source returns the NodeFact this PathEdge is rooted at: (Entry, D1).
func (e PathEdge) Source() NodeFact {
	return NodeFact{Node: e.Entry, Fact: e.D1}
}

// Dest returns the NodeFact this PathEdge asserts: (Target, D2).
func (e PathEdge) Dest() NodeFact {
	return NodeFact{Node: e.Target, Fact: e.D2}
}

// Equal reports whether e and other have identical Entry, D1, Target and D2.
func (e PathEdge) Equal(other PathEdge) bool {
	return e == other
}
