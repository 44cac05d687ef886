package tabsolve

import "github.com/ifds-go/tabsolve/intset"

// NodeKind classifies a supergraph node for the purposes of solver
// dispatch (§3): every node is exactly one of entry, exit, call,
// return-site, or normal.
type NodeKind int

const (
	// KindNormal is any node that is neither an entry, exit, call, nor
	// return-site.
	KindNormal NodeKind = iota
	// KindEntry marks a procedure entry block.
	KindEntry
	// KindExit marks a procedure exit block (a procedure may have several,
	// modeling exceptional control flow).
	KindExit
	// KindCall marks a call site.
	KindCall
	// KindReturnSite marks the node a call site returns control to.
	KindReturnSite
)

// Supergraph is the abstract interprocedural control-flow graph the solver
// traverses (§6). Implementations own node identity, numbering and
// procedure membership; the solver only ever holds NodeID/ProcID handles.
type Supergraph interface {
	// Kind reports the structural role of a node.
	Kind(n NodeID) NodeKind

	// SuccNodes returns the successors of n within the supergraph,
	// including call->entry and exit->return-site edges.
	SuccNodes(n NodeID) []NodeID
	// PredNodes returns the predecessors of n.
	PredNodes(n NodeID) []NodeID

	// CalledNodes returns the callee entries reachable from a call node.
	CalledNodes(call NodeID) []NodeID
	// NormalSuccessors returns the successors of a call node that are not
	// reached via a call/return edge (used for problems where a call block
	// also has ordinary control-flow successors).
	NormalSuccessors(call NodeID) []NodeID
	// ReturnSites returns the return sites associated with a call node.
	ReturnSites(call NodeID) []NodeID

	// EntriesForProcedure returns every entry block of p.
	EntriesForProcedure(p ProcID) []NodeID
	// ExitsForProcedure returns every exit block of p.
	ExitsForProcedure(p ProcID) []NodeID

	// GlobalNumber returns n's number in a single, whole-supergraph
	// numbering.
	GlobalNumber(n NodeID) int
	// LocalBlockNumber returns n's number local to its own procedure.
	LocalBlockNumber(n NodeID) int
	// LocalBlock resolves a procedure-local number back to a NodeID.
	LocalBlock(p ProcID, localNumber int) NodeID
	// SuccNodeNumbers returns the global numbers of n's successors, as an
	// IntSet suitable for the return-site reachability filter in
	// processExit.
	SuccNodeNumbers(n NodeID) *intset.IntSet

	// ProcOf returns the procedure a node belongs to.
	ProcOf(n NodeID) ProcID
	// ContainsNode reports whether n is a node of this supergraph.
	ContainsNode(n NodeID) bool

	// AllNodes iterates over every node of the supergraph.
	AllNodes() []NodeID
}
