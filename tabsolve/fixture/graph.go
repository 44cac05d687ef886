// Package fixture provides an in-memory Supergraph and FlowFunctionMap
// builder for tests and worked examples, grounded on spec.md §8's concrete
// scenarios S1-S6 and on the teacher's own examples/ tree convention of
// small, self-contained programs exercising the library.
package fixture

import (
	"github.com/ifds-go/tabsolve"
	"github.com/ifds-go/tabsolve/intset"
)

// Graph is a hand-buildable, in-memory tabsolve.Supergraph. Nodes are
// numbered in insertion order, globally and per-procedure; callers build a
// graph by calling NewProcedure/AddNode/AddEdge/AddCallEdge in whatever
// order suits the scenario under test.
type Graph struct {
	kind        map[tabsolve.NodeID]tabsolve.NodeKind
	proc        map[tabsolve.NodeID]tabsolve.ProcID
	succ        map[tabsolve.NodeID][]tabsolve.NodeID
	pred        map[tabsolve.NodeID][]tabsolve.NodeID
	calledNodes map[tabsolve.NodeID][]tabsolve.NodeID
	normalSucc  map[tabsolve.NodeID][]tabsolve.NodeID
	returnSites map[tabsolve.NodeID][]tabsolve.NodeID
	entries     map[tabsolve.ProcID][]tabsolve.NodeID
	exits       map[tabsolve.ProcID][]tabsolve.NodeID
	localNum    map[tabsolve.NodeID]int
	localNode   map[tabsolve.ProcID]map[int]tabsolve.NodeID

	order []tabsolve.NodeID

	nextGlobal   int
	nextProc     int
	localCounter map[tabsolve.ProcID]int
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		kind:         make(map[tabsolve.NodeID]tabsolve.NodeKind),
		proc:         make(map[tabsolve.NodeID]tabsolve.ProcID),
		succ:         make(map[tabsolve.NodeID][]tabsolve.NodeID),
		pred:         make(map[tabsolve.NodeID][]tabsolve.NodeID),
		calledNodes:  make(map[tabsolve.NodeID][]tabsolve.NodeID),
		normalSucc:   make(map[tabsolve.NodeID][]tabsolve.NodeID),
		returnSites:  make(map[tabsolve.NodeID][]tabsolve.NodeID),
		entries:      make(map[tabsolve.ProcID][]tabsolve.NodeID),
		exits:        make(map[tabsolve.ProcID][]tabsolve.NodeID),
		localNum:     make(map[tabsolve.NodeID]int),
		localNode:    make(map[tabsolve.ProcID]map[int]tabsolve.NodeID),
		localCounter: make(map[tabsolve.ProcID]int),
	}
}

// NewProcedure allocates a fresh ProcID.
func (g *Graph) NewProcedure() tabsolve.ProcID {
	p := tabsolve.ProcID(g.nextProc)
	g.nextProc++
	g.localCounter[p] = 0
	g.localNode[p] = make(map[int]tabsolve.NodeID)
	return p
}

// AddNode allocates a node of the given kind within proc, numbered next in
// both the global and procedure-local sequences.
func (g *Graph) AddNode(proc tabsolve.ProcID, kind tabsolve.NodeKind) tabsolve.NodeID {
	n := tabsolve.NodeID(g.nextGlobal)
	g.nextGlobal++

	g.kind[n] = kind
	g.proc[n] = proc

	local := g.localCounter[proc]
	g.localCounter[proc] = local + 1
	g.localNum[n] = local
	g.localNode[proc][local] = n

	g.order = append(g.order, n)

	switch kind {
	case tabsolve.KindEntry:
		g.entries[proc] = append(g.entries[proc], n)
	case tabsolve.KindExit:
		g.exits[proc] = append(g.exits[proc], n)
	}
	return n
}

// AddEdge adds a plain supergraph successor edge from -> to.
func (g *Graph) AddEdge(from, to tabsolve.NodeID) {
	g.succ[from] = append(g.succ[from], to)
	g.pred[to] = append(g.pred[to], from)
}

// AddCallEdge marks calleeEntry as reachable from call and records the
// structural call->entry edge, so that PredNodes(calleeEntry) includes call
// (processExit relies on this to find callers of a procedure).
func (g *Graph) AddCallEdge(call, calleeEntry tabsolve.NodeID) {
	g.calledNodes[call] = append(g.calledNodes[call], calleeEntry)
	g.AddEdge(call, calleeEntry)
}

// AddReturnSite associates rs as a return site of call.
func (g *Graph) AddReturnSite(call, rs tabsolve.NodeID) {
	g.returnSites[call] = append(g.returnSites[call], rs)
}

// AddExitReturnEdge adds the structural exit->return-site edge so that
// SuccNodeNumbers(exit) includes rs (§4.1's return-site reachability
// filter, Testable Property 7) and so that returnSiteHasCallee can detect
// rs has a resolved callee by inspecting its predecessors.
func (g *Graph) AddExitReturnEdge(exit, rs tabsolve.NodeID) {
	g.AddEdge(exit, rs)
}

// AddNormalSuccessor records an ordinary control-flow successor of a call
// node, for problems where a call block also has non-call-edge successors.
func (g *Graph) AddNormalSuccessor(call, succ tabsolve.NodeID) {
	g.normalSucc[call] = append(g.normalSucc[call], succ)
}

func (g *Graph) Kind(n tabsolve.NodeID) tabsolve.NodeKind { return g.kind[n] }

func (g *Graph) SuccNodes(n tabsolve.NodeID) []tabsolve.NodeID { return g.succ[n] }
func (g *Graph) PredNodes(n tabsolve.NodeID) []tabsolve.NodeID { return g.pred[n] }

func (g *Graph) CalledNodes(call tabsolve.NodeID) []tabsolve.NodeID      { return g.calledNodes[call] }
func (g *Graph) NormalSuccessors(call tabsolve.NodeID) []tabsolve.NodeID { return g.normalSucc[call] }
func (g *Graph) ReturnSites(call tabsolve.NodeID) []tabsolve.NodeID      { return g.returnSites[call] }

func (g *Graph) EntriesForProcedure(p tabsolve.ProcID) []tabsolve.NodeID { return g.entries[p] }
func (g *Graph) ExitsForProcedure(p tabsolve.ProcID) []tabsolve.NodeID   { return g.exits[p] }

func (g *Graph) GlobalNumber(n tabsolve.NodeID) int     { return int(n) }
func (g *Graph) LocalBlockNumber(n tabsolve.NodeID) int { return g.localNum[n] }

func (g *Graph) LocalBlock(p tabsolve.ProcID, localNumber int) tabsolve.NodeID {
	return g.localNode[p][localNumber]
}

func (g *Graph) SuccNodeNumbers(n tabsolve.NodeID) *intset.IntSet {
	out := intset.New()
	for _, s := range g.succ[n] {
		out.Add(int(s))
	}
	return out
}

func (g *Graph) ProcOf(n tabsolve.NodeID) tabsolve.ProcID { return g.proc[n] }

func (g *Graph) ContainsNode(n tabsolve.NodeID) bool {
	_, ok := g.kind[n]
	return ok
}

func (g *Graph) AllNodes() []tabsolve.NodeID {
	return append([]tabsolve.NodeID(nil), g.order...)
}
