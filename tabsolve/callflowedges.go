package tabsolve

import "github.com/ifds-go/tabsolve/intset"

// callFlowKey indexes CallFlowEdges by (caller call-site global number, d1
// at the callee entry).
type callFlowKey struct {
	callerGlobal int
	d1           Fact
}

// CallFlowEdges memoizes, for one callee entry s_p, which caller facts
// produced which callee-entry facts: (callerGlobal, d1) -> {d4}, the set of
// facts d4 at the call site c that flowed into d1 at s_p (§4.4). It is
// consulted at exit propagation to reconstruct the caller-side context
// without re-walking the call site.
type CallFlowEdges struct {
	edges map[callFlowKey]*intset.IntSet
}

// NewCallFlowEdges constructs an empty CallFlowEdges for one callee entry.
func NewCallFlowEdges() *CallFlowEdges {
	return &CallFlowEdges{edges: make(map[callFlowKey]*intset.IntSet)}
}

// AddCallEdge records that the call site callerGlobal, holding fact d4,
// entered the callee with fact d1. Recorded at most once per triple
// (invariant 4 of §3).
func (c *CallFlowEdges) AddCallEdge(callerGlobal int, d4, d1 Fact) {
	key := callFlowKey{callerGlobal, d1}
	set, ok := c.edges[key]
	if !ok {
		set = intset.New()
		c.edges[key] = set
	}
	set.Add(int(d4))
}

// GetCallFlowSources returns every d4 recorded for (callerGlobal, d1), or
// nil if none has been recorded — processExit distinguishes "no call-flow
// edge yet" from "call-flow edge with an empty fact set", since the latter
// cannot occur for a d1 that reached the callee entry at all.
func (c *CallFlowEdges) GetCallFlowSources(callerGlobal int, d1 Fact) *intset.IntSet {
	return c.edges[callFlowKey{callerGlobal, d1}]
}

// Size returns the total number of recorded call-flow facts, for the
// memo_size metric.
func (c *CallFlowEdges) Size() int {
	n := 0
	for _, set := range c.edges {
		n += set.Size()
	}
	return n
}
