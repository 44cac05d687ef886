package tabsolve

import "github.com/ifds-go/tabsolve/intset"

// UnaryFlowFunction maps a single incoming fact to the set of facts it
// produces. A nil return is treated identically to an empty set (§9
// Design Notes: "normalize null-as-empty at the boundary").
type UnaryFlowFunction interface {
	Targets(d Fact) *intset.IntSet
}

// UnaryFlowFunc adapts a plain function to UnaryFlowFunction.
type UnaryFlowFunc func(d Fact) *intset.IntSet

// Targets implements UnaryFlowFunction.
func (f UnaryFlowFunc) Targets(d Fact) *intset.IntSet { return f(d) }

// BinaryReturnFlowFunction computes return-site facts from both the
// caller's call-site fact and the callee's exit fact. Used by return flow
// functions that need to correlate the two contexts (§4.1, "processExit").
type BinaryReturnFlowFunction interface {
	Targets(callFact, exitFact Fact) *intset.IntSet
}

// BinaryReturnFlowFunc adapts a plain function to BinaryReturnFlowFunction.
type BinaryReturnFlowFunc func(callFact, exitFact Fact) *intset.IntSet

// Targets implements BinaryReturnFlowFunction.
func (f BinaryReturnFlowFunc) Targets(callFact, exitFact Fact) *intset.IntSet {
	return f(callFact, exitFact)
}

// ReturnFlowFunction is either unary (ignores the caller's fact) or binary
// (correlates caller and callee facts). The solver type-switches on the
// concrete value returned by FlowFunctionMap.ReturnFlowFunction.
type ReturnFlowFunction interface {
	isReturnFlowFunction()
}

type unaryReturn struct{ UnaryFlowFunction }

func (unaryReturn) isReturnFlowFunction() {}

type binaryReturn struct{ BinaryReturnFlowFunction }

func (binaryReturn) isReturnFlowFunction() {}

// UnaryReturn wraps a UnaryFlowFunction for use as a ReturnFlowFunction.
func UnaryReturn(f UnaryFlowFunction) ReturnFlowFunction { return unaryReturn{f} }

// BinaryReturn wraps a BinaryReturnFlowFunction for use as a
// ReturnFlowFunction.
func BinaryReturn(f BinaryReturnFlowFunction) ReturnFlowFunction { return binaryReturn{f} }

// FlowFunctionMap dispatches flow functions per supergraph edge kind (§6).
type FlowFunctionMap interface {
	// NormalFlowFunction returns the flow function for the normal edge
	// src->dst.
	NormalFlowFunction(src, dst NodeID) UnaryFlowFunction
	// CallFlowFunction returns the flow function mapping facts at a call
	// site into facts at a callee entry.
	CallFlowFunction(call, callee NodeID) UnaryFlowFunction
	// ReturnFlowFunction returns the flow function propagating facts from
	// a callee exit back to a caller return site.
	ReturnFlowFunction(call, exit, returnSite NodeID) ReturnFlowFunction
	// CallToReturnFlowFunction returns the flow function used to bypass a
	// call when the return site has at least one callee.
	CallToReturnFlowFunction(call, returnSite NodeID) UnaryFlowFunction
	// CallNoneToReturnFlowFunction returns the flow function used to
	// bypass a call when the return site has no callee (an unresolved or
	// external call).
	CallNoneToReturnFlowFunction(call, returnSite NodeID) UnaryFlowFunction
}

// MergeFunction collapses the set of facts already recorded at a
// (path-edge target, entry fact) pair with a newly computed fact into a
// single fact, enabling widening and non-IFDS problems (§4.1). A return of
// -1 means "suppress — no new fact to propagate".
type MergeFunction interface {
	Merge(preExisting *intset.IntSet, newFact Fact) Fact
}

// MergeFunc adapts a plain function to MergeFunction.
type MergeFunc func(preExisting *intset.IntSet, newFact Fact) Fact

// Merge implements MergeFunction.
func (f MergeFunc) Merge(preExisting *intset.IntSet, newFact Fact) Fact {
	return f(preExisting, newFact)
}

// NoFact is the sentinel Fact value a MergeFunction returns to suppress
// propagation entirely.
const NoFact Fact = -1
