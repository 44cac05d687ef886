package fixture

import (
	"github.com/ifds-go/tabsolve"
	"github.com/ifds-go/tabsolve/intset"
)

type edgeKey struct{ a, b tabsolve.NodeID }
type retKey struct{ call, exit, rs tabsolve.NodeID }

// Functions is a hand-buildable tabsolve.FlowFunctionMap: every edge kind
// defaults to identity unless a scenario overrides it with Set*.
type Functions struct {
	normal           map[edgeKey]tabsolve.UnaryFlowFunction
	call             map[edgeKey]tabsolve.UnaryFlowFunction
	ret              map[retKey]tabsolve.ReturnFlowFunction
	callToReturn     map[edgeKey]tabsolve.UnaryFlowFunction
	callNoneToReturn map[edgeKey]tabsolve.UnaryFlowFunction
}

// NewFunctions returns an empty Functions map; every lookup falls back to
// Identity until overridden.
func NewFunctions() *Functions {
	return &Functions{
		normal:           make(map[edgeKey]tabsolve.UnaryFlowFunction),
		call:             make(map[edgeKey]tabsolve.UnaryFlowFunction),
		ret:              make(map[retKey]tabsolve.ReturnFlowFunction),
		callToReturn:     make(map[edgeKey]tabsolve.UnaryFlowFunction),
		callNoneToReturn: make(map[edgeKey]tabsolve.UnaryFlowFunction),
	}
}

// Identity returns the flow function mapping every fact to itself.
func Identity() tabsolve.UnaryFlowFunction {
	return tabsolve.UnaryFlowFunc(func(d tabsolve.Fact) *intset.IntSet {
		return intset.Of(int(d))
	})
}

// Const returns a flow function that ignores its input and always produces
// targets.
func Const(targets ...int) tabsolve.UnaryFlowFunction {
	return tabsolve.UnaryFlowFunc(func(tabsolve.Fact) *intset.IntSet {
		return intset.Of(targets...)
	})
}

func (f *Functions) SetNormal(src, dst tabsolve.NodeID, fn tabsolve.UnaryFlowFunction) {
	f.normal[edgeKey{src, dst}] = fn
}

func (f *Functions) SetCall(call, callee tabsolve.NodeID, fn tabsolve.UnaryFlowFunction) {
	f.call[edgeKey{call, callee}] = fn
}

func (f *Functions) SetReturn(call, exit, rs tabsolve.NodeID, fn tabsolve.ReturnFlowFunction) {
	f.ret[retKey{call, exit, rs}] = fn
}

func (f *Functions) SetCallToReturn(call, rs tabsolve.NodeID, fn tabsolve.UnaryFlowFunction) {
	f.callToReturn[edgeKey{call, rs}] = fn
}

func (f *Functions) SetCallNoneToReturn(call, rs tabsolve.NodeID, fn tabsolve.UnaryFlowFunction) {
	f.callNoneToReturn[edgeKey{call, rs}] = fn
}

func (f *Functions) NormalFlowFunction(src, dst tabsolve.NodeID) tabsolve.UnaryFlowFunction {
	if fn, ok := f.normal[edgeKey{src, dst}]; ok {
		return fn
	}
	return Identity()
}

func (f *Functions) CallFlowFunction(call, callee tabsolve.NodeID) tabsolve.UnaryFlowFunction {
	if fn, ok := f.call[edgeKey{call, callee}]; ok {
		return fn
	}
	return Identity()
}

func (f *Functions) ReturnFlowFunction(call, exit, rs tabsolve.NodeID) tabsolve.ReturnFlowFunction {
	if fn, ok := f.ret[retKey{call, exit, rs}]; ok {
		return fn
	}
	return tabsolve.UnaryReturn(Identity())
}

func (f *Functions) CallToReturnFlowFunction(call, rs tabsolve.NodeID) tabsolve.UnaryFlowFunction {
	if fn, ok := f.callToReturn[edgeKey{call, rs}]; ok {
		return fn
	}
	return Identity()
}

func (f *Functions) CallNoneToReturnFlowFunction(call, rs tabsolve.NodeID) tabsolve.UnaryFlowFunction {
	if fn, ok := f.callNoneToReturn[edgeKey{call, rs}]; ok {
		return fn
	}
	return Identity()
}

// Problem is a hand-buildable tabsolve.TabulationProblem wiring a Graph and
// a Functions map together with a seed list.
type Problem struct {
	Graph   *Graph
	Funcs   *Functions
	Seeds   []tabsolve.PathEdge
	MergeFn tabsolve.MergeFunction
	Dom     tabsolve.Domain
}

// NewProblem wires g and f into a Problem with no seeds, merge function or
// custom domain.
func NewProblem(g *Graph, f *Functions) *Problem {
	return &Problem{Graph: g, Funcs: f}
}

// AddSeed appends a seed to the problem.
func (p *Problem) AddSeed(e tabsolve.PathEdge) { p.Seeds = append(p.Seeds, e) }

func (p *Problem) InitialSeeds() []tabsolve.PathEdge         { return p.Seeds }
func (p *Problem) Supergraph() tabsolve.Supergraph           { return p.Graph }
func (p *Problem) FunctionMap() tabsolve.FlowFunctionMap     { return p.Funcs }
func (p *Problem) MergeFunction() tabsolve.MergeFunction     { return p.MergeFn }

func (p *Problem) Domain() tabsolve.Domain {
	if p.Dom != nil {
		return p.Dom
	}
	return tabsolve.DefaultDomain{}
}
