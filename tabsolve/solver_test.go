package tabsolve_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifds-go/tabsolve"
	"github.com/ifds-go/tabsolve/diag"
	"github.com/ifds-go/tabsolve/fixture"
	"github.com/ifds-go/tabsolve/intset"
	"github.com/ifds-go/tabsolve/metrics"
)

// S1: single-procedure pass-through.
func TestSolve_PassThrough(t *testing.T) {
	g := fixture.NewGraph()
	p := g.NewProcedure()
	s := g.AddNode(p, tabsolve.KindEntry)
	n := g.AddNode(p, tabsolve.KindNormal)
	x := g.AddNode(p, tabsolve.KindExit)
	g.AddEdge(s, n)
	g.AddEdge(n, x)

	prob := fixture.NewProblem(g, fixture.NewFunctions())
	prob.AddSeed(tabsolve.NewPathEdge(s, 0, s, 0))

	solver, err := tabsolve.New(prob)
	require.NoError(t, err)

	res, err := solver.Solve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0}, res.GetResult(n).Slice())
	assert.Equal(t, []int{0}, res.GetResult(x).Slice())
	assert.Equal(t, []int{0}, res.GetSummaryTargets(s, 0, x).Slice())
}

// S2: cross-procedure call summary — callee invoked from two call sites;
// one callee-indexed summary edge is recorded and both return sites receive
// the fact.
func TestSolve_SummaryReuse(t *testing.T) {
	g := fixture.NewGraph()

	procB := g.NewProcedure()
	sB := g.AddNode(procB, tabsolve.KindEntry)
	nB := g.AddNode(procB, tabsolve.KindNormal)
	xB := g.AddNode(procB, tabsolve.KindExit)
	g.AddEdge(sB, nB)
	g.AddEdge(nB, xB)

	procA := g.NewProcedure()
	sA := g.AddNode(procA, tabsolve.KindEntry)
	c1 := g.AddNode(procA, tabsolve.KindCall)
	rs1 := g.AddNode(procA, tabsolve.KindReturnSite)
	c2 := g.AddNode(procA, tabsolve.KindCall)
	rs2 := g.AddNode(procA, tabsolve.KindReturnSite)
	xA := g.AddNode(procA, tabsolve.KindExit)

	g.AddEdge(sA, c1)
	g.AddCallEdge(c1, sB)
	g.AddReturnSite(c1, rs1)
	g.AddExitReturnEdge(xB, rs1)
	g.AddEdge(rs1, c2)
	g.AddCallEdge(c2, sB)
	g.AddReturnSite(c2, rs2)
	g.AddExitReturnEdge(xB, rs2)
	g.AddEdge(rs2, xA)

	prob := fixture.NewProblem(g, fixture.NewFunctions())
	prob.AddSeed(tabsolve.NewPathEdge(sA, 0, sA, 0))

	solver, err := tabsolve.New(prob)
	require.NoError(t, err)

	res, err := solver.Solve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0}, res.GetSummaryTargets(sB, 0, xB).Slice())
	assert.Equal(t, []int{0}, res.GetResult(rs1).Slice())
	assert.Equal(t, []int{0}, res.GetResult(rs2).Slice())
}

// S3: exceptional return — two exits with disjoint return sites must not
// cross-propagate.
func TestSolve_ExceptionalReturn(t *testing.T) {
	g := fixture.NewGraph()

	procB := g.NewProcedure()
	sB := g.AddNode(procB, tabsolve.KindEntry)
	xn := g.AddNode(procB, tabsolve.KindExit)
	xe := g.AddNode(procB, tabsolve.KindExit)
	g.AddEdge(sB, xn)
	g.AddEdge(sB, xe)

	procA := g.NewProcedure()
	sA := g.AddNode(procA, tabsolve.KindEntry)
	call := g.AddNode(procA, tabsolve.KindCall)
	rn := g.AddNode(procA, tabsolve.KindReturnSite)
	re := g.AddNode(procA, tabsolve.KindReturnSite)

	g.AddEdge(sA, call)
	g.AddCallEdge(call, sB)
	g.AddReturnSite(call, rn)
	g.AddReturnSite(call, re)
	g.AddExitReturnEdge(xn, rn)
	g.AddExitReturnEdge(xe, re)

	// The bypass contributes nothing, and each exit's return flow produces a
	// distinct fact, so any exit->return-site cross-propagation would show
	// up as an extra fact (the default identity return flow yields 0).
	funcs := fixture.NewFunctions()
	funcs.SetCallToReturn(call, rn, fixture.Const())
	funcs.SetCallToReturn(call, re, fixture.Const())
	funcs.SetReturn(call, xn, rn, tabsolve.UnaryReturn(fixture.Const(1)))
	funcs.SetReturn(call, xe, re, tabsolve.UnaryReturn(fixture.Const(2)))

	prob := fixture.NewProblem(g, funcs)
	prob.AddSeed(tabsolve.NewPathEdge(sA, 0, sA, 0))

	solver, err := tabsolve.New(prob)
	require.NoError(t, err)

	res, err := solver.Solve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1}, res.GetResult(rn).Slice())
	assert.Equal(t, []int{2}, res.GetResult(re).Slice())
}

// S4: binary return flow function reading both caller and callee facts.
func TestSolve_BinaryReturnFlow(t *testing.T) {
	g := fixture.NewGraph()

	procB := g.NewProcedure()
	sB := g.AddNode(procB, tabsolve.KindEntry)
	xB := g.AddNode(procB, tabsolve.KindExit)
	g.AddEdge(sB, xB)

	procA := g.NewProcedure()
	sA := g.AddNode(procA, tabsolve.KindEntry)
	call := g.AddNode(procA, tabsolve.KindCall)
	rs := g.AddNode(procA, tabsolve.KindReturnSite)

	g.AddEdge(sA, call)
	g.AddCallEdge(call, sB)
	g.AddReturnSite(call, rs)
	g.AddExitReturnEdge(xB, rs)

	funcs := fixture.NewFunctions()
	funcs.SetCall(call, sB, fixture.Const(2))
	// No call-to-return bypass, so rs holds only the binary return's result.
	funcs.SetCallToReturn(call, rs, fixture.Const())
	funcs.SetReturn(call, xB, rs, tabsolve.BinaryReturn(tabsolve.BinaryReturnFlowFunc(
		func(callFact, exitFact tabsolve.Fact) *intset.IntSet {
			return intset.Of(int(callFact) + int(exitFact))
		},
	)))

	prob := fixture.NewProblem(g, funcs)
	prob.AddSeed(tabsolve.NewPathEdge(sA, 1, sA, 1))

	solver, err := tabsolve.New(prob)
	require.NoError(t, err)

	res, err := solver.Solve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{3}, res.GetResult(rs).Slice())
}

// S5: merge function collapses two propagations into one.
func TestSolve_MergeCollapsing(t *testing.T) {
	g := fixture.NewGraph()
	p := g.NewProcedure()
	s := g.AddNode(p, tabsolve.KindEntry)
	n := g.AddNode(p, tabsolve.KindNormal)
	g.AddEdge(s, n)

	funcs := fixture.NewFunctions()
	funcs.SetNormal(s, n, fixture.Const(2, 5))

	prob := fixture.NewProblem(g, funcs)
	prob.MergeFn = tabsolve.MergeFunc(func(preExisting *intset.IntSet, newFact tabsolve.Fact) tabsolve.Fact {
		max := newFact
		preExisting.Foreach(func(v int) {
			if tabsolve.Fact(v) > max {
				max = tabsolve.Fact(v)
			}
		})
		return max
	})
	prob.AddSeed(tabsolve.NewPathEdge(s, 0, s, 0))

	solver, err := tabsolve.New(prob)
	require.NoError(t, err)

	res, err := solver.Solve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{5}, res.GetResult(n).Slice())
}

// S6: cancellation mid-solve yields a partial, internally-consistent Result.
func TestSolve_CancellationMidSolve(t *testing.T) {
	g := fixture.NewGraph()
	p := g.NewProcedure()
	s := g.AddNode(p, tabsolve.KindEntry)
	prev := s
	for i := 0; i < 200; i++ {
		next := g.AddNode(p, tabsolve.KindNormal)
		g.AddEdge(prev, next)
		prev = next
	}

	prob := fixture.NewProblem(g, fixture.NewFunctions())
	prob.AddSeed(tabsolve.NewPathEdge(s, 0, s, 0))

	solver, err := tabsolve.New(prob)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = solver.Solve(ctx)
	require.Error(t, err)

	var cancelErr *tabsolve.CancellationError
	require.ErrorAs(t, err, &cancelErr)
	assert.NotNil(t, cancelErr.Partial)
}

// Running Solve twice with no new seeds is a no-op (Testable Property 1).
func TestSolve_IdempotentRerun(t *testing.T) {
	g := fixture.NewGraph()
	p := g.NewProcedure()
	s := g.AddNode(p, tabsolve.KindEntry)
	n := g.AddNode(p, tabsolve.KindNormal)
	g.AddEdge(s, n)

	prob := fixture.NewProblem(g, fixture.NewFunctions())
	prob.AddSeed(tabsolve.NewPathEdge(s, 0, s, 0))

	solver, err := tabsolve.New(prob)
	require.NoError(t, err)

	res1, err := solver.Solve(context.Background())
	require.NoError(t, err)
	res2, err := solver.Solve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, res1.GetResult(n).Slice(), res2.GetResult(n).Slice())
}

func TestNew_RejectsNilProblem(t *testing.T) {
	_, err := tabsolve.New(nil)
	require.Error(t, err)
}

// recordingDiagnostics captures every event emitted during a solve, for
// assertions on which lifecycle/batch messages the solver actually sends.
type recordingDiagnostics struct {
	events []diag.Event
}

func (r *recordingDiagnostics) Emit(e diag.Event) { r.events = append(r.events, e) }
func (r *recordingDiagnostics) EmitBatch(_ context.Context, es []diag.Event) error {
	r.events = append(r.events, es...)
	return nil
}
func (r *recordingDiagnostics) Flush(context.Context) error { return nil }

func (r *recordingDiagnostics) hasMsg(msg string) bool {
	for _, e := range r.events {
		if e.Msg == msg {
			return true
		}
	}
	return false
}

// The solver must emit a diagnostics event for every processCall/processExit
// batch, not just solve-level lifecycle events.
func TestSolve_EmitsProcessCallAndProcessExitEvents(t *testing.T) {
	g := fixture.NewGraph()

	procB := g.NewProcedure()
	sB := g.AddNode(procB, tabsolve.KindEntry)
	xB := g.AddNode(procB, tabsolve.KindExit)
	g.AddEdge(sB, xB)

	procA := g.NewProcedure()
	sA := g.AddNode(procA, tabsolve.KindEntry)
	call := g.AddNode(procA, tabsolve.KindCall)
	rs := g.AddNode(procA, tabsolve.KindReturnSite)

	g.AddEdge(sA, call)
	g.AddCallEdge(call, sB)
	g.AddReturnSite(call, rs)
	g.AddExitReturnEdge(xB, rs)

	prob := fixture.NewProblem(g, fixture.NewFunctions())
	prob.AddSeed(tabsolve.NewPathEdge(sA, 0, sA, 0))

	rec := &recordingDiagnostics{}
	solver, err := tabsolve.New(prob, tabsolve.WithDiagnostics(rec))
	require.NoError(t, err)

	_, err = solver.Solve(context.Background())
	require.NoError(t, err)

	assert.True(t, rec.hasMsg("solve_start"))
	assert.True(t, rec.hasMsg("solve_complete"))
	assert.True(t, rec.hasMsg("process_call"))
	assert.True(t, rec.hasMsg("process_exit"))
}

// The solver must keep the memo_size gauge current as the worklist drains,
// not just expose it for tests to call directly.
func TestSolve_UpdatesMemoSizeMetric(t *testing.T) {
	g := fixture.NewGraph()

	procB := g.NewProcedure()
	sB := g.AddNode(procB, tabsolve.KindEntry)
	xB := g.AddNode(procB, tabsolve.KindExit)
	g.AddEdge(sB, xB)

	procA := g.NewProcedure()
	sA := g.AddNode(procA, tabsolve.KindEntry)
	call := g.AddNode(procA, tabsolve.KindCall)
	rs := g.AddNode(procA, tabsolve.KindReturnSite)

	g.AddEdge(sA, call)
	g.AddCallEdge(call, sB)
	g.AddReturnSite(call, rs)
	g.AddExitReturnEdge(xB, rs)

	prob := fixture.NewProblem(g, fixture.NewFunctions())
	prob.AddSeed(tabsolve.NewPathEdge(sA, 0, sA, 0))

	reg := prometheus.NewRegistry()
	sm := metrics.New(reg)
	solver, err := tabsolve.New(prob, tabsolve.WithMetrics(sm))
	require.NoError(t, err)

	_, err = solver.Solve(context.Background())
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	var sawNonZero bool
	for _, f := range families {
		if f.GetName() != "tabsolve_memo_size" {
			continue
		}
		for _, m := range f.GetMetric() {
			if m.GetGauge().GetValue() > 0 {
				sawNonZero = true
			}
		}
	}
	assert.True(t, sawNonZero, "expected at least one non-zero tabsolve_memo_size sample")
}

// GetReachedFacts gives callers the NodeFact-typed view of a Result.
func TestResult_GetReachedFacts(t *testing.T) {
	g := fixture.NewGraph()
	p := g.NewProcedure()
	s := g.AddNode(p, tabsolve.KindEntry)
	n := g.AddNode(p, tabsolve.KindNormal)
	g.AddEdge(s, n)

	prob := fixture.NewProblem(g, fixture.NewFunctions())
	prob.AddSeed(tabsolve.NewPathEdgeFromFacts(
		tabsolve.NodeFact{Node: s, Fact: 0},
		tabsolve.NodeFact{Node: s, Fact: 0},
	))

	solver, err := tabsolve.New(prob)
	require.NoError(t, err)

	res, err := solver.Solve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []tabsolve.NodeFact{{Node: n, Fact: 0}}, res.GetReachedFacts(n))
}
