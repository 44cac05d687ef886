package tabsolve

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ifds-go/tabsolve/diag"
	"github.com/ifds-go/tabsolve/intset"
)

// Solver runs the interprocedural tabulation algorithm to a fixed point
// (§4.1). It owns every memo table exclusively; a Result obtained from it
// is a read-only borrow valid only for the solver's lifetime (§9 Design
// Notes).
//
// Solver is single-threaded and cooperative (§5): solve(ctx) runs a tight
// loop on the calling goroutine, checking ctx once per worklist iteration.
// It is not safe to call Solve or AddSeed concurrently from multiple
// goroutines.
type Solver struct {
	problem TabulationProblem
	sg      Supergraph
	fm      FlowFunctionMap
	mergeFn MergeFunction
	domain  Domain

	worklist *Worklist

	pathEdgesByEntry   map[NodeID]*LocalPathEdges
	summaryEdgesByProc map[ProcID]*LocalSummaryEdges
	callFlowByEntry    map[NodeID]*CallFlowEdges

	seeds       []PathEdge
	initialized bool
	iteration   int
	runID       string

	cfg *solverConfig

	evictionHooks []func(ctx context.Context) error
}

// New constructs a Solver for problem. problem, its Supergraph and its
// FunctionMap must be non-nil; construction fails with a *SolverError
// otherwise (§7: "Argument violation ... null problem on construction").
func New(problem TabulationProblem, opts ...Option) (*Solver, error) {
	if problem == nil {
		return nil, &SolverError{Message: "problem must not be nil", Code: "NIL_PROBLEM"}
	}
	sg := problem.Supergraph()
	fm := problem.FunctionMap()
	if sg == nil {
		return nil, &SolverError{Message: "problem supplied a nil supergraph", Code: "NIL_SUPERGRAPH"}
	}
	if fm == nil {
		return nil, &SolverError{Message: "problem supplied a nil function map", Code: "NIL_FUNCTION_MAP"}
	}

	cfg := defaultSolverConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	domain := problem.Domain()
	worklist := NewWorklist(domain)
	if cfg.tieBreak != nil {
		worklist.SetTieBreak(cfg.tieBreak)
	}
	return &Solver{
		problem:            problem,
		sg:                 sg,
		fm:                 fm,
		mergeFn:            problem.MergeFunction(),
		domain:             domain,
		worklist:           worklist,
		pathEdgesByEntry:   make(map[NodeID]*LocalPathEdges),
		summaryEdgesByProc: make(map[ProcID]*LocalSummaryEdges),
		callFlowByEntry:    make(map[NodeID]*CallFlowEdges),
		cfg:                cfg,
	}, nil
}

// RegisterEvictionHook registers a periodic hook run every
// WithEvictionInterval worklist iterations (§5 "Memory management"). Hooks
// may evict collaborator-owned auxiliary caches; they must never touch
// solver memo state, and their errors never interrupt the fixed-point
// computation — they are aggregated and surfaced through diagnostics only.
func (s *Solver) RegisterEvictionHook(hook func(ctx context.Context) error) {
	s.evictionHooks = append(s.evictionHooks, hook)
}

// GetSupergraph returns the supergraph this solver was constructed with.
func (s *Solver) GetSupergraph() Supergraph { return s.sg }

// GetProblem returns the problem this solver was constructed with.
func (s *Solver) GetProblem() TabulationProblem { return s.problem }

// GetSeeds returns an immutable snapshot of every seed inserted so far, in
// insertion order (§9: "implementations may use an insertion-ordered
// container to make solves reproducible").
func (s *Solver) GetSeeds() []PathEdge {
	return append([]PathEdge(nil), s.seeds...)
}

// GetResult returns a read-only view over the solver's current memo state.
// It may be called at any time, including mid-solve.
func (s *Solver) GetResult() *Result {
	return s.snapshotResult()
}

// AddSeed inserts a new seed and propagates it immediately. It may be
// called before the first Solve, or between/after Solve calls to reuse
// already-computed summaries for a new seed (§4.1).
func (s *Solver) AddSeed(e PathEdge) {
	s.seeds = append(s.seeds, e)
	s.propagate(e.Entry, e.D1, e.Target, e.D2)
}

// Solve runs the worklist to a fixed point and returns the resulting
// Result. If ctx is cancelled before the worklist drains, Solve returns a
// partial Result together with a *CancellationError wrapping it; invariants
// 3 and 7 of §3 still hold over that partial state (Testable Property 8).
//
// Calling Solve again with no new seeds added in between is a no-op
// (Testable Property 1): initial seeding runs only once per Solver.
func (s *Solver) Solve(ctx context.Context) (*Result, error) {
	s.runID = uuid.New().String()
	s.cfg.diagnostics.Emit(diag.Event{RunID: s.runID, Msg: "solve_start"})

	if !s.initialized {
		for _, seed := range s.problem.InitialSeeds() {
			s.seeds = append(s.seeds, seed)
			s.propagate(seed.Entry, seed.D1, seed.Target, seed.D2)
		}
		s.initialized = true
	}

	for {
		select {
		case <-ctx.Done():
			partial := s.snapshotResult()
			if s.cfg.metrics != nil {
				s.cfg.metrics.IncrementCancellations(s.runID)
			}
			s.cfg.diagnostics.Emit(diag.Event{RunID: s.runID, Step: s.iteration, Msg: "solve_cancelled"})
			return partial, &CancellationError{Cause: ctx.Err(), Partial: partial}
		default:
		}

		e, ok := s.worklist.Take()
		if !ok {
			break
		}
		s.iteration++
		start := time.Now()

		j := s.merge(e.Entry, e.D1, e.Target, e.D2)
		if j == NoFact {
			continue
		}
		if j != e.D2 {
			s.propagate(e.Entry, e.D1, e.Target, j)
			continue
		}

		switch s.sg.Kind(e.Target) {
		case KindCall:
			s.cfg.diagnostics.Emit(diag.Event{
				RunID: s.runID, Step: s.iteration, NodeGlobalNumber: s.sg.GlobalNumber(e.Target),
				Msg: "process_call",
			})
			s.processCall(e)
		case KindExit:
			s.cfg.diagnostics.Emit(diag.Event{
				RunID: s.runID, Step: s.iteration, NodeGlobalNumber: s.sg.GlobalNumber(e.Target),
				Msg: "process_exit",
			})
			s.processExit(e)
		default:
			s.processNormal(e)
		}

		if s.cfg.metrics != nil {
			s.cfg.metrics.UpdateWorklistDepth(s.runID, s.worklist.Len())
			s.cfg.metrics.RecordPropagationLatency(s.runID, time.Since(start))
			pathEdges, summaryEdges, callFlowEdges := s.memoSizes()
			s.cfg.metrics.UpdateMemoSize(s.runID, "path_edges", pathEdges)
			s.cfg.metrics.UpdateMemoSize(s.runID, "summary_edges", summaryEdges)
			s.cfg.metrics.UpdateMemoSize(s.runID, "call_flow_edges", callFlowEdges)
		}

		if s.cfg.evictionInterval > 0 && s.iteration%s.cfg.evictionInterval == 0 {
			if err := s.runEvictionHooks(ctx); err != nil {
				s.cfg.diagnostics.Emit(diag.Event{
					RunID: s.runID, Step: s.iteration, Msg: "eviction_hook_error",
					Meta: map[string]interface{}{"error": err.Error()},
				})
			}
		}
	}

	s.cfg.diagnostics.Emit(diag.Event{RunID: s.runID, Step: s.iteration, Msg: "solve_complete"})
	return s.snapshotResult(), nil
}

func (s *Solver) runEvictionHooks(ctx context.Context) error {
	errs := make([]error, 0, len(s.evictionHooks))
	for _, hook := range s.evictionHooks {
		errs = append(errs, hook(ctx))
	}
	return evictionHookError(errs)
}

// propagate records (entry, i, n, j) in n's procedure-entry LocalPathEdges
// table, and on any change enqueues the resulting edge. It is the only
// mutator of LocalPathEdges (§4.1).
//
// When no merge function is configured, this is a plain additive insert.
// When one is configured, propagate folds the merge in eagerly — via
// ReplacePathEdge rather than AddPathEdge — so that forward[n, i] is kept
// collapsed to at most one fact as §8 Testable Property 6 requires; the
// main loop's own merge() call (run after a pop) then acts purely as a
// staleness filter for worklist entries a later propagate has since
// superseded, which is still exactly where the spec's pseudocode places it.
func (s *Solver) propagate(entry NodeID, i Fact, n NodeID, j Fact) {
	assertf(i >= 0, "NEGATIVE_FACT", "d1 must be non-negative, got %d", i)
	assertf(j >= 0, "NEGATIVE_FACT", "d2 must be non-negative, got %d", j)

	nLocal := s.sg.LocalBlockNumber(n)
	assertf(nLocal >= 0, "NEGATIVE_LOCAL_BLOCK", "local block number must be non-negative, got %d for node %d", nLocal, n)

	lpe := s.localPathEdges(entry)

	if s.mergeFn == nil {
		if lpe.AddPathEdge(i, nLocal, j) {
			s.worklist.Insert(NewPathEdge(entry, i, n, j))
		}
		return
	}

	merged := s.merge(entry, i, n, j)
	if merged == NoFact {
		return
	}
	if lpe.ReplacePathEdge(i, nLocal, merged) {
		s.worklist.Insert(NewPathEdge(entry, i, n, merged))
	}
}

// merge resolves (entry, i, n, j) against any facts already recorded at
// (n, i) through the problem's merge function, implementing §4.1's merge
// rule exactly. Returns j unchanged when no merge function is configured.
func (s *Solver) merge(entry NodeID, i Fact, n NodeID, j Fact) Fact {
	if s.mergeFn == nil {
		return j
	}
	nLocal := s.sg.LocalBlockNumber(n)
	p := s.localPathEdges(entry).GetReachable(nLocal, i)
	if p.IsEmpty() {
		return j
	}
	if p.Size() == 1 && p.Contains(int(j)) {
		return j
	}
	return s.mergeFn.Merge(p, j)
}

// processNormal applies the unary normal flow function to every successor
// of a normal node (§4.1, POPL lines 33-37).
func (s *Solver) processNormal(e PathEdge) {
	for _, m := range s.sg.SuccNodes(e.Target) {
		ff := s.fm.NormalFlowFunction(e.Target, m)
		s.countFlowFunction("normal")
		normalizeTargets(ff.Targets(e.D2)).Foreach(func(d3 int) {
			s.propagate(e.Entry, e.D1, m, Fact(d3))
		})
	}
}

// processCall implements §4.1's extended processCall: callee entry,
// summary replay, normal successors of the call node, and the
// call-to-return bypass (POPL lines 14-19, extended).
func (s *Solver) processCall(e PathEdge) {
	call := e.Target
	callGlobal := s.sg.GlobalNumber(call)

	for _, callee := range s.sg.CalledNodes(call) {
		callFF := s.fm.CallFlowFunction(call, callee)
		s.countFlowFunction("call")
		calleeProc := s.sg.ProcOf(callee)
		sLocal := s.sg.LocalBlockNumber(callee)

		normalizeTargets(callFF.Targets(e.D2)).Foreach(func(di1 int) {
			d1 := Fact(di1)

			s.propagate(callee, d1, callee, d1)
			s.callFlowEdges(callee).AddCallEdge(callGlobal, e.D2, d1)

			for _, x := range s.sg.ExitsForProcedure(calleeProc) {
				xLocal := s.sg.LocalBlockNumber(x)
				reachedBySummary := s.summaryEdges(calleeProc).GetSummaryEdges(sLocal, xLocal, d1)
				if reachedBySummary.IsEmpty() {
					continue
				}
				if s.cfg.metrics != nil {
					s.cfg.metrics.IncrementSummaryReuse(s.runID)
				}
				succOfX := s.sg.SuccNodeNumbers(x)
				for _, rs := range s.sg.ReturnSites(call) {
					if !succOfX.Contains(s.sg.GlobalNumber(rs)) {
						continue
					}
					retf := s.fm.ReturnFlowFunction(call, x, rs)
					s.countFlowFunction("return")
					s.replaySummary(e, retf, reachedBySummary, rs)
				}
			}
		})
	}

	for _, m := range s.sg.NormalSuccessors(call) {
		ff := s.fm.NormalFlowFunction(call, m)
		s.countFlowFunction("normal")
		normalizeTargets(ff.Targets(e.D2)).Foreach(func(d3 int) {
			s.propagate(e.Entry, e.D1, m, Fact(d3))
		})
	}

	callerProc := s.sg.ProcOf(call)
	for _, rs := range s.sg.ReturnSites(call) {
		var ff UnaryFlowFunction
		if s.returnSiteHasCallee(rs, callerProc) {
			ff = s.fm.CallToReturnFlowFunction(call, rs)
		} else {
			ff = s.fm.CallNoneToReturnFlowFunction(call, rs)
		}
		s.countFlowFunction("call_to_return")
		normalizeTargets(ff.Targets(e.D2)).Foreach(func(dx int) {
			s.propagate(e.Entry, e.D1, rs, Fact(dx))
		})
	}
}

// replaySummary applies retf to every d2 already proven reachable through
// the callee summary, propagating each resulting d5 to rs.
func (s *Solver) replaySummary(e PathEdge, retf ReturnFlowFunction, reachedBySummary *intset.IntSet, rs NodeID) {
	reachedBySummary.Foreach(func(di2 int) {
		d2 := Fact(di2)
		var d5s *intset.IntSet
		switch rf := retf.(type) {
		case unaryReturn:
			d5s = normalizeTargets(rf.Targets(d2))
		case binaryReturn:
			d5s = normalizeTargets(rf.Targets(e.D2, d2))
		}
		d5s.Foreach(func(di5 int) {
			s.propagate(e.Entry, e.D1, rs, Fact(di5))
		})
	})
}

// returnSiteHasCallee reports whether rs has any resolved callee, per §4.1:
// "determined by inspecting predecessors of the return site: if any
// predecessor belongs to a different procedure, the return site has a
// callee."
func (s *Solver) returnSiteHasCallee(rs NodeID, callerProc ProcID) bool {
	for _, pred := range s.sg.PredNodes(rs) {
		if s.sg.ProcOf(pred) != callerProc {
			return true
		}
	}
	return false
}

// processExit implements §4.1's extended processExit: summary recording and
// propagation back to every caller whose call-flow edges reached this exit
// (POPL lines 21-32, extended).
func (s *Solver) processExit(e PathEdge) {
	proc := s.sg.ProcOf(e.Target)
	sLocal := s.sg.LocalBlockNumber(e.Entry)
	xLocal := s.sg.LocalBlockNumber(e.Target)
	s.summaryEdges(proc).InsertSummaryEdge(sLocal, xLocal, e.D1, e.D2)

	succ := s.sg.SuccNodeNumbers(e.Target)
	if succ.IsEmpty() {
		return // root-procedure exit: no callers to resume
	}

	for _, c := range s.sg.PredNodes(e.Entry) {
		callGlobal := s.sg.GlobalNumber(c)
		d4 := s.callFlowEdges(e.Entry).GetCallFlowSources(callGlobal, e.D1)
		if d4 == nil {
			continue
		}
		s.propagateToReturnSites(e, succ, c, d4)
	}
}

// propagateToReturnSites is §4.1.a: for each return site of caller c that is
// actually reachable from this exit, reconstruct every caller-side fact d3
// that originally produced d4 and propagate the return flow function's
// result onward from the caller's own entry.
func (s *Solver) propagateToReturnSites(e PathEdge, succ *intset.IntSet, c NodeID, d4 *intset.IntSet) {
	callerProc := s.sg.ProcOf(c)
	cLocal := s.sg.LocalBlockNumber(c)

	for _, rs := range s.sg.ReturnSites(c) {
		if !succ.Contains(s.sg.GlobalNumber(rs)) {
			continue
		}
		retf := s.fm.ReturnFlowFunction(c, e.Target, rs)
		s.countFlowFunction("return")

		switch rf := retf.(type) {
		case binaryReturn:
			d4.Foreach(func(di4 int) {
				d4f := Fact(di4)
				normalizeTargets(rf.Targets(d4f, e.D2)).Foreach(func(di5 int) {
					d5 := Fact(di5)
					s.resumeCallers(callerProc, cLocal, d4f, rs, d5)
				})
			})
		case unaryReturn:
			d5s := normalizeTargets(rf.Targets(e.D2))
			d4.Foreach(func(di4 int) {
				d4f := Fact(di4)
				d5s.Foreach(func(di5 int) {
					s.resumeCallers(callerProc, cLocal, d4f, rs, Fact(di5))
				})
			})
		}
	}
}

// resumeCallers iterates every entry of the caller's own procedure,
// reconstructing the caller-side facts d3 that produced d4 at the call node
// and propagating d5 onward to rs from each such (entry, d3).
func (s *Solver) resumeCallers(callerProc ProcID, cLocal int, d4 Fact, rs NodeID, d5 Fact) {
	for _, sp := range s.sg.EntriesForProcedure(callerProc) {
		s.localPathEdges(sp).GetInverse(cLocal, d4).Foreach(func(di3 int) {
			s.propagate(sp, Fact(di3), rs, d5)
		})
	}
}

func (s *Solver) localPathEdges(entry NodeID) *LocalPathEdges {
	lpe, ok := s.pathEdgesByEntry[entry]
	if !ok {
		lpe = NewLocalPathEdges(s.mergeFn != nil)
		s.pathEdgesByEntry[entry] = lpe
	}
	return lpe
}

func (s *Solver) summaryEdges(proc ProcID) *LocalSummaryEdges {
	se, ok := s.summaryEdgesByProc[proc]
	if !ok {
		se = NewLocalSummaryEdges()
		s.summaryEdgesByProc[proc] = se
	}
	return se
}

func (s *Solver) callFlowEdges(entry NodeID) *CallFlowEdges {
	cfe, ok := s.callFlowByEntry[entry]
	if !ok {
		cfe = NewCallFlowEdges()
		s.callFlowByEntry[entry] = cfe
	}
	return cfe
}

// memoSizes returns the total entry count across every procedure-entry's
// LocalPathEdges, every procedure's LocalSummaryEdges, and every callee
// entry's CallFlowEdges — the three "memo_size" gauge readings (§5 "Memory
// management").
func (s *Solver) memoSizes() (pathEdges, summaryEdges, callFlowEdges int) {
	for _, lpe := range s.pathEdgesByEntry {
		pathEdges += lpe.Size()
	}
	for _, se := range s.summaryEdgesByProc {
		summaryEdges += se.Size()
	}
	for _, cfe := range s.callFlowByEntry {
		callFlowEdges += cfe.Size()
	}
	return
}

func (s *Solver) countFlowFunction(kind string) {
	if s.cfg.metrics != nil {
		s.cfg.metrics.IncrementFlowFunctionInvocations(s.runID, kind)
	}
}

// normalizeTargets folds a nil flow-function result into the canonical
// empty set (§9 Design Notes: "normalize null-as-empty at the boundary").
func normalizeTargets(ts *intset.IntSet) *intset.IntSet {
	if ts == nil {
		return intset.Empty
	}
	return ts
}

func (s *Solver) snapshotResult() *Result {
	return &Result{
		sg:                 s.sg,
		pathEdgesByEntry:   s.pathEdgesByEntry,
		summaryEdgesByProc: s.summaryEdgesByProc,
		seeds:              append([]PathEdge(nil), s.seeds...),
	}
}
