package tabsolve

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/ifds-go/tabsolve/diag"
	"github.com/ifds-go/tabsolve/metrics"
)

// Option is a functional option for configuring a Solver, following the
// same pattern as the teacher's graph.Option: chainable, self-documenting
// With... constructors collected into an internal config struct before
// being applied.
type Option func(*solverConfig) error

// solverConfig collects options before they are applied to a Solver. The
// indirection lets New validate and compose options before construction.
type solverConfig struct {
	evictionInterval int
	metrics          *metrics.SolverMetrics
	diagnostics      diag.Diagnostics
	tieBreak         func(a, b PathEdge) bool
}

func defaultSolverConfig() *solverConfig {
	return &solverConfig{
		diagnostics: diag.NullDiagnostics{},
	}
}

// WithEvictionInterval runs every registered soft-eviction hook once every
// n worklist iterations (§5 "Memory management"). A value of 0 (the
// default) disables eviction entirely; hooks are never required for
// correctness, only for bounding auxiliary collaborator caches.
func WithEvictionInterval(n int) Option {
	return func(cfg *solverConfig) error {
		cfg.evictionInterval = n
		return nil
	}
}

// WithMetrics attaches a SolverMetrics collector that the solver updates as
// it runs: worklist depth, memo-table sizes, propagation latency and
// summary-edge reuse counts.
func WithMetrics(m *metrics.SolverMetrics) Option {
	return func(cfg *solverConfig) error {
		cfg.metrics = m
		return nil
	}
}

// WithDiagnostics attaches a Diagnostics sink for progress-reporting events.
// Diagnostics are peripheral (§1): the default, NullDiagnostics, has no
// overhead on the propagation hot path.
func WithDiagnostics(d diag.Diagnostics) Option {
	return func(cfg *solverConfig) error {
		if d != nil {
			cfg.diagnostics = d
		}
		return nil
	}
}

// WithWorklistTieBreak installs a secondary comparator for the worklist,
// consulted whenever the problem's Domain.HasPriorityOver expresses no
// preference between two pending edges (§4.5). It runs before the
// worklist's final insertion-sequence tie-break, and like Domain itself has
// no effect on the computed fixed point — only on processing order.
func WithWorklistTieBreak(tieBreak func(a, b PathEdge) bool) Option {
	return func(cfg *solverConfig) error {
		cfg.tieBreak = tieBreak
		return nil
	}
}

// WithTracer attaches an OpenTelemetry tracer the solver uses for
// diagnostics, equivalent to WithDiagnostics(diag.NewOtelDiagnostics(tracer)):
// one span per Solve invocation, with a child span per processCall/
// processExit batch nested underneath it. A later WithDiagnostics option
// overrides this one; options are applied in the order given.
func WithTracer(tracer trace.Tracer) Option {
	return func(cfg *solverConfig) error {
		if tracer != nil {
			cfg.diagnostics = diag.NewOtelDiagnostics(tracer)
		}
		return nil
	}
}
