// Package metrics provides Prometheus-compatible instrumentation for the
// tabulation solver, generalized from the teacher's graph.PrometheusMetrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SolverMetrics collects Prometheus metrics for solver execution, all
// namespaced "tabsolve_":
//
//  1. worklist_depth (gauge): pending path edges, labeled run_id.
//  2. memo_size (gauge): total entries across the three memo tables,
//     labeled run_id, table ("path_edges"|"summary_edges"|"call_flow_edges").
//  3. propagation_latency_ms (histogram): wall-clock time to process one
//     worklist iteration, labeled run_id.
//  4. flow_function_invocations_total (counter): flow-function calls,
//     labeled run_id, kind ("normal"|"call"|"return"|"call_to_return").
//  5. summary_reuse_total (counter): summary-edge lookups that hit an
//     already-recorded summary instead of recomputing the callee body
//     (Testable Property 4), labeled run_id.
//  6. cancellations_total (counter): solves that ended via cancellation.
type SolverMetrics struct {
	worklistDepth *prometheus.GaugeVec
	memoSize      *prometheus.GaugeVec

	propagationLatency *prometheus.HistogramVec

	flowFunctionInvocations *prometheus.CounterVec
	summaryReuse            *prometheus.CounterVec
	cancellations           *prometheus.CounterVec

	mu      sync.RWMutex
	enabled bool
}

// New creates and registers every solver metric with registry (uses
// prometheus.DefaultRegisterer if nil).
func New(registry prometheus.Registerer) *SolverMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	sm := &SolverMetrics{enabled: true}

	sm.worklistDepth = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tabsolve",
		Name:      "worklist_depth",
		Help:      "Number of pending path edges in the solver worklist",
	}, []string{"run_id"})

	sm.memoSize = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tabsolve",
		Name:      "memo_size",
		Help:      "Total entries recorded in a solver memo table",
	}, []string{"run_id", "table"})

	sm.propagationLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tabsolve",
		Name:      "propagation_latency_ms",
		Help:      "Wall-clock time to process one worklist iteration, in milliseconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100},
	}, []string{"run_id"})

	sm.flowFunctionInvocations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tabsolve",
		Name:      "flow_function_invocations_total",
		Help:      "Cumulative flow function invocations by kind",
	}, []string{"run_id", "kind"})

	sm.summaryReuse = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tabsolve",
		Name:      "summary_reuse_total",
		Help:      "Summary-edge lookups that reused an already-proven procedure summary",
	}, []string{"run_id"})

	sm.cancellations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tabsolve",
		Name:      "cancellations_total",
		Help:      "Solve invocations that ended via context cancellation",
	}, []string{"run_id"})

	return sm
}

// UpdateWorklistDepth sets the current worklist depth for runID.
func (sm *SolverMetrics) UpdateWorklistDepth(runID string, depth int) {
	if !sm.isEnabled() {
		return
	}
	sm.worklistDepth.WithLabelValues(runID).Set(float64(depth))
}

// UpdateMemoSize sets the current size of one memo table for runID.
func (sm *SolverMetrics) UpdateMemoSize(runID, table string, size int) {
	if !sm.isEnabled() {
		return
	}
	sm.memoSize.WithLabelValues(runID, table).Set(float64(size))
}

// RecordPropagationLatency records how long one worklist iteration took.
func (sm *SolverMetrics) RecordPropagationLatency(runID string, d time.Duration) {
	if !sm.isEnabled() {
		return
	}
	sm.propagationLatency.WithLabelValues(runID).Observe(float64(d.Microseconds()) / 1000)
}

// IncrementFlowFunctionInvocations increments the flow-function invocation
// counter for the given edge kind.
func (sm *SolverMetrics) IncrementFlowFunctionInvocations(runID, kind string) {
	if !sm.isEnabled() {
		return
	}
	sm.flowFunctionInvocations.WithLabelValues(runID, kind).Inc()
}

// IncrementSummaryReuse increments the summary-edge reuse counter.
func (sm *SolverMetrics) IncrementSummaryReuse(runID string) {
	if !sm.isEnabled() {
		return
	}
	sm.summaryReuse.WithLabelValues(runID).Inc()
}

// IncrementCancellations increments the cancellation counter.
func (sm *SolverMetrics) IncrementCancellations(runID string) {
	if !sm.isEnabled() {
		return
	}
	sm.cancellations.WithLabelValues(runID).Inc()
}

// Disable temporarily turns off metric recording (useful for tests).
func (sm *SolverMetrics) Disable() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enabled = false
}

// Enable re-enables metric recording after Disable.
func (sm *SolverMetrics) Enable() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enabled = true
}

func (sm *SolverMetrics) isEnabled() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.enabled
}
