// Package diag provides progress-reporting and observability plumbing for
// the tabulation solver — peripheral to the fixed-point computation itself
// (spec §1: "Progress reporting, logging, debugging caches — peripheral"),
// generalized from the teacher's graph/emit package.
package diag

// Event is a single observability event emitted during a solve.
type Event struct {
	// RunID identifies the solve() invocation that emitted this event.
	RunID string

	// Step is the worklist iteration number (1-indexed). Zero for
	// "solve_start"; "solve_complete" and "solve_cancelled" carry the number
	// of iterations run so far.
	Step int

	// NodeGlobalNumber identifies the path edge's target node, when the
	// event concerns one. Zero for solve-level events.
	NodeGlobalNumber int

	// Msg is a short, stable event name (e.g. "solve_start",
	// "process_call", "process_exit", "solve_cancelled").
	Msg string

	// Meta carries additional structured fields, e.g. "proc", "d1", "d2".
	Meta map[string]interface{}
}
