package diag

import "context"

// Diagnostics receives and processes observability events from a solve.
// Implementations should be non-blocking, thread-safe is not required (the
// solver is single-threaded, §5 of the spec), and must never panic —
// diagnostics failures must never interrupt the fixed-point computation.
type Diagnostics interface {
	// Emit sends a single event to the configured backend.
	Emit(event Event)

	// EmitBatch sends multiple events in one operation, reducing overhead
	// when the solver emits one event per worklist iteration.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush ensures all buffered events are delivered. Call before solve
	// returns, or at process shutdown.
	Flush(ctx context.Context) error
}
