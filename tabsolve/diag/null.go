package diag

import "context"

// NullDiagnostics discards every event. It is the zero-cost default when no
// diagnostics sink is configured (§1: progress reporting is peripheral).
type NullDiagnostics struct{}

// Emit discards the event.
func (NullDiagnostics) Emit(Event) {}

// EmitBatch discards the events and always succeeds.
func (NullDiagnostics) EmitBatch(context.Context, []Event) error { return nil }

// Flush is a no-op that always succeeds.
func (NullDiagnostics) Flush(context.Context) error { return nil }
