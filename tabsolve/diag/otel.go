package diag

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OtelDiagnostics implements Diagnostics by creating OpenTelemetry spans,
// adapted from the teacher's emit.OTelEmitter. It opens one root span per
// solve() invocation ("solve_start" through "solve_complete"/
// "solve_cancelled") and nests one child span per processCall/processExit
// batch underneath it, so a trace backend renders a single solve as one
// tree rather than a flat run of sibling spans. Every other event becomes
// its own span, parented on the active solve span when one is open. Each
// span carries run_id/step/node and every Meta field as attributes; an
// "error" Meta key marks the span as errored.
type OtelDiagnostics struct {
	tracer trace.Tracer

	mu    sync.Mutex
	roots map[string]rootSpan
}

// rootSpan tracks the open per-solve span so later events in the same run
// can be parented underneath it.
type rootSpan struct {
	ctx  context.Context
	span trace.Span
}

// NewOtelDiagnostics creates an OtelDiagnostics using tracer (e.g.
// otel.Tracer("tabsolve")).
func NewOtelDiagnostics(tracer trace.Tracer) *OtelDiagnostics {
	return &OtelDiagnostics{tracer: tracer, roots: make(map[string]rootSpan)}
}

// Emit opens a span for event, nested under the run's solve-level root span
// when one is open. "solve_start" opens that root span; "solve_complete"
// and "solve_cancelled" close it after recording their own child span.
func (o *OtelDiagnostics) Emit(event Event) {
	switch event.Msg {
	case "solve_start":
		ctx, span := o.tracer.Start(context.Background(), "solve")
		o.setAttributes(span, event)
		o.mu.Lock()
		o.roots[event.RunID] = rootSpan{ctx: ctx, span: span}
		o.mu.Unlock()
		return

	case "solve_complete", "solve_cancelled":
		o.emitChild(event)
		o.mu.Lock()
		root, ok := o.roots[event.RunID]
		delete(o.roots, event.RunID)
		o.mu.Unlock()
		if ok {
			root.span.End()
		}
		return

	default:
		o.emitChild(event)
	}
}

// emitChild starts and immediately ends a span for event, parented on the
// run's open root span if any.
func (o *OtelDiagnostics) emitChild(event Event) {
	ctx := context.Background()
	o.mu.Lock()
	if root, ok := o.roots[event.RunID]; ok {
		ctx = root.ctx
	}
	o.mu.Unlock()

	_, span := o.tracer.Start(ctx, event.Msg)
	defer span.End()
	o.setAttributes(span, event)
}

func (o *OtelDiagnostics) setAttributes(span trace.Span, event Event) {
	attrs := []attribute.KeyValue{
		attribute.String("run_id", event.RunID),
		attribute.Int("step", event.Step),
		attribute.Int("node", event.NodeGlobalNumber),
	}
	for k, v := range event.Meta {
		attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", v)))
	}
	span.SetAttributes(attrs...)

	if errVal, ok := event.Meta["error"]; ok {
		span.SetStatus(codes.Error, fmt.Sprintf("%v", errVal))
	}
}

// EmitBatch emits every event in order.
func (o *OtelDiagnostics) EmitBatch(_ context.Context, events []Event) error {
	for _, e := range events {
		o.Emit(e)
	}
	return nil
}

// Flush is a no-op: span export is the configured TracerProvider's
// responsibility.
func (o *OtelDiagnostics) Flush(context.Context) error { return nil }
