package diag_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ifds-go/tabsolve/diag"
)

func TestOtelDiagnostics_EmitProducesSpanWithAttributes(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	d := diag.NewOtelDiagnostics(tp.Tracer("tabsolve-test"))
	d.Emit(diag.Event{
		RunID: "run-1", Step: 3, NodeGlobalNumber: 7,
		Msg:  "process_call",
		Meta: map[string]interface{}{"proc": "A"},
	})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "process_call", spans[0].Name)

	var sawRunID, sawProc bool
	for _, a := range spans[0].Attributes {
		if a.Key == attribute.Key("run_id") {
			sawRunID = a.Value.AsString() == "run-1"
		}
		if a.Key == attribute.Key("proc") {
			sawProc = a.Value.AsString() == "A"
		}
	}
	assert.True(t, sawRunID)
	assert.True(t, sawProc)
}

func TestOtelDiagnostics_EmitSetsErrorStatus(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	d := diag.NewOtelDiagnostics(tp.Tracer("tabsolve-test"))
	d.Emit(diag.Event{Msg: "eviction_hook_error", Meta: map[string]interface{}{"error": "boom"}})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestOtelDiagnostics_NestsBatchSpansUnderSolveSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	d := diag.NewOtelDiagnostics(tp.Tracer("tabsolve-test"))
	d.Emit(diag.Event{RunID: "run-1", Msg: "solve_start"})
	d.Emit(diag.Event{RunID: "run-1", Step: 1, Msg: "process_call"})
	d.Emit(diag.Event{RunID: "run-1", Step: 2, Msg: "process_exit"})
	d.Emit(diag.Event{RunID: "run-1", Msg: "solve_complete"})

	spans := exporter.GetSpans()
	require.Len(t, spans, 4, "root 'solve' span plus process_call, process_exit and solve_complete children")

	var root tracetest.SpanStub
	byName := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = s
		if s.Name == "solve" {
			root = s
		}
	}
	require.NotZero(t, root.SpanContext)

	for _, name := range []string{"process_call", "process_exit"} {
		child, ok := byName[name]
		require.True(t, ok, "missing child span %s", name)
		assert.Equal(t, root.SpanContext.SpanID(), child.Parent.SpanID(),
			"%s span must be parented on the per-solve root span", name)
	}
}

func TestOtelDiagnostics_EmitBatchAndFlush(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	d := diag.NewOtelDiagnostics(tp.Tracer("tabsolve-test"))
	err := d.EmitBatch(context.Background(), []diag.Event{
		{Msg: "solve_start"},
		{Msg: "solve_complete"},
	})
	require.NoError(t, err)
	assert.Len(t, exporter.GetSpans(), 2)

	require.NoError(t, d.Flush(context.Background()))
}
