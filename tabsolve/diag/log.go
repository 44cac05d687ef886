package diag

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// LogDiagnostics implements Diagnostics by writing structured log output to
// a writer, adapted from the teacher's emit.LogEmitter.
//
// Supports two output modes:
//   - Text mode (default): human-readable key=value pairs.
//   - JSON mode: one JSON object per line.
type LogDiagnostics struct {
	writer   io.Writer
	jsonMode bool
}

// NewLogDiagnostics creates a LogDiagnostics writing to writer (os.Stdout if
// nil) in the given mode.
func NewLogDiagnostics(writer io.Writer, jsonMode bool) *LogDiagnostics {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogDiagnostics{writer: writer, jsonMode: jsonMode}
}

// Emit writes event in the configured mode.
func (l *LogDiagnostics) Emit(event Event) {
	if l.jsonMode {
		l.emitJSON(event)
		return
	}
	l.emitText(event)
}

// EmitBatch writes every event in order.
func (l *LogDiagnostics) EmitBatch(_ context.Context, events []Event) error {
	for _, e := range events {
		l.Emit(e)
	}
	return nil
}

// Flush is a no-op: LogDiagnostics writes synchronously.
func (l *LogDiagnostics) Flush(context.Context) error { return nil }

func (l *LogDiagnostics) emitJSON(event Event) {
	enc := json.NewEncoder(l.writer)
	_ = enc.Encode(map[string]interface{}{
		"run_id": event.RunID,
		"step":   event.Step,
		"node":   event.NodeGlobalNumber,
		"msg":    event.Msg,
		"meta":   event.Meta,
	})
}

func (l *LogDiagnostics) emitText(event Event) {
	fmt.Fprintf(l.writer, "[%s] run_id=%s step=%d node=%d", event.Msg, event.RunID, event.Step, event.NodeGlobalNumber)
	keys := make([]string, 0, len(event.Meta))
	for k := range event.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(l.writer, " %s=%v", k, event.Meta[k])
	}
	fmt.Fprintln(l.writer)
}
