package exporters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// StdoutExporter writes spans as JSON (for debugging)
type StdoutExporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdoutExporter creates a new stdout exporter writing to w
func NewStdoutExporter(w io.Writer) *StdoutExporter {
	return &StdoutExporter{w: w}
}

// ExportSpans exports spans to the writer
func (e *StdoutExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, span := range spans {
		data := map[string]interface{}{
			"trace_id": span.SpanContext().TraceID().String(),
			"span_id":  span.SpanContext().SpanID().String(),
			"name":     span.Name(),
			"start":    span.StartTime(),
			"end":      span.EndTime(),
			"duration": span.EndTime().Sub(span.StartTime()).String(),
			"status":   span.Status().Code.String(),
		}

		attrs := make(map[string]interface{})
		for _, attr := range span.Attributes() {
			attrs[string(attr.Key)] = attr.Value.AsInterface()
		}
		if len(attrs) > 0 {
			data["attributes"] = attrs
		}

		jsonData, err := json.Marshal(data)
		if err != nil {
			return err
		}

		fmt.Fprintf(e.w, "[TRACE] %s\n", jsonData)
	}

	return nil
}

// Shutdown shuts down the exporter
func (e *StdoutExporter) Shutdown(ctx context.Context) error {
	return nil
}
