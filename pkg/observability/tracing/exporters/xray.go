package exporters

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/xray"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// XRayAPI is the subset of the X-Ray client the exporter uses.
type XRayAPI interface {
	PutTraceSegments(ctx context.Context, params *xray.PutTraceSegmentsInput, optFns ...func(*xray.Options)) (*xray.PutTraceSegmentsOutput, error)
}

// XRayExporter exports traces to AWS X-Ray
type XRayExporter struct {
	client  XRayAPI
	region  string
	service string
}

// NewXRayExporter creates a new X-Ray exporter
func NewXRayExporter(ctx context.Context, region, service string) (*XRayExporter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewXRayExporterWithClient(xray.NewFromConfig(cfg), region, service), nil
}

// NewXRayExporterWithClient creates an exporter around an existing client.
func NewXRayExporterWithClient(client XRayAPI, region, service string) *XRayExporter {
	return &XRayExporter{client: client, region: region, service: service}
}

// ExportSpans exports spans to X-Ray
func (e *XRayExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if len(spans) == 0 {
		return nil
	}

	documents := make([]string, 0, len(spans))
	for _, span := range spans {
		doc, err := e.convertSpanToDocument(span)
		if err != nil {
			return fmt.Errorf("failed to convert span %s: %w", span.Name(), err)
		}
		documents = append(documents, doc)
	}

	_, err := e.client.PutTraceSegments(ctx, &xray.PutTraceSegmentsInput{
		TraceSegmentDocuments: documents,
	})
	if err != nil {
		return fmt.Errorf("failed to put trace segments: %w", err)
	}

	return nil
}

// Shutdown shuts down the exporter
func (e *XRayExporter) Shutdown(ctx context.Context) error {
	return nil
}

// convertSpanToDocument converts an OpenTelemetry span to X-Ray document format
func (e *XRayExporter) convertSpanToDocument(span sdktrace.ReadOnlySpan) (string, error) {
	traceID := span.SpanContext().TraceID().String()
	spanID := span.SpanContext().SpanID().String()

	segment := map[string]interface{}{
		"trace_id":   fmt.Sprintf("1-%s-%s", traceID[:8], traceID[8:]),
		"id":         spanID,
		"name":       span.Name(),
		"start_time": float64(span.StartTime().UnixNano()) / 1e9,
		"end_time":   float64(span.EndTime().UnixNano()) / 1e9,
		"service": map[string]string{
			"name": e.service,
		},
	}

	if span.Parent().IsValid() {
		segment["parent_id"] = span.Parent().SpanID().String()
	}

	if attrs := span.Attributes(); len(attrs) > 0 {
		metadata := make(map[string]interface{})
		for _, attr := range attrs {
			metadata[string(attr.Key)] = attr.Value.AsInterface()
		}
		segment["metadata"] = map[string]interface{}{
			"awsmp": metadata,
		}
	}

	data, err := json.Marshal(segment)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
