// Package tracing sets up OpenTelemetry tracing for fan-out runs.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/scttfrdmn/awsmp/pkg/observability"
	"github.com/scttfrdmn/awsmp/pkg/observability/tracing/exporters"
)

const instrumentationName = "github.com/scttfrdmn/awsmp"

// Tracer wraps OpenTelemetry tracer
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// Options tune NewTracer beyond the configuration file.
type Options struct {
	ServiceName    string
	ServiceVersion string
	// Stdout receives the stdout exporter's output. Defaults to os.Stderr.
	Stdout io.Writer
}

// NewTracer creates a new tracer
func NewTracer(ctx context.Context, config observability.TracingConfig, opts Options) (*Tracer, error) {
	if !config.Enabled {
		return &Tracer{
			tracer: otel.GetTracerProvider().Tracer(instrumentationName),
		}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.ServiceVersion),
			attribute.String("cloud.provider", "aws"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch config.Exporter {
	case "xray":
		exporter, err = exporters.NewXRayExporter(ctx, config.Region, opts.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create X-Ray exporter: %w", err)
		}
	case "stdout", "":
		w := opts.Stdout
		if w == nil {
			w = os.Stderr
		}
		exporter = exporters.NewStdoutExporter(w)
	default:
		return nil, fmt.Errorf("unsupported exporter: %s", config.Exporter)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(config.SamplingRate)),
	)

	otel.SetTracerProvider(provider)

	return &Tracer{
		provider: provider,
		tracer:   provider.Tracer(instrumentationName),
	}, nil
}

// Shutdown flushes and shuts down the tracer
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Tracer returns the OpenTelemetry tracer
func (t *Tracer) Tracer() trace.Tracer {
	return t.tracer
}
