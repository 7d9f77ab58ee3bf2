package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/scttfrdmn/awsmp/pkg/observability"
)

func TestNewTracer_Disabled(t *testing.T) {
	ctx := context.Background()

	tracer, err := NewTracer(ctx, observability.TracingConfig{Enabled: false}, Options{ServiceName: "awsmp-test"})
	require.NoError(t, err)
	require.NotNil(t, tracer.Tracer())
	assert.Nil(t, tracer.provider)
	assert.NoError(t, tracer.Shutdown(ctx))
}

func TestNewTracer_Stdout(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	tracer, err := NewTracer(ctx, observability.TracingConfig{
		Enabled:      true,
		Exporter:     "stdout",
		SamplingRate: 1.0,
	}, Options{ServiceName: "awsmp-test", ServiceVersion: "test", Stdout: &buf})
	require.NoError(t, err)
	require.NotNil(t, tracer.provider)

	_, span := tracer.Tracer().Start(ctx, "test-operation")
	span.End()

	// Shutdown flushes the batcher.
	require.NoError(t, tracer.Shutdown(ctx))
	assert.Contains(t, buf.String(), `"name":"test-operation"`)
}

func TestNewTracer_UnsupportedExporter(t *testing.T) {
	_, err := NewTracer(context.Background(), observability.TracingConfig{
		Enabled:  true,
		Exporter: "jaeger",
	}, Options{ServiceName: "awsmp-test"})
	assert.ErrorContains(t, err, "unsupported exporter")
}

func TestInstrumentAWSConfig(t *testing.T) {
	cfg := aws.Config{}
	InstrumentAWSConfig("dev", &cfg)
	assert.NotEmpty(t, cfg.APIOptions)

	attrs := profileAttributes("dev")(context.Background(), middleware.InitializeInput{})
	assert.Equal(t, []attribute.KeyValue{attribute.String("awsmp.profile", "dev")}, attrs)
}
