package tracing

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel/attribute"
)

// InstrumentAWSConfig adds OpenTelemetry middleware to cfg. Every SDK call
// span carries the profile it ran under.
func InstrumentAWSConfig(profile string, cfg *aws.Config) {
	otelaws.AppendMiddlewares(&cfg.APIOptions,
		otelaws.WithAttributeSetter(profileAttributes(profile)),
	)
}

func profileAttributes(profile string) otelaws.AttributeSetter {
	return func(context.Context, middleware.InitializeInput) []attribute.KeyValue {
		return []attribute.KeyValue{attribute.String("awsmp.profile", profile)}
	}
}
