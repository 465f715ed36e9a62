// Package tracing wraps OpenTelemetry spans for service operations. Spans go
// to the global tracer provider, which is a no-op until one is installed.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "bloodlink"

// Start opens an internal span and returns a finish func that records err,
// if any, before ending the span.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// String is a shorthand for attribute.String.
func String(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}
