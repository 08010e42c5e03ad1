package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies spans emitted by the earnings-radar application.
const tracerName = "earnings-radar"

// GetTracer returns the application tracer from the current global provider.
// It is resolved on every call so a provider installed after start-up
// (or swapped in tests) is always honoured.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartProviderSpan starts a client span for one upstream provider attempt.
// The caller ends it with EndProviderSpan.
func StartProviderSpan(ctx context.Context, chain, provider, ticker string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "provider."+chain+"."+provider,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider.chain", chain),
			attribute.String("provider.name", provider),
			attribute.String("ticker", ticker),
		),
	)
}

// EndProviderSpan records the attempt result (and error, if any) and ends the span.
func EndProviderSpan(span trace.Span, result string, err error) {
	span.SetAttributes(attribute.String("provider.result", result))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	span.End()
}
