// Package tracing provides OpenTelemetry tracing integration.
//
// The HTTP Middleware opens a server span per request, and
// StartProviderSpan/EndProviderSpan wrap every upstream provider attempt
// made by a fallback chain, so a single trace shows which providers were
// tried for a ticker and which one answered.
//
// Example usage:
//
//	ctx, span := tracing.StartProviderSpan(ctx, "earnings", "FMP", "AAPL")
//	fact, err := p.Resolve(ctx, "AAPL")
//	tracing.EndProviderSpan(span, "used", err)
package tracing
