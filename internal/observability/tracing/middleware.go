package tracing

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"earnings-radar/internal/handler/http/requestid"
	"earnings-radar/internal/handler/http/responsewriter"
)

// Middleware starts a server span per request, continuing any W3C trace
// context the caller sent, and returns the trace ID in X-Trace-Id.
//
// It must sit directly on the ServeMux: the span is renamed to the matched
// route pattern after routing, so "/api/news?symbol=AAPL" and
// "/api/news?symbol=MSFT" share the span name "GET /api/news" and the
// ticker becomes an attribute instead.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := GetTracer().Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		w.Header().Set("X-Trace-Id", span.SpanContext().TraceID().String())

		rw := responsewriter.Wrap(w)
		r = r.WithContext(ctx)
		next.ServeHTTP(rw, r)

		if r.Pattern != "" {
			span.SetName(r.Pattern)
			span.SetAttributes(attribute.String("http.route", r.Pattern))
		}

		status := rw.StatusCode()
		attrs := []attribute.KeyValue{
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
			attribute.Int("http.status_code", status),
		}
		if symbol := strings.TrimSpace(r.URL.Query().Get("symbol")); symbol != "" {
			attrs = append(attrs, attribute.String("ticker", strings.ToUpper(symbol)))
		}
		if id := requestid.FromContext(ctx); id != "" {
			attrs = append(attrs, attribute.String("request.id", id))
		}
		span.SetAttributes(attrs...)

		if status >= http.StatusInternalServerError {
			span.SetAttributes(attribute.Bool("error", true))
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}
