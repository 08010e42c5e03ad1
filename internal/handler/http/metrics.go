package http

import (
	"net/http"
	"strconv"
	"time"

	"earnings-radar/internal/handler/http/responsewriter"
	"earnings-radar/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute labels requests the mux did not route (404/405).
const unmatchedRoute = "unmatched"

// MetricsMiddleware records request count, latency, in-flight gauge and
// response size. It must wrap the ServeMux directly (no r.WithContext in
// between) so the matched pattern is visible after the call; the pattern
// is used as the path label, which keeps ticker symbols out of label values.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		rw := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(rw.StatusCode()), time.Since(start), rw.BytesWritten())
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
