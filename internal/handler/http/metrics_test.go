package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnings-radar/internal/observability/metrics"
)

func TestMetricsMiddleware_LabelsByRoutePattern(t *testing.T) {
	metrics.HTTPRequestsTotal.Reset()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/fetchEarnings", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := MetricsMiddleware(mux)

	for _, sym := range []string{"AAPL", "MSFT", "NVDA"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/fetchEarnings?symbol="+sym, nil))
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(
		metrics.HTTPRequestsTotal.WithLabelValues("GET", "GET /api/fetchEarnings", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.HTTPRequestsTotal))
}

func TestMetricsMiddleware_Unmatched(t *testing.T) {
	metrics.HTTPRequestsTotal.Reset()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {})
	h := MetricsMiddleware(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.HTTPRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")))
}

func TestMetricsMiddleware_InFlightReturnsToZero(t *testing.T) {
	before := testutil.ToFloat64(metrics.HTTPRequestsInFlight)

	var during float64
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(metrics.HTTPRequestsInFlight)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, before+1, during)
	assert.Equal(t, before, testutil.ToFloat64(metrics.HTTPRequestsInFlight))
}

func TestMetricsHandler(t *testing.T) {
	metrics.RecordSentiment("positive")

	srv := httptest.NewServer(MetricsHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "news_sentiment_labels_total"))
}
