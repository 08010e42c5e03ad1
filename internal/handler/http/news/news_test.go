package news_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/handler/http/news"
	"earnings-radar/internal/observability/metrics"
	"earnings-radar/internal/usecase/resolve"
)

type stubProvider struct {
	name  string
	items []entity.NewsItem
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Resolve(context.Context, string) ([]entity.NewsItem, error) {
	return s.items, nil
}

func serve(t *testing.T, r news.Resolver, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	news.Register(mux, r)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_ReturnsFirstNonEmptyBatch(t *testing.T) {
	item := entity.NewsItem{
		Headline:       "Strong earnings beat, record profit growth",
		URL:            "https://example.com/a",
		Source:         "Finnhub",
		PublishedAt:    "2025-01-30T12:00:00.000Z",
		Sentiment:      entity.SentimentPositive,
		SentimentScore: 1,
	}
	chain := resolve.NewNewsChain([]resolve.NewsProvider{
		stubProvider{name: "AlphaVantage"},
		stubProvider{name: "Finnhub", items: []entity.NewsItem{item}},
	})
	before := testutil.ToFloat64(metrics.SentimentLabelsTotal.WithLabelValues("positive"))

	rec := serve(t, chain, "/api/news?symbol=aapl")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp news.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.News, 1)
	assert.Equal(t, item, resp.News[0])
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SentimentLabelsTotal.WithLabelValues("positive")))
}

func TestHandler_NothingFoundIsEmptyList(t *testing.T) {
	chain := resolve.NewNewsChain([]resolve.NewsProvider{stubProvider{name: "AlphaVantage"}})

	rec := serve(t, chain, "/api/news?symbol=ZZZZ")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"news":[]}`, rec.Body.String())
}

func TestHandler_MissingSymbol(t *testing.T) {
	rec := serve(t, resolve.NewNewsChain(nil), "/api/news")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing symbol parameter"}`, rec.Body.String())
}
