package earnings_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/handler/http/earnings"
	"earnings-radar/internal/usecase/resolve"
)

type stubProvider struct {
	name  string
	fact  *entity.EarningsFact
	err   error
	calls atomic.Int32
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(context.Context, string) (*entity.EarningsFact, error) {
	s.calls.Add(1)
	return s.fact, s.err
}

func serve(t *testing.T, r earnings.Resolver, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	earnings.Register(mux, r)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_OnlyLastProviderHasData(t *testing.T) {
	providers := []*stubProvider{
		{name: "FMP"},
		{name: "Yahoo", err: errors.New("boom")},
		{name: "Polygon", fact: &entity.EarningsFact{Symbol: "AAPL"}},
		{name: "MarketData"},
		{name: "AlphaVantage", fact: &entity.EarningsFact{
			Symbol: "AAPL", Name: "Apple Inc", Date: "2025-01-30", Time: "post-market",
		}},
	}
	chain := resolve.NewEarningsChain([]resolve.EarningsProvider{
		providers[0], providers[1], providers[2], providers[3], providers[4],
	})

	rec := serve(t, chain, "/api/fetchEarnings?symbol=aapl")

	require.Equal(t, http.StatusOK, rec.Code)
	var fact entity.EarningsFact
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fact))
	assert.Equal(t, "AlphaVantage", fact.Source)
	assert.Equal(t, "2025-01-30", fact.Date)
	for _, p := range providers {
		assert.Equal(t, int32(1), p.calls.Load(), p.name)
	}
}

func TestHandler_FirstHitShortCircuits(t *testing.T) {
	first := &stubProvider{name: "FMP", fact: &entity.EarningsFact{Symbol: "MSFT", Date: "2025-01-29", Source: "FMP"}}
	second := &stubProvider{name: "Yahoo"}
	chain := resolve.NewEarningsChain([]resolve.EarningsProvider{first, second})

	rec := serve(t, chain, "/api/fetchEarnings?symbol=MSFT")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(0), second.calls.Load())
}

func TestHandler_NotFound(t *testing.T) {
	chain := resolve.NewEarningsChain([]resolve.EarningsProvider{&stubProvider{name: "FMP"}})

	rec := serve(t, chain, "/api/fetchEarnings?symbol=zzzz")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"No earnings data found for ZZZZ"}`, rec.Body.String())
}

func TestHandler_MissingSymbol(t *testing.T) {
	p := &stubProvider{name: "FMP"}
	chain := resolve.NewEarningsChain([]resolve.EarningsProvider{p})

	for _, target := range []string{"/api/fetchEarnings", "/api/fetchEarnings?symbol=%20%20"} {
		rec := serve(t, chain, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing symbol parameter"}`, rec.Body.String())
	}
	assert.Equal(t, int32(0), p.calls.Load())
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	mux := http.NewServeMux()
	earnings.Register(mux, resolve.NewEarningsChain(nil))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/fetchEarnings?symbol=AAPL", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type canceledResolver struct{}

func (canceledResolver) Resolve(context.Context, string) (resolve.Outcome[*entity.EarningsFact], error) {
	return resolve.Outcome[*entity.EarningsFact]{}, context.Canceled
}

func TestHandler_Canceled(t *testing.T) {
	rec := serve(t, canceledResolver{}, "/api/fetchEarnings?symbol=AAPL")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}
