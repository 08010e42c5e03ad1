package earnings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"earnings-radar/internal/config"
	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/infra/provider"
)

// MarketData reads marketdata.app's keyless earnings endpoint, which answers
// in columnar form (parallel arrays per field).
type MarketData struct {
	BaseURL string
	client  *http.Client
}

// NewMarketData creates the MarketData adapter.
func NewMarketData(cfg config.Providers) *MarketData {
	return &MarketData{
		BaseURL: "https://api.marketdata.app",
		client:  provider.NewHTTPClient(cfg.Timeout),
	}
}

// Name implements resolve.Provider.
func (p *MarketData) Name() string { return "MarketData" }

type marketDataResponse struct {
	ReportDate []float64 `json:"reportDate"`
	ReportTime []string  `json:"reportTime"`
}

// Resolve returns the first reported date, converted from epoch seconds.
func (p *MarketData) Resolve(ctx context.Context, ticker string) (*entity.EarningsFact, error) {
	body, err := provider.Get(ctx, p.client, p.Name(), p.BaseURL+"/v1/stocks/earnings/"+url.PathEscape(ticker), nil)
	if err != nil {
		return nil, provider.Soften(ctx, err)
	}

	var resp marketDataResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, provider.Soften(ctx, provider.ParseError(p.Name(), err))
	}
	if len(resp.ReportDate) == 0 || resp.ReportDate[0] <= 0 {
		return nil, nil
	}

	reportTime := entity.DefaultReportTime
	if len(resp.ReportTime) > 0 {
		reportTime = orTBD(resp.ReportTime[0])
	}

	return &entity.EarningsFact{
		Symbol: ticker,
		Name:   ticker,
		Date:   entity.DateFromUnix(int64(resp.ReportDate[0])),
		Time:   reportTime,
		Source: p.Name(),
	}, nil
}
