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

// Polygon reads the latest financial filing from Polygon.io and uses its
// filing date (or period end date) as the report date. Skipped without
// POLYGON_API_KEY.
type Polygon struct {
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewPolygon creates the Polygon adapter.
func NewPolygon(cfg config.Providers) *Polygon {
	return &Polygon{
		BaseURL: "https://api.polygon.io",
		apiKey:  cfg.PolygonKey,
		client:  provider.NewHTTPClient(cfg.Timeout),
	}
}

// Name implements resolve.Provider.
func (p *Polygon) Name() string { return "Polygon" }

type polygonResponse struct {
	Results []struct {
		FilingDate string `json:"filing_date"`
		EndDate    string `json:"end_date"`
	} `json:"results"`
}

// Resolve returns the most recent filing as an earnings fact.
func (p *Polygon) Resolve(ctx context.Context, ticker string) (*entity.EarningsFact, error) {
	if p.apiKey == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("ticker", ticker)
	q.Set("limit", "1")
	q.Set("apiKey", p.apiKey)

	body, err := provider.Get(ctx, p.client, p.Name(), p.BaseURL+"/vX/reference/financials?"+q.Encode(), nil)
	if err != nil {
		return nil, provider.Soften(ctx, err)
	}

	var resp polygonResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, provider.Soften(ctx, provider.ParseError(p.Name(), err))
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	r := resp.Results[0]
	date := r.FilingDate
	if date == "" {
		date = r.EndDate
	}
	if date == "" {
		return nil, nil
	}

	return &entity.EarningsFact{
		Symbol: ticker,
		Name:   ticker,
		Date:   date,
		Time:   entity.DefaultReportTime,
		Source: p.Name(),
	}, nil
}
