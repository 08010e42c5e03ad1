package earnings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"earnings-radar/internal/config"
	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/infra/provider"
)

// FMP reads the FinancialModelingPrep earnings calendar. It is the primary
// source and is skipped without a network call when FMP_API_KEY is unset.
type FMP struct {
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewFMP creates the FMP adapter.
func NewFMP(cfg config.Providers) *FMP {
	return &FMP{
		BaseURL: "https://financialmodelingprep.com/api/v3",
		apiKey:  cfg.FMPKey,
		client:  provider.NewHTTPClient(cfg.Timeout),
	}
}

// Name implements resolve.Provider.
func (p *FMP) Name() string { return "FMP" }

type fmpEarning struct {
	Symbol       string   `json:"symbol"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	EPS          *float64 `json:"eps"`
	EPSEstimated *float64 `json:"epsEstimated"`
}

// Resolve returns the first calendar entry for ticker.
func (p *FMP) Resolve(ctx context.Context, ticker string) (*entity.EarningsFact, error) {
	if p.apiKey == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("apikey", p.apiKey)

	body, err := provider.Get(ctx, p.client, p.Name(), p.BaseURL+"/earning_calendar?"+q.Encode(), nil)
	if err != nil {
		return nil, provider.Soften(ctx, err)
	}

	var rows []fmpEarning
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, provider.Soften(ctx, provider.ParseError(p.Name(), err))
	}
	if len(rows) == 0 {
		return nil, nil
	}

	e := rows[0]
	symbol := strings.TrimSpace(e.Symbol)
	if symbol == "" {
		symbol = ticker
	}
	return &entity.EarningsFact{
		Symbol:       symbol,
		Name:         ticker,
		Date:         strings.TrimSpace(e.Date),
		Time:         orTBD(e.Time),
		Source:       p.Name(),
		EPS:          e.EPS,
		EPSEstimated: e.EPSEstimated,
	}, nil
}

func orTBD(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return entity.DefaultReportTime
	}
	return s
}
