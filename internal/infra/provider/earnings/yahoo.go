package earnings

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"earnings-radar/internal/config"
	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/infra/provider"

	"github.com/tidwall/gjson"
)

// earningsDatePath locates the next report timestamp in a quoteSummary
// response. Any level may be missing.
const earningsDatePath = "quoteSummary.result.0.calendarEvents.earnings.earningsDate.0.raw"

// Yahoo reads Yahoo Finance's unofficial quoteSummary endpoint. No key needed.
type Yahoo struct {
	BaseURL string
	client  *http.Client
}

// NewYahoo creates the Yahoo adapter.
func NewYahoo(cfg config.Providers) *Yahoo {
	return &Yahoo{
		BaseURL: "https://query2.finance.yahoo.com",
		client:  provider.NewHTTPClient(cfg.Timeout),
	}
}

// Name implements resolve.Provider.
func (p *Yahoo) Name() string { return "Yahoo" }

// Resolve returns the next earnings date from the calendarEvents module.
func (p *Yahoo) Resolve(ctx context.Context, ticker string) (*entity.EarningsFact, error) {
	u := p.BaseURL + "/v10/finance/quoteSummary/" + url.PathEscape(ticker) + "?modules=calendarEvents"

	body, err := provider.Get(ctx, p.client, p.Name(), u, nil)
	if err != nil {
		return nil, provider.Soften(ctx, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, provider.Soften(ctx, provider.ParseError(p.Name(), errors.New("invalid JSON")))
	}

	raw := gjson.GetBytes(body, earningsDatePath)
	if raw.Type != gjson.Number {
		return nil, nil
	}

	return &entity.EarningsFact{
		Symbol: ticker,
		Name:   ticker,
		Date:   entity.DateFromUnix(raw.Int()),
		Time:   entity.DefaultReportTime,
		Source: p.Name(),
	}, nil
}
