package earnings

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"earnings-radar/internal/config"
	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/infra/provider"
)

// AlphaVantage reads the EARNINGS_CALENDAR CSV export.
//
// Unlike the other adapters it treats a missing ALPHAVANTAGE_KEY as a
// misconfiguration and reports every failure as an error. The chain records
// these as "misconfigured" or "failed" attempts and carries on.
type AlphaVantage struct {
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewAlphaVantage creates the AlphaVantage earnings adapter.
func NewAlphaVantage(cfg config.Providers) *AlphaVantage {
	return &AlphaVantage{
		BaseURL: "https://www.alphavantage.co",
		apiKey:  cfg.AlphaVantageKey,
		client:  provider.NewHTTPClient(cfg.Timeout),
	}
}

// Name implements resolve.Provider.
func (p *AlphaVantage) Name() string { return "AlphaVantage" }

// Resolve returns the first upcoming report in the three-month horizon.
func (p *AlphaVantage) Resolve(ctx context.Context, ticker string) (*entity.EarningsFact, error) {
	if p.apiKey == "" {
		return nil, provider.MissingCredential(p.Name(), string(config.KeyAlphaVantage))
	}

	q := url.Values{}
	q.Set("function", "EARNINGS_CALENDAR")
	q.Set("symbol", ticker)
	q.Set("horizon", "3month")
	q.Set("apikey", p.apiKey)

	body, err := provider.Get(ctx, p.client, p.Name(), p.BaseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	text := string(body)
	switch {
	case strings.Contains(text, "Error Message"), strings.Contains(text, "Invalid API call"):
		return nil, &provider.ProviderError{Provider: p.Name(), Kind: provider.KindUpstream, Err: errors.New("upstream rejected the request")}
	case strings.Contains(text, "premium"):
		return nil, &provider.ProviderError{Provider: p.Name(), Kind: provider.KindRateLimited, Err: errors.New("rate limit reached")}
	}

	r := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, provider.ParseError(p.Name(), err)
	}
	row, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, provider.ParseError(p.Name(), err)
	}
	if len(row) < 3 {
		return nil, nil
	}

	date := strings.TrimSpace(row[2])
	if date == "" || date == "None" {
		return nil, nil
	}

	return &entity.EarningsFact{
		Symbol: strings.TrimSpace(row[0]),
		Name:   strings.TrimSpace(row[1]),
		Date:   date,
		Time:   entity.DefaultReportTime,
		Source: p.Name(),
	}, nil
}
