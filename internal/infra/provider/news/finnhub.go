package news

import (
	"context"
	"errors"
	"net/http"
	"time"

	"earnings-radar/internal/config"
	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/infra/provider"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

// lookback is the company-news window ending today.
const lookback = 7 * 24 * time.Hour

// Finnhub reads company news through the official SDK and scores each
// article on its headline and summary. Skipped without FINNHUB_API_KEY.
type Finnhub struct {
	api    *finnhub.DefaultApiService
	scorer Scorer
	hasKey bool
	now    func() time.Time
}

// NewFinnhub creates the Finnhub adapter.
func NewFinnhub(cfg config.Providers, scorer Scorer) *Finnhub {
	fc := finnhub.NewConfiguration()
	fc.AddDefaultHeader("X-Finnhub-Token", cfg.FinnhubKey)
	fc.UserAgent = provider.UserAgent
	fc.HTTPClient = provider.NewHTTPClient(cfg.Timeout)
	return newFinnhub(fc, cfg.FinnhubKey != "", scorer)
}

func newFinnhub(fc *finnhub.Configuration, hasKey bool, scorer Scorer) *Finnhub {
	return &Finnhub{
		api:    finnhub.NewAPIClient(fc).DefaultApi,
		scorer: scorer,
		hasKey: hasKey,
		now:    time.Now,
	}
}

// Name implements resolve.Provider.
func (p *Finnhub) Name() string { return "Finnhub" }

// Resolve returns up to MaxItems articles from the last seven days.
func (p *Finnhub) Resolve(ctx context.Context, ticker string) ([]entity.NewsItem, error) {
	if !p.hasKey {
		return nil, nil
	}

	to := p.now().UTC()
	from := to.Add(-lookback)

	res, httpResp, err := p.api.CompanyNews(ctx).
		Symbol(ticker).
		From(from.Format(entity.DateLayout)).
		To(to.Format(entity.DateLayout)).
		Execute()
	if err != nil {
		return nil, provider.Soften(ctx, classifyFinnhub(httpResp, err))
	}

	res = capItems(res)
	items := make([]entity.NewsItem, 0, len(res))
	for _, n := range res {
		items = append(items, scoredItem(p.scorer, n.GetHeadline()+" "+n.GetSummary(), entity.NewsItem{
			Headline:    n.GetHeadline(),
			Summary:     n.GetSummary(),
			URL:         n.GetUrl(),
			Source:      n.GetSource(),
			PublishedAt: formatUnix(n.GetDatetime()),
		}))
	}
	return items, nil
}

// classifyFinnhub maps SDK failures onto provider errors. A response means
// upstream answered (bad status or undecodable body); no response means the
// request never completed.
func classifyFinnhub(resp *http.Response, err error) error {
	const name = "Finnhub"
	if resp == nil {
		return &provider.ProviderError{Provider: name, Kind: provider.KindTransport, Err: err}
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &provider.ProviderError{Provider: name, Kind: provider.KindRateLimited, StatusCode: resp.StatusCode, Err: err}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &provider.ProviderError{Provider: name, Kind: provider.KindStatus, StatusCode: resp.StatusCode, Err: err}
	default:
		return provider.ParseError(name, errors.Join(errors.New("decode company news"), err))
	}
}
