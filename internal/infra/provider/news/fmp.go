package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"earnings-radar/internal/config"
	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/infra/provider"
)

// FMP reads FinancialModelingPrep stock news, scored on title and body.
type FMP struct {
	BaseURL string
	apiKey  string
	client  *http.Client
	scorer  Scorer
}

// NewFMP creates the FMP news adapter.
func NewFMP(cfg config.Providers, scorer Scorer) *FMP {
	return &FMP{
		BaseURL: "https://financialmodelingprep.com/api/v3",
		apiKey:  cfg.FMPKey,
		client:  provider.NewHTTPClient(cfg.Timeout),
		scorer:  scorer,
	}
}

// Name implements resolve.Provider.
func (p *FMP) Name() string { return "FMP" }

type fmpArticle struct {
	Title         string `json:"title"`
	Text          string `json:"text"`
	URL           string `json:"url"`
	Site          string `json:"site"`
	PublishedDate string `json:"publishedDate"`
}

// Resolve returns recent articles for ticker.
func (p *FMP) Resolve(ctx context.Context, ticker string) ([]entity.NewsItem, error) {
	if p.apiKey == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("tickers", ticker)
	q.Set("limit", strconv.Itoa(MaxItems))
	q.Set("apikey", p.apiKey)

	body, err := provider.Get(ctx, p.client, p.Name(), p.BaseURL+"/stock_news?"+q.Encode(), nil)
	if err != nil {
		return nil, provider.Soften(ctx, err)
	}

	var articles []fmpArticle
	if err := json.Unmarshal(body, &articles); err != nil {
		return nil, provider.Soften(ctx, provider.ParseError(p.Name(), err))
	}

	articles = capItems(articles)
	items := make([]entity.NewsItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, scoredItem(p.scorer, a.Title+" "+a.Text, entity.NewsItem{
			Headline:    a.Title,
			Summary:     a.Text,
			URL:         a.URL,
			Source:      a.Site,
			PublishedAt: a.PublishedDate,
		}))
	}
	return items, nil
}
