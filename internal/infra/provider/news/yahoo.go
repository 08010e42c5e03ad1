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

// Yahoo reads headlines from Yahoo Finance search. The endpoint carries no
// article body, so the headline doubles as the summary and is the only
// scored text.
type Yahoo struct {
	BaseURL string
	client  *http.Client
	scorer  Scorer
}

// NewYahoo creates the Yahoo news adapter.
func NewYahoo(cfg config.Providers, scorer Scorer) *Yahoo {
	return &Yahoo{
		BaseURL: "https://query2.finance.yahoo.com",
		client:  provider.NewHTTPClient(cfg.Timeout),
		scorer:  scorer,
	}
}

// Name implements resolve.Provider.
func (p *Yahoo) Name() string { return "Yahoo" }

type yahooSearchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Link                string `json:"link"`
		Publisher           string `json:"publisher"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// Resolve returns the search endpoint's news block for ticker.
func (p *Yahoo) Resolve(ctx context.Context, ticker string) ([]entity.NewsItem, error) {
	q := url.Values{}
	q.Set("q", ticker)
	q.Set("newsCount", strconv.Itoa(MaxItems))

	body, err := provider.Get(ctx, p.client, p.Name(), p.BaseURL+"/v1/finance/search?"+q.Encode(), nil)
	if err != nil {
		return nil, provider.Soften(ctx, err)
	}

	var resp yahooSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, provider.Soften(ctx, provider.ParseError(p.Name(), err))
	}

	news := capItems(resp.News)
	items := make([]entity.NewsItem, 0, len(news))
	for _, n := range news {
		items = append(items, scoredItem(p.scorer, n.Title, entity.NewsItem{
			Headline:    n.Title,
			Summary:     n.Title,
			URL:         n.Link,
			Source:      n.Publisher,
			PublishedAt: formatUnix(n.ProviderPublishTime),
		}))
	}
	return items, nil
}
