package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"earnings-radar/internal/config"
	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/infra/provider"
)

// alphaVantageTimeLayout is the compact timestamp used in NEWS_SENTIMENT feeds.
const alphaVantageTimeLayout = "20060102T150405"

// AlphaVantage reads the NEWS_SENTIMENT feed. It is the only adapter whose
// sentiment comes from upstream; its items are never re-scored.
type AlphaVantage struct {
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewAlphaVantage creates the AlphaVantage news adapter.
func NewAlphaVantage(cfg config.Providers) *AlphaVantage {
	return &AlphaVantage{
		BaseURL: "https://www.alphavantage.co",
		apiKey:  cfg.AlphaVantageKey,
		client:  provider.NewHTTPClient(cfg.Timeout),
	}
}

// Name implements resolve.Provider.
func (p *AlphaVantage) Name() string { return "AlphaVantage" }

type avNewsResponse struct {
	Feed []struct {
		Title           string `json:"title"`
		URL             string `json:"url"`
		TimePublished   string `json:"time_published"`
		Summary         string `json:"summary"`
		Source          string `json:"source"`
		TickerSentiment []struct {
			Ticker string `json:"ticker"`
			Score  string `json:"ticker_sentiment_score"`
			Label  string `json:"ticker_sentiment_label"`
		} `json:"ticker_sentiment"`
	} `json:"feed"`
}

// Resolve returns the latest articles tagged with ticker.
func (p *AlphaVantage) Resolve(ctx context.Context, ticker string) ([]entity.NewsItem, error) {
	if p.apiKey == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("tickers", ticker)
	q.Set("limit", strconv.Itoa(MaxItems))
	q.Set("apikey", p.apiKey)

	body, err := provider.Get(ctx, p.client, p.Name(), p.BaseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, provider.Soften(ctx, err)
	}

	var resp avNewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, provider.Soften(ctx, provider.ParseError(p.Name(), err))
	}

	feed := capItems(resp.Feed)
	items := make([]entity.NewsItem, 0, len(feed))
	for _, f := range feed {
		item := entity.NewsItem{
			Headline:    f.Title,
			Summary:     f.Summary,
			URL:         f.URL,
			Source:      f.Source,
			PublishedAt: avPublished(f.TimePublished),
			Sentiment:   entity.SentimentNeutral,
		}
		for _, ts := range f.TickerSentiment {
			if !strings.EqualFold(ts.Ticker, ticker) {
				continue
			}
			if score, err := strconv.ParseFloat(strings.TrimSpace(ts.Score), 64); err == nil {
				item.SentimentScore = entity.ClampScore(score)
			}
			item.Sentiment = entity.ParseSentimentLabel(ts.Label)
			break
		}
		items = append(items, item)
	}
	return items, nil
}

// avPublished converts the compact upstream timestamp; unknown shapes pass through.
func avPublished(s string) string {
	t, err := time.Parse(alphaVantageTimeLayout, s)
	if err != nil {
		return s
	}
	return t.UTC().Format(publishedLayout)
}
