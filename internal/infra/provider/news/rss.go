package news

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"earnings-radar/internal/config"
	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/infra/provider"

	"github.com/mmcdole/gofeed"
)

// RSS reads a per-ticker RSS or Atom feed built from a URL template such as
// "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s". It is appended to
// the chain only when NEWS_RSS_URL_TEMPLATE is set.
type RSS struct {
	URLTemplate string
	client      *http.Client
	scorer      Scorer
}

// NewRSS creates the RSS adapter, or returns nil when no template is configured.
func NewRSS(cfg config.Providers, scorer Scorer) *RSS {
	if cfg.RSSURLTemplate == "" {
		return nil
	}
	return &RSS{
		URLTemplate: cfg.RSSURLTemplate,
		client:      provider.NewHTTPClient(cfg.Timeout),
		scorer:      scorer,
	}
}

// Name implements resolve.Provider.
func (p *RSS) Name() string { return "RSS" }

// Resolve fetches and parses the feed for ticker.
func (p *RSS) Resolve(ctx context.Context, ticker string) ([]entity.NewsItem, error) {
	// only %s is substituted so percent-escapes in the template survive
	feedURL := strings.ReplaceAll(p.URLTemplate, "%s", url.QueryEscape(ticker))

	body, err := provider.Get(ctx, p.client, p.Name(), feedURL, nil)
	if err != nil {
		return nil, provider.Soften(ctx, err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, provider.Soften(ctx, provider.ParseError(p.Name(), err))
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = p.Name()
	}

	entries := capItems(feed.Items)
	items := make([]entity.NewsItem, 0, len(entries))
	for _, it := range entries {
		published := it.Published
		if it.PublishedParsed != nil {
			published = it.PublishedParsed.UTC().Format(publishedLayout)
		}
		items = append(items, scoredItem(p.scorer, joinText(it.Title, it.Description), entity.NewsItem{
			Headline:    it.Title,
			Summary:     it.Description,
			URL:         it.Link,
			Source:      source,
			PublishedAt: published,
		}))
	}
	return items, nil
}
