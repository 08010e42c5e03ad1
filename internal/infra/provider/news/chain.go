package news

import (
	"earnings-radar/internal/config"
	"earnings-radar/internal/infra/provider"
	"earnings-radar/internal/usecase/resolve"
)

// DefaultChain returns the news adapters in priority order, each wrapped
// with the configured guards. The RSS adapter is appended only when enabled.
func DefaultChain(cfg config.Providers, scorer Scorer) []resolve.NewsProvider {
	adapters := []resolve.NewsProvider{
		NewAlphaVantage(cfg),
		NewFinnhub(cfg, scorer),
		NewFMP(cfg, scorer),
		NewYahoo(cfg, scorer),
	}
	if rss := NewRSS(cfg, scorer); rss != nil {
		adapters = append(adapters, rss)
	}
	for i, a := range adapters {
		adapters[i] = provider.Guard(a, cfg)
	}
	return adapters
}
