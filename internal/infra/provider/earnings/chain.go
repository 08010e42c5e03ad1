package earnings

import (
	"earnings-radar/internal/config"
	"earnings-radar/internal/infra/provider"
	"earnings-radar/internal/usecase/resolve"
)

// DefaultChain returns the earnings adapters in priority order, each wrapped
// with the configured guards.
func DefaultChain(cfg config.Providers) []resolve.EarningsProvider {
	adapters := []resolve.EarningsProvider{
		NewFMP(cfg),
		NewYahoo(cfg),
		NewPolygon(cfg),
		NewMarketData(cfg),
		NewAlphaVantage(cfg),
	}
	for i, a := range adapters {
		adapters[i] = provider.Guard(a, cfg)
	}
	return adapters
}
