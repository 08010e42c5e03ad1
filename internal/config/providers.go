// Package config holds the typed configuration of earnings-radar.
//
// Values are read once at startup from environment variables (optionally
// populated from a .env file by the binaries) and passed explicitly to the
// components that need them. Nothing below main reads the environment.
package config

import (
	"strings"
	"time"

	pkgconfig "earnings-radar/pkg/config"
)

// ProviderKey names an environment variable holding a provider or store credential.
type ProviderKey string

const (
	// KeyFMP is the FinancialModelingPrep API key (earnings calendar and stock news).
	KeyFMP ProviderKey = "FMP_API_KEY"
	// KeyPolygon is the Polygon.io API key (financial filings).
	KeyPolygon ProviderKey = "POLYGON_API_KEY"
	// KeyAlphaVantage is the Alpha Vantage API key (earnings calendar CSV and news sentiment).
	KeyAlphaVantage ProviderKey = "ALPHAVANTAGE_KEY"
	// KeyFinnhub is the Finnhub API key (company news).
	KeyFinnhub ProviderKey = "FINNHUB_API_KEY"
	// KeyJSONBinBinID identifies the JSONBin document holding stored events.
	KeyJSONBinBinID ProviderKey = "JSONBIN_BIN_ID"
	// KeyJSONBinMasterKey authenticates JSONBin reads and writes.
	KeyJSONBinMasterKey ProviderKey = "JSONBIN_MASTER_KEY"
)

// AllProviderKeys lists every credential key in a stable order.
var AllProviderKeys = []ProviderKey{
	KeyFMP,
	KeyPolygon,
	KeyAlphaVantage,
	KeyFinnhub,
	KeyJSONBinBinID,
	KeyJSONBinMasterKey,
}

// Providers carries upstream credentials and provider tuning.
// An empty credential means the provider is not configured.
type Providers struct {
	FMPKey          string
	PolygonKey      string
	AlphaVantageKey string
	FinnhubKey      string

	// Timeout bounds a single upstream call.
	Timeout time.Duration

	// BreakerEnabled wraps every provider in its own circuit breaker.
	BreakerEnabled bool

	// RPM holds per-provider request-per-minute budgets keyed by provider
	// name (e.g. "AlphaVantage"). Zero or absent means unlimited.
	RPM map[string]int

	// RSSURLTemplate enables the RSS news adapter when non-empty.
	// The first %s is replaced by the escaped ticker.
	RSSURLTemplate string

	// LexiconPath overrides the embedded sentiment lexicon.
	LexiconPath string
}

// Has reports whether the credential for key is present.
func (p Providers) Has(key ProviderKey) bool {
	switch key {
	case KeyFMP:
		return p.FMPKey != ""
	case KeyPolygon:
		return p.PolygonKey != ""
	case KeyAlphaVantage:
		return p.AlphaVantageKey != ""
	case KeyFinnhub:
		return p.FinnhubKey != ""
	default:
		return false
	}
}

// RateLimitedProviders are the provider names that accept a <NAME>_RPM budget.
var RateLimitedProviders = []string{
	"FMP", "Yahoo", "Polygon", "MarketData", "AlphaVantage", "Finnhub", "RSS",
}

// LoadProviders reads provider configuration from the environment.
func LoadProviders() Providers {
	rpm := make(map[string]int, len(RateLimitedProviders))
	for _, name := range RateLimitedProviders {
		if v := pkgconfig.GetEnvInt(strings.ToUpper(name)+"_RPM", 0); v > 0 {
			rpm[name] = v
		}
	}

	return Providers{
		FMPKey:          pkgconfig.GetEnvString(string(KeyFMP), ""),
		PolygonKey:      pkgconfig.GetEnvString(string(KeyPolygon), ""),
		AlphaVantageKey: pkgconfig.GetEnvString(string(KeyAlphaVantage), ""),
		FinnhubKey:      pkgconfig.GetEnvString(string(KeyFinnhub), ""),
		Timeout:         pkgconfig.GetEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),
		BreakerEnabled:  pkgconfig.GetEnvBool("PROVIDER_BREAKER_ENABLED", false),
		RPM:             rpm,
		RSSURLTemplate:  pkgconfig.GetEnvString("NEWS_RSS_URL_TEMPLATE", ""),
		LexiconPath:     pkgconfig.GetEnvString("SENTIMENT_LEXICON_PATH", ""),
	}
}

// DebugEnabled reports whether verbose provider logging was requested
// through DEBUG_LOGS or LOG_LEVEL=debug.
func DebugEnabled() bool {
	if pkgconfig.GetEnvBool("DEBUG_LOGS", false) {
		return true
	}
	return strings.EqualFold(pkgconfig.GetEnvString("LOG_LEVEL", "info"), "debug")
}
