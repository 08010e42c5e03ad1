package entity

import (
	"math"
	"strings"
)

// Sentiment is the three-valued sentiment label attached to news items.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentimentLabel maps an upstream label such as "Somewhat-Bullish"
// or "Bearish" onto the three-valued enum. Unknown labels are neutral.
func ParseSentimentLabel(label string) Sentiment {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == string(SentimentPositive), strings.Contains(l, "bullish"):
		return SentimentPositive
	case l == string(SentimentNegative), strings.Contains(l, "bearish"):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// NewsItem is one canonical article. It is produced fresh on every request
// and never persisted.
type NewsItem struct {
	Headline       string    `json:"headline"`
	Summary        string    `json:"summary"`
	URL            string    `json:"url"`
	Source         string    `json:"source"`
	PublishedAt    string    `json:"publishedAt"`
	Sentiment      Sentiment `json:"sentiment"`
	SentimentScore float64   `json:"sentimentScore"`
}

// SentimentResult is the output of the lexicon scorer.
type SentimentResult struct {
	Score         float64   `json:"score"`
	Sentiment     Sentiment `json:"sentiment"`
	PositiveCount int       `json:"positiveCount"`
	NegativeCount int       `json:"negativeCount"`
}

// ClampScore bounds a sentiment score to [-1, 1]. NaN becomes 0.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
