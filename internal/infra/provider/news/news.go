// Package news contains one adapter per upstream news source.
//
// All adapters return at most MaxItems items in upstream order. Adapters
// without native sentiment run their text through the shared Scorer so that
// labels mean the same thing whichever provider answered.
package news

import (
	"strings"
	"time"

	"earnings-radar/internal/domain/entity"
)

// MaxItems caps every adapter's result.
const MaxItems = 5

// publishedLayout renders timestamps the way browsers print Date.toISOString.
const publishedLayout = "2006-01-02T15:04:05.000Z07:00"

// Scorer assigns lexicon sentiment to text.
type Scorer interface {
	Score(text string) entity.SentimentResult
}

// scoredItem builds a NewsItem scored on text.
func scoredItem(s Scorer, text string, item entity.NewsItem) entity.NewsItem {
	r := s.Score(text)
	item.Sentiment = r.Sentiment
	item.SentimentScore = r.Score
	return item
}

func formatUnix(sec int64) string {
	if sec <= 0 {
		return ""
	}
	return time.Unix(sec, 0).UTC().Format(publishedLayout)
}

func joinText(parts ...string) string {
	return strings.TrimSpace(strings.Join(parts, " "))
}

func capItems[T any](items []T) []T {
	if len(items) > MaxItems {
		return items[:MaxItems]
	}
	return items
}
