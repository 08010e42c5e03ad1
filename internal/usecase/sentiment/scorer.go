// Package sentiment scores free text with a keyword lexicon.
//
// The same scorer is applied to text from every news provider that does not
// supply its own sentiment, so results are comparable across providers.
package sentiment

import (
	"regexp"
	"strings"

	"earnings-radar/internal/domain/entity"
)

// Scorer assigns a bounded sentiment score to text.
// A Scorer is immutable after construction and safe for concurrent use.
type Scorer struct {
	positive []*regexp.Regexp
	negative []*regexp.Regexp
	lex      Lexicon
}

// NewScorer compiles a scorer from a validated lexicon.
func NewScorer(lex Lexicon) (*Scorer, error) {
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{
		positive: compileTerms(lex.Positive),
		negative: compileTerms(lex.Negative),
		lex:      lex,
	}, nil
}

// NewDefaultScorer returns a scorer over the embedded lexicon.
func NewDefaultScorer() *Scorer {
	s, err := NewScorer(DefaultLexicon())
	if err != nil {
		panic(err)
	}
	return s
}

func compileTerms(terms []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(terms))
	for _, t := range terms {
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(t)+`\b`))
	}
	return out
}

// Score counts whole-word lexicon hits in text and maps their balance onto
// [-1, 1]. Empty text scores 0 and is neutral.
func (s *Scorer) Score(text string) entity.SentimentResult {
	lower := strings.ToLower(text)

	pos := countMatches(s.positive, lower)
	neg := countMatches(s.negative, lower)

	score := entity.ClampScore(float64(pos-neg) / s.lex.Divisor)

	return entity.SentimentResult{
		Score:         score,
		Sentiment:     s.label(score),
		PositiveCount: pos,
		NegativeCount: neg,
	}
}

func (s *Scorer) label(score float64) entity.Sentiment {
	switch {
	case score > s.lex.PositiveThreshold:
		return entity.SentimentPositive
	case score < s.lex.NegativeThreshold:
		return entity.SentimentNegative
	default:
		return entity.SentimentNeutral
	}
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	if text == "" {
		return 0
	}
	n := 0
	for _, re := range patterns {
		n += len(re.FindAllStringIndex(text, -1))
	}
	return n
}
