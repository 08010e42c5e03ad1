package sentiment

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// Lexicon is the tunable data behind the scorer.
type Lexicon struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`

	// Divisor scales the raw term balance into [-1, 1]. Smaller values make
	// the scorer more sensitive: with 3, three net positive terms saturate.
	Divisor float64 `yaml:"divisor"`

	// PositiveThreshold and NegativeThreshold are exclusive bounds on the
	// normalized score for the positive and negative labels.
	PositiveThreshold float64 `yaml:"positiveThreshold"`
	NegativeThreshold float64 `yaml:"negativeThreshold"`
}

// Lexicon validation errors.
var (
	ErrEmptyLexicon     = errors.New("lexicon has no terms")
	ErrInvalidDivisor   = errors.New("lexicon divisor must be positive")
	ErrInvalidThreshold = errors.New("lexicon thresholds must satisfy negative <= 0 <= positive")
)

// DefaultLexicon returns the embedded lexicon.
func DefaultLexicon() Lexicon {
	lex, err := ParseLexicon(defaultLexiconYAML)
	if err != nil {
		// The embedded file is part of the binary; failing here is a build defect.
		panic(fmt.Sprintf("sentiment: embedded lexicon is invalid: %v", err))
	}
	return lex
}

// ParseLexicon decodes and validates a YAML lexicon document.
func ParseLexicon(data []byte) (Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("decode lexicon: %w", err)
	}
	lex.Positive = normalizeTerms(lex.Positive)
	lex.Negative = normalizeTerms(lex.Negative)
	if err := lex.Validate(); err != nil {
		return Lexicon{}, err
	}
	return lex, nil
}

// LoadLexicon reads a lexicon from path, or returns the embedded default
// when path is empty.
func LoadLexicon(path string) (Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return ParseLexicon(data)
}

// Validate checks the lexicon is usable.
func (l Lexicon) Validate() error {
	if len(l.Positive) == 0 && len(l.Negative) == 0 {
		return ErrEmptyLexicon
	}
	if l.Divisor <= 0 {
		return ErrInvalidDivisor
	}
	if l.NegativeThreshold > 0 || l.PositiveThreshold < 0 {
		return ErrInvalidThreshold
	}
	return nil
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
