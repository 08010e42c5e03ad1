// Package entity defines the canonical, provider-agnostic records shared by
// the resolvers, the event canonicalizer and the HTTP layer.
package entity

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for every earnings date.
const DateLayout = "2006-01-02"

// DefaultReportTime is used when a provider does not announce a report time.
const DefaultReportTime = "TBD"

// EarningsFact is the canonical result of resolving one symbol's next earnings report.
type EarningsFact struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Source string `json:"source"`

	// Provider-specific extras, preserved when present.
	EPS          *float64 `json:"eps,omitempty"`
	EPSEstimated *float64 `json:"epsEstimated,omitempty"`
}

// HasDate reports whether the fact carries the mandatory report date.
// A fact without a date is treated as "not found".
func (f *EarningsFact) HasDate() bool {
	return f != nil && strings.TrimSpace(f.Date) != ""
}

// StoredEvent is an EarningsFact as persisted in the event collection,
// with the company web domain used for logo lookup.
type StoredEvent struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Domain string `json:"domain"`

	// Extra holds keys other writers stored on the event (eps, source, ...).
	// They are written back untouched so rewriting the collection never
	// changes an existing event.
	Extra map[string]json.RawMessage `json:"-"`
}

var storedEventKeys = []string{"symbol", "name", "date", "time", "domain"}

// storedEventFields has StoredEvent's layout without its JSON methods.
type storedEventFields StoredEvent

// UnmarshalJSON decodes the known fields and keeps every other key in Extra.
func (e *StoredEvent) UnmarshalJSON(b []byte) error {
	var fields storedEventFields
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k := range raw {
		// encoding/json matches field names case-insensitively
		if slices.ContainsFunc(storedEventKeys, func(known string) bool { return strings.EqualFold(known, k) }) {
			delete(raw, k)
		}
	}
	fields.Extra = nil
	if len(raw) > 0 {
		fields.Extra = raw
	}
	*e = StoredEvent(fields)
	return nil
}

// MarshalJSON writes the known fields plus Extra. Known fields win over an
// Extra key of the same name.
func (e StoredEvent) MarshalJSON() ([]byte, error) {
	if len(e.Extra) == 0 {
		return json.Marshal(storedEventFields(e))
	}
	out := make(map[string]json.RawMessage, len(e.Extra)+len(storedEventKeys))
	for k, v := range e.Extra {
		out[k] = v
	}
	for k, v := range map[string]string{
		"symbol": e.Symbol, "name": e.Name, "date": e.Date, "time": e.Time, "domain": e.Domain,
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return json.Marshal(out)
}

// SameKey reports whether both events describe the same (symbol, date) pair.
func (e StoredEvent) SameKey(other StoredEvent) bool {
	return strings.EqualFold(e.Symbol, other.Symbol) && e.Date == other.Date
}

// ParsedDate returns the event date as a time.Time.
// ok is false when the stored date is not a valid calendar date.
func (e StoredEvent) ParsedDate() (t time.Time, ok bool) {
	t, err := ParseDate(e.Date)
	return t, err == nil
}

// ParseDate parses a calendar date. Full RFC3339 timestamps are accepted and
// truncated to their UTC date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// DateFromUnix converts an epoch timestamp in seconds into a UTC calendar date.
func DateFromUnix(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(DateLayout)
}

// DefaultDomain derives the company domain used when none is supplied.
func DefaultDomain(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol)) + ".com"
}

// NormalizeTicker trims and uppercases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
