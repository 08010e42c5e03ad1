package event

import (
	"sort"
	"strings"

	"earnings-radar/internal/domain/entity"
)

// AddInput is a request to record one earnings event.
type AddInput struct {
	Symbol string
	Name   string
	Date   string
	Time   string
	Domain string
}

// Canonicalize validates in and fills the defaults: the symbol is
// uppercased, name falls back to the symbol as given, time to "TBD" and
// domain to lower(symbol)+".com". Timestamps are truncated to their date.
func Canonicalize(in AddInput) (entity.StoredEvent, error) {
	if err := entity.ValidateTicker(in.Symbol); err != nil {
		return entity.StoredEvent{}, err
	}
	if err := entity.ValidateDate(in.Date); err != nil {
		return entity.StoredEvent{}, err
	}

	symbol := strings.TrimSpace(in.Symbol)
	date, _ := entity.ParseDate(in.Date)

	ev := entity.StoredEvent{
		Symbol: entity.NormalizeTicker(symbol),
		Name:   strings.TrimSpace(in.Name),
		Date:   date.Format(entity.DateLayout),
		Time:   strings.TrimSpace(in.Time),
		Domain: strings.TrimSpace(in.Domain),
	}
	if ev.Name == "" {
		ev.Name = symbol
	}
	if ev.Time == "" {
		ev.Time = entity.DefaultReportTime
	}
	if ev.Domain == "" {
		ev.Domain = entity.DefaultDomain(symbol)
	}
	return ev, nil
}

// Merge adds ev to events unless an event with the same (symbol, date)
// already exists. It never modifies its input. When ev is new the result is
// stably sorted by date and added is true; otherwise events is returned as is.
func Merge(events []entity.StoredEvent, ev entity.StoredEvent) (merged []entity.StoredEvent, added bool) {
	for _, e := range events {
		if e.SameKey(ev) {
			return events, false
		}
	}

	merged = make([]entity.StoredEvent, 0, len(events)+1)
	merged = append(merged, events...)
	merged = append(merged, ev)
	SortByDate(merged)
	return merged, true
}

// SortByDate orders events ascending by date, keeping insertion order for
// equal dates. Events whose date does not parse go last.
func SortByDate(events []entity.StoredEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, okI := events[i].ParsedDate()
		tj, okJ := events[j].ParsedDate()
		switch {
		case okI && okJ:
			return ti.Before(tj)
		default:
			return okI && !okJ
		}
	})
}
