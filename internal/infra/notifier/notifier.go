// Package notifier posts earnings alerts to chat webhooks. The refresh
// worker sends one alert per newly discovered report date.
package notifier

import (
	"context"
	"errors"

	"earnings-radar/internal/domain/entity"
)

// Notifier delivers alerts for newly recorded events. source names the
// provider that supplied the date and may be empty. Implementations
// rate-limit and retry internally.
type Notifier interface {
	Name() string
	NotifyEarnings(ctx context.Context, ev entity.StoredEvent, source string) error
}

// Multi fans an alert out to every notifier and joins their errors.
// One failing channel does not stop the others.
type Multi []Notifier

// Name implements Notifier.
func (m Multi) Name() string { return "multi" }

// NotifyEarnings implements Notifier.
func (m Multi) NotifyEarnings(ctx context.Context, ev entity.StoredEvent, source string) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyEarnings(ctx, ev, source); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop discards alerts.
type Noop struct{}

// Name implements Notifier.
func (Noop) Name() string { return "noop" }

// NotifyEarnings implements Notifier.
func (Noop) NotifyEarnings(context.Context, entity.StoredEvent, string) error { return nil }
