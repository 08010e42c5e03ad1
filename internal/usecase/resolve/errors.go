package resolve

import "errors"

var (
	// ErrMissingCredential is returned by a provider that requires a
	// credential which is not configured. The chain records the attempt as
	// "misconfigured" and moves on.
	ErrMissingCredential = errors.New("provider credential not configured")

	// ErrProviderSkipped is returned by a guarded provider that declined to
	// call upstream (rate budget exhausted or circuit open).
	ErrProviderSkipped = errors.New("provider skipped")

	// ErrProviderPanic wraps a recovered panic raised inside a provider.
	ErrProviderPanic = errors.New("provider panicked")
)
