package probe

import "errors"

var (
	// ErrSessionBudgetExhausted means a platform's per-run request budget
	// is spent and its cooldown has not yet elapsed. Probes hitting it
	// degrade to inconclusive; it is never fatal.
	ErrSessionBudgetExhausted = errors.New("probe: session budget exhausted")

	// ErrNoProfileURL means the platform descriptor has no profile URL
	// template, so direct probing is impossible.
	ErrNoProfileURL = errors.New("probe: platform has no profile URL template")

	// ErrSourceUnavailable means a passive signal source has no usable
	// endpoint or credential and was skipped.
	ErrSourceUnavailable = errors.New("probe: signal source unavailable")
)
