package config

import "errors"

// Validation errors returned by Config.Validate. Package-level sentinels
// so callers can branch with errors.Is while the messages stay readable.
var (
	// ErrNoSeed is returned when no seed handle was provided.
	ErrNoSeed = errors.New("no seed handle specified")

	// ErrInvalidStealthLevel is returned for levels outside 1-3.
	ErrInvalidStealthLevel = errors.New("invalid stealth level: must be 1 (basic), 2 (moderate), or 3 (maximum)")

	// ErrInvalidMaxVariants is returned for a non-positive variant bound.
	ErrInvalidMaxVariants = errors.New("invalid max variants: must be positive")

	// ErrInvalidWorkers is returned for a non-positive worker count.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidTimeout is returned for a non-positive request timeout.
	ErrInvalidTimeout = errors.New("invalid request timeout: must be positive")

	// ErrInvalidThreshold is returned when the correlation threshold is
	// outside (0,1].
	ErrInvalidThreshold = errors.New("invalid correlation threshold: must be in (0,1]")

	// ErrInvalidBudget is returned for a non-positive session budget.
	ErrInvalidBudget = errors.New("invalid session budget: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are requested.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingProxies is returned when both embedded Tor and an
	// explicit SOCKS5 proxy are requested.
	ErrConflictingProxies = errors.New("conflicting proxy settings: --tor and --proxy cannot be used together")

	// ErrNoPlatforms is returned when every platform is disabled.
	ErrNoPlatforms = errors.New("no enabled platforms: check the platforms section of the config file")
)
