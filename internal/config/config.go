package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/handletrace/internal/model"
)

// Default configuration values. The probing-related values are tuned for
// staying under typical per-IP rate limits on public platforms; they are
// heuristics, not guarantees.
// Stealth levels, in increasing order of caution.
const (
	// StealthBasic probes with one paced direct request per candidate.
	StealthBasic = 1
	// StealthModerate gathers passive signals first and only goes direct,
	// with mimicked browser headers, when passive evidence is thin.
	StealthModerate = 2
	// StealthMaximum never issues a direct profile request.
	StealthMaximum = 3
)

const (
	// DefaultStealthLevel is the moderate probing level: passive signals
	// first, direct requests only when passive evidence is thin.
	DefaultStealthLevel = StealthModerate

	// DefaultMaxVariants bounds the candidate set per seed. Twenty variants
	// across half a dozen platforms already means >100 probes per run.
	DefaultMaxVariants = 20

	// DefaultWorkers is the global probe concurrency bound. It is
	// deliberately independent of the platform count: per-platform pacing
	// handles politeness, this bound handles local resource usage.
	DefaultWorkers = 10

	// DefaultRequestTimeout applies to each outbound request. Expired
	// requests degrade to inconclusive probe results, never errors.
	DefaultRequestTimeout = 15 * time.Second

	// DefaultCacheTTL is how long a probe verdict stays reusable. Account
	// existence changes slowly; an hour avoids hammering platforms during
	// iterative investigations.
	DefaultCacheTTL = time.Hour

	// DefaultMinInterval is the base spacing between requests to one
	// platform when the platform descriptor doesn't override it.
	DefaultMinInterval = 1500 * time.Millisecond

	// DefaultJitterFraction randomizes pacing: each delay is stretched by
	// up to this fraction so request timing doesn't form a detectable
	// fixed-period pattern.
	DefaultJitterFraction = 0.5

	// DefaultBurstProbability is the chance a delay is shortened instead,
	// mimicking the uneven rhythm of human browsing.
	DefaultBurstProbability = 0.1

	// DefaultSessionBudget caps requests per platform per run.
	DefaultSessionBudget = 50

	// DefaultCooldown is how long a platform rests after its budget is
	// exhausted.
	DefaultCooldown = 5 * time.Minute

	// DefaultCorrelationThreshold is the weighted score at which two
	// accounts are treated as one individual.
	DefaultCorrelationThreshold = model.DefaultCorrelationThreshold

	// DefaultMaxHarvestImages bounds how many profile media files the
	// harvester downloads for EXIF inspection.
	DefaultMaxHarvestImages = 3

	// DefaultTorStartupTimeout bounds embedded Tor bootstrap when
	// anonymized probing is enabled.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is used for XDG directory paths.
	AppName = "handletrace"
)

// Config holds all options for one investigation run.
//
// Design decision: a single flat struct, mirroring how the CLI flags are
// flat. Components receive the whole Config or the few fields they need;
// nothing reads configuration from globals.
type Config struct {
	// Seeds are the seed handles to investigate, one run per seed.
	Seeds []string

	// StealthLevel selects the probing strategy: 1 direct with pacing,
	// 2 passive-first with mimicked direct fallback, 3 passive-only.
	StealthLevel int

	// MaxVariants bounds the candidate handles generated per seed.
	MaxVariants int

	// Workers is the global probe concurrency bound.
	Workers int

	// RequestTimeout applies to each outbound request.
	RequestTimeout time.Duration

	// RunTimeout bounds the whole investigation. Zero means no deadline.
	RunTimeout time.Duration

	// CacheTTL is the probe cache entry lifetime.
	CacheTTL time.Duration

	// CacheDir is where the persistent probe cache database lives.
	// Empty disables persistence; an in-memory cache is used instead.
	CacheDir string

	// MinInterval, JitterFraction, BurstProbability control per-platform
	// request pacing. Platforms can override MinInterval individually.
	MinInterval      time.Duration
	JitterFraction   float64
	BurstProbability float64

	// SessionBudget and Cooldown cap per-platform request volume.
	SessionBudget int
	Cooldown      time.Duration

	// CorrelationThreshold is the match cutoff for weighted scores.
	CorrelationThreshold float64

	// Platforms is the merged platform registry for this run.
	Platforms []model.Platform

	// Harvest enables the fingerprinting stage's content harvester.
	Harvest bool

	// MaxHarvestImages bounds media downloads per profile.
	MaxHarvestImages int

	// ProxyAddress routes probing through a SOCKS5 proxy when set.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes probing through it.
	// Mutually exclusive with ProxyAddress.
	UseTor bool

	// TorStartupTimeout bounds embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// Credentials hold optional API keys for passive signal sources and
	// the variant suggester. Loaded from the config file, never flags.
	Credentials Credentials

	// SuggestVariants consults the AI suggester during generation when a
	// suggester credential is configured.
	SuggestVariants bool

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport and MarkdownReport select the output format; both false
	// means the human-readable simple report. Mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout when set.
	ReportFile string

	// ConfigFilePath is an explicit config file location. Empty triggers
	// the default search (current directory, then home).
	ConfigFilePath string
}

// Credentials are optional API keys consumed by passive signal sources.
type Credentials struct {
	// BreachRegistryKey authenticates breach-registry membership lookups.
	BreachRegistryKey string `yaml:"breach_registry_key,omitempty"`

	// SearchAPIKey authenticates search-result counting.
	SearchAPIKey string `yaml:"search_api_key,omitempty"`

	// OpenAIKey enables the AI variant suggester.
	OpenAIKey string `yaml:"openai_key,omitempty"`
}

// NewConfig returns a Config populated with defaults and the built-in
// platform registry.
func NewConfig() *Config {
	return &Config{
		StealthLevel:         DefaultStealthLevel,
		MaxVariants:          DefaultMaxVariants,
		Workers:              DefaultWorkers,
		RequestTimeout:       DefaultRequestTimeout,
		CacheTTL:             DefaultCacheTTL,
		MinInterval:          DefaultMinInterval,
		JitterFraction:       DefaultJitterFraction,
		BurstProbability:     DefaultBurstProbability,
		SessionBudget:        DefaultSessionBudget,
		Cooldown:             DefaultCooldown,
		CorrelationThreshold: DefaultCorrelationThreshold,
		Platforms:            model.BuiltinPlatforms(),
		Harvest:              true,
		MaxHarvestImages:     DefaultMaxHarvestImages,
		TorStartupTimeout:    DefaultTorStartupTimeout,
	}
}

// EnabledPlatforms returns the registry minus disabled entries.
func (c *Config) EnabledPlatforms() []model.Platform {
	out := make([]model.Platform, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		if !p.Disabled {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.StealthLevel < 1 || c.StealthLevel > 3 {
		return ErrInvalidStealthLevel
	}
	if c.MaxVariants <= 0 {
		return ErrInvalidMaxVariants
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CorrelationThreshold <= 0 || c.CorrelationThreshold > 1 {
		return ErrInvalidThreshold
	}
	if c.SessionBudget <= 0 {
		return ErrInvalidBudget
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxies
	}
	if len(c.EnabledPlatforms()) == 0 {
		return ErrNoPlatforms
	}
	return nil
}

// XDGDataDir returns the XDG data directory for handletrace.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for handletrace.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for handletrace.
// This is the default home of the persistent probe cache.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}
