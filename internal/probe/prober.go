package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/handletrace/internal/cache"
	"github.com/nao1215/handletrace/internal/config"
	"github.com/nao1215/handletrace/internal/model"
	"github.com/nao1215/handletrace/internal/transport"
)

const (
	// cacheKind separates existence verdicts from other cached payloads.
	cacheKind = "existence"

	// retryAttempts is the number of retries after the first failed fetch.
	retryAttempts = 2

	// retryBaseDelay is the first backoff delay; it doubles per attempt.
	retryBaseDelay = 500 * time.Millisecond

	// passiveSignalQuorum is the number of passive signals at stealth
	// level 2 that makes a direct request unnecessary.
	passiveSignalQuorum = 2

	// signalCountBonusStep and signalCountBonusCap shape the bonus for
	// corroborating passive signals: each signal beyond the first adds
	// one step, up to the cap.
	signalCountBonusStep = 0.1
	signalCountBonusCap  = 0.3

	// directMatchConfidence is the confidence of a structural marker
	// match on the profile page, and negativeMarkerConfidence that of a
	// soft 404 marker. A hard HTTP 404 is worth hard404Confidence.
	directMatchConfidence    = 0.8
	negativeMarkerConfidence = 0.8
	hard404Confidence        = 0.9

	// noMarkerConfidence is the weak negative verdict for a page that
	// loaded but matched neither marker set.
	noMarkerConfidence = 0.3

	// passiveAbsenceConfidence is the weak negative verdict when passive
	// sources ran but none found a signal.
	passiveAbsenceConfidence = 0.5
)

// Prober decides account existence per (platform, handle) pair.
// It is safe for concurrent use; workers share its cache and pacer.
type Prober struct {
	fetcher  transport.Fetcher
	cache    cache.Cache
	pacer    *Pacer
	sources  []signalSource
	logger   *slog.Logger
	stealth  int
	cacheTTL time.Duration
}

// Option configures a Prober.
type Option func(*Prober)

// WithSources replaces the passive signal sources. Tests use this to
// substitute deterministic sources.
func WithSources(sources ...signalSource) Option {
	return func(p *Prober) {
		p.sources = sources
	}
}

// WithPacer replaces the pacer, sharing one across probers or tightening
// intervals in tests.
func WithPacer(pacer *Pacer) Option {
	return func(p *Prober) {
		p.pacer = pacer
	}
}

// New creates a Prober from the run configuration. The fetcher is the
// outbound transport (already proxy-wrapped when Tor routing is on) and
// c receives every conclusive verdict for the configured TTL.
func New(cfg *config.Config, fetcher transport.Fetcher, c cache.Cache, logger *slog.Logger, opts ...Option) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Prober{
		fetcher:  fetcher,
		cache:    c,
		logger:   logger,
		stealth:  cfg.StealthLevel,
		cacheTTL: cfg.CacheTTL,
		pacer: NewPacer(cfg.MinInterval, cfg.JitterFraction, cfg.BurstProbability,
			cfg.SessionBudget, cfg.Cooldown),
	}

	call := &caller{fetcher: fetcher, pacer: p.pacer}
	p.sources = []signalSource{
		&archiveSource{caller: call},
		&breachSource{caller: call, apiKey: cfg.Credentials.BreachRegistryKey},
		&aggregatorSource{caller: call},
		&searchSource{caller: call, apiKey: cfg.Credentials.SearchAPIKey},
		&indirectSource{caller: call},
	}

	for _, opt := range opts {
		opt(p)
	}
	// Options may swap the pacer; sources keep pacing through the live one.
	call.pacer = p.pacer
	return p
}

// Probe returns the existence verdict for one (platform, handle) pair.
// Conclusive verdicts are cached; inconclusive ones are not, so a
// transient outage does not poison the cache for the TTL.
func (p *Prober) Probe(ctx context.Context, platform model.Platform, handle string) model.ProbeResult {
	key := cache.Key(platform.Name, handle, cacheKind)
	if cached, ok := p.cache.Get(key); ok {
		p.logger.Debug("probe cache hit", "platform", platform.Name, "handle", handle)
		return cached
	}

	p.pacer.RegisterInterval(platform.Name, platform.MinInterval)

	var result model.ProbeResult
	switch p.stealth {
	case config.StealthBasic:
		result = p.direct(ctx, platform, handle, model.ProbeDirectTimed)
	case config.StealthModerate:
		result = p.moderate(ctx, platform, handle)
	default:
		result = p.passive(ctx, platform, handle)
	}

	p.logger.Info("probe complete",
		"platform", platform.Name,
		"handle", handle,
		"exists", result.Exists,
		"confidence", result.Confidence,
		"method", result.Method)

	if !result.Inconclusive() {
		p.cache.Set(key, result, p.cacheTTL)
	}
	return result
}

// moderate runs passive sources first and only touches the profile page,
// with mimicked browser headers, when fewer than two passive signals
// corroborate each other.
func (p *Prober) moderate(ctx context.Context, platform model.Platform, handle string) model.ProbeResult {
	evidence, attempted := p.collectSignals(ctx, platform, handle)
	if len(evidence) >= passiveSignalQuorum {
		return p.aggregate(platform, handle, evidence, attempted)
	}
	direct := p.direct(ctx, platform, handle, model.ProbeDirectMimicked)
	// Passive evidence gathered on the way stays attached to the verdict.
	direct.Evidence = append(direct.Evidence, evidence...)
	return direct
}

// passive aggregates independent signals without any direct request.
func (p *Prober) passive(ctx context.Context, platform model.Platform, handle string) model.ProbeResult {
	evidence, attempted := p.collectSignals(ctx, platform, handle)
	return p.aggregate(platform, handle, evidence, attempted)
}

// collectSignals runs every available signal source, returning the
// gathered evidence and how many sources actually completed. Source
// failures are logged and skipped; they never abort the probe.
func (p *Prober) collectSignals(ctx context.Context, platform model.Platform, handle string) ([]model.Evidence, int) {
	var evidence []model.Evidence
	attempted := 0
	for _, source := range p.sources {
		if ctx.Err() != nil {
			break
		}
		ev, err := source.collect(ctx, platform, handle)
		switch {
		case errors.Is(err, ErrSourceUnavailable):
			continue
		case err != nil:
			p.logger.Debug("signal source failed",
				"source", source.name(),
				"platform", platform.Name,
				"handle", handle,
				"error", err)
			continue
		}
		attempted++
		if ev != nil {
			evidence = append(evidence, *ev)
		}
	}
	return evidence, attempted
}

// aggregate combines passive evidence into a verdict. The confidence is
// the reliability-weighted mean of the signal confidences plus a small
// bonus for corroborating signal count.
func (p *Prober) aggregate(platform model.Platform, handle string, evidence []model.Evidence, attempted int) model.ProbeResult {
	if len(evidence) == 0 {
		if attempted == 0 {
			return model.NewInconclusiveProbeResult(platform.Name, handle, model.ProbePassive,
				"no passive signal source completed")
		}
		return model.NewNegativeProbeResult(platform.Name, handle, passiveAbsenceConfidence,
			model.ProbePassive, []model.Evidence{
				model.NewEvidence(model.SignalDirect, "passive_sweep", passiveAbsenceConfidence,
					fmt.Sprintf("%d passive sources found no trace of %q", attempted, handle)),
			})
	}

	var weightedSum, weightTotal float64
	for _, ev := range evidence {
		w := ev.SourceType.Weight()
		weightedSum += w * ev.Confidence
		weightTotal += w
	}
	confidence := weightedSum / weightTotal

	bonus := signalCountBonusStep * float64(len(evidence)-1)
	if bonus > signalCountBonusCap {
		bonus = signalCountBonusCap
	}
	confidence += bonus

	return model.NewProbeResult(platform.Name, handle, confidence, model.ProbePassive, evidence)
}

// direct fetches the profile page and judges existence from the status
// code and the platform's structural markers.
func (p *Prober) direct(ctx context.Context, platform model.Platform, handle string, method model.ProbeMethod) model.ProbeResult {
	profileURL := platform.ProfileURL(handle)
	if profileURL == "" {
		return model.NewInconclusiveProbeResult(platform.Name, handle, method, ErrNoProfileURL.Error())
	}

	if err := p.pacer.Acquire(ctx, platform.Name); err != nil {
		return model.NewInconclusiveProbeResult(platform.Name, handle, method, err.Error())
	}

	var headers map[string]string
	if method == model.ProbeDirectMimicked {
		headers = transport.MimicHeaders(profileURL)
	}

	resp, err := fetchRetry(ctx, p.fetcher, transport.Request{URL: profileURL, Headers: headers})
	if err != nil {
		return model.NewInconclusiveProbeResult(platform.Name, handle, method,
			fmt.Sprintf("profile fetch failed: %v", err))
	}

	switch {
	case resp.StatusCode == 404:
		return model.NewNegativeProbeResult(platform.Name, handle, hard404Confidence, method,
			[]model.Evidence{model.NewEvidence(model.SignalDirect, "profile_page", hard404Confidence,
				"profile URL returned HTTP 404")})
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return p.judgeBody(platform, handle, method, resp.Body)
	default:
		return model.NewInconclusiveProbeResult(platform.Name, handle, method,
			fmt.Sprintf("profile URL returned HTTP %d", resp.StatusCode))
	}
}

// judgeBody applies the platform's marker sets to a fetched profile page.
// Soft 404 markers win over existence markers: many platforms serve their
// not-found page with a 200 and generic profile scaffolding around it.
func (p *Prober) judgeBody(platform model.Platform, handle string, method model.ProbeMethod, body []byte) model.ProbeResult {
	page := strings.ToLower(string(body))

	for _, marker := range platform.NotFoundMarkers {
		if strings.Contains(page, strings.ToLower(marker)) {
			return model.NewNegativeProbeResult(platform.Name, handle, negativeMarkerConfidence, method,
				[]model.Evidence{model.NewEvidence(model.SignalDirect, "profile_page", negativeMarkerConfidence,
					fmt.Sprintf("page contains not-found marker %q", marker))})
		}
	}
	for _, marker := range platform.ExistenceMarkers {
		if strings.Contains(page, strings.ToLower(marker)) {
			return model.NewProbeResult(platform.Name, handle, directMatchConfidence, method,
				[]model.Evidence{model.NewEvidence(model.SignalDirect, "profile_page", directMatchConfidence,
					fmt.Sprintf("page contains existence marker %q", marker))})
		}
	}

	return model.NewNegativeProbeResult(platform.Name, handle, noMarkerConfidence, method,
		[]model.Evidence{model.NewEvidence(model.SignalDirect, "profile_page", noMarkerConfidence,
			"page matched no existence or not-found marker")})
}

// fetchRetry performs one fetch with the standard retry policy: up to two
// retries with doubling backoff, on retryable transport errors and 5xx
// responses.
func fetchRetry(ctx context.Context, fetcher transport.Fetcher, req transport.Request) (*transport.Response, error) {
	delay := retryBaseDelay
	var lastErr error
	var lastResp *transport.Response

	for attempt := 0; attempt <= retryAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
		}

		resp, err := fetcher.Fetch(ctx, req)
		if err != nil {
			lastErr = err
			lastResp = nil
			if !transport.Retryable(err) {
				return nil, err
			}
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = nil
			lastResp = resp
			continue
		}
		return resp, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return lastResp, nil
}
