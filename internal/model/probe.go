package model

import "time"

// ExistenceThreshold is the minimum confidence for a probe to report
// that an account exists. A ProbeResult with Exists=true always carries
// a confidence at or above this value.
const ExistenceThreshold = 0.6

// ProbeMethod identifies the strategy that produced a probe result.
type ProbeMethod string

// Probe method constants.
const (
	// ProbePassive aggregates external signals without contacting the platform.
	ProbePassive ProbeMethod = "passive"
	// ProbeIndirect queries a platform side channel (search API, ownership
	// lookup) rather than the profile page itself.
	ProbeIndirect ProbeMethod = "indirect"
	// ProbeDirectMimicked fetches the profile page with a randomized
	// realistic browser header profile.
	ProbeDirectMimicked ProbeMethod = "direct_mimicked"
	// ProbeDirectTimed fetches the profile page with plain pacing only.
	ProbeDirectTimed ProbeMethod = "direct_timed"
)

// ProbeResult is the prober's verdict for one (platform, handle) pair.
//
// Invariant: Exists=true implies Confidence >= ExistenceThreshold, and
// Confidence is always within [0,1]. Construct results through the helper
// constructors to preserve this.
type ProbeResult struct {
	// Platform is the canonical platform name.
	Platform string `json:"platform"`

	// Handle is the probed handle.
	Handle string `json:"handle"`

	// Exists reports whether the account was judged to exist.
	Exists bool `json:"exists"`

	// Confidence is the judgment confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Evidence lists the observations supporting the judgment.
	Evidence []Evidence `json:"evidence,omitempty"`

	// Method records which probing strategy produced this result.
	Method ProbeMethod `json:"method"`

	// Timestamp is when the probe completed.
	Timestamp time.Time `json:"timestamp"`
}

// NewProbeResult creates a ProbeResult, clamping confidence and enforcing
// the existence invariant: a confidence below ExistenceThreshold can never
// yield Exists=true.
func NewProbeResult(platform, handle string, confidence float64, method ProbeMethod, evidence []Evidence) ProbeResult {
	confidence = ClampConfidence(confidence)
	return ProbeResult{
		Platform:   platform,
		Handle:     handle,
		Exists:     confidence >= ExistenceThreshold,
		Confidence: confidence,
		Evidence:   evidence,
		Method:     method,
		Timestamp:  time.Now(),
	}
}

// NewNegativeProbeResult creates a result that reports the account does not
// exist, with the given confidence in that negative judgment.
func NewNegativeProbeResult(platform, handle string, confidence float64, method ProbeMethod, evidence []Evidence) ProbeResult {
	return ProbeResult{
		Platform:   platform,
		Handle:     handle,
		Exists:     false,
		Confidence: ClampConfidence(confidence),
		Evidence:   evidence,
		Method:     method,
		Timestamp:  time.Now(),
	}
}

// NewInconclusiveProbeResult creates the degraded result used when all
// probing strategies failed (timeouts, rate limits, malformed responses).
// It never signals existence and carries zero confidence.
func NewInconclusiveProbeResult(platform, handle string, method ProbeMethod, reason string) ProbeResult {
	var evidence []Evidence
	if reason != "" {
		evidence = []Evidence{NewEvidence(SignalDirect, "probe_failure", 0, reason)}
	}
	return ProbeResult{
		Platform:   platform,
		Handle:     handle,
		Exists:     false,
		Confidence: 0,
		Evidence:   evidence,
		Method:     method,
		Timestamp:  time.Now(),
	}
}

// Inconclusive reports whether the probe failed to reach any judgment.
func (r ProbeResult) Inconclusive() bool {
	return !r.Exists && r.Confidence == 0
}

// Key returns the (platform, handle) identity of this result.
func (r ProbeResult) Key() string {
	return r.Platform + "/" + r.Handle
}
