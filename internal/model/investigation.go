package model

import (
	"sync"
	"time"
)

// InvestigationStatus is the orchestrator state machine position.
type InvestigationStatus string

// Investigation status constants. Finalized and Failed are terminal.
const (
	StatusCreated        InvestigationStatus = "created"
	StatusDiscovering    InvestigationStatus = "discovering"
	StatusFingerprinting InvestigationStatus = "fingerprinting"
	StatusCorrelating    InvestigationStatus = "correlating"
	StatusFinalized      InvestigationStatus = "finalized"
	StatusFailed         InvestigationStatus = "failed"
)

// Terminal reports whether the status ends the run.
func (s InvestigationStatus) Terminal() bool {
	return s == StatusFinalized || s == StatusFailed
}

// ConfidenceMetrics are the aggregate quality metrics computed when an
// investigation finalizes.
type ConfidenceMetrics struct {
	// MeanDiscoveryConfidence is the mean confidence of positive probes.
	MeanDiscoveryConfidence float64 `json:"mean_discovery_confidence"`

	// VerificationRate is confirmed accounts over probed candidates.
	VerificationRate float64 `json:"verification_rate"`

	// MeanCorrelationConfidence is the mean weighted score of matching edges.
	MeanCorrelationConfidence float64 `json:"mean_correlation_confidence"`

	// PlatformCoverage is platforms with a confirmed account over
	// platforms probed.
	PlatformCoverage float64 `json:"platform_coverage"`
}

// Investigation is the root aggregate for one run. It owns every entity
// the run produced and is safe for concurrent use: the orchestrator
// mutates it through the Add/Set methods while callers read snapshots.
//
// Design decision: The aggregate carries its own lock rather than leaving
// synchronization to the orchestrator because GetInvestigation must be
// callable mid-run, and a torn read of the slices would be a data race.
type Investigation struct {
	mu sync.RWMutex

	// ID uniquely identifies the run.
	ID string `json:"id"`

	// SeedHandle is the handle the run started from.
	SeedHandle string `json:"seed_handle"`

	// StartTime and EndTime bracket the run. EndTime is zero until the
	// run reaches a terminal state.
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`

	// Status is the current state machine position.
	Status InvestigationStatus `json:"status"`

	// Candidates are the generated handles, all platforms combined.
	Candidates []Candidate `json:"candidates,omitempty"`

	// ProbeResults are the prober verdicts for every probed pair.
	ProbeResults []ProbeResult `json:"probe_results,omitempty"`

	// Accounts are the confirmed discoveries.
	Accounts []*Account `json:"accounts,omitempty"`

	// Edges are the pairwise correlation results.
	Edges []CorrelationEdge `json:"edges,omitempty"`

	// Clusters are the identity clusters of size >= 2.
	Clusters []IdentityCluster `json:"clusters,omitempty"`

	// Metrics are the aggregate confidence metrics, set at finalization.
	Metrics ConfidenceMetrics `json:"metrics"`

	// Notes record per-platform degradations and other non-fatal events.
	Notes []string `json:"notes,omitempty"`

	// frozen blocks further mutation once the run is terminal.
	frozen bool
}

// NewInvestigation creates an Investigation in the Created state.
func NewInvestigation(id, seedHandle string) *Investigation {
	return &Investigation{
		ID:         id,
		SeedHandle: seedHandle,
		StartTime:  time.Now(),
		Status:     StatusCreated,
	}
}

// SetStatus advances the state machine. Transitions out of a terminal
// state are ignored; the first terminal transition stamps EndTime and
// freezes the aggregate.
func (inv *Investigation) SetStatus(status InvestigationStatus) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.frozen {
		return
	}
	inv.Status = status
	if status.Terminal() {
		inv.EndTime = time.Now()
		inv.frozen = true
	}
}

// CurrentStatus returns the status under the read lock.
func (inv *Investigation) CurrentStatus() InvestigationStatus {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.Status
}

// SetCandidates records the generated candidate set.
func (inv *Investigation) SetCandidates(candidates []Candidate) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if !inv.frozen {
		inv.Candidates = candidates
	}
}

// AddProbeResult appends one probe verdict.
func (inv *Investigation) AddProbeResult(r ProbeResult) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if !inv.frozen {
		inv.ProbeResults = append(inv.ProbeResults, r)
	}
}

// AddAccount appends one confirmed account. Nil accounts are ignored so
// callers can pass NewAccount's result straight through.
func (inv *Investigation) AddAccount(a *Account) {
	if a == nil {
		return
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if !inv.frozen {
		inv.Accounts = append(inv.Accounts, a)
	}
}

// SetSignature attaches a behavioral signature to the account with the
// given key. Fingerprinting runs after accounts were added, so this is
// the one sanctioned post-add mutation; it happens under the write lock
// and Snapshot copies accounts, so readers never observe a torn update.
func (inv *Investigation) SetSignature(accountKey string, sig *BehavioralSignature) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.frozen {
		return
	}
	for _, a := range inv.Accounts {
		if a.Key() == accountKey {
			a.Signature = sig
			return
		}
	}
}

// SetCorrelation records the edges and clusters produced by the correlator.
func (inv *Investigation) SetCorrelation(edges []CorrelationEdge, clusters []IdentityCluster) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if !inv.frozen {
		inv.Edges = edges
		inv.Clusters = clusters
	}
}

// AddNote records a non-fatal degradation.
func (inv *Investigation) AddNote(note string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if !inv.frozen {
		inv.Notes = append(inv.Notes, note)
	}
}

// SetMetrics records the aggregate metrics. Called just before the
// terminal transition, while the aggregate is still mutable.
func (inv *Investigation) SetMetrics(m ConfidenceMetrics) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if !inv.frozen {
		inv.Metrics = m
	}
}

// Snapshot returns a copy that is safe to read while the run progresses.
// Accounts are copied by value because SetSignature mutates them; the
// remaining entities are immutable once added, so their elements are
// shared.
func (inv *Investigation) Snapshot() *Investigation {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := &Investigation{
		ID:         inv.ID,
		SeedHandle: inv.SeedHandle,
		StartTime:  inv.StartTime,
		EndTime:    inv.EndTime,
		Status:     inv.Status,
		Metrics:    inv.Metrics,
	}
	out.Candidates = append([]Candidate(nil), inv.Candidates...)
	out.ProbeResults = append([]ProbeResult(nil), inv.ProbeResults...)
	out.Accounts = make([]*Account, 0, len(inv.Accounts))
	for _, a := range inv.Accounts {
		copied := *a
		out.Accounts = append(out.Accounts, &copied)
	}
	out.Edges = append([]CorrelationEdge(nil), inv.Edges...)
	out.Clusters = append([]IdentityCluster(nil), inv.Clusters...)
	out.Notes = append([]string(nil), inv.Notes...)
	return out
}

// ComputeMetrics derives the aggregate confidence metrics from the
// collected entities. platformsProbed is the number of platforms the
// discovery stage targeted.
func (inv *Investigation) ComputeMetrics(platformsProbed int) ConfidenceMetrics {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	var m ConfidenceMetrics

	var positive int
	var positiveSum float64
	for _, r := range inv.ProbeResults {
		if r.Exists {
			positive++
			positiveSum += r.Confidence
		}
	}
	if positive > 0 {
		m.MeanDiscoveryConfidence = positiveSum / float64(positive)
	}
	if len(inv.ProbeResults) > 0 {
		m.VerificationRate = float64(len(inv.Accounts)) / float64(len(inv.ProbeResults))
	}

	var matches int
	var matchSum float64
	for _, e := range inv.Edges {
		if e.Match {
			matches++
			matchSum += e.WeightedScore
		}
	}
	if matches > 0 {
		m.MeanCorrelationConfidence = matchSum / float64(matches)
	}

	if platformsProbed > 0 {
		covered := make(map[string]bool)
		for _, a := range inv.Accounts {
			covered[a.Platform] = true
		}
		m.PlatformCoverage = float64(len(covered)) / float64(platformsProbed)
	}
	return m
}
