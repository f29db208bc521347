package model

import "time"

// InvestigationReport is the stable, JSON-serializable contract surface
// for investigation results. Field names and nesting are part of the
// public contract; changing them breaks downstream consumers.
//
// Design decision: The report is a separate flattened structure rather
// than the Investigation aggregate itself so that internal restructuring
// (locks, frozen flags, pointer graphs) never leaks into the contract.
type InvestigationReport struct {
	// ID is the investigation identifier.
	ID string `json:"id"`

	// SeedHandle is the handle the investigation started from.
	SeedHandle string `json:"seed_handle"`

	// Status is the terminal (or current) state of the run.
	Status string `json:"status"`

	// StartTime and EndTime bracket the run.
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`

	// CandidatesGenerated is the number of candidate handles produced.
	CandidatesGenerated int `json:"candidates_generated"`

	// ProbesIssued is the number of (platform, handle) pairs probed.
	ProbesIssued int `json:"probes_issued"`

	// Discoveries lists the confirmed accounts.
	Discoveries []Discovery `json:"discoveries"`

	// Clusters lists the identity clusters of size >= 2.
	Clusters []IdentityCluster `json:"clusters"`

	// Metrics are the aggregate confidence metrics.
	Metrics ConfidenceMetrics `json:"metrics"`

	// Notes record non-fatal degradations encountered during the run.
	Notes []string `json:"notes,omitempty"`
}

// Discovery is one confirmed account in the report.
type Discovery struct {
	// Platform is the canonical platform name.
	Platform string `json:"platform"`

	// Handle is the confirmed handle.
	Handle string `json:"handle"`

	// ProfileURL is the canonical profile URL, when known.
	ProfileURL string `json:"profile_url,omitempty"`

	// Confidence is the probe confidence that confirmed the account.
	Confidence float64 `json:"confidence"`

	// Method is the probing strategy that confirmed the account.
	Method string `json:"method"`

	// SignatureConfidence is the extraction confidence of the behavioral
	// signature, zero when fingerprinting was skipped.
	SignatureConfidence float64 `json:"signature_confidence"`

	// Evidence lists the supporting observations.
	Evidence []Evidence `json:"evidence,omitempty"`
}

// ToReport converts the investigation into its stable report form.
// It is safe to call on a live investigation; a snapshot is taken first.
func (inv *Investigation) ToReport() *InvestigationReport {
	snap := inv.Snapshot()

	report := &InvestigationReport{
		ID:                  snap.ID,
		SeedHandle:          snap.SeedHandle,
		Status:              string(snap.Status),
		StartTime:           snap.StartTime,
		EndTime:             snap.EndTime,
		CandidatesGenerated: len(snap.Candidates),
		ProbesIssued:        len(snap.ProbeResults),
		Discoveries:         make([]Discovery, 0, len(snap.Accounts)),
		Clusters:            snap.Clusters,
		Metrics:             snap.Metrics,
		Notes:               snap.Notes,
	}
	if report.Clusters == nil {
		report.Clusters = make([]IdentityCluster, 0)
	}

	for _, a := range snap.Accounts {
		d := Discovery{
			Platform:   a.Platform,
			Handle:     a.Handle,
			ProfileURL: a.ProfileURL,
		}
		if a.Probe != nil {
			d.Confidence = a.Probe.Confidence
			d.Method = string(a.Probe.Method)
			d.Evidence = a.Probe.Evidence
		}
		if a.Signature != nil {
			d.SignatureConfidence = a.Signature.Confidence
		}
		report.Discoveries = append(report.Discoveries, d)
	}
	return report
}
