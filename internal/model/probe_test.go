package model

import "testing"

// TestNewProbeResult verifies the existence invariant is enforced.
func TestNewProbeResult(t *testing.T) {
	t.Parallel()

	t.Run("confidence at threshold yields exists", func(t *testing.T) {
		t.Parallel()

		r := NewProbeResult("forge", "alice", 0.6, ProbeDirectTimed, nil)

		if !r.Exists {
			t.Error("expected exists=true at threshold confidence")
		}
		if r.Confidence != 0.6 {
			t.Errorf("expected confidence 0.6, got %f", r.Confidence)
		}
	})

	t.Run("confidence below threshold never exists", func(t *testing.T) {
		t.Parallel()

		r := NewProbeResult("forge", "alice", 0.59, ProbePassive, nil)

		if r.Exists {
			t.Error("expected exists=false below threshold")
		}
	})

	t.Run("confidence is clamped into unit range", func(t *testing.T) {
		t.Parallel()

		high := NewProbeResult("forge", "alice", 1.7, ProbePassive, nil)
		if high.Confidence != 1.0 {
			t.Errorf("expected clamp to 1.0, got %f", high.Confidence)
		}

		low := NewProbeResult("forge", "alice", -0.3, ProbePassive, nil)
		if low.Confidence != 0 {
			t.Errorf("expected clamp to 0, got %f", low.Confidence)
		}
	})
}

// TestNewNegativeProbeResult verifies negative results keep their
// confidence without flipping exists.
func TestNewNegativeProbeResult(t *testing.T) {
	t.Parallel()

	r := NewNegativeProbeResult("forge", "bob", 0.9, ProbeDirectTimed, nil)

	if r.Exists {
		t.Error("expected exists=false")
	}
	if r.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %f", r.Confidence)
	}
	if r.Inconclusive() {
		t.Error("a confident negative is not inconclusive")
	}
}

// TestNewInconclusiveProbeResult verifies the degraded-failure shape.
func TestNewInconclusiveProbeResult(t *testing.T) {
	t.Parallel()

	r := NewInconclusiveProbeResult("forge", "carol", ProbeDirectMimicked, "request timed out")

	if r.Exists {
		t.Error("expected exists=false")
	}
	if r.Confidence != 0 {
		t.Errorf("expected confidence 0, got %f", r.Confidence)
	}
	if !r.Inconclusive() {
		t.Error("expected Inconclusive()")
	}
	if len(r.Evidence) != 1 {
		t.Fatalf("expected one failure evidence item, got %d", len(r.Evidence))
	}
	if r.Evidence[0].Description != "request timed out" {
		t.Errorf("unexpected evidence description: %s", r.Evidence[0].Description)
	}
}

// TestSignalTypeWeight verifies the fixed signal weight table.
func TestSignalTypeWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		signal SignalType
		want   float64
	}{
		{SignalAPIValidation, 1.0},
		{SignalArchive, 0.9},
		{SignalBreachRegistry, 0.8},
		{SignalIndirectAPI, 0.8},
		{SignalSearchResult, 0.7},
		{SignalSocialGraph, 0.6},
		{SignalMention, 0.5},
		{SignalAggregator, 0.4},
		{SignalType("bogus"), 0.0},
	}

	for _, tt := range tests {
		if got := tt.signal.Weight(); got != tt.want {
			t.Errorf("%s: expected weight %f, got %f", tt.signal, tt.want, got)
		}
	}
}
