package model

import (
	"math"
	"testing"
)

// TestDimensionWeightsSumToOne verifies the fixed weight table.
func TestDimensionWeightsSumToOne(t *testing.T) {
	t.Parallel()

	var sum float64
	for _, d := range Dimensions {
		w := DimensionWeight(d)
		if w <= 0 {
			t.Errorf("dimension %s has non-positive weight %f", d, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("expected weights to sum to 1.0, got %f", sum)
	}

	if DimensionWeight(Dimension("bogus")) != 0 {
		t.Error("unknown dimension should weigh 0")
	}
}

// TestVectorLengthsAreFixed verifies that every sub-signature projects to
// the same length regardless of how sparse its maps are. Misaligned
// lengths would silently corrupt pairwise correlation.
func TestVectorLengthsAreFixed(t *testing.T) {
	t.Parallel()

	empty := &BehavioralSignature{}
	full := &BehavioralSignature{
		Linguistic: LinguisticSignature{
			VocabularyDiversity: 0.6,
			MeanSentenceLength:  12,
			PunctuationDensity:  map[string]float64{".": 0.1, "!": 0.02},
			EmojiHistogram:      map[string]int{"🔥": 3},
			RepeatedLetterCount: 2,
			ReadingEase:         70,
			WordCount:           400,
		},
		Content: ContentSignature{
			TopicDistribution: map[string]float64{"tech": 0.8, "music": 0.2},
			TextShare:         0.9,
			OriginalRatio:     0.7,
		},
		Technical: TechnicalSignature{
			DeviceIndicators:     []string{"android", "firefox"},
			PlatformDistribution: map[string]float64{"forge": 0.5, "chirp": 0.5},
			SophisticationScore:  0.4,
		},
	}

	for _, d := range Dimensions {
		if len(empty.Vector(d)) != len(full.Vector(d)) {
			t.Errorf("dimension %s: empty length %d != populated length %d",
				d, len(empty.Vector(d)), len(full.Vector(d)))
		}
	}
}

// TestDimensionEmpty verifies empty detection for zero sub-signatures.
func TestDimensionEmpty(t *testing.T) {
	t.Parallel()

	sig := &BehavioralSignature{}
	for _, d := range Dimensions {
		if !sig.DimensionEmpty(d) {
			t.Errorf("expected dimension %s of zero signature to be empty", d)
		}
	}

	sig.Interaction.LikeRatio = 0.5
	if sig.DimensionEmpty(DimensionInteraction) {
		t.Error("interaction dimension with data should not be empty")
	}
	if sig.NonEmptyDimensions() != 1 {
		t.Errorf("expected 1 non-empty dimension, got %d", sig.NonEmptyDimensions())
	}
}

// TestTechnicalPlatformEntropy verifies the spread feature's boundaries.
func TestTechnicalPlatformEntropy(t *testing.T) {
	t.Parallel()

	single := TechnicalSignature{PlatformDistribution: map[string]float64{"forge": 1.0}}
	if got := single.Vector()[2]; got != 0 {
		t.Errorf("single-platform entropy should be 0, got %f", got)
	}

	uniform := TechnicalSignature{PlatformDistribution: map[string]float64{
		"forge": 0.25, "chirp": 0.25, "lens": 0.25, "board": 0.25,
	}}
	if got := uniform.Vector()[2]; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("uniform spread entropy should be 1, got %f", got)
	}
}

// TestAccountPromotion verifies that accounts only come from positive probes.
func TestAccountPromotion(t *testing.T) {
	t.Parallel()

	platform := Platform{Name: "forge", ProfileURLTemplate: "https://forge.example/%s"}

	positive := NewProbeResult("forge", "alice", 0.8, ProbeDirectTimed, nil)
	account := NewAccount(platform, &positive)
	if account == nil {
		t.Fatal("expected account from positive probe")
	}
	if account.ProfileURL != "https://forge.example/alice" {
		t.Errorf("unexpected profile URL: %s", account.ProfileURL)
	}
	if account.Key() != "forge/alice" {
		t.Errorf("unexpected account key: %s", account.Key())
	}

	negative := NewNegativeProbeResult("forge", "bob", 0.9, ProbeDirectTimed, nil)
	if NewAccount(platform, &negative) != nil {
		t.Error("negative probe must not produce an account")
	}
	if NewAccount(platform, nil) != nil {
		t.Error("nil probe must not produce an account")
	}
}
