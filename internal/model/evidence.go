package model

import "time"

// SignalType classifies where an existence signal came from.
// Each type carries a fixed reliability weight used when aggregating
// passive signals into a probe confidence.
type SignalType string

// Signal type constants, strongest first.
const (
	// SignalAPIValidation is a platform API that authoritatively confirms
	// account existence (e.g. a user endpoint returning the profile).
	SignalAPIValidation SignalType = "api_validation"
	// SignalArchive is an archived snapshot of the profile page.
	SignalArchive SignalType = "archive"
	// SignalBreachRegistry is membership in a public breach registry.
	SignalBreachRegistry SignalType = "breach_registry"
	// SignalIndirectAPI is an indirect platform query, such as a
	// repository-ownership search that only succeeds for existing users.
	SignalIndirectAPI SignalType = "indirect_api"
	// SignalSearchResult is a search engine result count for the handle.
	SignalSearchResult SignalType = "search_result"
	// SignalSocialGraph is a reference from another account's social graph.
	SignalSocialGraph SignalType = "social_graph"
	// SignalMention is a textual mention of the handle on the platform.
	SignalMention SignalType = "mention"
	// SignalAggregator is a third-party people/handle aggregator listing.
	SignalAggregator SignalType = "aggregator"
	// SignalDirect is a direct profile page observation. It is not part of
	// the passive weighting table; direct probes set confidence explicitly.
	SignalDirect SignalType = "direct"
)

// Weight returns the reliability weight for this signal type.
// The values are tuned heuristics, not learned parameters.
func (s SignalType) Weight() float64 {
	switch s {
	case SignalAPIValidation:
		return 1.0
	case SignalArchive:
		return 0.9
	case SignalBreachRegistry:
		return 0.8
	case SignalIndirectAPI:
		return 0.8
	case SignalSearchResult:
		return 0.7
	case SignalSocialGraph:
		return 0.6
	case SignalMention:
		return 0.5
	case SignalAggregator:
		return 0.4
	case SignalDirect:
		return 1.0
	default:
		return 0.0
	}
}

// Evidence is one append-only observation supporting a probe result or a
// correlation. Evidence is never mutated after creation.
type Evidence struct {
	// SourceType classifies the signal origin.
	SourceType SignalType `json:"source_type"`

	// SourceName identifies the concrete source (e.g. "wayback_machine").
	SourceName string `json:"source_name"`

	// Confidence is this item's contribution in [0,1].
	Confidence float64 `json:"confidence"`

	// Description is a human-readable explanation of the observation.
	Description string `json:"description"`

	// Timestamp is when the observation was made.
	Timestamp time.Time `json:"timestamp"`
}

// NewEvidence creates an Evidence item stamped with the current time.
// Confidence is clamped into [0,1].
func NewEvidence(sourceType SignalType, sourceName string, confidence float64, description string) Evidence {
	return Evidence{
		SourceType:  sourceType,
		SourceName:  sourceName,
		Confidence:  ClampConfidence(confidence),
		Description: description,
		Timestamp:   time.Now(),
	}
}

// ClampConfidence forces a confidence value into the valid [0,1] range.
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
