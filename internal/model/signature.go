package model

import "math"

// Dimension names one of the five behavioral signature dimensions.
type Dimension string

// Signature dimension constants.
const (
	DimensionLinguistic  Dimension = "linguistic"
	DimensionTemporal    Dimension = "temporal"
	DimensionInteraction Dimension = "interaction"
	DimensionContent     Dimension = "content"
	DimensionTechnical   Dimension = "technical"
)

// Dimensions lists all signature dimensions in canonical order.
// Iteration over this slice, never over a map, keeps vector and report
// ordering deterministic.
var Dimensions = []Dimension{
	DimensionLinguistic,
	DimensionTemporal,
	DimensionInteraction,
	DimensionContent,
	DimensionTechnical,
}

// DimensionWeight returns the fixed weight of a dimension in the overall
// correlation score. The weights sum to 1.0. They are tuned heuristics
// carried over from operational experience, not learned parameters.
func DimensionWeight(d Dimension) float64 {
	switch d {
	case DimensionLinguistic:
		return 0.25
	case DimensionTemporal:
		return 0.20
	case DimensionInteraction:
		return 0.20
	case DimensionContent:
		return 0.15
	case DimensionTechnical:
		return 0.20
	default:
		return 0.0
	}
}

// VectorPunctuationMarks is the fixed set of punctuation marks projected
// into the linguistic vector, in this exact order. Both sides of a
// correlation must agree on the order for dimension-wise comparison.
var VectorPunctuationMarks = []rune{'.', ',', '!', '?', ';', ':'}

// TopicTaxonomy is the fixed small topic set for content signatures,
// in vector order.
var TopicTaxonomy = []string{
	"tech", "gaming", "politics", "sports", "music",
	"art", "finance", "food", "travel", "science",
}

// TermWeight is one characteristic term with its frequency weight.
type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// LinguisticSignature captures writing-style features.
type LinguisticSignature struct {
	// VocabularyDiversity is distinct words over total words, in [0,1].
	VocabularyDiversity float64 `json:"vocabulary_diversity"`

	// MeanSentenceLength is the average sentence length in words.
	MeanSentenceLength float64 `json:"mean_sentence_length"`

	// PunctuationDensity maps punctuation marks to occurrences per word.
	PunctuationDensity map[string]float64 `json:"punctuation_density,omitempty"`

	// CapitalizationRatio is uppercase letters over all letters.
	CapitalizationRatio float64 `json:"capitalization_ratio"`

	// EmojiHistogram counts emoji occurrences by emoji.
	EmojiHistogram map[string]int `json:"emoji_histogram,omitempty"`

	// RepeatedLetterCount counts stretched-letter patterns ("soooo").
	RepeatedLetterCount int `json:"repeated_letter_count"`

	// TopTerms are the most characteristic terms, frequency weighted.
	TopTerms []TermWeight `json:"top_terms,omitempty"`

	// ReadingEase is a Flesch-style reading ease score, clamped to [0,100].
	ReadingEase float64 `json:"reading_ease"`

	// wordCount preserves the denominator for rate features.
	WordCount int `json:"word_count"`
}

// Vector projects the linguistic signature into its fixed-order numeric
// form: diversity, sentence length, capitalization, reading ease, the
// fixed punctuation marks, repeated letters per word, emojis per word.
func (l LinguisticSignature) Vector() []float64 {
	v := make([]float64, 0, 4+len(VectorPunctuationMarks)+2)
	v = append(v,
		l.VocabularyDiversity,
		l.MeanSentenceLength/40.0,
		l.CapitalizationRatio,
		l.ReadingEase/100.0,
	)
	for _, mark := range VectorPunctuationMarks {
		v = append(v, l.PunctuationDensity[string(mark)])
	}
	var repeated, emoji float64
	if l.WordCount > 0 {
		repeated = float64(l.RepeatedLetterCount) / float64(l.WordCount)
		total := 0
		for _, n := range l.EmojiHistogram {
			total += n
		}
		emoji = float64(total) / float64(l.WordCount)
	}
	v = append(v, repeated, emoji)
	return v
}

// TemporalSignature captures posting-rhythm features.
type TemporalSignature struct {
	// HourHistogram is the fraction of posts per hour of day (UTC).
	HourHistogram [24]float64 `json:"hour_histogram"`

	// DayHistogram is the fraction of posts per day of week (Sunday=0).
	DayHistogram [7]float64 `json:"day_histogram"`

	// PostsPerDay is the mean posting rate over the observed span.
	PostsPerDay float64 `json:"posts_per_day"`

	// BurstCount is the number of burst windows (>=3 posts inside the
	// rolling burst window).
	BurstCount int `json:"burst_count"`

	// SleepStartHour is the start of the inferred sleep window (hour of day).
	SleepStartHour int `json:"sleep_start_hour"`

	// SleepLengthHours is the length of the longest low-activity stretch.
	SleepLengthHours int `json:"sleep_length_hours"`

	// BusinessHoursRatio is the fraction of posts inside 09:00-17:00 on
	// weekdays. Values near 1 suggest a work-schedule poster.
	BusinessHoursRatio float64 `json:"business_hours_ratio"`

	// Schedule is the inferred schedule label ("business_hours",
	// "evening", "night_owl", "irregular").
	Schedule string `json:"schedule,omitempty"`
}

// Vector projects the temporal signature into fixed order: 24 hour bins,
// 7 day bins, rate, bursts, sleep window, business-hours ratio.
func (t TemporalSignature) Vector() []float64 {
	v := make([]float64, 0, 24+7+5)
	v = append(v, t.HourHistogram[:]...)
	v = append(v, t.DayHistogram[:]...)
	v = append(v,
		t.PostsPerDay,
		float64(t.BurstCount),
		float64(t.SleepStartHour)/24.0,
		float64(t.SleepLengthHours)/24.0,
		t.BusinessHoursRatio,
	)
	return v
}

// InteractionSignature captures engagement-style features.
type InteractionSignature struct {
	// LikeRatio, CommentRatio, and ShareRatio are each counter's share of
	// total interactions, summing to 1 when any interactions exist.
	LikeRatio    float64 `json:"like_ratio"`
	CommentRatio float64 `json:"comment_ratio"`
	ShareRatio   float64 `json:"share_ratio"`

	// FollowerFollowingRatio is followers/(following+1), log-damped.
	FollowerFollowingRatio float64 `json:"follower_following_ratio"`

	// InitiationRate is threads started over all threads participated in.
	InitiationRate float64 `json:"initiation_rate"`

	// Formality is a coarse 0-1 estimate from contraction and slang use.
	Formality float64 `json:"formality"`
}

// Vector projects the interaction signature into fixed order.
func (i InteractionSignature) Vector() []float64 {
	return []float64{
		i.LikeRatio,
		i.CommentRatio,
		i.ShareRatio,
		i.FollowerFollowingRatio,
		i.InitiationRate,
		i.Formality,
	}
}

// ContentSignature captures what an account posts about.
type ContentSignature struct {
	// TopicDistribution is the keyword-hit share per TopicTaxonomy topic.
	TopicDistribution map[string]float64 `json:"topic_distribution,omitempty"`

	// TextShare, LinkShare, and MediaShare are the content-type mix.
	TextShare  float64 `json:"text_share"`
	LinkShare  float64 `json:"link_share"`
	MediaShare float64 `json:"media_share"`

	// OriginalRatio is original posts over all posts (1 - shared fraction).
	OriginalRatio float64 `json:"original_ratio"`
}

// Vector projects the content signature into fixed order: the taxonomy
// topics in their canonical order, then the type mix, then originality.
func (c ContentSignature) Vector() []float64 {
	v := make([]float64, 0, len(TopicTaxonomy)+4)
	for _, topic := range TopicTaxonomy {
		v = append(v, c.TopicDistribution[topic])
	}
	v = append(v, c.TextShare, c.LinkShare, c.MediaShare, c.OriginalRatio)
	return v
}

// TechnicalSignature captures device and client usage features.
type TechnicalSignature struct {
	// DeviceIndicators are the distinct device/browser indicator strings.
	DeviceIndicators []string `json:"device_indicators,omitempty"`

	// PlatformDistribution is the share of observed activity per platform.
	PlatformDistribution map[string]float64 `json:"platform_distribution,omitempty"`

	// SophisticationScore is a 0-1 estimate derived from indicator variety.
	SophisticationScore float64 `json:"sophistication_score"`
}

// Vector projects the technical signature into fixed order: indicator
// count (saturating at 5), sophistication, and normalized platform-spread
// entropy. Per-platform keys cannot go into the vector directly because
// two accounts rarely share key sets, which would misalign dimensions.
func (t TechnicalSignature) Vector() []float64 {
	count := float64(len(t.DeviceIndicators)) / 5.0
	if count > 1 {
		count = 1
	}
	return []float64{count, t.SophisticationScore, t.platformEntropy()}
}

// platformEntropy is the normalized Shannon entropy of the platform
// distribution; 0 for single-platform activity, 1 for a uniform spread.
func (t TechnicalSignature) platformEntropy() float64 {
	if len(t.PlatformDistribution) < 2 {
		return 0
	}
	var h float64
	for _, p := range t.PlatformDistribution {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h / math.Log2(float64(len(t.PlatformDistribution)))
}

// BehavioralSignature is the five-dimensional fingerprint of one account.
type BehavioralSignature struct {
	Linguistic  LinguisticSignature  `json:"linguistic"`
	Temporal    TemporalSignature    `json:"temporal"`
	Interaction InteractionSignature `json:"interaction"`
	Content     ContentSignature     `json:"content"`
	Technical   TechnicalSignature   `json:"technical"`

	// Confidence is the overall extraction confidence in [0,1], combining
	// data volume, sub-signature coverage, and temporal span.
	Confidence float64 `json:"confidence"`

	// SampleSize is the number of content items the signature was built from.
	SampleSize int `json:"sample_size"`
}

// Vector returns the fixed-order numeric projection for one dimension.
func (s *BehavioralSignature) Vector(d Dimension) []float64 {
	switch d {
	case DimensionLinguistic:
		return s.Linguistic.Vector()
	case DimensionTemporal:
		return s.Temporal.Vector()
	case DimensionInteraction:
		return s.Interaction.Vector()
	case DimensionContent:
		return s.Content.Vector()
	case DimensionTechnical:
		return s.Technical.Vector()
	default:
		return nil
	}
}

// DimensionEmpty reports whether a dimension carries no data at all.
// An all-zero sub-signature means "nothing harvested", and the correlator
// scores it zero instead of treating two blanks as a match.
func (s *BehavioralSignature) DimensionEmpty(d Dimension) bool {
	for _, x := range s.Vector(d) {
		if x != 0 {
			return false
		}
	}
	return true
}

// NonEmptyDimensions counts dimensions that carry data.
func (s *BehavioralSignature) NonEmptyDimensions() int {
	n := 0
	for _, d := range Dimensions {
		if !s.DimensionEmpty(d) {
			n++
		}
	}
	return n
}
