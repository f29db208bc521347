package signature

import (
	"log/slog"
	"time"

	"github.com/nao1215/handletrace/internal/model"
)

const (
	// volumeSaturation is the sample size at which the data-volume
	// confidence factor reaches 1.
	volumeSaturation = 50

	// spanSaturationDays is the observed time span at which the temporal
	// confidence factor reaches 1.
	spanSaturationDays = 30
)

// Extractor converts harvested content into behavioral signatures.
// It is stateless and safe for concurrent use.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract builds the five-dimensional signature for one account's
// harvested content. A nil or empty harvest yields an all-zero signature
// with zero confidence, never an error.
func (e *Extractor) Extract(platformName string, content *model.HarvestedContent) *model.BehavioralSignature {
	sig := &model.BehavioralSignature{}
	if content.Empty() {
		return sig
	}

	texts := content.Texts()
	sig.Linguistic = extractLinguistic(texts)
	sig.Temporal = extractTemporal(content.Timestamps)
	sig.Interaction = extractInteraction(content.Counters, texts)
	sig.Content = extractContent(content)
	sig.Technical = extractTechnical(platformName, content)
	sig.SampleSize = content.SampleSize()
	sig.Confidence = e.confidence(sig, content.Timestamps)

	e.logger.Debug("signature extracted",
		"platform", platformName,
		"sample_size", sig.SampleSize,
		"dimensions", sig.NonEmptyDimensions(),
		"confidence", sig.Confidence)
	return sig
}

// confidence combines the data-volume factor, the sub-signature coverage
// factor, and, when timestamps exist, the temporal-span factor.
func (e *Extractor) confidence(sig *model.BehavioralSignature, timestamps []time.Time) float64 {
	volume := float64(sig.SampleSize) / volumeSaturation
	if volume > 1 {
		volume = 1
	}
	quality := float64(sig.NonEmptyDimensions()) / float64(len(model.Dimensions))

	factors := []float64{volume, quality}
	if len(timestamps) >= 2 {
		first, last := timestamps[0], timestamps[0]
		for _, ts := range timestamps[1:] {
			if ts.Before(first) {
				first = ts
			}
			if ts.After(last) {
				last = ts
			}
		}
		span := last.Sub(first).Hours() / 24 / spanSaturationDays
		if span > 1 {
			span = 1
		}
		factors = append(factors, span)
	}

	sum := 0.0
	for _, f := range factors {
		sum += f
	}
	return sum / float64(len(factors))
}
