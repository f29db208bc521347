package signature

import (
	"sort"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/handletrace/internal/model"
)

// exifDeviceTags are the EXIF tags mined as device indicators.
var exifDeviceTags = map[string]struct{}{
	"Make":               {},
	"Model":              {},
	"Software":           {},
	"ProcessingSoftware": {},
	"LensModel":          {},
}

// sophisticationPerIndicator shapes the 0-1 sophistication score: more
// distinct clients and devices suggest a more technical user.
const (
	sophisticationBase         = 0.3
	sophisticationPerIndicator = 0.15
)

// extractTechnical builds the device-and-client signature from harvested
// hints and EXIF metadata in profile media. The platform distribution is
// the extraction-time view: one account lives on one platform, spread
// only appears after cluster merges.
func extractTechnical(platformName string, content *model.HarvestedContent) model.TechnicalSignature {
	var sig model.TechnicalSignature
	if content == nil {
		return sig
	}

	seen := make(map[string]struct{})
	for _, hint := range content.DeviceHints {
		addIndicator(seen, hint)
	}
	for _, image := range content.Images {
		for _, indicator := range exifIndicators(image) {
			addIndicator(seen, indicator)
		}
	}

	if len(seen) == 0 {
		return sig
	}

	sig.DeviceIndicators = make([]string, 0, len(seen))
	for indicator := range seen {
		sig.DeviceIndicators = append(sig.DeviceIndicators, indicator)
	}
	sort.Strings(sig.DeviceIndicators)

	sig.PlatformDistribution = map[string]float64{platformName: 1.0}

	score := sophisticationBase + sophisticationPerIndicator*float64(len(sig.DeviceIndicators))
	if score > 1 {
		score = 1
	}
	sig.SophisticationScore = score
	return sig
}

// addIndicator normalizes and deduplicates one indicator string.
func addIndicator(seen map[string]struct{}, raw string) {
	indicator := strings.TrimSpace(raw)
	if indicator == "" {
		return
	}
	seen[strings.ToLower(indicator)] = struct{}{}
}

// exifIndicators mines one image's EXIF block for device and software
// tags. Images without EXIF, or with unparseable EXIF, yield nothing.
func exifIndicators(imageData []byte) []string {
	rawExif, err := exif.SearchAndExtractExif(imageData)
	if err != nil || rawExif == nil {
		return nil
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	var indicators []string
	for _, entry := range entries {
		if _, ok := exifDeviceTags[entry.TagName]; !ok {
			continue
		}
		if value := strings.TrimSpace(entry.Formatted); value != "" {
			indicators = append(indicators, value)
		}
	}
	return indicators
}
