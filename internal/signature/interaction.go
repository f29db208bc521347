package signature

import (
	"math"
	"strings"

	"github.com/nao1215/handletrace/internal/model"
)

// informalMarkers lower the formality estimate. Contractions are handled
// separately by suffix.
var informalMarkers = []string{
	"lol", "lmao", "omg", "wtf", "imo", "imho", "tbh", "btw", "idk",
	"gonna", "wanna", "gotta", "kinda", "sorta", "yeah", "nah",
}

// contractionSuffixes catch common apostrophe contractions ("don't",
// "we're", "i'll").
var contractionSuffixes = []string{"n't", "'re", "'ll", "'ve", "'m", "'d"}

// informalWeight scales informal markers per word into a 0-1 penalty.
var informalWeight = 15.0

// extractInteraction builds the engagement-shape signature from counters
// and, for the formality estimate, the harvested texts.
func extractInteraction(counters model.InteractionCounters, texts []string) model.InteractionSignature {
	var sig model.InteractionSignature

	interactions := counters.Likes + counters.Comments + counters.Shares
	if interactions > 0 {
		sig.LikeRatio = float64(counters.Likes) / float64(interactions)
		sig.CommentRatio = float64(counters.Comments) / float64(interactions)
		sig.ShareRatio = float64(counters.Shares) / float64(interactions)
	}

	if counters.Followers > 0 || counters.Following > 0 {
		raw := float64(counters.Followers) / float64(counters.Following+1)
		// Log damping keeps celebrity accounts from pinning the vector.
		sig.FollowerFollowingRatio = math.Log1p(raw) / (1 + math.Log1p(raw))
	}

	threads := counters.ThreadsStarted + counters.ThreadsJoined
	if threads > 0 {
		sig.InitiationRate = float64(counters.ThreadsStarted) / float64(threads)
	}

	sig.Formality = estimateFormality(texts)
	return sig
}

// estimateFormality scores 0 (slang-heavy) to 1 (formal prose) from the
// density of informal markers and contractions. No text means 0: an
// unknown is indistinguishable from empty in the vector, and the
// correlator already discounts all-zero dimensions.
func estimateFormality(texts []string) float64 {
	words := splitWords(strings.ToLower(strings.Join(texts, " ")))
	if len(words) == 0 {
		return 0
	}

	informal := 0
	for _, w := range words {
		for _, marker := range informalMarkers {
			if w == marker {
				informal++
				break
			}
		}
		for _, suffix := range contractionSuffixes {
			if strings.HasSuffix(w, suffix) {
				informal++
				break
			}
		}
	}

	penalty := float64(informal) / float64(len(words)) * informalWeight
	if penalty > 1 {
		penalty = 1
	}
	return 1 - penalty
}
