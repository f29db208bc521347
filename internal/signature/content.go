package signature

import (
	"strings"

	"github.com/nao1215/handletrace/internal/model"
)

// topicKeywords maps each taxonomy topic to its indicator keywords.
// Matching is whole-word over lowercased text.
var topicKeywords = map[string][]string{
	"tech":     {"software", "code", "programming", "linux", "server", "database", "compiler", "kernel", "keyboard", "laptop", "devops", "cloud"},
	"gaming":   {"game", "gaming", "playstation", "xbox", "nintendo", "steam", "speedrun", "fps", "rpg"},
	"politics": {"election", "policy", "government", "senate", "parliament", "vote", "campaign", "legislation"},
	"sports":   {"football", "soccer", "basketball", "baseball", "tennis", "league", "championship", "match", "tournament"},
	"music":    {"album", "band", "concert", "guitar", "vinyl", "playlist", "song", "festival"},
	"art":      {"painting", "gallery", "sketch", "illustration", "sculpture", "exhibition", "canvas"},
	"finance":  {"stock", "market", "invest", "crypto", "bitcoin", "portfolio", "trading", "inflation"},
	"food":     {"recipe", "cooking", "restaurant", "baking", "coffee", "dinner", "sourdough"},
	"travel":   {"flight", "hotel", "trip", "backpacking", "itinerary", "visa", "airport"},
	"science":  {"research", "physics", "biology", "chemistry", "astronomy", "experiment", "dataset", "theorem"},
}

// extractContent builds the topic-and-type signature from texts and the
// harvest's content-mix counts.
func extractContent(content *model.HarvestedContent) model.ContentSignature {
	var sig model.ContentSignature
	if content == nil {
		return sig
	}

	sig.TopicDistribution = topicDistribution(content.Texts())

	posts := len(content.Posts)
	if posts > 0 {
		link := content.SharedLinks
		if link > posts {
			link = posts
		}
		media := len(content.Images)
		if media > posts-link {
			media = posts - link
		}
		sig.LinkShare = float64(link) / float64(posts)
		sig.MediaShare = float64(media) / float64(posts)
		sig.TextShare = 1 - sig.LinkShare - sig.MediaShare
		sig.OriginalRatio = 1 - sig.LinkShare
	}
	return sig
}

// topicDistribution counts keyword hits per taxonomy topic and
// normalizes them into shares. No hits yields nil, which projects to an
// all-zero topic block.
func topicDistribution(texts []string) map[string]float64 {
	words := splitWords(strings.ToLower(strings.Join(texts, " ")))
	if len(words) == 0 {
		return nil
	}
	wordSet := make(map[string]int, len(words))
	for _, w := range words {
		wordSet[w]++
	}

	hits := make(map[string]float64)
	total := 0.0
	for _, topic := range model.TopicTaxonomy {
		for _, kw := range topicKeywords[topic] {
			if n := wordSet[kw]; n > 0 {
				hits[topic] += float64(n)
				total += float64(n)
			}
		}
	}
	if total == 0 {
		return nil
	}
	for topic := range hits {
		hits[topic] /= total
	}
	return hits
}
