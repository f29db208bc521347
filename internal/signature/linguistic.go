package signature

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/nao1215/handletrace/internal/model"
)

const (
	// topTermCount is how many characteristic terms a signature keeps.
	topTermCount = 10

	// minTermLength excludes short function words from top terms.
	minTermLength = 4
)

// countRepeatedRuns counts stretched-letter patterns ("soooo", "hmmm"):
// runs of three or more identical letters. A manual scan because RE2 has
// no backreferences.
func countRepeatedRuns(text string) int {
	count := 0
	var prev rune
	run := 1
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) && r == prev {
			run++
			if run == 3 {
				count++
			}
		} else {
			run = 1
		}
		prev = r
	}
	return count
}

// stopwords are excluded from characteristic terms. The list is short on
// purpose: rare function words that survive it still wash out of the
// frequency ranking.
var stopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "been": {},
	"were": {}, "they": {}, "their": {}, "there": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"about": {}, "just": {}, "like": {}, "some": {}, "more": {}, "than": {},
	"then": {}, "them": {}, "your": {}, "because": {}, "really": {}, "very": {},
}

// extractLinguistic builds the writing-style signature from all harvested
// texts. Empty input yields the zero signature.
func extractLinguistic(texts []string) model.LinguisticSignature {
	joined := strings.Join(texts, "\n")
	words := splitWords(joined)
	if len(words) == 0 {
		return model.LinguisticSignature{}
	}

	sig := model.LinguisticSignature{
		PunctuationDensity: make(map[string]float64),
		EmojiHistogram:     make(map[string]int),
		WordCount:          len(words),
	}

	distinct := make(map[string]int)
	for _, w := range words {
		distinct[strings.ToLower(w)]++
	}
	sig.VocabularyDiversity = float64(len(distinct)) / float64(len(words))

	sentences := splitSentences(joined)
	if len(sentences) > 0 {
		total := 0
		for _, s := range sentences {
			total += len(splitWords(s))
		}
		sig.MeanSentenceLength = float64(total) / float64(len(sentences))
	}

	var upper, letters int
	for _, r := range joined {
		switch {
		case unicode.IsUpper(r):
			upper++
			letters++
		case unicode.IsLetter(r):
			letters++
		case isEmoji(r):
			sig.EmojiHistogram[string(r)]++
		}
		for _, mark := range model.VectorPunctuationMarks {
			if r == mark {
				sig.PunctuationDensity[string(mark)]++
			}
		}
	}
	if letters > 0 {
		sig.CapitalizationRatio = float64(upper) / float64(letters)
	}
	for mark, count := range sig.PunctuationDensity {
		sig.PunctuationDensity[mark] = count / float64(len(words))
	}

	sig.RepeatedLetterCount = countRepeatedRuns(joined)
	sig.TopTerms = topTerms(distinct, len(words))
	sig.ReadingEase = readingEase(words, len(sentences))
	return sig
}

// splitWords splits text into word tokens, dropping pure punctuation.
func splitWords(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.Trim(f, "'") != "" {
			words = append(words, f)
		}
	}
	return words
}

// splitSentences splits on terminal punctuation runs.
func splitSentences(text string) []string {
	parts := regexp.MustCompile(`[.!?]+`).Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// topTerms ranks terms by frequency weight, most characteristic first.
// Ties break alphabetically so the projection is deterministic.
func topTerms(freq map[string]int, totalWords int) []model.TermWeight {
	terms := make([]model.TermWeight, 0, len(freq))
	for term, count := range freq {
		if len(term) < minTermLength {
			continue
		}
		if _, ok := stopwords[term]; ok {
			continue
		}
		terms = append(terms, model.TermWeight{
			Term:   term,
			Weight: float64(count) / float64(totalWords),
		})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Weight != terms[j].Weight {
			return terms[i].Weight > terms[j].Weight
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > topTermCount {
		terms = terms[:topTermCount]
	}
	return terms
}

// readingEase computes a Flesch-style reading ease score clamped to
// [0,100]. Syllables are approximated by vowel groups, which is accurate
// enough for comparing two authors against each other.
func readingEase(words []string, sentenceCount int) float64 {
	if len(words) == 0 || sentenceCount == 0 {
		return 0
	}
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}
	score := 206.835 -
		1.015*(float64(len(words))/float64(sentenceCount)) -
		84.6*(float64(syllables)/float64(len(words)))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// countSyllables approximates syllables as vowel groups, minimum one.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}
	if count == 0 {
		return 1
	}
	return count
}

// isEmoji reports whether a rune falls in the common emoji blocks.
func isEmoji(r rune) bool {
	return (r >= 0x1F300 && r <= 0x1FAFF) ||
		(r >= 0x2600 && r <= 0x27BF) ||
		(r >= 0x1F000 && r <= 0x1F2FF)
}
