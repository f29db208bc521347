package variant

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/handletrace/internal/model"
)

// Handle validity bounds.
const (
	minHandleLength = 2
	maxHandleLength = 50

	// maxSpecialFraction is the largest tolerated share of
	// non-alphanumeric characters in a handle.
	maxSpecialFraction = 1.0 / 3.0
)

// separators are the characters considered interchangeable in handles.
var separators = []string{".", "_", "-"}

// roleWords are common prefix/suffix words people attach to a base
// handle when their first choice is taken.
var roleWords = []string{"real", "its", "the", "official", "dev"}

// numericAffixes are common numeric decorations.
var numericAffixes = []string{"1", "2", "7", "01", "123", "007", "42"}

// titleCaser title-cases the first letter without locale surprises.
var titleCaser = cases.Title(language.English, cases.NoLower)

// Suggester proposes additional handle variants for a seed. It is an
// optional capability; implementations may call external services.
type Suggester interface {
	// Suggest returns up to n variant handles for the seed.
	Suggest(ctx context.Context, seed string, n int) ([]string, error)
}

// Generator derives candidate handles from a seed.
type Generator struct {
	suggester Suggester
	logger    *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSuggester attaches an external variant suggester.
func WithSuggester(s Suggester) GeneratorOption {
	return func(g *Generator) {
		g.suggester = s
	}
}

// NewGenerator creates a Generator.
func NewGenerator(logger *slog.Logger, opts ...GeneratorOption) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns at most maxVariants candidates for the seed, the seed
// itself first. Candidates carry no platform; the orchestrator fans each
// one out across the enabled platforms. Invalid variants are filtered,
// duplicates collapse onto the first generation method that produced
// them. Only the optional suggester touches the network; without one the
// call never blocks.
func (g *Generator) Generate(ctx context.Context, seed string, maxVariants int) []model.Candidate {
	seed = strings.TrimSpace(seed)
	if maxVariants <= 0 || !Valid(seed) {
		return nil
	}

	seen := make(map[string]struct{})
	candidates := make([]model.Candidate, 0, maxVariants)
	add := func(handle string, method model.GenerationMethod) {
		if len(candidates) >= maxVariants {
			return
		}
		if !Valid(handle) {
			return
		}
		normalized := strings.ToLower(handle)
		if method != model.MethodCase {
			// Case variants intentionally collide when lowercased; other
			// methods dedupe case-insensitively.
			if _, dup := seen[normalized]; dup {
				return
			}
		}
		if _, dup := seen[handle]; dup {
			return
		}
		seen[handle] = struct{}{}
		seen[normalized] = struct{}{}
		candidates = append(candidates, model.Candidate{
			SeedHandle: seed,
			Handle:     handle,
			Method:     method,
		})
	}

	add(seed, model.MethodSeed)
	for _, v := range caseVariants(seed) {
		add(v, model.MethodCase)
	}
	for _, v := range separatorVariants(seed) {
		add(v, model.MethodSeparator)
	}
	for _, v := range numericVariants(seed) {
		add(v, model.MethodNumeric)
	}
	for _, v := range roleWordVariants(seed) {
		add(v, model.MethodRoleWord)
	}
	g.addSuggested(ctx, seed, maxVariants, add)

	g.logger.Debug("generated candidates", "seed", seed, "count", len(candidates))
	return candidates
}

// addSuggested consults the optional suggester. Failures reduce recall
// and are logged, never surfaced.
func (g *Generator) addSuggested(ctx context.Context, seed string, maxVariants int, add func(string, model.GenerationMethod)) {
	if g.suggester == nil {
		return
	}
	suggested, err := g.suggester.Suggest(ctx, seed, maxVariants)
	if err != nil {
		g.logger.Warn("variant suggester failed", "seed", seed, "error", err)
		return
	}
	for _, s := range suggested {
		add(strings.TrimSpace(s), model.MethodSuggested)
	}
}

// Valid reports whether a handle passes the structural filter: length
// between 2 and 50, at least one alphanumeric character, and no more
// than a third special characters.
func Valid(handle string) bool {
	runes := []rune(handle)
	if len(runes) < minHandleLength || len(runes) > maxHandleLength {
		return false
	}
	alnum := 0
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			alnum++
		}
	}
	if alnum == 0 {
		return false
	}
	special := len(runes) - alnum
	return float64(special) <= maxSpecialFraction*float64(len(runes))
}

// caseVariants emits lowercase, Title, and UPPER forms.
func caseVariants(seed string) []string {
	return []string{
		strings.ToLower(seed),
		titleCaser.String(strings.ToLower(seed)),
		strings.ToUpper(seed),
	}
}

// separatorVariants removes existing separators, swaps them for each
// alternative, and inserts separators at letter-digit boundaries.
func separatorVariants(seed string) []string {
	var variants []string

	stripped := seed
	for _, sep := range separators {
		stripped = strings.ReplaceAll(stripped, sep, "")
	}
	if stripped != seed {
		variants = append(variants, stripped)
		for _, sep := range separators {
			swapped := seed
			for _, old := range separators {
				swapped = strings.ReplaceAll(swapped, old, sep)
			}
			variants = append(variants, swapped)
		}
		return variants
	}

	// No separators present: try inserting at letter-digit boundaries
	// ("alice99" -> "alice_99").
	boundary := -1
	runes := []rune(seed)
	for i := 1; i < len(runes); i++ {
		if unicode.IsLetter(runes[i-1]) && unicode.IsDigit(runes[i]) {
			boundary = i
			break
		}
	}
	if boundary > 0 {
		for _, sep := range separators {
			variants = append(variants, string(runes[:boundary])+sep+string(runes[boundary:]))
		}
	}
	return variants
}

// numericVariants appends and prepends common numeric patterns.
func numericVariants(seed string) []string {
	variants := make([]string, 0, len(numericAffixes)+2)
	for _, affix := range numericAffixes {
		variants = append(variants, seed+affix)
	}
	variants = append(variants, "1"+seed, seed+"_1")
	return variants
}

// roleWordVariants combines the seed with common role words.
func roleWordVariants(seed string) []string {
	variants := make([]string, 0, len(roleWords)*2)
	for _, word := range roleWords {
		variants = append(variants, word+seed, seed+word)
	}
	return variants
}
