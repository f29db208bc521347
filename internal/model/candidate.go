package model

// GenerationMethod records how a candidate handle was derived from the seed.
type GenerationMethod string

// Generation method constants.
const (
	// MethodSeed is the seed handle itself, unmodified.
	MethodSeed GenerationMethod = "seed"
	// MethodCase is a case variation of the seed (alice -> Alice, ALICE).
	MethodCase GenerationMethod = "case"
	// MethodSeparator inserts or removes separator characters (. _ -).
	MethodSeparator GenerationMethod = "separator"
	// MethodNumeric appends or prepends common numeric patterns.
	MethodNumeric GenerationMethod = "numeric"
	// MethodRoleWord combines the seed with common role words (dev, real, its).
	MethodRoleWord GenerationMethod = "roleword"
	// MethodSuggested comes from an optional external suggester.
	MethodSuggested GenerationMethod = "suggested"
)

// Candidate is a generated handle hypothesized to belong to the seed
// identity on a given platform. Candidates are immutable; the prober
// attaches its verdict in a separate ProbeResult.
type Candidate struct {
	// SeedHandle is the handle the investigation started from.
	SeedHandle string `json:"seed_handle"`

	// Platform is the canonical platform name this candidate targets.
	Platform string `json:"platform"`

	// Handle is the generated handle to probe.
	Handle string `json:"handle"`

	// Method records which generation strategy produced this handle.
	Method GenerationMethod `json:"method"`
}
