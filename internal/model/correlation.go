package model

// DefaultCorrelationThreshold is the weighted score at or above which two
// accounts are considered to belong to the same individual.
const DefaultCorrelationThreshold = 0.75

// CorrelationEdge is the pairwise comparison of two accounts' signatures.
// Edges are symmetric: correlating (a, b) and (b, a) yields the same
// scores, with AccountA/AccountB ordered by key for stable identity.
type CorrelationEdge struct {
	// AccountA and AccountB are the account keys ("platform/handle"),
	// ordered so that AccountA < AccountB.
	AccountA string `json:"account_a"`
	AccountB string `json:"account_b"`

	// DimensionScores holds the per-dimension absolute correlation in [0,1].
	DimensionScores map[Dimension]float64 `json:"dimension_scores"`

	// WeightedScore is the weighted mean of the five dimension scores
	// using the fixed DimensionWeight table.
	WeightedScore float64 `json:"weighted_score"`

	// Match reports whether WeightedScore reached the run's threshold.
	Match bool `json:"match"`

	// Evidence lists human-readable notes for strongly scoring dimensions.
	Evidence []string `json:"evidence,omitempty"`
}

// Key returns a stable identity for the edge.
func (e CorrelationEdge) Key() string {
	return e.AccountA + "|" + e.AccountB
}

// IdentityCluster is a set of accounts judged to belong to one individual.
// Membership is the transitive closure of threshold-passing edges, so two
// accounts can share a cluster without a direct edge between them.
type IdentityCluster struct {
	// ID is the cluster's ordinal within the investigation, starting at 1.
	ID int `json:"id"`

	// Accounts are the member account keys, sorted.
	Accounts []string `json:"accounts"`

	// Confidence is the mean weighted score of the cluster's internal
	// matching edges.
	Confidence float64 `json:"confidence"`

	// Evidence aggregates the supporting notes of the internal edges.
	Evidence []string `json:"evidence,omitempty"`
}

// Size returns the number of member accounts.
func (c IdentityCluster) Size() int {
	return len(c.Accounts)
}
