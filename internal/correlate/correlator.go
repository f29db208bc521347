package correlate

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/nao1215/handletrace/internal/model"
)

// Evidence thresholds for per-dimension notes.
const (
	strongScore     = 0.6
	veryStrongScore = 0.8
)

// Correlator compares account signatures pairwise. It is stateless apart
// from its threshold and safe for concurrent use.
type Correlator struct {
	threshold float64
	logger    *slog.Logger
}

// NewCorrelator creates a Correlator with the given match threshold.
// Non-positive thresholds fall back to the default.
func NewCorrelator(threshold float64, logger *slog.Logger) *Correlator {
	if threshold <= 0 {
		threshold = model.DefaultCorrelationThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Correlator{threshold: threshold, logger: logger}
}

// Correlate scores one pair of accounts. The edge is symmetric; the two
// account keys are stored in sorted order so (a,b) and (b,a) produce the
// identical edge.
func (c *Correlator) Correlate(a, b *model.Account) model.CorrelationEdge {
	keyA, keyB := a.Key(), b.Key()
	sigA, sigB := a.Signature, b.Signature
	if keyB < keyA {
		keyA, keyB = keyB, keyA
		sigA, sigB = sigB, sigA
	}

	edge := model.CorrelationEdge{
		AccountA:        keyA,
		AccountB:        keyB,
		DimensionScores: make(map[model.Dimension]float64, len(model.Dimensions)),
	}

	var weighted float64
	for _, dim := range model.Dimensions {
		score := dimensionScore(sigA, sigB, dim)
		edge.DimensionScores[dim] = score
		weighted += score * model.DimensionWeight(dim)

		switch {
		case score > veryStrongScore:
			edge.Evidence = append(edge.Evidence,
				fmt.Sprintf("very strong %s similarity (%.2f)", dim, score))
		case score > strongScore:
			edge.Evidence = append(edge.Evidence,
				fmt.Sprintf("strong %s similarity (%.2f)", dim, score))
		}
	}

	edge.WeightedScore = weighted
	edge.Match = weighted >= c.threshold

	c.logger.Debug("correlated pair",
		"account_a", keyA,
		"account_b", keyB,
		"weighted_score", edge.WeightedScore,
		"match", edge.Match)
	return edge
}

// dimensionScore computes the absolute Pearson correlation of one
// dimension's vectors. An empty dimension on either side scores zero:
// two accounts with no harvested data must not look identical.
func dimensionScore(a, b *model.BehavioralSignature, dim model.Dimension) float64 {
	if a == nil || b == nil {
		return 0
	}
	if a.DimensionEmpty(dim) || b.DimensionEmpty(dim) {
		return 0
	}
	return absPearson(a.Vector(dim), b.Vector(dim))
}

// absPearson is the absolute Pearson correlation coefficient over two
// vectors, zero-padding the shorter one. Zero variance on either side
// produces NaN in the textbook formula; that degenerates to 0 here.
func absPearson(x, y []float64) float64 {
	n := len(x)
	if len(y) > n {
		n = len(y)
	}
	if n == 0 {
		return 0
	}
	padded := func(v []float64, i int) float64 {
		if i < len(v) {
			return v[i]
		}
		return 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += padded(x, i)
		sumY += padded(y, i)
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := padded(x, i) - meanX
		dy := padded(y, i) - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}

	r := cov / math.Sqrt(varX*varY)
	if math.IsNaN(r) {
		return 0
	}
	return math.Abs(r)
}
