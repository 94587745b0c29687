package patterns

import (
	"fmt"
	"math"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
	"github.com/datascope/datascope/internal/stats"
)

// distributionStrategy classifies each numeric field's distribution family
// from its skewness and kurtosis. The goodness-of-fit is a closed-form
// heuristic, not a statistical test.
type distributionStrategy struct {
	cfg config.AdvancedConfig
}

func (s *distributionStrategy) Name() string { return "distribution_fit" }

func (s *distributionStrategy) Detect(ds domain.Dataset) []domain.AdvancedPattern {
	var out []domain.AdvancedPattern
	n := len(ds)
	for _, field := range ds.NumericFields() {
		col, _ := ds.NumericColumn(field)
		if len(col) < 10 {
			continue
		}
		family, fit := ClassifyDistribution(col)
		if fit <= s.cfg.DistributionMinFit {
			continue
		}
		p := domain.DataPattern{
			Type:        domain.PatternDistribution,
			Confidence:  fit,
			Description: fmt.Sprintf("%s follows a %s distribution (fit %.2f)", field, family, fit),
			Params: map[string]interface{}{
				"family":   family,
				"fit":      fit,
				"skewness": stats.Skewness(col),
				"kurtosis": stats.Kurtosis(col),
			},
			Fields: []string{field},
		}
		out = append(out, domain.AdvancedPattern{
			DataPattern:  p,
			Algorithm:    s.Name(),
			Significance: Significance(fit, n),
			EffectSize:   fit,
			SampleSize:   n,
			AlgoParams:   p.Params,
		})
	}
	return out
}

// ClassifyDistribution maps skewness/kurtosis into a distribution family
// with a heuristic fit score. Bimodality is approximated by strongly
// negative kurtosis with a hollow middle of the histogram.
func ClassifyDistribution(values []float64) (string, float64) {
	skew := stats.Skewness(values)
	kurt := stats.Kurtosis(values)
	absSkew := math.Abs(skew)

	switch {
	case absSkew < 0.5 && math.Abs(kurt) < 1:
		return "normal", clamp01(1 - (absSkew/0.5+math.Abs(kurt))/2)
	case skew > 1.5 && kurt > 3:
		return "exponential", clamp01(math.Min(skew/2, 1) * 0.9)
	case absSkew < 0.3 && kurt < -1:
		if hollowMiddle(values) {
			return "bimodal", clamp01(-kurt / 2)
		}
		return "uniform", clamp01(-kurt / 1.8)
	case kurt > 6:
		return "heavy_tailed", clamp01(math.Min(kurt/10, 1))
	case absSkew >= 1:
		return "skewed", clamp01(math.Min(absSkew/3, 1) * 0.85)
	default:
		return "unknown", 0
	}
}

// hollowMiddle reports whether the central fifth of a 5-bin histogram holds
// fewer points than both outer regions, the cheap tell of two modes.
func hollowMiddle(values []float64) bool {
	min, max := values[0], values[0]
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if max == min {
		return false
	}
	counts := [5]int{}
	width := (max - min) / 5
	for _, v := range values {
		idx := int((v - min) / width)
		if idx > 4 {
			idx = 4
		}
		counts[idx]++
	}
	left := counts[0] + counts[1]
	right := counts[3] + counts[4]
	return counts[2] < left/2 && counts[2] < right/2
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
