package fingerprint

import (
	"math"

	"github.com/datascope/datascope/internal/domain"
)

// Fixed min-max bounds for mapping raw field statistics into [0, 1]. They
// are deliberately coarse: the vector only needs values on a shared scale,
// not a tight normalization per dataset.
const (
	meanLow, meanHigh = -1000.0, 1000.0
	stdLow, stdHigh   = 0.0, 1000.0
	skewLow, skewHigh = -5.0, 5.0
	kurtLow, kurtHigh = -3.0, 10.0
)

// vectorPatternTypes are the five binary indicators appended to the vector,
// in fixed order.
var vectorPatternTypes = []domain.PatternType{
	domain.PatternTrend,
	domain.PatternSeasonal,
	domain.PatternCorrelation,
	domain.PatternCluster,
	domain.PatternAnomaly,
}

// buildVector concatenates per-field statistics (5 per numeric field, in
// sorted field order), 4 temporal scores, 2 relational scores, 2 anomaly
// scores, and 5 pattern-type indicators. Length is 5f+13, so only
// fingerprints over the same numeric schema are directly comparable.
func (g *Generator) buildVector(fp *Fingerprint, numeric []string) []float64 {
	vec := make([]float64, 0, 5*len(numeric)+13)
	for _, field := range numeric {
		s := fp.Stats[field]
		vec = append(vec,
			minMax(s.Mean, meanLow, meanHigh),
			minMax(s.StdDev, stdLow, stdHigh),
			minMax(s.Skewness, skewLow, skewHigh),
			minMax(s.Kurtosis, kurtLow, kurtHigh),
			s.Entropy,
		)
	}
	vec = append(vec,
		fp.Temporal.SeasonalityStrength,
		fp.Temporal.TrendStrength,
		fp.Temporal.PeriodicityScore,
		fp.Temporal.StationarityScore,
	)
	vec = append(vec,
		fp.Relational.DependencyStrength,
		meanCentrality(fp.Relational.Centrality),
	)
	vec = append(vec,
		fp.Anomalies.Density,
		normalizedSeverity(fp.Anomalies.Severities),
	)
	for _, t := range vectorPatternTypes {
		if _, ok := fp.PatternConfidence[string(t)]; ok {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	}
	return vec
}

func minMax(v, low, high float64) float64 {
	if v <= low {
		return 0
	}
	if v >= high {
		return 1
	}
	return (v - low) / (high - low)
}

func meanCentrality(centrality map[string]float64) float64 {
	if len(centrality) == 0 {
		return 0
	}
	var sum float64
	for _, c := range centrality {
		sum += c
	}
	return sum / float64(len(centrality))
}

// normalizedSeverity squashes the mean outlier severity into [0, 1]; a mean
// of 3 IQRs beyond the fence saturates.
func normalizedSeverity(severities []float64) float64 {
	if len(severities) == 0 {
		return 0
	}
	var sum float64
	for _, s := range severities {
		sum += s
	}
	return math.Min(1, sum/float64(len(severities))/3)
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths
// and zero-norm vectors are defined as similarity 0, never an error.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Similarity is the vector-level similarity of two fingerprints.
func Similarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil {
		return 0
	}
	return Cosine(a.Vector, b.Vector)
}
