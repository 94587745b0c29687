package patterns

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
)

// AdvancedStrategy detects one family of patterns with full annotations.
type AdvancedStrategy interface {
	Name() string
	Detect(ds domain.Dataset) []domain.AdvancedPattern
}

// AdvancedDetector composes the baseline detector with the advanced strategy
// set. Baseline results are enriched with an algorithm tag, a heuristic
// significance, and a type-specific effect size rather than re-detected.
type AdvancedDetector struct {
	baseline   *Detector
	strategies []AdvancedStrategy
}

// NewAdvancedDetector builds the full detector stack. A nil config selects
// defaults.
func NewAdvancedDetector(cfg *config.Config) *AdvancedDetector {
	if cfg == nil {
		cfg = config.Default()
	}
	a := cfg.Advanced
	b := cfg.Baseline
	return &AdvancedDetector{
		baseline: NewDetector(cfg),
		strategies: []AdvancedStrategy{
			&distributionStrategy{cfg: a},
			&nonLinearStrategy{cfg: a},
			&polynomialStrategy{cfg: a},
			&hierarchicalStrategy{cfg: a, seed: b.ClusterSeed, maxIter: b.ClusterMaxIterations},
			&frequencyStrategy{cfg: a},
			&autoregressiveStrategy{cfg: a},
			&changePointStrategy{cfg: a},
			&multiCycleStrategy{cfg: a},
			&dbscanStrategy{cfg: a},
		},
	}
}

// Baseline exposes the composed baseline detector.
func (d *AdvancedDetector) Baseline() *Detector {
	return d.baseline
}

// Detect runs the baseline strategies, enriches their output, appends the
// advanced strategies' output, and sorts everything by confidence
// descending. Insufficient data degrades to an empty list.
func (d *AdvancedDetector) Detect(ds domain.Dataset) []domain.AdvancedPattern {
	if len(ds) == 0 || len(ds.NumericFields()) == 0 {
		return nil
	}
	n := len(ds)
	var out []domain.AdvancedPattern
	for _, s := range d.baseline.Strategies() {
		for _, p := range s.Detect(ds) {
			out = append(out, Enrich(p, s.Name(), n))
		}
	}
	for _, s := range d.strategies {
		out = append(out, s.Detect(ds)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	log.Debug().Int("records", n).Int("patterns", len(out)).Msg("advanced detection complete")
	return out
}

// Enrich wraps a baseline pattern with the producing algorithm, a sample-size
// discounted significance, and a type-specific effect size.
func Enrich(p domain.DataPattern, algorithm string, n int) domain.AdvancedPattern {
	return domain.AdvancedPattern{
		DataPattern:  p,
		Algorithm:    algorithm,
		Significance: Significance(p.Confidence, n),
		EffectSize:   effectSize(p),
		SampleSize:   n,
		AlgoParams:   p.Params,
	}
}

// Significance discounts confidence by sample size: below 30 records the
// sqrt(n/30) factor shrinks it, at or above 30 it passes through.
func Significance(confidence float64, n int) float64 {
	return confidence * math.Min(1, math.Sqrt(float64(n)/30))
}

// effectSize maps a pattern to a magnitude measure on its natural scale,
// clamped into [0, 1].
func effectSize(p domain.DataPattern) float64 {
	var e float64
	switch p.Type {
	case domain.PatternTrend:
		if slope, ok := p.Params["slope"].(float64); ok {
			e = math.Abs(slope)
		}
	case domain.PatternCorrelation:
		if r, ok := p.Params["pearson_r"].(float64); ok {
			e = math.Abs(r)
		}
	case domain.PatternAnomaly:
		if positions, ok := p.Params["positions"].([]int); ok {
			e = float64(len(positions)) / 10
		}
	case domain.PatternCluster:
		if sil, ok := p.Params["silhouette"].(float64); ok {
			e = sil
		}
	case domain.PatternSeasonal:
		if c, ok := p.Params["autocorrelation"].(float64); ok {
			e = c
		}
	default:
		e = p.Confidence
	}
	return math.Min(1, math.Max(0, e))
}
