// Package patterns implements the baseline and advanced pattern detectors.
// Detection is organized as a registry of strategies; the advanced detector
// composes the baseline registry and enriches its output rather than
// inheriting from it.
package patterns

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
	"github.com/datascope/datascope/internal/stats"
)

// Strategy detects one family of patterns. Strategies never return errors:
// insufficient or degenerate data produces an empty result.
type Strategy interface {
	Name() string
	Detect(ds domain.Dataset) []domain.DataPattern
}

// Detector runs the baseline strategy set: trend, anomaly, correlation,
// cluster, and seasonality.
type Detector struct {
	cfg        config.BaselineConfig
	strategies []Strategy
}

// NewDetector builds a baseline detector. A nil config selects defaults.
func NewDetector(cfg *config.Config) *Detector {
	if cfg == nil {
		cfg = config.Default()
	}
	b := cfg.Baseline
	return &Detector{
		cfg: b,
		strategies: []Strategy{
			&trendStrategy{cfg: b},
			&anomalyStrategy{cfg: b},
			&correlationStrategy{cfg: b},
			&clusterStrategy{cfg: b},
			&seasonalityStrategy{cfg: b},
		},
	}
}

// Detect runs every baseline strategy over the dataset. Empty datasets and
// datasets without numeric fields yield an empty list, never an error.
func (d *Detector) Detect(ds domain.Dataset) []domain.DataPattern {
	if len(ds) == 0 || len(ds.NumericFields()) == 0 {
		return nil
	}
	var out []domain.DataPattern
	for _, s := range d.strategies {
		out = append(out, s.Detect(ds)...)
	}
	log.Debug().Int("records", len(ds)).Int("patterns", len(out)).Msg("baseline detection complete")
	return out
}

// Strategies returns the baseline strategy set so the advanced detector can
// compose it.
func (d *Detector) Strategies() []Strategy {
	return d.strategies
}

type trendStrategy struct {
	cfg config.BaselineConfig
}

func (s *trendStrategy) Name() string { return "linear_regression" }

// Detect fits each numeric field against its row index and emits a trend
// when the slope and fit clear the configured thresholds.
func (s *trendStrategy) Detect(ds domain.Dataset) []domain.DataPattern {
	var out []domain.DataPattern
	for _, field := range ds.NumericFields() {
		col, _ := ds.NumericColumn(field)
		reg, ok := stats.IndexRegression(col)
		if !ok {
			continue
		}
		if math.Abs(reg.Slope) <= s.cfg.TrendMinSlope || reg.RSquared <= s.cfg.TrendMinRSquared {
			continue
		}
		direction := "increasing"
		if reg.Slope < 0 {
			direction = "decreasing"
		}
		out = append(out, domain.DataPattern{
			Type:        domain.PatternTrend,
			Confidence:  reg.RSquared,
			Description: fmt.Sprintf("%s %s trend (slope %.3f)", field, direction, reg.Slope),
			Params: map[string]interface{}{
				"slope":     reg.Slope,
				"intercept": reg.Intercept,
				"r_squared": reg.RSquared,
				"direction": direction,
			},
			Fields: []string{field},
		})
	}
	return out
}

type anomalyStrategy struct {
	cfg config.BaselineConfig
}

func (s *anomalyStrategy) Name() string { return "zscore" }

// Detect flags values beyond the z-score threshold per numeric field.
// Confidence saturates at 0.9: a series that is mostly anomalies says more
// about the threshold than the data.
func (s *anomalyStrategy) Detect(ds domain.Dataset) []domain.DataPattern {
	var out []domain.DataPattern
	for _, field := range ds.NumericFields() {
		col, _ := ds.NumericColumn(field)
		mean := stats.Mean(col)
		sd := stats.StdDev(col)
		if sd == 0 {
			continue
		}
		var positions []int
		var scores []float64
		for i, v := range col {
			z := math.Abs(v-mean) / sd
			if z > s.cfg.AnomalyZThreshold {
				positions = append(positions, i)
				scores = append(scores, z)
			}
		}
		if len(positions) == 0 {
			continue
		}
		confidence := math.Min(0.9, float64(len(positions))/float64(len(col))*5)
		out = append(out, domain.DataPattern{
			Type:        domain.PatternAnomaly,
			Confidence:  confidence,
			Description: fmt.Sprintf("%d anomalies in %s beyond %.1f sigma", len(positions), field, s.cfg.AnomalyZThreshold),
			Params: map[string]interface{}{
				"positions":  positions,
				"z_scores":   scores,
				"threshold":  s.cfg.AnomalyZThreshold,
				"mean":       mean,
				"std_dev":    sd,
			},
			Fields: []string{field},
		})
	}
	return out
}

type correlationStrategy struct {
	cfg config.BaselineConfig
}

func (s *correlationStrategy) Name() string { return "pearson" }

// Detect emits a correlation pattern for every numeric field pair whose
// Pearson |r| clears the cutoff. Zero-variance pairs fall out naturally
// because Pearson returns 0 for them.
func (s *correlationStrategy) Detect(ds domain.Dataset) []domain.DataPattern {
	fields := ds.NumericFields()
	var out []domain.DataPattern
	for i := 0; i < len(fields); i++ {
		for j := i + 1; j < len(fields); j++ {
			a, _ := ds.NumericColumn(fields[i])
			b, _ := ds.NumericColumn(fields[j])
			r := stats.Pearson(a, b)
			if math.Abs(r) <= s.cfg.CorrelationMinR {
				continue
			}
			relation := "positive"
			if r < 0 {
				relation = "negative"
			}
			out = append(out, domain.DataPattern{
				Type:        domain.PatternCorrelation,
				Confidence:  math.Abs(r),
				Description: fmt.Sprintf("%s correlation between %s and %s (r=%.3f)", relation, fields[i], fields[j], r),
				Params: map[string]interface{}{
					"pearson_r": r,
					"relation":  relation,
				},
				Fields: []string{fields[i], fields[j]},
			})
		}
	}
	return out
}

type clusterStrategy struct {
	cfg config.BaselineConfig
}

func (s *clusterStrategy) Name() string { return "kmeans" }

// Detect runs fixed-k k-means over the numeric fields when the dataset is
// large enough, emitting a cluster pattern if the silhouette clears the
// cutoff. Initialization is seeded so results are reproducible.
func (s *clusterStrategy) Detect(ds domain.Dataset) []domain.DataPattern {
	fields := ds.NumericFields()
	if len(fields) < 2 || len(ds) < s.cfg.ClusterMinRows {
		return nil
	}
	rows, kept := ds.NumericMatrix(fields)
	if rows == nil {
		return nil
	}
	assignments, centroids, ok := kMeans(rows, s.cfg.ClusterK, s.cfg.ClusterMaxIterations, s.cfg.ClusterSeed)
	if !ok {
		return nil
	}
	sil := silhouette(rows, assignments, s.cfg.ClusterK)
	if sil <= s.cfg.ClusterMinSilhouette {
		return nil
	}
	sizes := make([]int, s.cfg.ClusterK)
	for _, a := range assignments {
		sizes[a]++
	}
	return []domain.DataPattern{{
		Type:        domain.PatternCluster,
		Confidence:  sil,
		Description: fmt.Sprintf("%d clusters over %d fields (silhouette %.2f)", s.cfg.ClusterK, len(kept), sil),
		Params: map[string]interface{}{
			"k":             s.cfg.ClusterK,
			"silhouette":    sil,
			"cluster_sizes": sizes,
			"centroids":     centroids,
		},
		Fields: kept,
	}}
}

type seasonalityStrategy struct {
	cfg config.BaselineConfig
}

func (s *seasonalityStrategy) Name() string { return "autocorrelation" }

// Detect scans autocorrelation lags per numeric field and keeps the best
// one. Requires a minimum series length; short series produce nothing.
func (s *seasonalityStrategy) Detect(ds domain.Dataset) []domain.DataPattern {
	if len(ds) < s.cfg.SeasonalityMinRows {
		return nil
	}
	maxLag := len(ds) / 4
	if maxLag > s.cfg.SeasonalityMaxLag {
		maxLag = s.cfg.SeasonalityMaxLag
	}
	var out []domain.DataPattern
	for _, field := range ds.NumericFields() {
		col, _ := ds.NumericColumn(field)
		bestLag, bestCorr := 0, 0.0
		for lag := 2; lag <= maxLag; lag++ {
			c := stats.Autocorrelation(col, lag)
			if c > bestCorr {
				bestCorr = c
				bestLag = lag
			}
		}
		if bestCorr <= s.cfg.SeasonalityMinCorr {
			continue
		}
		out = append(out, domain.DataPattern{
			Type:        domain.PatternSeasonal,
			Confidence:  bestCorr,
			Description: fmt.Sprintf("%s repeats every %d records (autocorr %.2f)", field, bestLag, bestCorr),
			Params: map[string]interface{}{
				"period":          bestLag,
				"autocorrelation": bestCorr,
			},
			Fields: []string{field},
		})
	}
	return out
}
