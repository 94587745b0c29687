// Package config holds the threshold configuration for the detectors, the
// fingerprint generator, and the similarity engine. Every threshold has a
// production default and can be overridden from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full threshold tree.
type Config struct {
	Baseline    BaselineConfig    `yaml:"baseline"`
	Advanced    AdvancedConfig    `yaml:"advanced"`
	Fingerprint FingerprintConfig `yaml:"fingerprint"`
	Similarity  SimilarityConfig  `yaml:"similarity"`
}

// BaselineConfig parameterizes the baseline pattern detector.
type BaselineConfig struct {
	TrendMinSlope        float64 `yaml:"trend_min_slope"`        // 0.1 minimum |slope|
	TrendMinRSquared     float64 `yaml:"trend_min_r_squared"`    // 0.5 minimum R²
	AnomalyZThreshold    float64 `yaml:"anomaly_z_threshold"`    // 2.0 sigma
	CorrelationMinR      float64 `yaml:"correlation_min_r"`      // 0.7 minimum |r|
	ClusterK             int     `yaml:"cluster_k"`              // 3 fixed k
	ClusterMaxIterations int     `yaml:"cluster_max_iterations"` // 100
	ClusterMinRows       int     `yaml:"cluster_min_rows"`       // 10 minimum records
	ClusterMinSilhouette float64 `yaml:"cluster_min_silhouette"` // 0.5
	ClusterSeed          int64   `yaml:"cluster_seed"`           // 1 - deterministic k-means init
	SeasonalityMinRows   int     `yaml:"seasonality_min_rows"`   // 50 minimum records
	SeasonalityMaxLag    int     `yaml:"seasonality_max_lag"`    // 50 lag scan cap
	SeasonalityMinCorr   float64 `yaml:"seasonality_min_corr"`   // 0.6 best-lag cutoff
}

// AdvancedConfig parameterizes the advanced sub-detectors.
type AdvancedConfig struct {
	DistributionMinFit    float64 `yaml:"distribution_min_fit"`    // 0.7 goodness-of-fit cutoff
	SpearmanMinR          float64 `yaml:"spearman_min_r"`          // 0.7 minimum |rho|
	SpearmanPearsonGap    float64 `yaml:"spearman_pearson_gap"`    // 0.2 non-linearity gap
	PolynomialMaxDegree   int     `yaml:"polynomial_max_degree"`   // 3
	PolynomialMinRSquared float64 `yaml:"polynomial_min_r_squared"` // 0.8
	HierarchicalMinSil    float64 `yaml:"hierarchical_min_sil"`    // 0.6 silhouette cutoff
	PeriodicityMinScore   float64 `yaml:"periodicity_min_score"`   // 0.6 seasonal emit
	MultiPeakMinPeaks     int     `yaml:"multi_peak_min_peaks"`    // 3
	MultiPeakMinSig       float64 `yaml:"multi_peak_min_sig"`      // 0.7
	ARMaxOrder            int     `yaml:"ar_max_order"`            // 3
	ARMinRSquared         float64 `yaml:"ar_min_r_squared"`        // 0.6
	ARMaxPValue           float64 `yaml:"ar_max_p_value"`          // 0.05 heuristic (1 - R²)
	CUSUMSigmaThreshold   float64 `yaml:"cusum_sigma_threshold"`   // 3.0 sigma
	CUSUMMinSignificance  float64 `yaml:"cusum_min_significance"`  // 0.5 keep cutoff
	CUSUMEmitSignificance float64 `yaml:"cusum_emit_significance"` // 0.8 pattern cutoff
	CycleMinStrength      float64 `yaml:"cycle_min_strength"`      // 0.3 keep cutoff
	CycleEmitStrength     float64 `yaml:"cycle_emit_strength"`     // 0.7 per-cycle emit cutoff
	DBSCANSubsample       int     `yaml:"dbscan_subsample"`        // 100 rows for eps estimation
	DBSCANEpsPercentile   float64 `yaml:"dbscan_eps_percentile"`   // 10th percentile distance
	DBSCANMinSamplesPct   float64 `yaml:"dbscan_min_samples_pct"`  // 0.05 of n, floor 2
	DBSCANSmallClusterPct float64 `yaml:"dbscan_small_cluster_pct"` // 0.10 of n - outlier clusters
}

// FingerprintConfig parameterizes fingerprint generation.
type FingerprintConfig struct {
	PrimaryField      string  `yaml:"primary_field"`       // "" = first numeric field in sorted schema order
	HashSampleRecords int     `yaml:"hash_sample_records"` // 10 records feed the content hash
	HistogramBins     int     `yaml:"histogram_bins"`      // 10 entropy bins
	SignificantLagMin float64 `yaml:"significant_lag_min"` // 0.3 |autocorr| cutoff
	IQRFenceFactor    float64 `yaml:"iqr_fence_factor"`    // 1.5 fences
	ClusterGap        int     `yaml:"cluster_gap"`         // 5 index gap joining outlier runs
	ClusterMinSev     float64 `yaml:"cluster_min_sev"`     // 1.5 total-severity keep cutoff
}

// SimilarityConfig parameterizes the similarity engine.
type SimilarityConfig struct {
	MatchThreshold   float64 `yaml:"match_threshold"`   // 0.7 FindSimilar default
	ClusterThreshold float64 `yaml:"cluster_threshold"` // 0.8 greedy-cluster default
	ComponentCutoff  float64 `yaml:"component_cutoff"`  // 0.7 matching/differing tag cutoff
}

// Default returns the production configuration.
func Default() *Config {
	return &Config{
		Baseline: BaselineConfig{
			TrendMinSlope:        0.1,
			TrendMinRSquared:     0.5,
			AnomalyZThreshold:    2.0,
			CorrelationMinR:      0.7,
			ClusterK:             3,
			ClusterMaxIterations: 100,
			ClusterMinRows:       10,
			ClusterMinSilhouette: 0.5,
			ClusterSeed:          1,
			SeasonalityMinRows:   50,
			SeasonalityMaxLag:    50,
			SeasonalityMinCorr:   0.6,
		},
		Advanced: AdvancedConfig{
			DistributionMinFit:    0.7,
			SpearmanMinR:          0.7,
			SpearmanPearsonGap:    0.2,
			PolynomialMaxDegree:   3,
			PolynomialMinRSquared: 0.8,
			HierarchicalMinSil:    0.6,
			PeriodicityMinScore:   0.6,
			MultiPeakMinPeaks:     3,
			MultiPeakMinSig:       0.7,
			ARMaxOrder:            3,
			ARMinRSquared:         0.6,
			ARMaxPValue:           0.05,
			CUSUMSigmaThreshold:   3.0,
			CUSUMMinSignificance:  0.5,
			CUSUMEmitSignificance: 0.8,
			CycleMinStrength:      0.3,
			CycleEmitStrength:     0.7,
			DBSCANSubsample:       100,
			DBSCANEpsPercentile:   10,
			DBSCANMinSamplesPct:   0.05,
			DBSCANSmallClusterPct: 0.10,
		},
		Fingerprint: FingerprintConfig{
			PrimaryField:      "",
			HashSampleRecords: 10,
			HistogramBins:     10,
			SignificantLagMin: 0.3,
			IQRFenceFactor:    1.5,
			ClusterGap:        5,
			ClusterMinSev:     1.5,
		},
		Similarity: SimilarityConfig{
			MatchThreshold:   0.7,
			ClusterThreshold: 0.8,
			ComponentCutoff:  0.7,
		},
	}
}

// Load reads a YAML file over the defaults, so partial files only override
// the keys they name.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
