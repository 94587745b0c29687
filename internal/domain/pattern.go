package domain

// PatternType classifies a detected pattern.
type PatternType string

const (
	PatternTrend          PatternType = "trend"
	PatternSeasonal       PatternType = "seasonal"
	PatternCyclical       PatternType = "cyclical"
	PatternAnomaly        PatternType = "anomaly"
	PatternCorrelation    PatternType = "correlation"
	PatternCluster        PatternType = "cluster"
	PatternDistribution   PatternType = "distribution"
	PatternChangePoint    PatternType = "changepoint"
	PatternAutoregressive PatternType = "autoregressive"
	PatternMultiPeak      PatternType = "multipeak"
)

// DataPattern is an immutable detection result. Params carries
// algorithm-specific values (slope, lag, cluster sizes, ...).
type DataPattern struct {
	Type        PatternType            `json:"type"`
	Confidence  float64                `json:"confidence"` // 0.0-1.0
	Description string                 `json:"description"`
	Params      map[string]interface{} `json:"params,omitempty"`
	Fields      []string               `json:"fields"` // affected fields, >= 1
}

// AdvancedPattern extends DataPattern with the algorithm that produced it
// and heuristic significance/effect-size annotations.
type AdvancedPattern struct {
	DataPattern

	Algorithm    string                 `json:"algorithm"`
	Significance float64                `json:"statistical_significance"` // confidence x min(1, sqrt(n/30))
	EffectSize   float64                `json:"effect_size"`
	SampleSize   int                    `json:"sample_size"`
	TestStat     *float64               `json:"test_statistic,omitempty"`
	PValue       *float64               `json:"p_value,omitempty"`
	AlgoParams   map[string]interface{} `json:"algorithm_params,omitempty"`
}
