// Package fingerprint compresses a dataset and its detected patterns into a
// fixed-structure numeric summary that supports similarity comparison
// without re-scanning raw data.
package fingerprint

import "time"

// StatisticalSignature summarizes one numeric field.
type StatisticalSignature struct {
	Mean         float64    `json:"mean"`
	StdDev       float64    `json:"std_dev"`
	Skewness     float64    `json:"skewness"`
	Kurtosis     float64    `json:"kurtosis"`
	Entropy      float64    `json:"entropy"`   // 10-bin histogram entropy, 0-1
	Quartiles    [4]float64 `json:"quartiles"` // Q1, Q2, Q3, Q4 (max)
	Distribution string     `json:"distribution"`
}

// TemporalSignature summarizes the dataset's primary numeric series.
type TemporalSignature struct {
	SeasonalityStrength float64 `json:"seasonality_strength"` // 0-1
	TrendStrength       float64 `json:"trend_strength"`       // regression R², 0-1
	SignificantLags     []int   `json:"significant_lags"`     // first 10 lags with |autocorr| > cutoff
	DominantFrequency   float64 `json:"dominant_frequency"`   // 1/period of strongest autocorrelation
	PeriodicityScore    float64 `json:"periodicity_score"`    // regularity of lag spacing, 0-1
	StationarityScore   float64 `json:"stationarity_score"`   // inverse variance of rolling means, 0-1
}

// RelationalSignature summarizes pairwise field relationships.
// PrincipalComponents is the correlation-matrix diagonal, a documented
// simplification rather than true PCA; MutualInformation is an
// absolute-correlation proxy, not true MI.
type RelationalSignature struct {
	CorrelationHash     string             `json:"correlation_hash"` // 16 hex chars
	PrincipalComponents []float64          `json:"principal_components"`
	DependencyStrength  float64            `json:"dependency_strength"` // mean |off-diagonal r|, 0-1
	MutualInformation   map[string]float64 `json:"mutual_information"`  // "f1|f2" -> |r|
	Centrality          map[string]float64 `json:"centrality"`          // field -> mean |r| to others
}

// AnomalyCluster is a contiguous run of outliers.
type AnomalyCluster struct {
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Size     int     `json:"size"`
	Severity float64 `json:"severity"` // summed member severity
}

// AnomalySignature summarizes IQR outliers on the primary numeric field.
type AnomalySignature struct {
	Positions  []int            `json:"positions"`
	Severities []float64        `json:"severities"` // distance beyond fence / IQR
	Density    float64          `json:"density"`    // outliers / records, 0-1
	Clusters   []AnomalyCluster `json:"clusters"`
	Hash       string           `json:"hash"` // 16 hex chars
}

// Fingerprint is the full dataset summary. Re-analysis under the same id
// replaces the stored fingerprint; a fingerprint is never mutated in place.
type Fingerprint struct {
	ID                string                          `json:"id"`
	GeneratedAt       time.Time                       `json:"generated_at"`
	ContentHash       string                          `json:"content_hash"`
	RecordCount       int                             `json:"record_count"`
	Stats             map[string]StatisticalSignature `json:"stats"`
	Temporal          TemporalSignature               `json:"temporal"`
	Relational        RelationalSignature             `json:"relational"`
	Anomalies         AnomalySignature                `json:"anomalies"`
	PatternTypes      []string                        `json:"pattern_types"`
	PatternConfidence map[string]float64              `json:"pattern_confidence"`
	Vector            []float64                       `json:"vector"`
}
