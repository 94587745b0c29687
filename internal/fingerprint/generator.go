package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
	"github.com/datascope/datascope/internal/stats"
)

// Generator builds fingerprints. Generation is a pure function of its
// inputs apart from the GeneratedAt timestamp; identical datasets and
// pattern lists always produce identical hashes, signatures, and vectors.
type Generator struct {
	cfg config.FingerprintConfig
}

// NewGenerator builds a generator. A nil config selects defaults.
func NewGenerator(cfg *config.Config) *Generator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Generator{cfg: cfg.Fingerprint}
}

// Generate summarizes the dataset and its detected patterns under the given
// id. Datasets without numeric fields still fingerprint: the numeric
// signatures are simply empty.
func (g *Generator) Generate(ds domain.Dataset, patterns []domain.DataPattern, id string) *Fingerprint {
	numeric := ds.NumericFields()
	statsSig := make(map[string]StatisticalSignature, len(numeric))
	for _, field := range numeric {
		col, _ := ds.NumericColumn(field)
		statsSig[field] = g.statisticalSignature(col)
	}
	primary := g.primaryColumn(ds, numeric)

	fp := &Fingerprint{
		ID:          id,
		GeneratedAt: time.Now().UTC(),
		ContentHash: g.contentHash(ds),
		RecordCount: len(ds),
		Stats:       statsSig,
		Temporal:    g.temporalSignature(primary),
		Relational:  g.relationalSignature(ds, numeric),
		Anomalies:   g.anomalySignature(primary),
	}
	fp.PatternTypes, fp.PatternConfidence = summarizePatterns(patterns)
	fp.Vector = g.buildVector(fp, numeric)

	log.Debug().Str("id", id).Int("records", len(ds)).Int("vector_len", len(fp.Vector)).Msg("fingerprint generated")
	return fp
}

// primaryColumn picks the configured primary field when it is numeric,
// otherwise the first numeric field in sorted schema order.
func (g *Generator) primaryColumn(ds domain.Dataset, numeric []string) []float64 {
	if g.cfg.PrimaryField != "" {
		if col, ok := ds.NumericColumn(g.cfg.PrimaryField); ok {
			return col
		}
	}
	if len(numeric) == 0 {
		return nil
	}
	col, _ := ds.NumericColumn(numeric[0])
	return col
}

// contentHash samples the dataset: record count, sorted field names, and the
// serialized values of the first few records. It identifies a dataset
// cheaply, so two datasets differing only past the sample collide.
func (g *Generator) contentHash(ds domain.Dataset) string {
	fields := ds.FieldNames()
	var sb strings.Builder
	fmt.Fprintf(&sb, "n=%d;fields=%s;", len(ds), strings.Join(fields, ","))
	limit := g.cfg.HashSampleRecords
	if limit > len(ds) {
		limit = len(ds)
	}
	for i := 0; i < limit; i++ {
		for _, f := range fields {
			fmt.Fprintf(&sb, "%v|", ds[i].Fields[f])
		}
		sb.WriteByte(';')
	}
	return hash16(sb.String())
}

func hash16(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum)[:16]
}

func (g *Generator) statisticalSignature(col []float64) StatisticalSignature {
	family, _ := classifyFamily(col)
	return StatisticalSignature{
		Mean:         stats.Mean(col),
		StdDev:       stats.StdDev(col),
		Skewness:     stats.Skewness(col),
		Kurtosis:     stats.Kurtosis(col),
		Entropy:      stats.HistogramEntropy(col, g.cfg.HistogramBins),
		Quartiles:    stats.Quartiles(col),
		Distribution: family,
	}
}

// classifyFamily is the fingerprint-side distribution heuristic. Its
// thresholds are intentionally looser than the advanced detector's
// classifier: a fingerprint always names some family.
func classifyFamily(values []float64) (string, float64) {
	skew := stats.Skewness(values)
	kurt := stats.Kurtosis(values)
	switch {
	case math.Abs(skew) < 0.8 && math.Abs(kurt) < 1.5:
		return "normal", 1 - math.Abs(skew)/0.8
	case skew > 1:
		return "right_skewed", math.Min(1, skew/3)
	case skew < -1:
		return "left_skewed", math.Min(1, -skew/3)
	case kurt < -1:
		return "flat", math.Min(1, -kurt/2)
	case kurt > 3:
		return "heavy_tailed", math.Min(1, kurt/10)
	default:
		return "irregular", 0.5
	}
}

// temporalSignature computes all series-level scores from the primary field.
func (g *Generator) temporalSignature(col []float64) TemporalSignature {
	n := len(col)
	if n < 4 {
		return TemporalSignature{}
	}
	sig := TemporalSignature{}

	// Seasonality: strongest candidate calendar period below n/2.
	for _, period := range []int{7, 12, 24, 30, 365} {
		if period >= n/2 {
			continue
		}
		if ac := math.Abs(stats.Autocorrelation(col, period)); ac > sig.SeasonalityStrength {
			sig.SeasonalityStrength = ac
		}
	}

	if reg, ok := stats.IndexRegression(col); ok {
		sig.TrendStrength = math.Max(0, reg.RSquared)
	}

	// Significant lags: first 10 found in order, not the top 10 by magnitude.
	maxLag := n / 4
	if maxLag > 50 {
		maxLag = 50
	}
	for lag := 1; lag <= maxLag && len(sig.SignificantLags) < 10; lag++ {
		if math.Abs(stats.Autocorrelation(col, lag)) > g.cfg.SignificantLagMin {
			sig.SignificantLags = append(sig.SignificantLags, lag)
		}
	}

	// Dominant frequency: inverse of the single strongest lag.
	scanMax := n / 2
	if scanMax > 100 {
		scanMax = 100
	}
	bestLag, bestAC := 0, 0.0
	for lag := 2; lag <= scanMax; lag++ {
		if ac := math.Abs(stats.Autocorrelation(col, lag)); ac > bestAC {
			bestAC = ac
			bestLag = lag
		}
	}
	if bestLag > 0 {
		sig.DominantFrequency = 1 / float64(bestLag)
	}

	sig.PeriodicityScore = lagRegularity(sig.SignificantLags)
	sig.StationarityScore = stationarity(col)
	return sig
}

// lagRegularity scores how evenly the significant lags are spaced.
func lagRegularity(lags []int) float64 {
	if len(lags) < 3 {
		return 0
	}
	spacings := make([]float64, len(lags)-1)
	for i := 1; i < len(lags); i++ {
		spacings[i-1] = float64(lags[i] - lags[i-1])
	}
	mean := stats.Mean(spacings)
	if mean == 0 {
		return 0
	}
	return math.Max(0, 1-stats.StdDev(spacings)/mean)
}

// stationarity maps the variance of rolling-window means into (0, 1]: a
// series whose local mean never moves scores 1.
func stationarity(col []float64) float64 {
	window := len(col) / 10
	if window < 10 {
		window = 10
	}
	if window >= len(col) {
		return 1
	}
	var means []float64
	for start := 0; start+window <= len(col); start += window {
		means = append(means, stats.Mean(col[start:start+window]))
	}
	if len(means) < 2 {
		return 1
	}
	return 1 / (1 + stats.Variance(means))
}

// relationalSignature hashes the full pairwise Pearson matrix and derives
// the aggregate dependency scores from it.
func (g *Generator) relationalSignature(ds domain.Dataset, numeric []string) RelationalSignature {
	f := len(numeric)
	sig := RelationalSignature{
		MutualInformation: map[string]float64{},
		Centrality:        map[string]float64{},
	}
	if f == 0 {
		sig.CorrelationHash = hash16("empty")
		return sig
	}
	cols := make([][]float64, f)
	for i, name := range numeric {
		cols[i], _ = ds.NumericColumn(name)
	}
	matrix := make([][]float64, f)
	for i := range matrix {
		matrix[i] = make([]float64, f)
		matrix[i][i] = 1
	}
	for i := 0; i < f; i++ {
		for j := i + 1; j < f; j++ {
			r := stats.Pearson(cols[i], cols[j])
			matrix[i][j], matrix[j][i] = r, r
			sig.MutualInformation[numeric[i]+"|"+numeric[j]] = math.Abs(r)
		}
	}

	var sb strings.Builder
	for i := range matrix {
		for j := range matrix[i] {
			fmt.Fprintf(&sb, "%.6f,", matrix[i][j])
		}
	}
	sig.CorrelationHash = hash16(sb.String())

	// Diagonal stands in for principal components.
	sig.PrincipalComponents = make([]float64, f)
	for i := range sig.PrincipalComponents {
		sig.PrincipalComponents[i] = matrix[i][i]
	}

	var offDiagSum float64
	for i, name := range numeric {
		var rowSum float64
		for j := 0; j < f; j++ {
			if i == j {
				continue
			}
			rowSum += math.Abs(matrix[i][j])
		}
		if f > 1 {
			sig.Centrality[name] = rowSum / float64(f-1)
		} else {
			sig.Centrality[name] = 0
		}
		offDiagSum += rowSum
	}
	if f > 1 {
		sig.DependencyStrength = offDiagSum / float64(f*(f-1))
	}
	return sig
}

// anomalySignature applies 1.5x IQR fences to the primary field and groups
// nearby outliers into clusters.
func (g *Generator) anomalySignature(col []float64) AnomalySignature {
	sig := AnomalySignature{}
	if len(col) < 4 {
		sig.Hash = hash16("no-anomalies")
		return sig
	}
	q := stats.Quartiles(col)
	iqr := q[2] - q[0]
	if iqr == 0 {
		sig.Hash = hash16("no-anomalies")
		return sig
	}
	lower := q[0] - g.cfg.IQRFenceFactor*iqr
	upper := q[2] + g.cfg.IQRFenceFactor*iqr
	for i, v := range col {
		if v < lower {
			sig.Positions = append(sig.Positions, i)
			sig.Severities = append(sig.Severities, (lower-v)/iqr)
		} else if v > upper {
			sig.Positions = append(sig.Positions, i)
			sig.Severities = append(sig.Severities, (v-upper)/iqr)
		}
	}
	sig.Density = float64(len(sig.Positions)) / float64(len(col))
	sig.Clusters = g.clusterOutliers(sig.Positions, sig.Severities)

	maxSev, avgSev := 0.0, 0.0
	for _, s := range sig.Severities {
		maxSev = math.Max(maxSev, s)
		avgSev += s
	}
	if len(sig.Severities) > 0 {
		avgSev /= float64(len(sig.Severities))
	}
	sig.Hash = hash16(fmt.Sprintf("count=%d;max=%.4f;avg=%.4f;clusters=%d", len(sig.Positions), maxSev, avgSev, len(sig.Clusters)))
	return sig
}

// clusterOutliers joins outlier positions within the configured index gap
// into runs and keeps runs whose summed severity clears the cutoff.
func (g *Generator) clusterOutliers(positions []int, severities []float64) []AnomalyCluster {
	var clusters []AnomalyCluster
	for i := 0; i < len(positions); {
		j := i
		sev := severities[i]
		for j+1 < len(positions) && positions[j+1]-positions[j] <= g.cfg.ClusterGap {
			j++
			sev += severities[j]
		}
		if sev > g.cfg.ClusterMinSev {
			clusters = append(clusters, AnomalyCluster{
				Start:    positions[i],
				End:      positions[j],
				Size:     j - i + 1,
				Severity: sev,
			})
		}
		i = j + 1
	}
	return clusters
}

// summarizePatterns collapses the pattern list into a sorted type list and a
// per-type maximum confidence.
func summarizePatterns(patterns []domain.DataPattern) ([]string, map[string]float64) {
	conf := map[string]float64{}
	for _, p := range patterns {
		t := string(p.Type)
		if p.Confidence > conf[t] {
			conf[t] = p.Confidence
		}
	}
	types := make([]string, 0, len(conf))
	for t := range conf {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, conf
}
