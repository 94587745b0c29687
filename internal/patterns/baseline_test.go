package patterns

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datascope/datascope/internal/domain"
)

// datasetFromColumns builds a dataset where every column has equal length.
func datasetFromColumns(cols map[string][]float64) domain.Dataset {
	var n int
	for _, col := range cols {
		n = len(col)
		break
	}
	ds := make(domain.Dataset, n)
	for i := 0; i < n; i++ {
		fields := make(map[string]interface{}, len(cols))
		for name, col := range cols {
			fields[name] = col[i]
		}
		ds[i] = domain.DataRecord{Fields: fields}
	}
	return ds
}

func patternsOfType(pats []domain.DataPattern, t domain.PatternType) []domain.DataPattern {
	var out []domain.DataPattern
	for _, p := range pats {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

func TestDetector_Detect_LinearTrend(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 3*float64(i) + 5
	}
	det := NewDetector(nil)
	pats := det.Detect(datasetFromColumns(map[string][]float64{"value": values}))

	trends := patternsOfType(pats, domain.PatternTrend)
	require.Len(t, trends, 1)
	assert.InDelta(t, 1.0, trends[0].Confidence, 1e-9, "noiseless line fits perfectly")
	assert.Equal(t, "increasing", trends[0].Params["direction"])
	assert.InDelta(t, 3.0, trends[0].Params["slope"].(float64), 1e-9)
	assert.Equal(t, []string{"value"}, trends[0].Fields)
}

func TestDetector_Detect_FlatSeriesHasNoTrend(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 7
	}
	pats := NewDetector(nil).Detect(datasetFromColumns(map[string][]float64{"value": values}))
	assert.Empty(t, patternsOfType(pats, domain.PatternTrend))
}

func TestDetector_Detect_ExactlyThreeAnomalies(t *testing.T) {
	// 100 bounded pseudo-noise samples plus 3 extreme values: the z-score
	// threshold must flag exactly the extremes.
	values := make([]float64, 0, 103)
	for i := 0; i < 100; i++ {
		values = append(values, math.Sin(0.7*float64(i))*1.4)
	}
	values = append(values, 10, 10, 10)

	pats := NewDetector(nil).Detect(datasetFromColumns(map[string][]float64{"reading": values}))
	anomalies := patternsOfType(pats, domain.PatternAnomaly)
	require.Len(t, anomalies, 1)

	positions := anomalies[0].Params["positions"].([]int)
	assert.Equal(t, []int{100, 101, 102}, positions)
	assert.InDelta(t, float64(3)/103*5, anomalies[0].Confidence, 1e-9)
}

func TestDetector_Detect_PerfectCorrelation(t *testing.T) {
	a := make([]float64, 30)
	b := make([]float64, 30)
	for i := range a {
		a[i] = float64(i)
		b[i] = 2 * float64(i)
	}
	pats := NewDetector(nil).Detect(datasetFromColumns(map[string][]float64{"a": a, "b": b}))
	corrs := patternsOfType(pats, domain.PatternCorrelation)
	require.Len(t, corrs, 1)
	assert.InDelta(t, 1.0, corrs[0].Confidence, 1e-9)
	assert.Equal(t, "positive", corrs[0].Params["relation"])
	assert.ElementsMatch(t, []string{"a", "b"}, corrs[0].Fields)
}

func TestDetector_Detect_Seasonality(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = math.Sin(2 * math.Pi * float64(i) / 10)
	}
	pats := NewDetector(nil).Detect(datasetFromColumns(map[string][]float64{"value": values}))
	seasonal := patternsOfType(pats, domain.PatternSeasonal)
	require.NotEmpty(t, seasonal)
	assert.Equal(t, 10, seasonal[0].Params["period"])
	assert.Greater(t, seasonal[0].Confidence, 0.8)
}

func TestDetector_Detect_SeasonalityNeedsEnoughRows(t *testing.T) {
	values := make([]float64, 40) // below the 50-row minimum
	for i := range values {
		values[i] = math.Sin(2 * math.Pi * float64(i) / 10)
	}
	pats := NewDetector(nil).Detect(datasetFromColumns(map[string][]float64{"value": values}))
	assert.Empty(t, patternsOfType(pats, domain.PatternSeasonal))
}

func TestDetector_Detect_EmptyAndNonNumeric(t *testing.T) {
	det := NewDetector(nil)
	assert.Empty(t, det.Detect(nil))

	ds := domain.FromRows([]map[string]interface{}{
		{"name": "a"}, {"name": "b"},
	})
	assert.Empty(t, det.Detect(ds), "no numeric fields means no patterns, not an error")
}

func TestDetector_Detect_ClusterDeterminism(t *testing.T) {
	// Two well-separated blobs plus a third: seeded k-means must produce
	// identical output across runs.
	a := make([]float64, 30)
	b := make([]float64, 30)
	for i := range a {
		base := float64(i/10) * 100
		a[i] = base + float64(i%10)*0.1
		b[i] = base + float64(i%10)*0.1
	}
	ds := datasetFromColumns(map[string][]float64{"a": a, "b": b})
	det := NewDetector(nil)
	first := det.Detect(ds)
	second := det.Detect(ds)
	assert.Equal(t, first, second)
}

func TestKMeans_FewerRowsThanClusters(t *testing.T) {
	_, _, ok := kMeans([][]float64{{1, 2}}, 3, 10, 1)
	assert.False(t, ok)
}
