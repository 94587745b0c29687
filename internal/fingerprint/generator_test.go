package fingerprint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
)

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

func rampDataset(n int) domain.Dataset {
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range a {
		a[i] = float64(i)
		b[i] = 2*float64(i) + 1
	}
	return datasetFromColumns(map[string][]float64{"a": a, "b": b})
}

func TestGenerator_Generate_Deterministic(t *testing.T) {
	gen := NewGenerator(nil)
	ds := rampDataset(50)
	pats := []domain.DataPattern{{Type: domain.PatternTrend, Confidence: 0.9, Fields: []string{"a"}}}

	first := gen.Generate(ds, pats, "ds1")
	second := gen.Generate(ds, pats, "ds1")

	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.Equal(t, first.Stats, second.Stats)
	assert.Equal(t, first.Temporal, second.Temporal)
	assert.Equal(t, first.Relational, second.Relational)
	assert.Equal(t, first.Anomalies, second.Anomalies)
	assert.Equal(t, first.Vector, second.Vector)
}

func TestGenerator_Generate_ContentHashTracksData(t *testing.T) {
	gen := NewGenerator(nil)
	a := rampDataset(50)
	b := rampDataset(50)
	b[0].Fields["a"] = 999.0

	assert.NotEqual(t, gen.Generate(a, nil, "x").ContentHash, gen.Generate(b, nil, "y").ContentHash,
		"a change inside the sampled prefix changes the hash")
}

func TestGenerator_Generate_VectorLength(t *testing.T) {
	gen := NewGenerator(nil)
	fp := gen.Generate(rampDataset(30), nil, "ds")
	assert.Len(t, fp.Vector, 5*2+13, "5 per numeric field plus 4+2+2+5 fixed entries")
}

func TestGenerator_Generate_PatternIndicators(t *testing.T) {
	gen := NewGenerator(nil)
	pats := []domain.DataPattern{
		{Type: domain.PatternTrend, Confidence: 0.8},
		{Type: domain.PatternAnomaly, Confidence: 0.4},
	}
	fp := gen.Generate(rampDataset(30), pats, "ds")
	n := len(fp.Vector)
	// Indicator order: trend, seasonal, correlation, cluster, anomaly.
	assert.Equal(t, []float64{1, 0, 0, 0, 1}, fp.Vector[n-5:])
	assert.Equal(t, []string{"anomaly", "trend"}, fp.PatternTypes)
	assert.Equal(t, 0.8, fp.PatternConfidence["trend"])
}

func TestGenerator_Generate_TemporalUsesFirstNumericField(t *testing.T) {
	// Field "a" trends hard, field "z" is flat; sorted schema order makes
	// "a" the primary series.
	a := make([]float64, 60)
	z := make([]float64, 60)
	for i := range a {
		a[i] = float64(i)
		z[i] = 5
	}
	fp := NewGenerator(nil).Generate(datasetFromColumns(map[string][]float64{"a": a, "z": z}), nil, "ds")
	assert.Greater(t, fp.Temporal.TrendStrength, 0.99)
}

func TestGenerator_Generate_PrimaryFieldOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Fingerprint.PrimaryField = "z"
	a := make([]float64, 60)
	z := make([]float64, 60)
	for i := range a {
		a[i] = float64(i)
		z[i] = 5
	}
	fp := NewGenerator(cfg).Generate(datasetFromColumns(map[string][]float64{"a": a, "z": z}), nil, "ds")
	assert.Equal(t, 0.0, fp.Temporal.TrendStrength, "flat override field carries no trend")
}

func TestGenerator_Generate_AnomalySignatureIQR(t *testing.T) {
	// A tight cluster of values with one extreme outlier at a known index.
	values := make([]float64, 40)
	for i := range values {
		values[i] = 10 + float64(i%5)
	}
	values[20] = 1000

	fp := NewGenerator(nil).Generate(datasetFromColumns(map[string][]float64{"v": values}), nil, "ds")
	require.Equal(t, []int{20}, fp.Anomalies.Positions)
	assert.Greater(t, fp.Anomalies.Severities[0], 1.0)
	assert.InDelta(t, 1.0/40, fp.Anomalies.Density, 1e-12)
	require.Len(t, fp.Anomalies.Clusters, 1, "a single extreme outlier forms its own cluster")
	assert.Equal(t, 20, fp.Anomalies.Clusters[0].Start)
}

func TestGenerator_Generate_NoNumericFields(t *testing.T) {
	ds := domain.FromRows([]map[string]interface{}{
		{"name": "a"}, {"name": "b"},
	})
	fp := NewGenerator(nil).Generate(ds, nil, "ds")
	assert.Empty(t, fp.Stats)
	assert.Len(t, fp.Vector, 13, "no per-field entries, fixed tail only")
	assert.NotEmpty(t, fp.ContentHash)
}

func TestCosine_SelfSimilarityAndSymmetry(t *testing.T) {
	gen := NewGenerator(nil)
	fp1 := gen.Generate(rampDataset(50), nil, "a")
	fp2 := gen.Generate(datasetFromColumns(map[string][]float64{
		"a": {5, 1, 4, 2, 8, 3, 9, 1, 7, 2, 6, 3},
		"b": {2, 9, 1, 8, 3, 7, 1, 9, 2, 8, 4, 6},
	}), nil, "b")

	assert.InDelta(t, 1.0, Similarity(fp1, fp1), 1e-12, "self-similarity is 1")
	assert.Equal(t, Similarity(fp1, fp2), Similarity(fp2, fp1), "similarity is symmetric")
}

func TestCosine_MismatchedLengthsAndZeroNorm(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float64{1, 0}, []float64{1, 0, 0}), "length mismatch is similarity 0")
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{0, 0}), "zero-norm vectors are similarity 0")
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestGenerator_Generate_VectorEntriesInUnitRange(t *testing.T) {
	values := make([]float64, 80)
	for i := range values {
		values[i] = math.Sin(float64(i)/5)*500 + 250
	}
	fp := NewGenerator(nil).Generate(datasetFromColumns(map[string][]float64{"v": values}), nil, "ds")
	for i, v := range fp.Vector {
		assert.GreaterOrEqual(t, v, 0.0, "entry %d", i)
		assert.LessOrEqual(t, v, 1.0, "entry %d", i)
	}
}
