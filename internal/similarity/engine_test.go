package similarity

import (
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datascope/datascope/internal/domain"
	"github.com/datascope/datascope/internal/fingerprint"
	"github.com/datascope/datascope/internal/metrics"
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

func rampDataset(n int, slope float64) domain.Dataset {
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range a {
		a[i] = slope * float64(i)
		b[i] = slope*float64(i) + 3
	}
	return datasetFromColumns(map[string][]float64{"a": a, "b": b})
}

func noisyDataset(n int) domain.Dataset {
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range a {
		a[i] = float64((i*37)%11) * 13
		b[i] = float64((i*53)%7) * 29
	}
	return datasetFromColumns(map[string][]float64{"a": a, "b": b})
}

func TestEngine_Get_UnknownID(t *testing.T) {
	engine := NewEngine(nil, nil)
	_, err := engine.Get("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_StoreOverwritesByID(t *testing.T) {
	engine := NewEngine(nil, nil)
	gen := fingerprint.NewGenerator(nil)

	engine.Store(gen.Generate(rampDataset(30, 1), nil, "ds"))
	engine.Store(gen.Generate(rampDataset(40, 2), nil, "ds"))

	assert.Equal(t, 1, engine.Len())
	fp, err := engine.Get("ds")
	require.NoError(t, err)
	assert.Equal(t, 40, fp.RecordCount)
}

func TestEngine_FindSimilar_IdenticalDatasets(t *testing.T) {
	engine := NewEngine(nil, nil)
	ds := rampDataset(50, 1)

	_, err := engine.FindSimilar(ds, nil, "first", 0.99)
	require.NoError(t, err)

	matches, err := engine.FindSimilar(ds, nil, "second", 0.99)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "first", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
	assert.ElementsMatch(t, []string{"statistical", "temporal", "relational", "anomaly"}, matches[0].MatchingFeatures)
	assert.Empty(t, matches[0].DifferingFeatures)
}

func TestEngine_FindSimilar_ThresholdFilters(t *testing.T) {
	engine := NewEngine(nil, nil)
	_, err := engine.FindSimilar(rampDataset(50, 1), nil, "ramp", 0.7)
	require.NoError(t, err)

	matches, err := engine.FindSimilar(noisyDataset(50), nil, "noise", 0.99)
	require.NoError(t, err)
	assert.Empty(t, matches, "dissimilar datasets do not clear a 0.99 threshold")
}

func TestEngine_FindSimilar_GeneratesIDWhenEmpty(t *testing.T) {
	engine := NewEngine(nil, nil)
	_, err := engine.FindSimilar(rampDataset(30, 1), nil, "", 0.7)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.Len())
}

func TestEngine_ClusterFingerprints_Thresholds(t *testing.T) {
	engine := NewEngine(nil, nil)
	gen := fingerprint.NewGenerator(nil)
	engine.Store(gen.Generate(rampDataset(50, 1), nil, "a"))
	engine.Store(gen.Generate(rampDataset(50, 1), nil, "b"))
	engine.Store(gen.Generate(noisyDataset(50), nil, "c"))

	assert.Empty(t, engine.ClusterFingerprints(1.1), "similarity never exceeds 1")

	clusters := engine.ClusterFingerprints(0)
	require.Len(t, clusters, 1, "threshold 0 absorbs everything into one cluster")
	assert.Equal(t, 3, clusters[0].Size)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, clusters[0].Members)
}

func TestEngine_ClusterFingerprints_GroupsIdenticalPair(t *testing.T) {
	engine := NewEngine(nil, nil)
	gen := fingerprint.NewGenerator(nil)
	pats := []domain.DataPattern{{Type: domain.PatternTrend, Confidence: 0.9}}
	engine.Store(gen.Generate(rampDataset(50, 1), pats, "a"))
	engine.Store(gen.Generate(rampDataset(50, 1), pats, "b"))
	engine.Store(gen.Generate(noisyDataset(50), nil, "c"))

	clusters := engine.ClusterFingerprints(0.999)
	require.Len(t, clusters, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, clusters[0].Members)
	assert.Contains(t, clusters[0].TopPatterns, "trend")
	assert.InDelta(t, 0.9, clusters[0].MeanConfidence, 1e-9)
	assert.InDelta(t, 0.0, clusters[0].VectorVariance, 1e-12, "identical members have no spread")
}

func TestEngine_ExportImport_RoundTrip(t *testing.T) {
	engine := NewEngine(nil, nil)
	gen := fingerprint.NewGenerator(nil)
	engine.Store(gen.Generate(rampDataset(50, 1), nil, "a"))
	engine.Store(gen.Generate(noisyDataset(50), nil, "b"))

	// Force a full JSON round trip to prove the snapshot serializes.
	raw, err := json.Marshal(engine.Export())
	require.NoError(t, err)
	var snapshot map[string]*fingerprint.Fingerprint
	require.NoError(t, json.Unmarshal(raw, &snapshot))

	restored := NewEngine(nil, nil)
	restored.Import(snapshot)

	want, err := json.Marshal(engine.Export())
	require.NoError(t, err)
	got, err := json.Marshal(restored.Export())
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestEngine_Import_Upserts(t *testing.T) {
	engine := NewEngine(nil, nil)
	gen := fingerprint.NewGenerator(nil)
	engine.Store(gen.Generate(rampDataset(30, 1), nil, "a"))

	replacement := gen.Generate(rampDataset(60, 2), nil, "a")
	engine.Import(map[string]*fingerprint.Fingerprint{"a": replacement})

	assert.Equal(t, 1, engine.Len())
	fp, err := engine.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 60, fp.RecordCount)
}

func TestEngine_CompareDatasets_Identical(t *testing.T) {
	engine := NewEngine(nil, nil)
	ds := rampDataset(50, 1)
	cmp, err := engine.CompareDatasets(ds, ds)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cmp.Overall, 1e-9)
	require.NotEmpty(t, cmp.Recommendations)
	assert.Contains(t, cmp.Recommendations[0], "very similar")
	assert.Empty(t, cmp.UniqueToFirst)
	assert.Empty(t, cmp.UniqueToSecond)
}

func TestEngine_CompareDatasets_Different(t *testing.T) {
	engine := NewEngine(nil, nil)
	cmp, err := engine.CompareDatasets(rampDataset(50, 1), noisyDataset(50))
	require.NoError(t, err)
	assert.Less(t, cmp.Overall, 1.0)
	require.NotEmpty(t, cmp.Recommendations)
}

func TestEngine_CompareDatasets_NilInput(t *testing.T) {
	engine := NewEngine(nil, nil)
	_, err := engine.CompareDatasets(nil, rampDataset(10, 1))
	assert.Error(t, err)
}

func TestEngine_FindSimilar_InstrumentsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	engine := NewEngine(nil, metrics.NewRecorder(reg))

	_, err := engine.FindSimilar(rampDataset(40, 2), nil, "first", 0.99)
	require.NoError(t, err)
	_, err = engine.FindSimilar(rampDataset(40, 2), nil, "second", 0.99)
	require.NoError(t, err)

	assert.Equal(t, 2.0, gatherValue(t, reg, "datascope_fingerprints_generated_total"))
	assert.Equal(t, 2.0, gatherValue(t, reg, "datascope_similarity_queries_total"))
	assert.Equal(t, 2.0, gatherValue(t, reg, "datascope_fingerprint_store_size"))
}

// gatherValue sums a metric family's samples across label sets.
func gatherValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
		return total
	}
	t.Fatalf("metric %s was not gathered", name)
	return 0
}

func TestEngine_ComponentSimilarity_MismatchedSchemas(t *testing.T) {
	engine := NewEngine(nil, nil)
	gen := fingerprint.NewGenerator(nil)
	a := gen.Generate(rampDataset(50, 1), nil, "a") // fields a, b
	c := gen.Generate(datasetFromColumns(map[string][]float64{
		"x": {1, 5, 2, 8, 3, 9, 4, 7, 2, 6},
	}), nil, "c")

	assert.Equal(t, 0.0, fingerprint.Similarity(a, c), "mismatched vector lengths compare as 0")
	components := engine.componentSimilarities(a, c)
	assert.Equal(t, 0.0, components["statistical"], "no shared numeric fields")
}
