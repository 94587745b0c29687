package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRows_CoercesIntegralNumbers(t *testing.T) {
	ds := FromRows([]map[string]interface{}{
		{"a": 1, "b": "x"},
		{"a": int64(2), "b": "y"},
		{"a": 3.5, "b": "z"},
	})
	require.Len(t, ds, 3)
	assert.True(t, ds.IsNumericField("a"))
	assert.False(t, ds.IsNumericField("b"))
}

func TestDataset_FieldNamesSorted(t *testing.T) {
	ds := FromRows([]map[string]interface{}{
		{"zeta": 1.0, "alpha": 2.0, "mid": true},
	})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ds.FieldNames())
}

func TestDataset_NumericFieldRequiresEveryRecord(t *testing.T) {
	ds := FromRows([]map[string]interface{}{
		{"a": 1.0},
		{"a": "oops"},
	})
	assert.False(t, ds.IsNumericField("a"), "a single non-number disqualifies the field")

	missing := FromRows([]map[string]interface{}{
		{"a": 1.0, "b": 2.0},
		{"a": 3.0},
	})
	assert.False(t, missing.IsNumericField("b"), "a missing value disqualifies the field")
	assert.Equal(t, []string{"a"}, missing.NumericFields())
}

func TestDataset_NumericColumn(t *testing.T) {
	ds := FromRows([]map[string]interface{}{
		{"v": 1.0}, {"v": 2.0}, {"v": 3.0},
	})
	col, ok := ds.NumericColumn("v")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, col)

	_, ok = ds.NumericColumn("nope")
	assert.False(t, ok)
}

func TestDataset_NumericMatrix(t *testing.T) {
	ds := FromRows([]map[string]interface{}{
		{"a": 1.0, "b": 10.0, "label": "x"},
		{"a": 2.0, "b": 20.0, "label": "y"},
	})
	rows, kept := ds.NumericMatrix([]string{"a", "b", "label"})
	require.Equal(t, []string{"a", "b"}, kept)
	assert.Equal(t, [][]float64{{1, 10}, {2, 20}}, rows)
}

func TestFromRows_MetadataKeys(t *testing.T) {
	ds := FromRows([]map[string]interface{}{
		{"id": "r1", "timestamp": "2026-01-02T03:04:05Z", "v": 1.0},
	})
	require.Len(t, ds, 1)
	assert.Equal(t, "r1", ds[0].ID)
	require.NotNil(t, ds[0].Timestamp)
	assert.Equal(t, 2026, ds[0].Timestamp.Year())
	assert.Equal(t, []string{"v"}, ds.FieldNames(), "id and timestamp are not data fields")
}

func TestDataset_Empty(t *testing.T) {
	var ds Dataset
	assert.Empty(t, ds.FieldNames())
	assert.Empty(t, ds.NumericFields())
	assert.False(t, ds.IsNumericField("a"))
}
