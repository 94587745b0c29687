// Package domain defines the dataset model shared by the pattern detectors,
// the fingerprint generator, and the similarity engine.
package domain

import (
	"sort"
	"time"
)

// DataRecord is a single row of a dataset. Field values are limited to
// float64, string, or bool after decoding; integer inputs are coerced to
// float64 by FromRows.
type DataRecord struct {
	ID        string                 `json:"id"`
	Timestamp *time.Time             `json:"timestamp,omitempty"`
	Fields    map[string]interface{} `json:"fields"`
}

// Dataset is an ordered sequence of records sharing one schema.
type Dataset []DataRecord

// FromRows builds a Dataset from decoded JSON rows, coercing integral
// numeric types to float64 so numeric-field detection behaves uniformly.
// The keys "id" and "timestamp" are record metadata, not data fields;
// timestamps parse as RFC 3339 and are dropped silently when malformed.
func FromRows(rows []map[string]interface{}) Dataset {
	ds := make(Dataset, 0, len(rows))
	for _, row := range rows {
		rec := DataRecord{Fields: make(map[string]interface{}, len(row))}
		for k, v := range row {
			switch k {
			case "id":
				if id, ok := v.(string); ok {
					rec.ID = id
					continue
				}
			case "timestamp":
				if raw, ok := v.(string); ok {
					if ts, err := time.Parse(time.RFC3339, raw); err == nil {
						rec.Timestamp = &ts
					}
					continue
				}
			}
			rec.Fields[k] = coerce(v)
		}
		ds = append(ds, rec)
	}
	return ds
}

func coerce(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// FieldNames returns the union of field names across all records, sorted.
// Sorting keeps everything downstream (hashes, vectors, the "first numeric
// field" choice) deterministic regardless of map iteration order.
func (ds Dataset) FieldNames() []string {
	seen := make(map[string]bool)
	for _, rec := range ds {
		for name := range rec.Fields {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsNumericField reports whether every record holds a float64 for the field.
// A field missing from any record is not numeric.
func (ds Dataset) IsNumericField(name string) bool {
	if len(ds) == 0 {
		return false
	}
	for _, rec := range ds {
		v, ok := rec.Fields[name]
		if !ok {
			return false
		}
		if _, ok := v.(float64); !ok {
			return false
		}
	}
	return true
}

// NumericFields returns the sorted names of all numeric fields.
func (ds Dataset) NumericFields() []string {
	var numeric []string
	for _, name := range ds.FieldNames() {
		if ds.IsNumericField(name) {
			numeric = append(numeric, name)
		}
	}
	return numeric
}

// NumericColumn extracts the field as a float64 series in record order.
// The second return is false when the field is not numeric.
func (ds Dataset) NumericColumn(name string) ([]float64, bool) {
	if !ds.IsNumericField(name) {
		return nil, false
	}
	col := make([]float64, len(ds))
	for i, rec := range ds {
		col[i] = rec.Fields[name].(float64)
	}
	return col, true
}

// NumericMatrix returns one row per record over the given numeric fields.
// Fields that are not numeric are silently skipped; the returned field list
// reflects what was actually included.
func (ds Dataset) NumericMatrix(fields []string) ([][]float64, []string) {
	cols := make(map[string][]float64, len(fields))
	var kept []string
	for _, f := range fields {
		if col, ok := ds.NumericColumn(f); ok {
			cols[f] = col
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	rows := make([][]float64, len(ds))
	for i := range ds {
		row := make([]float64, len(kept))
		for j, f := range kept {
			row[j] = cols[f][i]
		}
		rows[i] = row
	}
	return rows, kept
}
