package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_CountsByType(t *testing.T) {
	rec := NewRecorder(prometheus.NewRegistry())
	rec.ObservePatterns([]string{"trend", "trend", "anomaly"})
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.patternsDetected.WithLabelValues("trend")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.patternsDetected.WithLabelValues("anomaly")))
}

func TestRecorder_NilSafe(t *testing.T) {
	var rec *Recorder
	assert.NotPanics(t, func() {
		rec.ObservePatterns([]string{"trend"})
		rec.ObserveFingerprint()
		rec.ObserveQuery()
		rec.ObserveDetectDuration(0.1)
		rec.SetStoreSize(3)
	})
}
