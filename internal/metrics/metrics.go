// Package metrics instruments the analysis core with Prometheus collectors.
// The core never exposes HTTP itself; callers mount the registry wherever
// they serve metrics from.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the core's collectors. All methods are nil-safe so the
// detectors and the engine can run uninstrumented.
type Recorder struct {
	patternsDetected      *prometheus.CounterVec
	fingerprintsGenerated prometheus.Counter
	similarityQueries     prometheus.Counter
	detectDuration        prometheus.Histogram
	storeSize             prometheus.Gauge
}

// NewRecorder registers the core's collectors on the given registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		patternsDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datascope",
			Name:      "patterns_detected_total",
			Help:      "Patterns detected, by pattern type.",
		}, []string{"type"}),
		fingerprintsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "datascope",
			Name:      "fingerprints_generated_total",
			Help:      "Fingerprints generated.",
		}),
		similarityQueries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "datascope",
			Name:      "similarity_queries_total",
			Help:      "Similarity searches, comparisons, and cluster passes.",
		}),
		detectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "datascope",
			Name:      "detection_duration_seconds",
			Help:      "Wall time of a full detection pass.",
			Buckets:   prometheus.DefBuckets,
		}),
		storeSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "datascope",
			Name:      "fingerprint_store_size",
			Help:      "Fingerprints currently stored.",
		}),
	}
}

// ObservePatterns counts detected patterns by type.
func (r *Recorder) ObservePatterns(types []string) {
	if r == nil {
		return
	}
	for _, t := range types {
		r.patternsDetected.WithLabelValues(t).Inc()
	}
}

// ObserveFingerprint counts one generated fingerprint.
func (r *Recorder) ObserveFingerprint() {
	if r == nil {
		return
	}
	r.fingerprintsGenerated.Inc()
}

// ObserveQuery counts one similarity operation.
func (r *Recorder) ObserveQuery() {
	if r == nil {
		return
	}
	r.similarityQueries.Inc()
}

// ObserveDetectDuration records a detection pass duration in seconds.
func (r *Recorder) ObserveDetectDuration(seconds float64) {
	if r == nil {
		return
	}
	r.detectDuration.Observe(seconds)
}

// SetStoreSize records the current fingerprint store size.
func (r *Recorder) SetStoreSize(n int) {
	if r == nil {
		return
	}
	r.storeSize.Set(float64(n))
}
