// Package similarity stores fingerprints and answers similarity queries:
// nearest matches, dataset comparison, and greedy fingerprint clustering.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
	"github.com/datascope/datascope/internal/fingerprint"
	"github.com/datascope/datascope/internal/metrics"
	"github.com/datascope/datascope/internal/patterns"
)

// ErrNotFound is returned when a query references an unknown fingerprint id.
// This is the one lookup failure the engine propagates instead of masking.
var ErrNotFound = errors.New("fingerprint not found")

// componentNames is the fixed order of the four similarity components.
var componentNames = []string{"statistical", "temporal", "relational", "anomaly"}

// Engine is an explicitly constructed fingerprint repository plus the
// similarity computations over it. The store is guarded by a lock so
// concurrent callers do not need external serialization; its lifecycle is
// bound to the engine instance and nothing is persisted.
type Engine struct {
	mu       sync.RWMutex
	store    map[string]*fingerprint.Fingerprint
	order    []string // insertion order, drives greedy clustering
	gen      *fingerprint.Generator
	detector *patterns.Detector
	cfg      config.SimilarityConfig
	rec      *metrics.Recorder
}

// NewEngine builds an engine with its own empty store. A nil config selects
// defaults; a nil recorder disables instrumentation.
func NewEngine(cfg *config.Config, rec *metrics.Recorder) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{
		store:    make(map[string]*fingerprint.Fingerprint),
		gen:      fingerprint.NewGenerator(cfg),
		detector: patterns.NewDetector(cfg),
		cfg:      cfg.Similarity,
		rec:      rec,
	}
}

// DefaultMatchThreshold returns the configured FindSimilar threshold.
func (e *Engine) DefaultMatchThreshold() float64 { return e.cfg.MatchThreshold }

// DefaultClusterThreshold returns the configured clustering threshold.
func (e *Engine) DefaultClusterThreshold() float64 { return e.cfg.ClusterThreshold }

// Store inserts or replaces a fingerprint under its id. Re-analysis under an
// existing id overwrites; fingerprints are never mutated in place.
func (e *Engine) Store(fp *fingerprint.Fingerprint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.storeLocked(fp)
}

func (e *Engine) storeLocked(fp *fingerprint.Fingerprint) {
	if _, exists := e.store[fp.ID]; !exists {
		e.order = append(e.order, fp.ID)
	}
	e.store[fp.ID] = fp
	e.rec.SetStoreSize(len(e.store))
}

// Get returns the stored fingerprint or ErrNotFound.
func (e *Engine) Get(id string) (*fingerprint.Fingerprint, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fp, ok := e.store[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return fp, nil
}

// Len returns the number of stored fingerprints.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.store)
}

// Match is one stored fingerprint scored against the query fingerprint.
type Match struct {
	ID                string             `json:"id"`
	Similarity        float64            `json:"similarity"`
	Components        map[string]float64 `json:"components"`
	MatchingFeatures  []string           `json:"matching_features"`
	DifferingFeatures []string           `json:"differing_features"`
}

// FindSimilar fingerprints the dataset under the given id, stores the
// result, and returns every other stored fingerprint whose component-mean
// similarity clears the threshold, sorted descending. An empty id gets a
// generated one.
func (e *Engine) FindSimilar(ds domain.Dataset, pats []domain.DataPattern, id string, threshold float64) ([]Match, error) {
	if ds == nil {
		return nil, errors.New("nil dataset")
	}
	if id == "" {
		id = uuid.NewString()
	}
	query := e.gen.Generate(ds, pats, id)
	e.rec.ObserveFingerprint()
	e.rec.ObserveQuery()
	e.rec.ObservePatterns(query.PatternTypes)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.storeLocked(query)

	var matches []Match
	for _, otherID := range e.order {
		if otherID == id {
			continue
		}
		other := e.store[otherID]
		components := e.componentSimilarities(query, other)
		overall := meanOf(components)
		if overall < threshold {
			continue
		}
		m := Match{ID: otherID, Similarity: overall, Components: components}
		for _, name := range componentNames {
			if components[name] >= e.cfg.ComponentCutoff {
				m.MatchingFeatures = append(m.MatchingFeatures, name)
			} else {
				m.DifferingFeatures = append(m.DifferingFeatures, name)
			}
		}
		matches = append(matches, m)
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	log.Info().Str("id", id).Int("matches", len(matches)).Float64("threshold", threshold).Msg("similarity search complete")
	return matches, nil
}

// componentSimilarities computes the four-component breakdown between two
// fingerprints. Every component is in [0, 1].
func (e *Engine) componentSimilarities(a, b *fingerprint.Fingerprint) map[string]float64 {
	return map[string]float64{
		"statistical": statisticalSimilarity(a, b),
		"temporal":    temporalSimilarity(a.Temporal, b.Temporal),
		"relational":  relationalSimilarity(a.Relational, b.Relational),
		"anomaly":     anomalySimilarity(a.Anomalies, b.Anomalies),
	}
}

// statisticalSimilarity averages a five-feature blend over the numeric
// fields both fingerprints share. No shared fields means 0.
func statisticalSimilarity(a, b *fingerprint.Fingerprint) float64 {
	var total float64
	var shared int
	for field, sa := range a.Stats {
		sb, ok := b.Stats[field]
		if !ok {
			continue
		}
		shared++
		blend := closeness(sa.Mean, sb.Mean) +
			closeness(sa.StdDev, sb.StdDev) +
			closeness(sa.Skewness, sb.Skewness) +
			closeness(sa.Kurtosis, sb.Kurtosis) +
			closeness(sa.Entropy, sb.Entropy)
		total += blend / 5
	}
	if shared == 0 {
		return 0
	}
	return total / float64(shared)
}

// temporalSimilarity averages the closeness of the five temporal scores.
func temporalSimilarity(a, b fingerprint.TemporalSignature) float64 {
	sum := unitCloseness(a.SeasonalityStrength, b.SeasonalityStrength) +
		unitCloseness(a.TrendStrength, b.TrendStrength) +
		unitCloseness(a.DominantFrequency, b.DominantFrequency) +
		unitCloseness(a.PeriodicityScore, b.PeriodicityScore) +
		unitCloseness(a.StationarityScore, b.StationarityScore)
	return sum / 5
}

// relationalSimilarity blends dependency-strength closeness, exact hash
// match, and the overlap ratio of the mutual-information key sets.
func relationalSimilarity(a, b fingerprint.RelationalSignature) float64 {
	hashMatch := 0.0
	if a.CorrelationHash == b.CorrelationHash {
		hashMatch = 1
	}
	return (unitCloseness(a.DependencyStrength, b.DependencyStrength) +
		hashMatch +
		keyOverlap(a.MutualInformation, b.MutualInformation)) / 3
}

// anomalySimilarity blends density closeness, mean-severity closeness, and
// exact signature-hash match.
func anomalySimilarity(a, b fingerprint.AnomalySignature) float64 {
	hashMatch := 0.0
	if a.Hash == b.Hash {
		hashMatch = 1
	}
	return (unitCloseness(a.Density, b.Density) +
		unitCloseness(meanSeverity(a.Severities), meanSeverity(b.Severities)) +
		hashMatch) / 3
}

// closeness compares two unbounded values on a relative scale: equal values
// score 1, opposite-sign values of equal magnitude score 0.
func closeness(a, b float64) float64 {
	if a == b {
		return 1
	}
	denom := math.Abs(a) + math.Abs(b)
	if denom == 0 {
		return 1
	}
	return math.Max(0, 1-math.Abs(a-b)/denom)
}

// unitCloseness compares two scores already in [0, 1].
func unitCloseness(a, b float64) float64 {
	return math.Max(0, 1-math.Abs(a-b))
}

func keyOverlap(a, b map[string]float64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	union := make(map[string]bool, len(a)+len(b))
	shared := 0
	for k := range a {
		union[k] = true
	}
	for k := range b {
		if union[k] {
			shared++
		}
		union[k] = true
	}
	return float64(shared) / float64(len(union))
}

func meanSeverity(severities []float64) float64 {
	if len(severities) == 0 {
		return 0
	}
	var sum float64
	for _, s := range severities {
		sum += s
	}
	return math.Min(1, sum/float64(len(severities))/3)
}

func meanOf(components map[string]float64) float64 {
	var sum float64
	for _, v := range components {
		sum += v
	}
	return sum / float64(len(components))
}
