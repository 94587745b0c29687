package similarity

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/datascope/datascope/internal/fingerprint"
)

// Cluster is a group of stored fingerprints found mutually similar to the
// cluster's seed. Ephemeral: computed on demand, never persisted.
type Cluster struct {
	ID             string   `json:"id"`
	Members        []string `json:"members"`
	Size           int      `json:"size"`
	TopPatterns    []string `json:"top_patterns"` // up to 3, by member frequency
	MeanConfidence float64  `json:"mean_confidence"`
	VectorVariance float64  `json:"vector_variance"` // mean squared distance to centroid
}

// ClusterFingerprints greedily groups the store in insertion order: each
// unprocessed fingerprint seeds a cluster and absorbs every later
// unprocessed fingerprint whose vector similarity clears the threshold.
// Singleton clusters are dropped. This is O(m²) and order-dependent, a
// heuristic rather than an optimal or density-based clustering.
func (e *Engine) ClusterFingerprints(threshold float64) []Cluster {
	e.rec.ObserveQuery()
	e.mu.RLock()
	defer e.mu.RUnlock()

	processed := make(map[string]bool, len(e.order))
	var clusters []Cluster
	for _, seedID := range e.order {
		if processed[seedID] {
			continue
		}
		processed[seedID] = true
		seed := e.store[seedID]
		members := []*fingerprint.Fingerprint{seed}
		memberIDs := []string{seedID}
		for _, otherID := range e.order {
			if processed[otherID] {
				continue
			}
			other := e.store[otherID]
			if fingerprint.Similarity(seed, other) >= threshold {
				processed[otherID] = true
				members = append(members, other)
				memberIDs = append(memberIDs, otherID)
			}
		}
		if len(members) < 2 {
			continue
		}
		clusters = append(clusters, Cluster{
			ID:             fmt.Sprintf("cluster_%d", len(clusters)+1),
			Members:        memberIDs,
			Size:           len(members),
			TopPatterns:    topPatternTypes(members, 3),
			MeanConfidence: meanConfidence(members),
			VectorVariance: centroidVariance(members),
		})
	}
	log.Info().Int("clusters", len(clusters)).Float64("threshold", threshold).Msg("fingerprint clustering complete")
	return clusters
}

// topPatternTypes ranks pattern types by how many members carry them,
// breaking ties alphabetically for determinism.
func topPatternTypes(members []*fingerprint.Fingerprint, limit int) []string {
	freq := map[string]int{}
	for _, m := range members {
		for _, t := range m.PatternTypes {
			freq[t]++
		}
	}
	types := make([]string, 0, len(freq))
	for t := range freq {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if freq[types[i]] != freq[types[j]] {
			return freq[types[i]] > freq[types[j]]
		}
		return types[i] < types[j]
	})
	if len(types) > limit {
		types = types[:limit]
	}
	return types
}

func meanConfidence(members []*fingerprint.Fingerprint) float64 {
	var sum float64
	var count int
	for _, m := range members {
		for _, c := range m.PatternConfidence {
			sum += c
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// centroidVariance measures member spread about the vector centroid. Members
// whose vector length differs from the seed's are skipped: they can only
// have been absorbed at threshold 0 and have no comparable geometry.
func centroidVariance(members []*fingerprint.Fingerprint) float64 {
	dim := len(members[0].Vector)
	var comparable []*fingerprint.Fingerprint
	for _, m := range members {
		if len(m.Vector) == dim {
			comparable = append(comparable, m)
		}
	}
	if len(comparable) < 2 || dim == 0 {
		return 0
	}
	centroid := make([]float64, dim)
	for _, m := range comparable {
		for i, v := range m.Vector {
			centroid[i] += v
		}
	}
	for i := range centroid {
		centroid[i] /= float64(len(comparable))
	}
	var total float64
	for _, m := range comparable {
		var sq float64
		for i, v := range m.Vector {
			d := v - centroid[i]
			sq += d * d
		}
		total += sq
	}
	return total / float64(len(comparable))
}
