package patterns

import (
	"fmt"
	"math"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
	"github.com/datascope/datascope/internal/stats"
)

// dbscanStrategy labels density outliers: noise points and undersized
// clusters both count. Eps is estimated from a bounded subsample so the
// pairwise-distance pass stays O(100²) no matter the dataset size.
type dbscanStrategy struct {
	cfg config.AdvancedConfig
}

func (s *dbscanStrategy) Name() string { return "dbscan" }

func (s *dbscanStrategy) Detect(ds domain.Dataset) []domain.AdvancedPattern {
	fields := ds.NumericFields()
	n := len(ds)
	if len(fields) < 1 || n < 10 {
		return nil
	}
	rows, kept := ds.NumericMatrix(fields)
	if rows == nil {
		return nil
	}
	eps := estimateEps(rows, s.cfg.DBSCANSubsample, s.cfg.DBSCANEpsPercentile)
	if eps == 0 {
		return nil
	}
	minPts := int(math.Max(2, s.cfg.DBSCANMinSamplesPct*float64(n)))
	labels := dbscan(rows, eps, minPts)

	clusterSizes := make(map[int]int)
	for _, l := range labels {
		if l >= 0 {
			clusterSizes[l]++
		}
	}
	smallCutoff := int(s.cfg.DBSCANSmallClusterPct * float64(n))
	var outliers []int
	for i, l := range labels {
		if l == -1 || clusterSizes[l] < smallCutoff {
			outliers = append(outliers, i)
		}
	}
	if len(outliers) == 0 {
		return nil
	}
	density := float64(len(outliers)) / float64(n)
	confidence := math.Min(0.9, density*5)
	p := domain.DataPattern{
		Type:        domain.PatternAnomaly,
		Confidence:  confidence,
		Description: fmt.Sprintf("%d density outliers across %d fields", len(outliers), len(kept)),
		Params: map[string]interface{}{
			"outlier_positions": outliers,
			"eps":               eps,
			"min_samples":       minPts,
			"cluster_count":     len(clusterSizes),
		},
		Fields: kept,
	}
	return []domain.AdvancedPattern{{
		DataPattern:  p,
		Algorithm:    s.Name(),
		Significance: Significance(confidence, n),
		EffectSize:   density,
		SampleSize:   n,
		AlgoParams:   p.Params,
	}}
}

// estimateEps takes the configured percentile of pairwise distances over at
// most sampleCap rows.
func estimateEps(rows [][]float64, sampleCap int, percentile float64) float64 {
	sample := rows
	if len(sample) > sampleCap {
		sample = sample[:sampleCap]
	}
	var distances []float64
	for i := 0; i < len(sample); i++ {
		for j := i + 1; j < len(sample); j++ {
			distances = append(distances, euclideanDistance(sample[i], sample[j]))
		}
	}
	if len(distances) == 0 {
		return 0
	}
	return stats.Percentile(distances, percentile)
}

// dbscan is a plain region-query implementation; label -1 marks noise.
func dbscan(rows [][]float64, eps float64, minPts int) []int {
	n := len(rows)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -2 // unvisited
	}
	clusterID := 0
	for i := 0; i < n; i++ {
		if labels[i] != -2 {
			continue
		}
		neighbors := regionQuery(rows, i, eps)
		if len(neighbors) < minPts {
			labels[i] = -1
			continue
		}
		labels[i] = clusterID
		queue := append([]int(nil), neighbors...)
		for q := 0; q < len(queue); q++ {
			p := queue[q]
			if labels[p] == -1 {
				labels[p] = clusterID
			}
			if labels[p] != -2 {
				continue
			}
			labels[p] = clusterID
			pn := regionQuery(rows, p, eps)
			if len(pn) >= minPts {
				queue = append(queue, pn...)
			}
		}
		clusterID++
	}
	return labels
}

func regionQuery(rows [][]float64, idx int, eps float64) []int {
	var neighbors []int
	for j := range rows {
		if j != idx && euclideanDistance(rows[idx], rows[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
