package patterns

import (
	"fmt"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
)

// hierarchicalStrategy sweeps cluster counts 2..5 and emits the first level
// whose silhouette clears the cutoff. This is a simplified dendrogram built
// from repeated flat clusterings, not a true agglomerative merge.
type hierarchicalStrategy struct {
	cfg     config.AdvancedConfig
	seed    int64
	maxIter int
}

func (s *hierarchicalStrategy) Name() string { return "hierarchical" }

func (s *hierarchicalStrategy) Detect(ds domain.Dataset) []domain.AdvancedPattern {
	fields := ds.NumericFields()
	n := len(ds)
	if len(fields) < 2 || n < 10 {
		return nil
	}
	rows, kept := ds.NumericMatrix(fields)
	if rows == nil {
		return nil
	}
	levels := make(map[string]interface{})
	for k := 2; k <= 5; k++ {
		if n < k {
			break
		}
		assignments, _, ok := kMeans(rows, k, s.maxIter, s.seed)
		if !ok {
			continue
		}
		sil := silhouette(rows, assignments, k)
		levels[fmt.Sprintf("k%d", k)] = sil
		if sil <= s.cfg.HierarchicalMinSil {
			continue
		}
		sizes := make([]int, k)
		for _, a := range assignments {
			sizes[a]++
		}
		p := domain.DataPattern{
			Type:        domain.PatternCluster,
			Confidence:  sil,
			Description: fmt.Sprintf("hierarchical level with %d clusters (silhouette %.2f)", k, sil),
			Params: map[string]interface{}{
				"k":             k,
				"silhouette":    sil,
				"cluster_sizes": sizes,
				"levels_tested": levels,
			},
			Fields: kept,
		}
		return []domain.AdvancedPattern{{
			DataPattern:  p,
			Algorithm:    s.Name(),
			Significance: Significance(sil, n),
			EffectSize:   sil,
			SampleSize:   n,
			AlgoParams:   p.Params,
		}}
	}
	return nil
}
