package patterns

import (
	"fmt"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
	"github.com/datascope/datascope/internal/stats"
)

// autoregressiveStrategy tests AR(1..3) fits per numeric field. Coefficients
// come from the series' autocorrelations, an approximation of the
// Yule-Walker solution rather than a true least-squares fit, and the
// significance heuristic is simply 1-R².
type autoregressiveStrategy struct {
	cfg config.AdvancedConfig
}

func (s *autoregressiveStrategy) Name() string { return "autoregressive" }

func (s *autoregressiveStrategy) Detect(ds domain.Dataset) []domain.AdvancedPattern {
	n := len(ds)
	var out []domain.AdvancedPattern
	for _, field := range ds.NumericFields() {
		col, _ := ds.NumericColumn(field)
		if len(col) < 20 {
			continue
		}
		for order := 1; order <= s.cfg.ARMaxOrder; order++ {
			coeffs, r2 := arFit(col, order)
			if coeffs == nil {
				continue
			}
			pValue := 1 - r2
			if r2 <= s.cfg.ARMinRSquared || pValue >= s.cfg.ARMaxPValue {
				continue
			}
			p := domain.DataPattern{
				Type:        domain.PatternAutoregressive,
				Confidence:  r2,
				Description: fmt.Sprintf("%s follows an AR(%d) process (R²=%.2f)", field, order, r2),
				Params: map[string]interface{}{
					"order":        order,
					"coefficients": coeffs,
					"r_squared":    r2,
				},
				Fields: []string{field},
			}
			out = append(out, domain.AdvancedPattern{
				DataPattern:  p,
				Algorithm:    s.Name(),
				Significance: Significance(r2, n),
				EffectSize:   r2,
				SampleSize:   n,
				PValue:       &pValue,
				AlgoParams:   p.Params,
			})
			break // first qualifying order wins
		}
	}
	return out
}

// arFit approximates AR coefficients with lag autocorrelations and scores
// the one-step-ahead predictions with R². Returns nil coefficients when the
// series is too short or flat.
func arFit(values []float64, order int) ([]float64, float64) {
	n := len(values)
	if n <= order*2 || stats.Variance(values) == 0 {
		return nil, 0
	}
	coeffs := make([]float64, order)
	for lag := 1; lag <= order; lag++ {
		coeffs[lag-1] = stats.Autocorrelation(values, lag) / float64(order)
	}
	mean := stats.Mean(values)
	var ssRes, ssTot float64
	for i := order; i < n; i++ {
		pred := mean
		for lag := 1; lag <= order; lag++ {
			pred += coeffs[lag-1] * (values[i-lag] - mean)
		}
		ssRes += (values[i] - pred) * (values[i] - pred)
		ssTot += (values[i] - mean) * (values[i] - mean)
	}
	if ssTot == 0 {
		return nil, 0
	}
	r2 := 1 - ssRes/ssTot
	if r2 < 0 {
		r2 = 0
	}
	return coeffs, r2
}
