package patterns

import (
	"fmt"
	"math"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
	"github.com/datascope/datascope/internal/stats"
)

// nonLinearStrategy flags field pairs whose rank correlation is strong while
// diverging from the linear correlation, the signature of a monotone but
// non-linear relationship.
type nonLinearStrategy struct {
	cfg config.AdvancedConfig
}

func (s *nonLinearStrategy) Name() string { return "spearman" }

func (s *nonLinearStrategy) Detect(ds domain.Dataset) []domain.AdvancedPattern {
	fields := ds.NumericFields()
	n := len(ds)
	var out []domain.AdvancedPattern
	for i := 0; i < len(fields); i++ {
		for j := i + 1; j < len(fields); j++ {
			a, _ := ds.NumericColumn(fields[i])
			b, _ := ds.NumericColumn(fields[j])
			rho := stats.Spearman(a, b)
			r := stats.Pearson(a, b)
			if math.Abs(rho) <= s.cfg.SpearmanMinR || math.Abs(rho-r) <= s.cfg.SpearmanPearsonGap {
				continue
			}
			p := domain.DataPattern{
				Type:        domain.PatternCorrelation,
				Confidence:  math.Abs(rho),
				Description: fmt.Sprintf("non-linear association between %s and %s (rho=%.3f, r=%.3f)", fields[i], fields[j], rho, r),
				Params: map[string]interface{}{
					"spearman_rho": rho,
					"pearson_r":    r,
					"non_linear":   true,
				},
				Fields: []string{fields[i], fields[j]},
			}
			out = append(out, domain.AdvancedPattern{
				DataPattern:  p,
				Algorithm:    s.Name(),
				Significance: Significance(math.Abs(rho), n),
				EffectSize:   math.Abs(rho),
				SampleSize:   n,
				AlgoParams:   p.Params,
			})
		}
	}
	return out
}

// polynomialStrategy fits each numeric field against its row index with
// polynomials of increasing degree and emits when a higher degree fits
// markedly well. Coefficients come from a naive normal-equations solve,
// which is numerically rough at degree 3 on wide-ranged indexes.
type polynomialStrategy struct {
	cfg config.AdvancedConfig
}

func (s *polynomialStrategy) Name() string { return "polynomial_fit" }

func (s *polynomialStrategy) Detect(ds domain.Dataset) []domain.AdvancedPattern {
	n := len(ds)
	var out []domain.AdvancedPattern
	for _, field := range ds.NumericFields() {
		col, _ := ds.NumericColumn(field)
		if len(col) < 10 {
			continue
		}
		x := make([]float64, len(col))
		for i := range x {
			// Map the index into [0,1] to keep the normal equations sane.
			x[i] = float64(i) / float64(len(col)-1)
		}
		bestDegree, bestR2 := 0, 0.0
		var bestCoeffs []float64
		for degree := 1; degree <= s.cfg.PolynomialMaxDegree; degree++ {
			coeffs, r2, ok := polyFit(x, col, degree)
			if !ok {
				continue
			}
			if r2 > bestR2 {
				bestDegree, bestR2, bestCoeffs = degree, r2, coeffs
			}
		}
		if bestDegree <= 1 || bestR2 <= s.cfg.PolynomialMinRSquared {
			continue
		}
		p := domain.DataPattern{
			Type:        domain.PatternTrend,
			Confidence:  bestR2,
			Description: fmt.Sprintf("%s follows a degree-%d polynomial trend (R²=%.2f)", field, bestDegree, bestR2),
			Params: map[string]interface{}{
				"degree":       bestDegree,
				"r_squared":    bestR2,
				"coefficients": bestCoeffs,
				"non_linear":   true,
			},
			Fields: []string{field},
		}
		out = append(out, domain.AdvancedPattern{
			DataPattern:  p,
			Algorithm:    s.Name(),
			Significance: Significance(bestR2, n),
			EffectSize:   bestR2,
			SampleSize:   n,
			AlgoParams:   p.Params,
		})
	}
	return out
}

// polyFit solves the (degree+1)-dimensional normal equations by Gaussian
// elimination and returns coefficients lowest-order first with the fit R².
func polyFit(x, y []float64, degree int) ([]float64, float64, bool) {
	m := degree + 1
	if len(x) < m || len(x) != len(y) {
		return nil, 0, false
	}
	// Build X^T X and X^T y without materializing the design matrix.
	a := make([][]float64, m)
	b := make([]float64, m)
	for i := range a {
		a[i] = make([]float64, m)
	}
	for k := range x {
		powers := make([]float64, 2*m-1)
		powers[0] = 1
		for p := 1; p < len(powers); p++ {
			powers[p] = powers[p-1] * x[k]
		}
		for i := 0; i < m; i++ {
			for j := 0; j < m; j++ {
				a[i][j] += powers[i+j]
			}
			b[i] += powers[i] * y[k]
		}
	}
	coeffs, ok := solveLinear(a, b)
	if !ok {
		return nil, 0, false
	}
	meanY := stats.Mean(y)
	var ssRes, ssTot float64
	for k := range x {
		pred := 0.0
		xp := 1.0
		for _, c := range coeffs {
			pred += c * xp
			xp *= x[k]
		}
		ssRes += (y[k] - pred) * (y[k] - pred)
		ssTot += (y[k] - meanY) * (y[k] - meanY)
	}
	if ssTot == 0 {
		return coeffs, 0, true
	}
	return coeffs, 1 - ssRes/ssTot, true
}

// solveLinear performs Gaussian elimination with partial pivoting.
func solveLinear(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		for row := col + 1; row < n; row++ {
			f := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= f * a[col][k]
			}
			b[row] -= f * b[col]
		}
	}
	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, true
}
