package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
}

func TestStdDev_Population(t *testing.T) {
	// Population stddev of {2,4,4,4,5,5,7,9} is exactly 2.
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.0, StdDev(values), 1e-12)
}

func TestSkewness_SymmetricSeries(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7}
	assert.InDelta(t, 0.0, Skewness(values), 1e-12)
}

func TestSkewness_ZeroVariance(t *testing.T) {
	assert.Equal(t, 0.0, Skewness([]float64{3, 3, 3}))
	assert.Equal(t, 0.0, Kurtosis([]float64{3, 3, 3}))
}

func TestQuartiles_OrderAndMax(t *testing.T) {
	values := []float64{9, 1, 5, 3, 7}
	q := Quartiles(values)
	assert.LessOrEqual(t, q[0], q[1])
	assert.LessOrEqual(t, q[1], q[2])
	assert.Equal(t, 9.0, q[3])
}

func TestHistogramEntropy_Bounds(t *testing.T) {
	assert.Equal(t, 0.0, HistogramEntropy([]float64{5, 5, 5, 5}, 10), "constant series has zero entropy")

	// An even spread across all bins approaches 1.
	var spread []float64
	for i := 0; i < 100; i++ {
		spread = append(spread, float64(i))
	}
	e := HistogramEntropy(spread, 10)
	assert.Greater(t, e, 0.99)
	assert.LessOrEqual(t, e, 1.0)
}

func TestPearson_PerfectLinear(t *testing.T) {
	x := make([]float64, 30)
	y := make([]float64, 30)
	for i := range x {
		x[i] = float64(i)
		y[i] = 2 * float64(i)
	}
	assert.InDelta(t, 1.0, Pearson(x, y), 1e-12)
	assert.InDelta(t, -1.0, Pearson(x, negate(y)), 1e-12)
}

func TestPearson_ZeroVariance(t *testing.T) {
	x := []float64{1, 2, 3}
	flat := []float64{5, 5, 5}
	assert.Equal(t, 0.0, Pearson(x, flat))
}

func TestSpearman_MonotoneNonLinear(t *testing.T) {
	// y = exp(x) is monotone, so rank correlation is exactly 1 while the
	// linear correlation is not.
	x := make([]float64, 20)
	y := make([]float64, 20)
	for i := range x {
		x[i] = float64(i)
		y[i] = math.Exp(float64(i) / 3)
	}
	assert.InDelta(t, 1.0, Spearman(x, y), 1e-12)
	assert.Less(t, Pearson(x, y), 1.0)
}

func TestAutocorrelation_PeriodicSeries(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = math.Sin(2 * math.Pi * float64(i) / 10)
	}
	assert.Greater(t, Autocorrelation(values, 10), 0.9, "full-period lag correlates strongly")
	assert.Less(t, Autocorrelation(values, 5), -0.9, "half-period lag anti-correlates")
}

func TestLinearRegression_ExactFit(t *testing.T) {
	x := make([]float64, 50)
	y := make([]float64, 50)
	for i := range x {
		x[i] = float64(i)
		y[i] = 3*float64(i) + 5
	}
	reg, ok := LinearRegression(x, y)
	require.True(t, ok)
	assert.InDelta(t, 3.0, reg.Slope, 1e-9)
	assert.InDelta(t, 5.0, reg.Intercept, 1e-9)
	assert.InDelta(t, 1.0, reg.RSquared, 1e-9)
}

func TestLinearRegression_Degenerate(t *testing.T) {
	_, ok := LinearRegression([]float64{1, 1, 1}, []float64{1, 2, 3})
	assert.False(t, ok, "zero x-variance cannot be fit")

	_, ok = LinearRegression([]float64{1}, []float64{1})
	assert.False(t, ok, "single point cannot be fit")
}

func negate(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = -v
	}
	return out
}
