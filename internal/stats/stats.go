// Package stats provides the closed-form statistics used by the pattern
// detectors and the fingerprint generator. All standard deviations are
// population stddev (divide by n, not n-1).
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance, or 0 for an empty slice.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Skewness returns the third standardized moment, 0 when variance is zero.
func Skewness(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := Mean(values)
	sd := StdDev(values)
	if sd == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		z := (v - mean) / sd
		sum += z * z * z
	}
	return sum / float64(n)
}

// Kurtosis returns the excess kurtosis (fourth standardized moment minus 3),
// 0 when variance is zero.
func Kurtosis(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := Mean(values)
	sd := StdDev(values)
	if sd == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		z := (v - mean) / sd
		sum += z * z * z * z
	}
	return sum/float64(n) - 3
}

// Percentile returns the p-th percentile (0-100) by linear interpolation
// over the sorted values. Returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Quartiles returns [Q1, Q2, Q3, Q4] where Q4 is the maximum.
func Quartiles(values []float64) [4]float64 {
	return [4]float64{
		Percentile(values, 25),
		Percentile(values, 50),
		Percentile(values, 75),
		Percentile(values, 100),
	}
}

// HistogramEntropy returns the Shannon entropy of a fixed-bin histogram,
// normalized by log2(bins) into [0, 1]. A constant series has entropy 0.
func HistogramEntropy(values []float64, bins int) float64 {
	if len(values) == 0 || bins < 2 {
		return 0
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return 0
	}
	counts := make([]int, bins)
	width := (max - min) / float64(bins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	var entropy float64
	n := float64(len(values))
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}
	return entropy / math.Log2(float64(bins))
}

// Pearson returns the Pearson correlation coefficient, 0 when either series
// has zero variance or the lengths differ.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}
	meanX, meanY := Mean(x), Mean(y)
	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// Spearman returns the rank correlation coefficient (Pearson over average
// ranks), 0 on degenerate input.
func Spearman(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	return Pearson(ranks(x), ranks(y))
}

// ranks assigns average ranks so ties do not bias the rank correlation.
func ranks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	r := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			r[idx[k]] = avg
		}
		i = j + 1
	}
	return r
}

// Autocorrelation returns the lag-k autocorrelation of the series, 0 when
// the lag leaves fewer than two overlapping points or variance is zero.
func Autocorrelation(values []float64, lag int) float64 {
	n := len(values)
	if lag <= 0 || lag >= n-1 {
		return 0
	}
	mean := Mean(values)
	var num, den float64
	for i := 0; i < n; i++ {
		den += (values[i] - mean) * (values[i] - mean)
	}
	if den == 0 {
		return 0
	}
	for i := 0; i < n-lag; i++ {
		num += (values[i] - mean) * (values[i+lag] - mean)
	}
	return num / den
}

// Regression holds a simple least-squares linear fit of y against x.
type Regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// LinearRegression fits y = slope*x + intercept. The bool is false for
// degenerate input (fewer than two points or zero x-variance).
func LinearRegression(x, y []float64) (Regression, bool) {
	n := len(x)
	if n < 2 || n != len(y) {
		return Regression{}, false
	}
	meanX, meanY := Mean(x), Mean(y)
	var cov, varX float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		cov += dx * (y[i] - meanY)
		varX += dx * dx
	}
	if varX == 0 {
		return Regression{}, false
	}
	slope := cov / varX
	intercept := meanY - slope*meanX

	varY := Variance(y) * float64(n)
	if varY == 0 {
		// Perfectly flat series: the fit is exact but carries no signal.
		return Regression{Slope: slope, Intercept: intercept, RSquared: 0}, true
	}
	var ssRes float64
	for i := 0; i < n; i++ {
		r := y[i] - (slope*x[i] + intercept)
		ssRes += r * r
	}
	return Regression{Slope: slope, Intercept: intercept, RSquared: 1 - ssRes/varY}, true
}

// IndexRegression fits the series against its row index 0..n-1.
func IndexRegression(values []float64) (Regression, bool) {
	x := make([]float64, len(values))
	for i := range x {
		x[i] = float64(i)
	}
	return LinearRegression(x, values)
}
