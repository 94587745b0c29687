package patterns

import (
	"fmt"
	"math"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
	"github.com/datascope/datascope/internal/stats"
)

// frequencyStrategy approximates spectral analysis by scanning for local
// extrema: regular peak spacing stands in for a dominant frequency, and a
// histogram of spacings stands in for spectral entropy.
type frequencyStrategy struct {
	cfg config.AdvancedConfig
}

func (s *frequencyStrategy) Name() string { return "peak_analysis" }

func (s *frequencyStrategy) Detect(ds domain.Dataset) []domain.AdvancedPattern {
	n := len(ds)
	var out []domain.AdvancedPattern
	for _, field := range ds.NumericFields() {
		col, _ := ds.NumericColumn(field)
		if len(col) < 20 {
			continue
		}
		peaks := localMaxima(col)
		valleys := localMinima(col)
		if len(peaks) < 2 {
			continue
		}
		spacings := gaps(peaks)
		periodicity := spacingRegularity(spacings)
		spectralEntropy := stats.HistogramEntropy(spacings, 10)

		if periodicity > s.cfg.PeriodicityMinScore {
			period := stats.Mean(spacings)
			p := domain.DataPattern{
				Type:        domain.PatternSeasonal,
				Confidence:  periodicity,
				Description: fmt.Sprintf("%s peaks every %.1f records (regularity %.2f)", field, period, periodicity),
				Params: map[string]interface{}{
					"mean_period":      period,
					"peak_count":       len(peaks),
					"valley_count":     len(valleys),
					"spectral_entropy": spectralEntropy,
				},
				Fields: []string{field},
			}
			out = append(out, domain.AdvancedPattern{
				DataPattern:  p,
				Algorithm:    s.Name(),
				Significance: Significance(periodicity, n),
				EffectSize:   periodicity,
				SampleSize:   n,
				AlgoParams:   p.Params,
			})
		}

		// Multi-peak: many pronounced peaks with low-spread prominence.
		if len(peaks) >= s.cfg.MultiPeakMinPeaks {
			sig := peakSignificance(col, peaks)
			if sig > s.cfg.MultiPeakMinSig {
				p := domain.DataPattern{
					Type:        domain.PatternMultiPeak,
					Confidence:  sig,
					Description: fmt.Sprintf("%s has %d pronounced peaks", field, len(peaks)),
					Params: map[string]interface{}{
						"peak_positions":   peaks,
						"peak_count":       len(peaks),
						"spectral_entropy": spectralEntropy,
					},
					Fields: []string{field},
				}
				out = append(out, domain.AdvancedPattern{
					DataPattern:  p,
					Algorithm:    s.Name(),
					Significance: Significance(sig, n),
					EffectSize:   float64(len(peaks)) / float64(len(col)) * 10,
					SampleSize:   n,
					AlgoParams:   p.Params,
				})
			}
		}
	}
	return out
}

func localMaxima(values []float64) []int {
	var peaks []int
	for i := 1; i < len(values)-1; i++ {
		if values[i] > values[i-1] && values[i] > values[i+1] {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

func localMinima(values []float64) []int {
	var valleys []int
	for i := 1; i < len(values)-1; i++ {
		if values[i] < values[i-1] && values[i] < values[i+1] {
			valleys = append(valleys, i)
		}
	}
	return valleys
}

func gaps(positions []int) []float64 {
	if len(positions) < 2 {
		return nil
	}
	out := make([]float64, len(positions)-1)
	for i := 1; i < len(positions); i++ {
		out[i-1] = float64(positions[i] - positions[i-1])
	}
	return out
}

// spacingRegularity maps the coefficient of variation of peak spacings into
// [0, 1]: perfectly even spacing scores 1.
func spacingRegularity(spacings []float64) float64 {
	if len(spacings) == 0 {
		return 0
	}
	mean := stats.Mean(spacings)
	if mean == 0 {
		return 0
	}
	cv := stats.StdDev(spacings) / mean
	return math.Max(0, 1-cv)
}

// peakSignificance measures how far peaks stand above the series mean in
// stddev units, averaged and squashed into [0, 1].
func peakSignificance(values []float64, peaks []int) float64 {
	sd := stats.StdDev(values)
	if sd == 0 || len(peaks) == 0 {
		return 0
	}
	mean := stats.Mean(values)
	var sum float64
	for _, p := range peaks {
		sum += (values[p] - mean) / sd
	}
	avg := sum / float64(len(peaks))
	return math.Min(1, math.Max(0, avg/2))
}
