package patterns

import (
	"fmt"
	"math"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
	"github.com/datascope/datascope/internal/stats"
)

// changePointStrategy runs a CUSUM scan over each mean-centered numeric
// series and records where the cumulative sum breaches the sigma threshold.
type changePointStrategy struct {
	cfg config.AdvancedConfig
}

func (s *changePointStrategy) Name() string { return "cusum" }

// changePoint is a single detected mean shift.
type changePoint struct {
	Position     int     `json:"position"`
	Magnitude    float64 `json:"magnitude"`
	Direction    string  `json:"direction"`
	Significance float64 `json:"significance"`
}

func (s *changePointStrategy) Detect(ds domain.Dataset) []domain.AdvancedPattern {
	n := len(ds)
	var out []domain.AdvancedPattern
	for _, field := range ds.NumericFields() {
		col, _ := ds.NumericColumn(field)
		if len(col) < 20 {
			continue
		}
		points := cusumChangePoints(col, s.cfg.CUSUMSigmaThreshold, s.cfg.CUSUMMinSignificance)
		if len(points) == 0 {
			continue
		}
		best := 0.0
		for _, cp := range points {
			best = math.Max(best, cp.Significance)
		}
		if best <= s.cfg.CUSUMEmitSignificance {
			continue
		}
		p := domain.DataPattern{
			Type:        domain.PatternChangePoint,
			Confidence:  best,
			Description: fmt.Sprintf("%d mean shifts in %s (first at index %d)", len(points), field, points[0].Position),
			Params: map[string]interface{}{
				"change_points": points,
			},
			Fields: []string{field},
		}
		out = append(out, domain.AdvancedPattern{
			DataPattern:  p,
			Algorithm:    s.Name(),
			Significance: Significance(best, n),
			EffectSize:   best,
			SampleSize:   n,
			AlgoParams:   p.Params,
		})
	}
	return out
}

// cusumChangePoints walks the cumulative sum of the mean-centered series and
// marks each threshold breach, resetting the accumulator afterwards so
// successive shifts are caught independently.
func cusumChangePoints(values []float64, sigmaThreshold, minSignificance float64) []changePoint {
	mean := stats.Mean(values)
	sd := stats.StdDev(values)
	if sd == 0 {
		return nil
	}
	threshold := sigmaThreshold * sd
	var points []changePoint
	cusum := 0.0
	for i, v := range values {
		cusum += v - mean
		if math.Abs(cusum) <= threshold {
			continue
		}
		before := values[:i+1]
		after := values[i+1:]
		if len(after) == 0 {
			break
		}
		shift := stats.Mean(after) - stats.Mean(before)
		direction := "upward"
		if shift < 0 {
			direction = "downward"
		}
		sig := math.Min(1, math.Abs(shift)/(2*sd))
		if sig > minSignificance {
			points = append(points, changePoint{
				Position:     i,
				Magnitude:    math.Abs(shift),
				Direction:    direction,
				Significance: sig,
			})
		}
		cusum = 0
	}
	return points
}
