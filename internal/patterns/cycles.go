package patterns

import (
	"fmt"
	"math"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/domain"
	"github.com/datascope/datascope/internal/stats"
)

// multiCycleStrategy scans autocorrelation over a range of candidate periods
// and emits a cyclical pattern when at least two strong cycles coexist.
type multiCycleStrategy struct {
	cfg config.AdvancedConfig
}

func (s *multiCycleStrategy) Name() string { return "multi_cycle" }

// cycle is one detected period with its autocorrelation strength.
type cycle struct {
	Period   int     `json:"period"`
	Strength float64 `json:"strength"`
}

func (s *multiCycleStrategy) Detect(ds domain.Dataset) []domain.AdvancedPattern {
	n := len(ds)
	if n < 20 {
		return nil
	}
	var out []domain.AdvancedPattern
	for _, field := range ds.NumericFields() {
		col, _ := ds.NumericColumn(field)
		var cycles []cycle
		for period := 5; period <= n/4; period++ {
			strength := stats.Autocorrelation(col, period)
			if strength > s.cfg.CycleMinStrength {
				cycles = append(cycles, cycle{Period: period, Strength: strength})
			}
		}
		strong := 0
		maxStrength := 0.0
		for _, c := range cycles {
			if c.Strength > s.cfg.CycleEmitStrength {
				strong++
			}
			maxStrength = math.Max(maxStrength, c.Strength)
		}
		if strong < 2 {
			continue
		}
		interaction := harmonicInteraction(cycles)
		p := domain.DataPattern{
			Type:        domain.PatternCyclical,
			Confidence:  maxStrength,
			Description: fmt.Sprintf("%s carries %d interacting cycles", field, strong),
			Params: map[string]interface{}{
				"cycles":            cycles,
				"strong_cycles":     strong,
				"interaction_score": interaction,
			},
			Fields: []string{field},
		}
		out = append(out, domain.AdvancedPattern{
			DataPattern:  p,
			Algorithm:    s.Name(),
			Significance: Significance(maxStrength, n),
			EffectSize:   interaction,
			SampleSize:   n,
			AlgoParams:   p.Params,
		})
	}
	return out
}

// harmonicInteraction scores how close cycle period ratios sit to integer
// harmonics: 1.0 means every pair is an exact harmonic.
func harmonicInteraction(cycles []cycle) float64 {
	if len(cycles) < 2 {
		return 0
	}
	var total float64
	var pairs int
	for i := 0; i < len(cycles); i++ {
		for j := i + 1; j < len(cycles); j++ {
			ratio := float64(cycles[j].Period) / float64(cycles[i].Period)
			nearest := math.Round(ratio)
			if nearest == 0 {
				continue
			}
			total += math.Max(0, 1-math.Abs(ratio-nearest)/nearest)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}
