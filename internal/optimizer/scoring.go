package optimizer

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/scoutlab/xi-optimizer/internal/scout"
)

// Weights configures the weighted sum of normalized metrics. Only the
// four recognized keys matter; anything else callers send is ignored.
type Weights map[string]float64

const (
	MetricMinutes = "minutes"
	MetricGoals   = "goals"
	MetricAssists = "assists"
	MetricXG      = "xG"
)

var metricOrder = []string{MetricMinutes, MetricGoals, MetricAssists, MetricXG}

// DefaultWeights is the balanced weighting applied for keys the caller
// leaves out.
var DefaultWeights = Weights{
	MetricMinutes: 0.2,
	MetricGoals:   0.4,
	MetricAssists: 0.2,
	MetricXG:      0.2,
}

func (w Weights) get(metric string) float64 {
	if w != nil {
		if v, ok := w[metric]; ok {
			return v
		}
	}
	return DefaultWeights[metric]
}

// ScoredPlayer is a pool row with its ephemeral fitness score for one
// scoring context. Scores are recomputed per optimization pass and
// never persisted.
type ScoredPlayer struct {
	scout.Player
	Score     float64 `json:"score"`
	SlotScore float64 `json:"score_slot,omitempty"`
}

func metricValue(p scout.Player, metric string) *float64 {
	switch metric {
	case MetricMinutes:
		return p.Minutes
	case MetricGoals:
		return p.Goals
	case MetricAssists:
		return p.Assists
	case MetricXG:
		return p.XG
	}
	return nil
}

// zScores normalizes one metric across the pool. Mean and stddev are
// computed over non-missing values only; missing rows get 0. A zero,
// NaN, or undefined stddev (constant metric, single row, empty pool)
// zeroes the whole column instead of propagating NaN.
func zScores(pool []scout.Player, metric string) []float64 {
	out := make([]float64, len(pool))

	present := make([]float64, 0, len(pool))
	for _, p := range pool {
		if v := metricValue(p, metric); v != nil {
			present = append(present, *v)
		}
	}
	if len(present) < 2 {
		return out
	}

	mean := stat.Mean(present, nil)
	sd := stat.StdDev(present, nil)
	if sd == 0 || math.IsNaN(sd) {
		return out
	}

	for i, p := range pool {
		if v := metricValue(p, metric); v != nil {
			out[i] = (*v - mean) / sd
		}
	}
	return out
}

// ScorePool computes a fitness score for every pool row: the weighted
// sum of z-score normalized minutes, goals, assists and xG. The input
// pool is not mutated.
func ScorePool(pool []scout.Player, weights Weights) []ScoredPlayer {
	scored := make([]ScoredPlayer, len(pool))
	for i, p := range pool {
		scored[i] = ScoredPlayer{Player: p}
	}

	for _, metric := range metricOrder {
		w := weights.get(metric)
		if w == 0 {
			continue
		}
		z := zScores(pool, metric)
		for i := range scored {
			scored[i].Score += w * z[i]
		}
	}
	return scored
}

// SlotWeights returns the preset weighting for a slot: attacking slots
// favor goals and xG, midfield favors assists, defensive slots favor
// minutes, and the goalkeeper is minutes only. Unknown slots get the
// balanced fallback.
func SlotWeights(slot string) Weights {
	switch strings.ToUpper(slot) {
	case "ST", "LS", "RS", "CF", "LW", "RW", "LAM", "RAM":
		return Weights{MetricGoals: 0.5, MetricXG: 0.3, MetricAssists: 0.2, MetricMinutes: 0.0}
	case "CAM", "CM", "LCM", "RCM", "CDM", "LDM", "RDM", "LM", "RM":
		return Weights{MetricAssists: 0.4, MetricMinutes: 0.3, MetricXG: 0.2, MetricGoals: 0.1}
	case "LB", "RB", "LCB", "RCB":
		return Weights{MetricMinutes: 0.6, MetricAssists: 0.2, MetricXG: 0.1, MetricGoals: 0.1}
	case "GK":
		return Weights{MetricMinutes: 1.0, MetricGoals: 0.0, MetricAssists: 0.0, MetricXG: 0.0}
	}
	return Weights{MetricMinutes: 0.4, MetricGoals: 0.2, MetricAssists: 0.2, MetricXG: 0.2}
}

// ScoreForSlot re-scores the pool with the slot's preset weights and
// records the result as the slot-specific score.
func ScoreForSlot(pool []scout.Player, slot string) []ScoredPlayer {
	scored := ScorePool(pool, SlotWeights(slot))
	for i := range scored {
		scored[i].SlotScore = scored[i].Score
	}
	return scored
}
