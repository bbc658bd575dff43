package optimizer

import (
	"github.com/scoutlab/xi-optimizer/internal/scout"
)

// ComparisonRow is one metric of the side-by-side lineup summary.
type ComparisonRow struct {
	Metric string  `json:"metric"`
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	Delta  float64 `json:"delta"` // B - A
}

type lineupSummary struct {
	totalValue   float64
	meanAge      float64
	totalMinutes float64
	totalGoals   float64
	totalAssists float64
	totalXG      float64
}

func summarize(l scout.Lineup) lineupSummary {
	var s lineupSummary
	ageSum := 0.0
	ageN := 0
	for _, p := range l.Slots {
		if p == nil {
			continue
		}
		s.totalValue += scout.FloatVal(p.MarketValueMil)
		s.totalMinutes += scout.FloatVal(p.Minutes)
		s.totalGoals += scout.FloatVal(p.Goals)
		s.totalAssists += scout.FloatVal(p.Assists)
		s.totalXG += scout.FloatVal(p.XG)
		if p.Age != nil {
			ageSum += *p.Age
			ageN++
		}
	}
	if ageN > 0 {
		s.meanAge = ageSum / float64(ageN)
	}
	return s
}

// Compare aggregates two lineups into a metric × {A, B, B-A} table.
// Sums treat missing values as zero; mean age is taken over players
// with a known age. Pure, no failure modes.
func Compare(a, b scout.Lineup) []ComparisonRow {
	sa := summarize(a)
	sb := summarize(b)

	rows := []struct {
		metric string
		a, b   float64
	}{
		{"total_value_mil", sa.totalValue, sb.totalValue},
		{"mean_age", sa.meanAge, sb.meanAge},
		{"total_minutes", sa.totalMinutes, sb.totalMinutes},
		{"total_goals", sa.totalGoals, sb.totalGoals},
		{"total_assists", sa.totalAssists, sb.totalAssists},
		{"total_xg", sa.totalXG, sb.totalXG},
	}

	out := make([]ComparisonRow, len(rows))
	for i, r := range rows {
		out[i] = ComparisonRow{Metric: r.metric, A: r.a, B: r.b, Delta: r.b - r.a}
	}
	return out
}
