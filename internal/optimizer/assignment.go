package optimizer

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/scoutlab/xi-optimizer/internal/scout"
)

// ineligibleCost is the sentinel forbidding a (player, slot) pair in
// the cost matrix. Any matched pair carrying it is discarded after the
// solve.
const ineligibleCost = 1e6

// SlotAssignment pairs a formation slot with the player chosen for it.
type SlotAssignment struct {
	Slot   string       `json:"slot"`
	Player ScoredPlayer `json:"player"`
}

// Optimize picks at most one player per formation slot from the pool,
// maximizing total slot-specific score. With a budget it solves the
// 0/1 integer program (every slot filled, player used at most once,
// total market value within budget); without one it solves the
// bipartite assignment directly and may return a partial lineup when
// eligible candidates run out. Data-quality problems degrade silently;
// only an unknown formation is an error.
func Optimize(ctx context.Context, formation string, pool []scout.Player, budgetMil *float64) ([]SlotAssignment, error) {
	slots, err := FormationSlots(formation)
	if err != nil {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{
		"formation": formation,
		"pool_size": len(pool),
	})

	if len(pool) == 0 {
		log.Debug("Empty pool, returning empty assignment")
		return []SlotAssignment{}, nil
	}

	// Slot-specific scores are computed once per slot and shared by
	// both solve modes.
	slotScores := make(map[string][]ScoredPlayer, len(slots))
	for _, slot := range slots {
		if _, ok := slotScores[slot]; !ok {
			slotScores[slot] = ScoreForSlot(pool, slot)
		}
	}

	if budgetMil != nil && *budgetMil >= 0 {
		chosen, err := solveBudget(ctx, slots, pool, slotScores, *budgetMil)
		switch {
		case err == nil:
			log.WithField("filled", len(chosen)).Info("Budget optimization complete")
			return chosen, nil
		case errors.Is(err, errInfeasible):
			// No lineup satisfies the budget; that is a data outcome,
			// not a failure.
			log.WithField("budget_mil", *budgetMil).Info("Budget optimization infeasible, returning empty assignment")
			return []SlotAssignment{}, nil
		default:
			log.WithError(err).Warn("Budget optimization failed, falling back to unconstrained assignment")
		}
	}

	chosen := solveUnconstrained(slots, pool, slotScores)
	log.WithField("filled", len(chosen)).Info("Assignment complete")
	return chosen, nil
}

// solveUnconstrained builds the players×slots cost matrix (negated
// slot score, sentinel for ineligible pairs), pads it square, and runs
// the assignment solver. Sentinel matches and duplicate slots are
// dropped afterwards, so an under-supplied pool yields a partial
// lineup rather than an error.
func solveUnconstrained(slots []string, pool []scout.Player, slotScores map[string][]ScoredPlayer) []SlotAssignment {
	n := len(pool)
	m := len(slots)
	size := n
	if m > size {
		size = m
	}

	cost := make([][]float64, size)
	for i := range cost {
		cost[i] = make([]float64, size)
		for j := range cost[i] {
			cost[i][j] = ineligibleCost
		}
	}
	for j, slot := range slots {
		scored := slotScores[slot]
		for i, p := range pool {
			if IsEligible(slot, p.Pos) {
				cost[i][j] = -scored[i].SlotScore
			}
		}
	}

	rowToCol := minCostAssignment(cost)

	bySlot := make(map[string]ScoredPlayer, m)
	for i := 0; i < n; i++ {
		j := rowToCol[i]
		if j >= m || cost[i][j] >= ineligibleCost {
			continue
		}
		slot := slots[j]
		if _, dup := bySlot[slot]; dup {
			continue
		}
		bySlot[slot] = slotScores[slot][i]
	}

	chosen := make([]SlotAssignment, 0, len(bySlot))
	for _, slot := range slots {
		if p, ok := bySlot[slot]; ok {
			chosen = append(chosen, SlotAssignment{Slot: slot, Player: p})
		}
	}
	return chosen
}
