package optimizer

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/scoutlab/xi-optimizer/internal/scout"
)

var (
	// errInfeasible means no complete lineup satisfies the slot and
	// budget constraints. Treated as an empty result by the caller.
	errInfeasible = errors.New("no feasible assignment within constraints")
	// errSolveTimeout means the branch and bound ran out of time. The
	// caller falls back to the unconstrained solve so the answer stays
	// deterministic instead of depending on how far the search got.
	errSolveTimeout = errors.New("solve deadline exceeded")
)

// defaultSolveBudget bounds the branch and bound so interactive
// requests never hang on a pathological pool.
const defaultSolveBudget = 3 * time.Second

const budgetEpsilon = 1e-9

type budgetCandidate struct {
	playerIdx int
	score     float64
	value     float64
}

type budgetSearch struct {
	slotOrder  []int // indices into slots, fewest candidates first
	candidates [][]budgetCandidate
	suffixBest []float64 // upper bound on score obtainable from slot k onward
	budget     float64
	enforce    bool
	deadline   time.Time

	used      map[int]bool
	choice    []int
	bestScore float64
	bestFound bool
	best      []int
	nodes     int
}

// solveBudget solves the 0/1 integer program exactly: one player per
// slot, each player at most once, total market value within budget,
// maximizing total slot-specific score. Depth-first branch and bound
// with a score upper bound; candidate order is fixed so identical
// input yields identical output.
func solveBudget(ctx context.Context, slots []string, pool []scout.Player, slotScores map[string][]ScoredPlayer, budgetMil float64) ([]SlotAssignment, error) {
	deadline := time.Now().Add(defaultSolveBudget)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	// The budget constraint is vacuous when the whole pool lacks
	// market values.
	enforce := false
	for _, p := range pool {
		if p.MarketValueMil != nil {
			enforce = true
			break
		}
	}

	candidates := make([][]budgetCandidate, len(slots))
	for j, slot := range slots {
		scored := slotScores[slot]
		for i, p := range pool {
			if !IsEligible(slot, p.Pos) {
				continue
			}
			candidates[j] = append(candidates[j], budgetCandidate{
				playerIdx: i,
				score:     scored[i].SlotScore,
				value:     scout.FloatVal(p.MarketValueMil),
			})
		}
		if len(candidates[j]) == 0 {
			return nil, errInfeasible
		}
		// Best score first; index order breaks ties.
		sort.SliceStable(candidates[j], func(a, b int) bool {
			return candidates[j][a].score > candidates[j][b].score
		})
	}

	// Fill the hardest slots first so infeasible branches die early.
	slotOrder := make([]int, len(slots))
	for j := range slotOrder {
		slotOrder[j] = j
	}
	sort.SliceStable(slotOrder, func(a, b int) bool {
		return len(candidates[slotOrder[a]]) < len(candidates[slotOrder[b]])
	})

	suffixBest := make([]float64, len(slots)+1)
	for k := len(slots) - 1; k >= 0; k-- {
		suffixBest[k] = suffixBest[k+1] + candidates[slotOrder[k]][0].score
	}

	search := &budgetSearch{
		slotOrder:  slotOrder,
		candidates: candidates,
		suffixBest: suffixBest,
		budget:     budgetMil,
		enforce:    enforce,
		deadline:   deadline,
		used:       make(map[int]bool, len(slots)),
		choice:     make([]int, len(slots)),
	}

	if err := search.run(0, 0, 0); err != nil {
		return nil, err
	}
	if !search.bestFound {
		return nil, errInfeasible
	}

	chosen := make([]SlotAssignment, 0, len(slots))
	for j, slot := range slots {
		chosen = append(chosen, SlotAssignment{
			Slot:   slot,
			Player: slotScores[slot][search.best[j]],
		})
	}
	return chosen, nil
}

func (s *budgetSearch) run(depth int, score, spent float64) error {
	s.nodes++
	if s.nodes%1024 == 0 && time.Now().After(s.deadline) {
		return errSolveTimeout
	}

	if depth == len(s.slotOrder) {
		if !s.bestFound || score > s.bestScore {
			s.bestScore = score
			s.bestFound = true
			if s.best == nil {
				s.best = make([]int, len(s.choice))
			}
			copy(s.best, s.choice)
		}
		return nil
	}

	// Bound: even the best remaining candidates cannot beat the
	// incumbent.
	if s.bestFound && score+s.suffixBest[depth] <= s.bestScore {
		return nil
	}

	j := s.slotOrder[depth]
	for _, cand := range s.candidates[j] {
		if s.used[cand.playerIdx] {
			continue
		}
		if s.enforce && spent+cand.value > s.budget+budgetEpsilon {
			continue
		}
		s.used[cand.playerIdx] = true
		s.choice[j] = cand.playerIdx
		err := s.run(depth+1, score+cand.score, spent+cand.value)
		s.used[cand.playerIdx] = false
		if err != nil {
			return err
		}
	}
	return nil
}
