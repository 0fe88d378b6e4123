package engine

import (
	"math"
	"sort"
)

// bnbState tracks the incumbent across a branch-and-bound search: the
// best savings found so far and the canonical (sorted, tie-broken)
// candidate index set that achieves it.
type bnbState struct {
	problem      *ilpProblem
	foundAny     bool
	bestSavings  int64
	bestSelected []int
}

// branchAndBound proves the optimal candidate selection for problem via
// LP-relaxation-bounded branch and bound; no heuristic shortcuts. The
// LP relaxation at each node both proves infeasibility (pruning dead
// branches) and supplies the bound used to prune branches that cannot
// beat the incumbent.
func branchAndBound(problem *ilpProblem) ([]int, error) {
	state := &bnbState{problem: problem}
	if err := state.explore(map[int]int{}); err != nil {
		return nil, err
	}
	return state.bestSelected, nil
}

func (s *bnbState) explore(fixed map[int]int) error {
	bound, x, feasible, err := s.problem.relax(fixed)
	if err != nil {
		return err
	}
	if !feasible {
		return nil
	}
	if s.foundAny && ceilWithTolerance(bound) < s.bestSavings {
		return nil
	}

	fracIdx := firstFractional(x, fixed)
	if fracIdx == -1 {
		selected := roundSolution(x, fixed)
		s.consider(sumSavings(s.problem, selected), selected)
		return nil
	}

	for _, val := range [2]int{0, 1} {
		child := make(map[int]int, len(fixed)+1)
		for k, v := range fixed {
			child[k] = v
		}
		child[fracIdx] = val
		if err := s.explore(child); err != nil {
			return err
		}
	}
	return nil
}

func (s *bnbState) consider(savings int64, selected []int) {
	sorted := append([]int(nil), selected...)
	sort.Ints(sorted)

	if !s.foundAny || savings > s.bestSavings {
		s.foundAny = true
		s.bestSavings = savings
		s.bestSelected = sorted
		return
	}
	if savings == s.bestSavings && isBetterTuple(sorted, s.bestSelected) {
		s.bestSelected = sorted
	}
}

// isBetterTuple implements the spec's tie-break: fewer selected
// candidates wins; otherwise the lexicographically smaller tuple of
// canonical (promotion_key, sorted member keys) indices wins.
func isBetterTuple(a, b []int) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func firstFractional(x []float64, fixed map[int]int) int {
	for i, v := range x {
		if _, ok := fixed[i]; ok {
			continue
		}
		if v > integralityTolerance && v < 1-integralityTolerance {
			return i
		}
	}
	return -1
}

func roundSolution(x []float64, fixed map[int]int) []int {
	var selected []int
	for i := range x {
		val := 0
		if fixedVal, ok := fixed[i]; ok {
			val = fixedVal
		} else if x[i] > 0.5 {
			val = 1
		}
		if val == 1 {
			selected = append(selected, i)
		}
	}
	return selected
}

func sumSavings(problem *ilpProblem, selected []int) int64 {
	var total int64
	for _, idx := range selected {
		total += problem.savings[idx]
	}
	return total
}

// ceilWithTolerance rounds a continuous LP bound up to the next integer
// savings value, first subtracting a small tolerance that absorbs
// simplex's floating-point slack (so 5.0-1e-9 gives 5, not 6).
func ceilWithTolerance(bound float64) int64 {
	return int64(math.Ceil(bound - 1e-6))
}
