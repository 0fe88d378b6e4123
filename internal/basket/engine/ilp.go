package engine

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/qhato/basket/internal/basket/domain"
	apperrors "github.com/qhato/basket/pkg/errors"
)

// ilpProblem is a layer's candidate-selection problem in the shape
// §4.4 and §4.7 describe: one binary variable per candidate, one
// coverage row per item, one row per promotion budget constraint.
// Candidates are held in a fixed, deterministic order (sorted by
// promotion key, then sorted member item keys) — that order is both the
// ILP's variable order and its tie-breaking order.
type ilpProblem struct {
	candidates []domain.Candidate
	savings    []int64 // objective coefficient per candidate (maximize)

	itemRows      map[string][]int // item key -> candidate indices covering it
	appBudgetRows map[string]budgetRow
	monBudgetRows map[string]budgetRow
}

type budgetRow struct {
	candidateIdx []int
	weight       []int64 // per-candidate cost in this row, aligned with candidateIdx
	cap          int64
}

// buildILPProblem sorts candidates into canonical order and derives the
// coverage/budget constraint rows from them. Budget row caps come from
// tracker's per-promotion remaining budget, not each promotion's
// original configured Budget, so that spend already committed in an
// earlier layer of the same process() call is reflected here too — a
// promotion key shared across layers must not be allowed to exceed its
// budget in aggregate. tracker may be nil (the export path has no live
// process() call to track), in which case a promotion's own configured
// Budget is used as-is.
func buildILPProblem(candidates []domain.Candidate, items []domain.Item, promotions []domain.Promotion, tracker *domain.BudgetTracker) *ilpProblem {
	sorted := append([]domain.Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PromotionKey != sorted[j].PromotionKey {
			return sorted[i].PromotionKey < sorted[j].PromotionKey
		}
		return lessMemberTuple(sorted[i].MemberItemKeys, sorted[j].MemberItemKeys)
	})

	p := &ilpProblem{
		candidates: sorted,
		savings:    make([]int64, len(sorted)),
		itemRows:   make(map[string][]int),
	}

	itemByKey := itemIndex(items)
	for idx, c := range sorted {
		savings := c.OriginalTotal(itemByKey).Amount - c.Total().Amount
		p.savings[idx] = savings
		for _, key := range c.MemberItemKeys {
			p.itemRows[key] = append(p.itemRows[key], idx)
		}
	}

	appRows := make(map[string]budgetRow)
	monRows := make(map[string]budgetRow)
	for _, promo := range promotions {
		state := budgetStateFor(promo, tracker)
		if state.RemainingApplications != nil {
			appRows[promo.Key] = budgetRow{cap: int64(*state.RemainingApplications)}
		}
		if state.RemainingMonetary != nil {
			monRows[promo.Key] = budgetRow{cap: state.RemainingMonetary.Amount}
		}
	}
	for idx, c := range sorted {
		if row, ok := appRows[c.PromotionKey]; ok {
			row.candidateIdx = append(row.candidateIdx, idx)
			row.weight = append(row.weight, int64(c.RedemptionCost))
			appRows[c.PromotionKey] = row
		}
		if row, ok := monRows[c.PromotionKey]; ok {
			row.candidateIdx = append(row.candidateIdx, idx)
			row.weight = append(row.weight, c.MonetaryCost.Amount)
			monRows[c.PromotionKey] = row
		}
	}
	p.appBudgetRows = appRows
	p.monBudgetRows = monRows
	return p
}

// budgetStateFor resolves the remaining-budget view a promotion's
// budget rows should be capped at: the tracker's live remaining state
// when one is given, else the promotion's own configured Budget.
func budgetStateFor(promo domain.Promotion, tracker *domain.BudgetTracker) domain.BudgetState {
	if tracker != nil {
		return tracker.Remaining(promo.Key)
	}
	state := domain.BudgetState{}
	if promo.Budget.Applications != nil {
		v := *promo.Budget.Applications
		state.RemainingApplications = &v
	}
	if promo.Budget.Monetary != nil {
		m := *promo.Budget.Monetary
		state.RemainingMonetary = &m
	}
	return state
}

func itemIndex(items []domain.Item) map[string]domain.Item {
	idx := make(map[string]domain.Item, len(items))
	for _, it := range items {
		idx[it.Key] = it
	}
	return idx
}

// lessMemberTuple compares two candidates' member-key lists
// lexicographically, element by element, then by length.
func lessMemberTuple(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// relax solves the LP relaxation of the problem with the given
// variables fixed to 0 or 1, returning the maximal achievable savings
// bound and the (possibly fractional) variable assignment. A fixed map
// entry forces that variable's value via an equality row; unfixed
// variables are bounded in [0,1] by an explicit x_i <= 1 box row added
// for every variable, on top of the coverage/budget rows.
func (p *ilpProblem) relax(fixed map[int]int) (bound float64, x []float64, feasible bool, err error) {
	n := len(p.candidates)
	if n == 0 {
		return 0, nil, true, nil
	}

	var gRows [][]float64
	var h []float64

	for _, idxs := range p.itemRows {
		row := make([]float64, n)
		for _, idx := range idxs {
			row[idx] = 1
		}
		gRows = append(gRows, row)
		h = append(h, 1)
	}
	for _, row := range p.appBudgetRows {
		g := make([]float64, n)
		for i, idx := range row.candidateIdx {
			g[idx] = float64(row.weight[i])
		}
		gRows = append(gRows, g)
		h = append(h, float64(row.cap))
	}
	for _, row := range p.monBudgetRows {
		g := make([]float64, n)
		for i, idx := range row.candidateIdx {
			g[idx] = float64(row.weight[i])
		}
		gRows = append(gRows, g)
		h = append(h, float64(row.cap))
	}
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		row[i] = 1
		gRows = append(gRows, row)
		h = append(h, 1)
	}

	var aRows [][]float64
	var b []float64
	for idx, val := range fixed {
		row := make([]float64, n)
		row[idx] = 1
		aRows = append(aRows, row)
		b = append(b, float64(val))
	}

	c := make([]float64, n)
	for i, s := range p.savings {
		c[i] = -float64(s) // minimize -savings == maximize savings
	}

	G := mat.NewDense(len(gRows), n, flatten(gRows))
	var A *mat.Dense
	if len(aRows) > 0 {
		A = mat.NewDense(len(aRows), n, flatten(aRows))
	}

	newA, newB, newC, offset, convErr := lp.Convert(c, G, h, A, b)
	if convErr != nil {
		return 0, nil, false, apperrors.SolverError("failed to convert layer LP to standard form", convErr)
	}

	optF, optX, simplexErr := lp.Simplex(newC, newA, newB, 0, nil)
	if simplexErr != nil {
		return 0, nil, false, nil // infeasible node, not a hard error
	}

	savingsBound := -(optF + offset)
	return savingsBound, optX[:n], true, nil
}

func flatten(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}
