package engine

import (
	"sort"

	"github.com/qhato/basket/internal/basket/domain"
	"github.com/qhato/basket/pkg/logger"
)

const integralityTolerance = 1e-6

// Solve picks the cost-minimising, budget-respecting assignment of
// candidate applications to items for one layer. Candidates come from
// every promotion in the layer; layers whose only promotions are Direct
// take a specialised fast path (best single per-item discount,
// independently per item) whenever no promotion's budget could actually
// bind; every other layer goes through ILP branch-and-bound.
func Solve(layer domain.Layer, items []domain.Item, tracker *domain.BudgetTracker) ([]domain.Application, error) {
	var bundleSeq uint32
	var allCandidates []domain.Candidate
	for _, promo := range layer.Promotions {
		budgetState := tracker.Remaining(promo.Key)
		candidates, err := promo.Candidates(items, budgetState, &bundleSeq)
		if err != nil {
			return nil, err
		}
		allCandidates = append(allCandidates, candidates...)
	}
	if len(allCandidates) == 0 {
		return nil, nil
	}

	if isUnconstrainedDirectOnly(layer.Promotions) {
		return solveDirectFastPath(layer, allCandidates, tracker), nil
	}
	return solveILP(layer, items, allCandidates, tracker)
}

// isUnconstrainedDirectOnly reports whether every promotion in the
// layer is Direct and carries no budget that could bind — the only
// case where picking each item's best discount independently is
// provably optimal without joint optimisation.
func isUnconstrainedDirectOnly(promotions []domain.Promotion) bool {
	for _, p := range promotions {
		if p.Kind != domain.KindDirect {
			return false
		}
		if p.Budget.Applications != nil || p.Budget.Monetary != nil {
			return false
		}
	}
	return true
}

func solveDirectFastPath(layer domain.Layer, candidates []domain.Candidate, tracker *domain.BudgetTracker) []domain.Application {
	bestByItem := make(map[string]domain.Candidate)
	for _, c := range candidates {
		key := c.MemberItemKeys[0]
		current, ok := bestByItem[key]
		if !ok || isBetterSingleCandidate(c, current) {
			bestByItem[key] = c
		}
	}

	apps := make([]domain.Application, 0, len(bestByItem))
	for _, key := range sortedStringKeys(bestByItem) {
		c := bestByItem[key]
		tracker.Commit(c.PromotionKey, c.RedemptionCost, c.MonetaryCost)
		apps = append(apps, applicationFromCandidate(layer.Key, c))
	}
	return apps
}

// isBetterSingleCandidate compares two single-item candidates for the
// same item: lower final price wins; ties break on promotion key for
// determinism.
func isBetterSingleCandidate(a, b domain.Candidate) bool {
	aPrice := a.PerItemFinalPrice[a.MemberItemKeys[0]].Amount
	bPrice := b.PerItemFinalPrice[b.MemberItemKeys[0]].Amount
	if aPrice != bPrice {
		return aPrice < bPrice
	}
	return a.PromotionKey < b.PromotionKey
}

func solveILP(layer domain.Layer, items []domain.Item, candidates []domain.Candidate, tracker *domain.BudgetTracker) ([]domain.Application, error) {
	log := logger.Get().WithField("layer", layer.Key)
	problem := buildILPProblem(candidates, items, layer.Promotions, tracker)

	selected, err := branchAndBound(problem)
	if err != nil {
		return nil, err
	}

	apps := make([]domain.Application, 0, len(selected))
	for _, idx := range selected {
		c := problem.candidates[idx]
		tracker.Commit(c.PromotionKey, c.RedemptionCost, c.MonetaryCost)
		apps = append(apps, applicationFromCandidate(layer.Key, c))
	}
	log.WithField("selected", len(apps)).Debug("layer solved")
	return apps, nil
}

func applicationFromCandidate(layerKey string, c domain.Candidate) domain.Application {
	final := make(map[string]domain.Money, len(c.PerItemFinalPrice))
	for k, v := range c.PerItemFinalPrice {
		final[k] = v
	}
	return domain.Application{
		PromotionKey:   c.PromotionKey,
		BundleID:       c.BundleID,
		LayerKey:       layerKey,
		MemberItemKeys: append([]string(nil), c.MemberItemKeys...),
		FinalPrice:     final,
		BundleLabel:    c.BundleLabel,
	}
}

func sortedStringKeys(m map[string]domain.Candidate) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
