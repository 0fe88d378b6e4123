package domain

import "strconv"

// candidatesTieredThreshold enumerates, per tier, the feasible
// discountable subsets the tier could activate against. A tier is a
// single basket-level fact: it activates when the full set of items
// matching ContributionQualification reaches LowerThreshold —
// independent of which items end up discounted. Once activated,
// candidates are the growing prefixes of DiscountQualification items
// sorted by price descending (lexicographic key tie-break), one instance
// per prefix size, so the solver can pick how much of the activated tier
// to actually redeem. If UpperThreshold is set, an item whose addition
// would take the subset's monetary total or item count past it is
// skipped, so every candidate stays within the upper bound.
func candidatesTieredThreshold(p *TieredThresholdPromotion, promotionKey string, items []Item, budget BudgetState, bundleSeq *uint32) ([]Candidate, error) {
	var candidates []Candidate
	for tierIdx, tier := range p.Tiers {
		tierCandidates, err := candidatesForTier(tier, promotionKey, tierIdx, items, budget, bundleSeq)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, tierCandidates...)
	}
	return candidates, nil
}

func candidatesForTier(tier Tier, promotionKey string, tierIdx int, items []Item, budget BudgetState, bundleSeq *uint32) ([]Candidate, error) {
	var discountables []Item
	var contribMonetary int64
	var contribCount uint32
	var currency string
	for _, item := range items {
		if tier.DiscountQualification.Matches(item.Tags) {
			discountables = append(discountables, item)
		}
		if tier.ContributionQualification.Matches(item.Tags) {
			if currency == "" {
				currency = item.Price.Currency
			}
			contribMonetary += item.Price.Amount
			contribCount++
		}
	}
	if len(discountables) == 0 {
		return nil, nil
	}

	contribTotal := Money{Amount: contribMonetary, Currency: currency}
	if !tier.LowerThreshold.met(contribTotal, contribCount) {
		return nil, nil
	}

	sortByPriceDescendingKeyAsc(discountables)

	var candidates []Candidate
	var subset []Item
	subsetTotal := Money{Currency: discountables[0].Price.Currency}
	for _, item := range discountables {
		if tier.UpperThreshold != nil {
			next := Money{Amount: subsetTotal.Amount + item.Price.Amount, Currency: subsetTotal.Currency}
			if !tier.UpperThreshold.withinUpperBound(next, uint32(len(subset)+1)) {
				continue
			}
		}
		subset = append(subset, item)
		subsetTotal.Amount += item.Price.Amount

		candidate, err := buildTieredCandidate(tier, promotionKey, tierIdx, subset, budget, bundleSeq)
		if err != nil {
			return nil, err
		}
		if candidate != nil {
			candidates = append(candidates, *candidate)
		}
	}
	return candidates, nil
}

func buildTieredCandidate(tier Tier, promotionKey string, tierIdx int, subset []Item, budget BudgetState, bundleSeq *uint32) (*Candidate, error) {
	members := append([]Item(nil), subset...)
	prices := make([]Money, len(members))
	for i, item := range members {
		prices[i] = item.Price
	}
	discounted, err := tier.Discount.Apply(prices)
	if err != nil {
		return nil, err
	}

	perItem := make(map[string]Money, len(members))
	memberKeys := make([]string, len(members))
	originalTotal := Money{Currency: prices[0].Currency}
	discountedTotal := Money{Currency: prices[0].Currency}
	for i, item := range members {
		memberKeys[i] = item.Key
		perItem[item.Key] = discounted[i]
		originalTotal.Amount += item.Price.Amount
		discountedTotal.Amount += discounted[i].Amount
	}
	monetaryCost := Money{Currency: originalTotal.Currency, Amount: originalTotal.Amount - discountedTotal.Amount}

	const redemptionCost = 1
	if !budget.Allows(redemptionCost, monetaryCost) {
		return nil, nil
	}

	id := *bundleSeq
	*bundleSeq++
	return &Candidate{
		PromotionKey:      promotionKey,
		BundleID:          id,
		MemberItemKeys:    memberKeys,
		PerItemFinalPrice: perItem,
		RedemptionCost:    redemptionCost,
		MonetaryCost:      monetaryCost,
		BundleLabel:       promotionKey + "/tier" + strconv.Itoa(tierIdx) + "/" + joinKeys(memberKeys),
	}, nil
}
