package domain

// candidatesMixAndMatch enumerates every assignment that fills every
// slot with a count in [min, max] of distinct qualifying items, no item
// reused across slots in the same bundle, with at least one item
// selected overall.
func candidatesMixAndMatch(p *MixAndMatchPromotion, promotionKey string, items []Item, budget BudgetState, bundleSeq *uint32) ([]Candidate, error) {
	eligiblePerSlot := make([][]Item, len(p.Slots))
	for i, slot := range p.Slots {
		for _, item := range items {
			if slot.Qualification.Matches(item.Tags) {
				eligiblePerSlot[i] = append(eligiblePerSlot[i], item)
			}
		}
	}

	var candidates []Candidate
	var enumErr error
	used := make(map[string]bool, len(items))
	assignment := make([][]Item, len(p.Slots))

	var recurse func(slotIdx int) bool
	recurse = func(slotIdx int) bool {
		if enumErr != nil {
			return false
		}
		if slotIdx == len(p.Slots) {
			candidate, ok, err := buildMixAndMatchCandidate(p, promotionKey, assignment, budget, bundleSeq)
			if err != nil {
				enumErr = err
				return false
			}
			if ok {
				candidates = append(candidates, candidate)
			}
			return true
		}

		slot := p.Slots[slotIdx]
		available := make([]Item, 0, len(eligiblePerSlot[slotIdx]))
		for _, item := range eligiblePerSlot[slotIdx] {
			if !used[item.Key] {
				available = append(available, item)
			}
		}

		maxK := int(slot.Max)
		if maxK > len(available) {
			maxK = len(available)
		}
		for k := int(slot.Min); k <= maxK; k++ {
			cont := true
			if k == 0 {
				assignment[slotIdx] = nil
				if !recurse(slotIdx + 1) {
					return false
				}
				continue
			}
			eachCombination(len(available), k, func(indices []int) bool {
				chosen := make([]Item, k)
				for i, idx := range indices {
					chosen[i] = available[idx]
					used[chosen[i].Key] = true
				}
				assignment[slotIdx] = chosen
				cont = recurse(slotIdx + 1)
				for _, item := range chosen {
					used[item.Key] = false
				}
				return cont
			})
			if !cont {
				return false
			}
		}
		return true
	}

	recurse(0)
	if enumErr != nil {
		return nil, enumErr
	}
	return candidates, nil
}

func buildMixAndMatchCandidate(p *MixAndMatchPromotion, promotionKey string, assignment [][]Item, budget BudgetState, bundleSeq *uint32) (Candidate, bool, error) {
	var members []Item
	for _, slotItems := range assignment {
		members = append(members, slotItems...)
	}
	if len(members) == 0 {
		return Candidate{}, false, nil
	}

	prices := make([]Money, len(members))
	for i, item := range members {
		prices[i] = item.Price
	}
	discounted, err := p.Discount.Apply(prices)
	if err != nil {
		return Candidate{}, false, err
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
		return Candidate{}, false, nil
	}

	id := *bundleSeq
	*bundleSeq++
	return Candidate{
		PromotionKey:      promotionKey,
		BundleID:          id,
		MemberItemKeys:    memberKeys,
		PerItemFinalPrice: perItem,
		RedemptionCost:    redemptionCost,
		MonetaryCost:      monetaryCost,
		BundleLabel:       promotionKey + "/" + joinKeys(memberKeys),
	}, true, nil
}
