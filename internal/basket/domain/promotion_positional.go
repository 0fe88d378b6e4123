package domain

import "sort"

// candidatesPositional generates one candidate per combination of `size`
// qualifying items (every C(n, size) subset), each combination sorted by
// current price descending (lexicographic item-key tie-break), with the
// discount applied to the members at the configured positions.
func candidatesPositional(p *PositionalPromotion, promotionKey string, items []Item, budget BudgetState, bundleSeq *uint32) ([]Candidate, error) {
	qualifying := make([]Item, 0, len(items))
	for _, item := range items {
		if p.Qualification.Matches(item.Tags) {
			qualifying = append(qualifying, item)
		}
	}
	if uint32(len(qualifying)) < p.Size {
		return nil, nil
	}

	var candidates []Candidate
	var err error
	eachCombination(len(qualifying), int(p.Size), func(indices []int) bool {
		members := make([]Item, len(indices))
		for i, idx := range indices {
			members[i] = qualifying[idx]
		}
		sortByPriceDescendingKeyAsc(members)

		perItem := make(map[string]Money, len(members))
		memberKeys := make([]string, len(members))
		var monetaryCost Money
		monetaryCurrency := members[0].Price.Currency
		monetaryCost.Currency = monetaryCurrency

		for pos, item := range members {
			memberKeys[pos] = item.Key
			_, discounted := p.Positions[uint32(pos)]
			if discounted {
				finalPrice, applyErr := p.Discount.Apply(item.Price)
				if applyErr != nil {
					err = applyErr
					return false
				}
				perItem[item.Key] = finalPrice
				cost, subErr := item.Price.Sub(finalPrice)
				if subErr != nil {
					err = subErr
					return false
				}
				monetaryCost.Amount += cost.Amount
			} else {
				perItem[item.Key] = item.Price
			}
		}

		const redemptionCost = 1
		if !budget.Allows(redemptionCost, monetaryCost) {
			return true
		}

		id := *bundleSeq
		*bundleSeq++
		candidates = append(candidates, Candidate{
			PromotionKey:      promotionKey,
			BundleID:          id,
			MemberItemKeys:    memberKeys,
			PerItemFinalPrice: perItem,
			RedemptionCost:    redemptionCost,
			MonetaryCost:      monetaryCost,
			BundleLabel:       promotionKey + "/" + joinKeys(memberKeys),
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// sortByPriceDescendingKeyAsc sorts items by price descending, breaking
// ties lexicographically ascending by key.
func sortByPriceDescendingKeyAsc(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Price.Amount != items[j].Price.Amount {
			return items[i].Price.Amount > items[j].Price.Amount
		}
		return items[i].Key < items[j].Key
	})
}

// eachCombination calls f with the index set of every k-combination of
// [0,n), in lexicographic generation order, stopping early if f
// returns false.
func eachCombination(n, k int, f func(indices []int) bool) {
	if k <= 0 || k > n {
		return
	}
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}
	for {
		if !f(indices) {
			return
		}
		i := k - 1
		for i >= 0 && indices[i] == i+n-k {
			i--
		}
		if i < 0 {
			return
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}

func joinKeys(keys []string) string {
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += "+"
		}
		out += k
	}
	return out
}
