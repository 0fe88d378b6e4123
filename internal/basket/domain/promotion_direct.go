package domain

// candidatesDirect produces one candidate per qualifying item, in
// basket order. Each candidate's bundle is exactly that one item.
func candidatesDirect(p *DirectPromotion, promotionKey string, items []Item, budget BudgetState, bundleSeq *uint32) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		if !p.Qualification.Matches(item.Tags) {
			continue
		}
		finalPrice, err := p.Discount.Apply(item.Price)
		if err != nil {
			return nil, err
		}
		monetaryCost, err := item.Price.Sub(finalPrice)
		if err != nil {
			return nil, err
		}
		const redemptionCost = 1
		if !budget.Allows(redemptionCost, monetaryCost) {
			continue
		}
		id := *bundleSeq
		*bundleSeq++
		candidates = append(candidates, Candidate{
			PromotionKey:      promotionKey,
			BundleID:          id,
			MemberItemKeys:    []string{item.Key},
			PerItemFinalPrice: map[string]Money{item.Key: finalPrice},
			RedemptionCost:    redemptionCost,
			MonetaryCost:      monetaryCost,
			BundleLabel:       promotionKey + "/" + item.Key,
		})
	}
	return candidates, nil
}
