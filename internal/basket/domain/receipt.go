package domain

// Redemption records one promotion's claim on one item in one layer.
// Immutable once placed in a Receipt.
type Redemption struct {
	PromotionKey  string
	ItemKey       string
	BundleID      uint32
	LayerKey      string
	OriginalPrice Money
	FinalPrice    Money

	// BundleLabel is a human-readable trace label for the bundle this
	// redemption belongs to (e.g. "3for2/sku-1+sku-2+sku-3"). Presentation
	// sugar only — it never feeds back into price or selection logic.
	BundleLabel string
}

// Savings returns OriginalPrice - FinalPrice for this redemption.
func (r Redemption) Savings() (Money, error) {
	return r.OriginalPrice.Sub(r.FinalPrice)
}

// Application is the solver's internal record of one selected candidate
// before it's flattened into per-item Redemptions.
type Application struct {
	PromotionKey   string
	BundleID       uint32
	LayerKey       string
	MemberItemKeys []string
	FinalPrice     map[string]Money
	BundleLabel    string
}

// Receipt is the final, ordered record of one process() call: the
// pre-discount subtotal, the post-discount total, the items that never
// matched any promotion, and every redemption across every layer.
type Receipt struct {
	Subtotal       Money
	Total          Money
	FullPriceItems []Item
	Redemptions    []Redemption
}

// NewReceipt assembles a Receipt from the original items and the
// redemptions accumulated across a full graph traversal. subtotal is
// the sum of every item's original price; total is subtotal minus the
// sum of every redemption's savings, floored at zero.
func NewReceipt(items []Item, redemptions []Redemption) (Receipt, error) {
	var currency string
	if len(items) > 0 {
		currency = items[0].Price.Currency
	} else if len(redemptions) > 0 {
		currency = redemptions[0].OriginalPrice.Currency
	}

	subtotal := Money{Currency: currency}
	for _, item := range items {
		subtotal.Amount += item.Price.Amount
	}

	claimed := make(map[string]bool, len(items))
	total := subtotal
	for _, r := range redemptions {
		savings, err := r.Savings()
		if err != nil {
			return Receipt{}, err
		}
		total.Amount -= savings.Amount
		claimed[r.ItemKey] = true
	}
	total = total.ClampNonNegative()

	var fullPrice []Item
	for _, item := range items {
		if !claimed[item.Key] {
			fullPrice = append(fullPrice, item)
		}
	}

	return Receipt{
		Subtotal:       subtotal,
		Total:          total,
		FullPriceItems: fullPrice,
		Redemptions:    redemptions,
	}, nil
}
