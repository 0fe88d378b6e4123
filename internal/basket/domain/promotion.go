package domain

import (
	"fmt"

	apperrors "github.com/qhato/basket/pkg/errors"
)

func invalidPromotionf(format string, args ...interface{}) error {
	return apperrors.InvalidPromotion(fmt.Sprintf(format, args...))
}

// PromotionKind identifies which variant of Promotion is populated.
type PromotionKind int

const (
	KindDirect PromotionKind = iota
	KindPositional
	KindMixAndMatch
	KindTieredThreshold
)

// Promotion is a tagged union over the four promotion variants a Layer
// can hold. Exactly one of the pointer fields is non-nil, matching Kind.
type Promotion struct {
	Key    string
	Kind   PromotionKind
	Budget Budget

	Direct          *DirectPromotion
	Positional      *PositionalPromotion
	MixAndMatch     *MixAndMatchPromotion
	TieredThreshold *TieredThresholdPromotion
}

// DirectPromotion discounts every qualifying item independently, one
// candidate per item.
type DirectPromotion struct {
	Qualification Qualification
	Discount      SimpleDiscount
}

// NewDirect constructs a Direct promotion.
func NewDirect(key string, qualification Qualification, discount SimpleDiscount, budget Budget) Promotion {
	return Promotion{
		Key:    key,
		Kind:   KindDirect,
		Budget: budget,
		Direct: &DirectPromotion{Qualification: qualification, Discount: discount},
	}
}

// PositionalPromotion discounts items at fixed positions within every
// qualifying group of Size items, e.g. "3 for 2" discounts position 2.
// Positions is zero-indexed and a subset of [0, Size).
type PositionalPromotion struct {
	Qualification Qualification
	Size          uint32
	Positions     map[uint32]struct{}
	Discount      SimpleDiscount
}

// NewPositional constructs a Positional promotion, validating that size
// is at least 1 and that every position lies within [0, size).
func NewPositional(key string, qualification Qualification, size uint32, positions []uint32, discount SimpleDiscount, budget Budget) (Promotion, error) {
	if size < 1 {
		return Promotion{}, invalidPromotionf("positional promotion %q: size must be at least 1", key)
	}
	positionSet := make(map[uint32]struct{}, len(positions))
	for _, pos := range positions {
		if pos >= size {
			return Promotion{}, invalidPromotionf("positional promotion %q: position %d is out of range for size %d", key, pos, size)
		}
		positionSet[pos] = struct{}{}
	}
	if len(positionSet) == 0 {
		return Promotion{}, invalidPromotionf("positional promotion %q: must discount at least one position", key)
	}
	return Promotion{
		Key:    key,
		Kind:   KindPositional,
		Budget: budget,
		Positional: &PositionalPromotion{
			Qualification: qualification,
			Size:          size,
			Positions:     positionSet,
			Discount:      discount,
		},
	}, nil
}

// Slot is one named role in a MixAndMatch bundle: a qualification items
// must meet to fill it, and how many items of that qualification fill it.
type Slot struct {
	Key           string
	Qualification Qualification
	Min           uint32
	Max           uint32
}

// NewSlot constructs a Slot, validating min <= max and max >= 1.
func NewSlot(key string, qualification Qualification, min, max uint32) (Slot, error) {
	if max < 1 {
		return Slot{}, invalidPromotionf("slot %q: max must be at least 1", key)
	}
	if min > max {
		return Slot{}, invalidPromotionf("slot %q: min (%d) exceeds max (%d)", key, min, max)
	}
	return Slot{Key: key, Qualification: qualification, Min: min, Max: max}, nil
}

// MixAndMatchPromotion forms bundles by filling every slot from the
// basket, applying a BundleDiscount across the assembled bundle's items.
type MixAndMatchPromotion struct {
	Slots    []Slot
	Discount BundleDiscount
}

// NewMixAndMatch constructs a MixAndMatch promotion, requiring at least
// one slot.
func NewMixAndMatch(key string, slots []Slot, discount BundleDiscount, budget Budget) (Promotion, error) {
	if len(slots) == 0 {
		return Promotion{}, invalidPromotionf("mix-and-match promotion %q: requires at least one slot", key)
	}
	return Promotion{
		Key:    key,
		Kind:   KindMixAndMatch,
		Budget: budget,
		MixAndMatch: &MixAndMatchPromotion{
			Slots:    append([]Slot(nil), slots...),
			Discount: discount,
		},
	}, nil
}

// Threshold is a basket-qualifying boundary expressed as a monetary
// amount and/or an item count; at least one must be set. When both are
// set, both must be met (spec open question resolved: AND semantics —
// see DESIGN.md).
type Threshold struct {
	Monetary  *Money
	ItemCount *uint32
}

// NewThreshold constructs a Threshold, requiring at least one bound.
func NewThreshold(monetary *Money, itemCount *uint32) (Threshold, error) {
	if monetary == nil && itemCount == nil {
		return Threshold{}, invalidPromotionf("threshold must set a monetary amount, an item count, or both")
	}
	return Threshold{Monetary: monetary, ItemCount: itemCount}, nil
}

// met reports whether a contributing set with the given monetary total
// and item count satisfies t. Both configured bounds must be met
// (resolved open question: AND semantics when both are set — see
// DESIGN.md).
func (t Threshold) met(total Money, count uint32) bool {
	if t.Monetary != nil && total.Amount < t.Monetary.Amount {
		return false
	}
	if t.ItemCount != nil && count < *t.ItemCount {
		return false
	}
	return true
}

// withinUpperBound reports whether a contributing set with the given
// monetary total and item count still sits at or under t, used for
// upper_threshold capping.
func (t Threshold) withinUpperBound(total Money, count uint32) bool {
	if t.Monetary != nil && total.Amount > t.Monetary.Amount {
		return false
	}
	if t.ItemCount != nil && count > *t.ItemCount {
		return false
	}
	return true
}

// Tier is one rung of a TieredThreshold ladder: a lower bound that must
// be met to activate, an optional upper bound capping the monetary total
// and item count of each discounted subset, and the qualifications selecting which items contribute
// to the threshold versus which items receive the discount.
type Tier struct {
	LowerThreshold            Threshold
	UpperThreshold            *Threshold
	ContributionQualification Qualification
	DiscountQualification     Qualification
	Discount                  BundleDiscount
}

// TieredThresholdPromotion offers candidates from every tier whose lower
// bound is met by the qualifying contribution, each discounting
// discount-qualifying items; the layer solver chooses among them.
type TieredThresholdPromotion struct {
	Tiers []Tier
}

// NewTieredThreshold constructs a TieredThreshold promotion, requiring
// at least one tier.
func NewTieredThreshold(key string, tiers []Tier, budget Budget) (Promotion, error) {
	if len(tiers) == 0 {
		return Promotion{}, invalidPromotionf("tiered threshold promotion %q: requires at least one tier", key)
	}
	return Promotion{
		Key:             key,
		Kind:            KindTieredThreshold,
		Budget:          budget,
		TieredThreshold: &TieredThresholdPromotion{Tiers: append([]Tier(nil), tiers...)},
	}, nil
}

// Candidates enumerates every candidate application this promotion could
// make against items, pruning candidates the given budget state could
// never afford. bundleSeq hands out process-call-local bundle ids and is
// shared across every promotion in a layer so ids never collide.
func (p Promotion) Candidates(items []Item, budget BudgetState, bundleSeq *uint32) ([]Candidate, error) {
	switch p.Kind {
	case KindDirect:
		return candidatesDirect(p.Direct, p.Key, items, budget, bundleSeq)
	case KindPositional:
		return candidatesPositional(p.Positional, p.Key, items, budget, bundleSeq)
	case KindMixAndMatch:
		return candidatesMixAndMatch(p.MixAndMatch, p.Key, items, budget, bundleSeq)
	case KindTieredThreshold:
		return candidatesTieredThreshold(p.TieredThreshold, p.Key, items, budget, bundleSeq)
	default:
		return nil, invalidPromotionf("promotion %q: unknown kind", p.Key)
	}
}

// Candidate is one way a promotion could apply to some subset of basket
// items: a concrete bundle, its would-be discounted prices, and the
// cost it would draw from the promotion's budget if selected. BundleID
// is a process-call-local identifier distinguishing candidates that
// cover overlapping item sets (spec §4.5's conflict graph).
type Candidate struct {
	PromotionKey      string
	BundleID          uint32
	MemberItemKeys    []string
	PerItemFinalPrice map[string]Money
	RedemptionCost    uint32
	MonetaryCost      Money

	// BundleLabel is a human-readable debug label for this candidate,
	// not used in any computation; see the candidate enumerators in
	// promotion_*.go for how it's derived.
	BundleLabel string
}

// Total returns the sum of the candidate's final per-item prices, in
// the candidate's currency.
func (c Candidate) Total() Money {
	if len(c.MemberItemKeys) == 0 {
		return Money{}
	}
	var currency string
	for _, k := range c.MemberItemKeys {
		currency = c.PerItemFinalPrice[k].Currency
		break
	}
	total := Money{Currency: currency}
	for _, k := range c.MemberItemKeys {
		total.Amount += c.PerItemFinalPrice[k].Amount
	}
	return total
}

// OriginalTotal sums the pre-discount price of the candidate's member
// items out of the supplied item index.
func (c Candidate) OriginalTotal(items map[string]Item) Money {
	var currency string
	for _, k := range c.MemberItemKeys {
		currency = items[k].Price.Currency
		break
	}
	total := Money{Currency: currency}
	for _, k := range c.MemberItemKeys {
		total.Amount += items[k].Price.Amount
	}
	return total
}

// Savings returns OriginalTotal - Total, i.e. the discount realised by
// selecting this candidate.
func (c Candidate) Savings(items map[string]Item) Money {
	savings, _ := c.OriginalTotal(items).Sub(c.Total())
	return savings
}
