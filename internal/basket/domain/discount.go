package domain

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/qhato/basket/pkg/errors"
)

// simpleDiscountKind identifies a SimpleDiscount variant.
type simpleDiscountKind int

const (
	simplePercentageOff simpleDiscountKind = iota
	simpleAmountOverride
	simpleAmountOff
)

// SimpleDiscount is a per-item discount function: PercentageOff,
// AmountOverride, or AmountOff.
type SimpleDiscount struct {
	kind       simpleDiscountKind
	percentage Percentage
	amount     Money
}

// PercentageOff builds a discount computing new = round_half_even(old × (1−p)).
func PercentageOff(p Percentage) SimpleDiscount {
	return SimpleDiscount{kind: simplePercentageOff, percentage: p}
}

// AmountOverride builds a discount that sets the new price to m outright.
func AmountOverride(m Money) SimpleDiscount {
	return SimpleDiscount{kind: simpleAmountOverride, amount: m}
}

// AmountOff builds a discount computing new = max(0, old − m).
func AmountOff(m Money) SimpleDiscount {
	return SimpleDiscount{kind: simpleAmountOff, amount: m}
}

// Apply computes the discounted price. Pure, deterministic,
// currency-preserving; the result is never negative, and for
// PercentageOff, rounding overshoot is clamped to the original price.
func (d SimpleDiscount) Apply(price Money) (Money, error) {
	switch d.kind {
	case simplePercentageOff:
		return d.percentage.ApplyOff(price), nil
	case simpleAmountOverride:
		if d.amount.Currency != price.Currency {
			return Money{}, apperrors.InvalidCurrency("discount currency " + d.amount.Currency + " does not match price currency " + price.Currency)
		}
		return d.amount.ClampNonNegative(), nil
	case simpleAmountOff:
		if d.amount.Currency != price.Currency {
			return Money{}, apperrors.InvalidCurrency("discount currency " + d.amount.Currency + " does not match price currency " + price.Currency)
		}
		result, err := price.Sub(d.amount)
		if err != nil {
			return Money{}, err
		}
		return result.ClampNonNegative(), nil
	default:
		return Money{}, apperrors.InvalidDiscount("unknown simple discount kind")
	}
}

// bundleDiscountKind identifies a BundleDiscount variant.
type bundleDiscountKind int

const (
	bundlePercentEachItem bundleDiscountKind = iota
	bundleAmountOffEachItem
	bundlePercentOffTotal
	bundleAmountOffTotal
	bundleFixedTotal
)

// BundleDiscount is a per-bundle discount function distributing a
// discount back across the bundle's member item prices.
type BundleDiscount struct {
	kind       bundleDiscountKind
	percentage Percentage
	amount     Money
}

// PercentEachItem applies p independently to each item's price.
func PercentEachItem(p Percentage) BundleDiscount {
	return BundleDiscount{kind: bundlePercentEachItem, percentage: p}
}

// AmountOffEachItem applies m independently to each item's price.
func AmountOffEachItem(m Money) BundleDiscount {
	return BundleDiscount{kind: bundleAmountOffEachItem, amount: m}
}

// PercentOffTotal scales every item's price by (1−p).
func PercentOffTotal(p Percentage) BundleDiscount {
	return BundleDiscount{kind: bundlePercentOffTotal, percentage: p}
}

// AmountOffTotal reduces the bundle's aggregate price by m, distributing
// the savings proportionally to original price.
func AmountOffTotal(m Money) BundleDiscount {
	return BundleDiscount{kind: bundleAmountOffTotal, amount: m}
}

// FixedTotal sets the bundle's new aggregate price to m, distributing it
// proportionally to original price.
func FixedTotal(m Money) BundleDiscount {
	return BundleDiscount{kind: bundleFixedTotal, amount: m}
}

// IsBundleTotal reports whether this discount computes an aggregate
// target and redistributes it (AmountOffTotal, FixedTotal) rather than
// discounting each item independently. Candidates built with any bundle
// discount, bundle-total or not, record the exact saving of their member
// set as MonetaryCost (see buildMixAndMatchCandidate, buildTieredCandidate).
func (d BundleDiscount) IsBundleTotal() bool {
	return d.kind == bundleAmountOffTotal || d.kind == bundleFixedTotal
}

// Apply distributes the bundle discount across prices (in stable member
// order), returning one discounted price per input price.
func (d BundleDiscount) Apply(prices []Money) ([]Money, error) {
	if len(prices) == 0 {
		return nil, apperrors.InvalidDiscount("bundle discount requires at least one item")
	}
	currency := prices[0].Currency

	switch d.kind {
	case bundlePercentEachItem:
		out := make([]Money, len(prices))
		for i, p := range prices {
			out[i] = d.percentage.ApplyOff(p)
		}
		return out, nil

	case bundleAmountOffEachItem:
		out := make([]Money, len(prices))
		for i, p := range prices {
			if d.amount.Currency != p.Currency {
				return nil, apperrors.InvalidCurrency("discount currency mismatch in bundle")
			}
			result, err := p.Sub(d.amount)
			if err != nil {
				return nil, err
			}
			out[i] = result.ClampNonNegative()
		}
		return out, nil

	case bundlePercentOffTotal:
		out := make([]Money, len(prices))
		for i, p := range prices {
			out[i] = d.percentage.ApplyOff(p)
		}
		return out, nil

	case bundleAmountOffTotal:
		if d.amount.Currency != currency {
			return nil, apperrors.InvalidCurrency("discount currency mismatch in bundle")
		}
		originalTotal := sumMoney(prices, currency)
		target, err := originalTotal.Sub(d.amount)
		if err != nil {
			return nil, err
		}
		return distributeProportional(prices, target.ClampNonNegative().Amount), nil

	case bundleFixedTotal:
		if d.amount.Currency != currency {
			return nil, apperrors.InvalidCurrency("discount currency mismatch in bundle")
		}
		return distributeProportional(prices, d.amount.ClampNonNegative().Amount), nil

	default:
		return nil, apperrors.InvalidDiscount("unknown bundle discount kind")
	}
}

func sumMoney(prices []Money, currency string) Money {
	total := Money{Amount: 0, Currency: currency}
	for _, p := range prices {
		total.Amount += p.Amount
	}
	return total
}

// distributeProportional allocates targetTotal across prices in
// proportion to each price's original share of the sum, rounding
// half-to-even, with the last item absorbing the residual so the sum is
// exact.
func distributeProportional(prices []Money, targetTotal int64) []Money {
	n := len(prices)
	out := make([]Money, n)
	if n == 1 {
		out[0] = Money{Amount: targetTotal, Currency: prices[0].Currency}
		return out
	}

	originalTotal := sumMoney(prices, prices[0].Currency).Amount
	var allocated int64
	for i := 0; i < n-1; i++ {
		share := proportionalShare(targetTotal, prices[i].Amount, originalTotal)
		out[i] = Money{Amount: share, Currency: prices[i].Currency}
		allocated += share
	}
	out[n-1] = Money{Amount: targetTotal - allocated, Currency: prices[n-1].Currency}
	return out
}

func proportionalShare(targetTotal, itemAmount, originalTotal int64) int64 {
	if originalTotal == 0 {
		return 0
	}
	share := decimal.NewFromInt(targetTotal).
		Mul(decimal.NewFromInt(itemAmount)).
		Div(decimal.NewFromInt(originalTotal)).
		RoundBank(0)
	return share.IntPart()
}
