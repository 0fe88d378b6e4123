// Package domain models the basket pricing and promotion-optimisation
// engine: money, qualifications, discounts, promotions, the layer graph,
// and the receipts the engine produces. It performs no I/O.
package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/qhato/basket/pkg/errors"
)

// Money is an amount of integer minor units (cents) tagged with a
// 3-letter ISO currency code. Arithmetic is only defined between values
// of the same currency.
type Money struct {
	Amount   int64
	Currency string
}

// NewMoney constructs a Money value, validating the currency code.
func NewMoney(amount int64, currency string) (Money, error) {
	if !isValidCurrency(currency) {
		return Money{}, apperrors.InvalidCurrency("currency must be a 3-letter ISO code, got " + currency)
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// MustMoney is NewMoney for callers certain the currency is well-formed
// (construction of known-good literals, tests, fixtures already validated).
func MustMoney(amount int64, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Money {
	return MustMoney(0, currency)
}

func isValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			if r < 'a' || r > 'z' {
				return false
			}
		}
	}
	return true
}

// String renders the amount in major units, e.g. Money{299, "GBP"} -> "2.99 GBP".
func (m Money) String() string {
	major := decimal.New(m.Amount, -2)
	return fmt.Sprintf("%s %s", major.StringFixed(2), m.Currency)
}

// Add returns m+other. Both operands must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, apperrors.InvalidCurrency("cannot add " + m.Currency + " to " + other.Currency)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub returns m-other. Both operands must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, apperrors.InvalidCurrency("cannot subtract " + other.Currency + " from " + m.Currency)
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// ClampNonNegative returns m with its amount floored at zero.
func (m Money) ClampNonNegative() Money {
	if m.Amount < 0 {
		return Money{Amount: 0, Currency: m.Currency}
	}
	return m
}

// GreaterThan reports whether m exceeds other, which must share m's currency.
func (m Money) GreaterThan(other Money) bool {
	return m.Amount > other.Amount
}

// mulRoundHalfEven multiplies the amount by factor and rounds half-to-even
// (banker's rounding) back to whole minor units.
func (m Money) mulRoundHalfEven(factor decimal.Decimal) Money {
	product := decimal.NewFromInt(m.Amount).Mul(factor)
	rounded := product.RoundBank(0)
	return Money{Amount: rounded.IntPart(), Currency: m.Currency}
}

// Percentage is a fractional value in [0.0, 1.0].
type Percentage struct {
	value float64
}

// NewPercentage constructs a Percentage from a real value, rejecting
// non-finite, negative, or >1.0 values with distinct error kinds.
func NewPercentage(value float64) (Percentage, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Percentage{}, apperrors.InvalidPercentage("percentage must be a finite number")
	}
	if value < 0 || value > 1.0 {
		return Percentage{}, apperrors.PercentageOutOfRange(value)
	}
	return Percentage{value: value}, nil
}

// ParsePercentage parses a decimal string ("0.15") or a "N%" string
// ("15%") into a Percentage, using exact decimal arithmetic so that
// "15%" and 0.15 always agree bit-for-bit.
func ParsePercentage(s string) (Percentage, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Percentage{}, apperrors.InvalidPercentage("percentage string must not be empty")
	}

	if strings.HasSuffix(s, "%") {
		numeric := strings.TrimSpace(strings.TrimSuffix(s, "%"))
		d, err := decimal.NewFromString(numeric)
		if err != nil {
			return Percentage{}, apperrors.InvalidPercentage("invalid percentage string: " + s)
		}
		value, _ := d.Div(decimal.NewFromInt(100)).Float64()
		return NewPercentage(value)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percentage{}, apperrors.InvalidPercentage("invalid percentage string: " + s)
	}
	value, _ := d.Float64()
	return NewPercentage(value)
}

// Float64 returns the percentage's value in [0.0, 1.0].
func (p Percentage) Float64() float64 {
	return p.value
}

// ApplyOff returns price scaled by (1 − p), rounded half-to-even, clamped
// so rounding overshoot never exceeds the original price, and never
// negative. This is the shared arithmetic behind SimpleDiscount's
// PercentageOff and BundleDiscount's PercentEachItem/PercentOffTotal.
func (p Percentage) ApplyOff(price Money) Money {
	factor := decimal.NewFromFloat(1).Sub(decimal.NewFromFloat(p.value))
	result := price.mulRoundHalfEven(factor)
	if result.Amount > price.Amount {
		result.Amount = price.Amount
	}
	return result.ClampNonNegative()
}
