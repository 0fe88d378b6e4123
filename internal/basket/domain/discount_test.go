package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(t *testing.T, v float64) Percentage {
	t.Helper()
	p, err := NewPercentage(v)
	require.NoError(t, err)
	return p
}

func TestSimpleDiscountApply(t *testing.T) {
	price := MustMoney(1000, "GBP")

	t.Run("percentage off", func(t *testing.T) {
		d := PercentageOff(pct(t, 0.2))
		result, err := d.Apply(price)
		require.NoError(t, err)
		assert.Equal(t, int64(800), result.Amount)
	})

	t.Run("amount override clamps to zero", func(t *testing.T) {
		d := AmountOverride(MustMoney(-50, "GBP"))
		result, err := d.Apply(price)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Amount)
	})

	t.Run("amount off clamps at zero, never negative", func(t *testing.T) {
		d := AmountOff(MustMoney(5000, "GBP"))
		result, err := d.Apply(price)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Amount)
	})

	t.Run("currency mismatch rejected", func(t *testing.T) {
		d := AmountOff(MustMoney(100, "USD"))
		_, err := d.Apply(price)
		require.Error(t, err)
	})
}

func TestBundleDiscountApply(t *testing.T) {
	prices := []Money{MustMoney(1000, "GBP"), MustMoney(500, "GBP"), MustMoney(300, "GBP")}

	t.Run("percent each item", func(t *testing.T) {
		d := PercentEachItem(pct(t, 0.1))
		out, err := d.Apply(prices)
		require.NoError(t, err)
		assert.Equal(t, []int64{900, 450, 270}, amounts(out))
	})

	t.Run("amount off each item, clamped", func(t *testing.T) {
		d := AmountOffEachItem(MustMoney(400, "GBP"))
		out, err := d.Apply(prices)
		require.NoError(t, err)
		assert.Equal(t, []int64{600, 100, 0}, amounts(out))
	})

	t.Run("amount off total distributes proportionally and sums exactly", func(t *testing.T) {
		d := AmountOffTotal(MustMoney(180, "GBP"))
		out, err := d.Apply(prices)
		require.NoError(t, err)
		var sum int64
		for _, m := range out {
			sum += m.Amount
		}
		assert.Equal(t, int64(1800-180), sum)
	})

	t.Run("fixed total redistributes proportionally and sums exactly", func(t *testing.T) {
		d := FixedTotal(MustMoney(900, "GBP"))
		out, err := d.Apply(prices)
		require.NoError(t, err)
		var sum int64
		for _, m := range out {
			sum += m.Amount
		}
		assert.Equal(t, int64(900), sum)
	})

	t.Run("single item fixed total is exact, no rounding residual", func(t *testing.T) {
		d := FixedTotal(MustMoney(42, "GBP"))
		out, err := d.Apply([]Money{MustMoney(1000, "GBP")})
		require.NoError(t, err)
		assert.Equal(t, int64(42), out[0].Amount)
	})

	t.Run("empty bundle rejected", func(t *testing.T) {
		d := PercentEachItem(pct(t, 0.1))
		_, err := d.Apply(nil)
		require.Error(t, err)
	})

	t.Run("IsBundleTotal distinguishes aggregate-target discounts", func(t *testing.T) {
		assert.True(t, AmountOffTotal(MustMoney(1, "GBP")).IsBundleTotal())
		assert.True(t, FixedTotal(MustMoney(1, "GBP")).IsBundleTotal())
		assert.False(t, PercentEachItem(pct(t, 0.1)).IsBundleTotal())
		assert.False(t, AmountOffEachItem(MustMoney(1, "GBP")).IsBundleTotal())
	})
}

func amounts(ms []Money) []int64 {
	out := make([]int64, len(ms))
	for i, m := range ms {
		out[i] = m.Amount
	}
	return out
}
