package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/qhato/basket/pkg/errors"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid currency", func(t *testing.T) {
		m, err := NewMoney(500, "gbp")
		require.NoError(t, err)
		assert.Equal(t, int64(500), m.Amount)
		assert.Equal(t, "GBP", m.Currency)
	})

	t.Run("rejects malformed currency", func(t *testing.T) {
		_, err := NewMoney(500, "GB")
		require.Error(t, err)
		code, ok := apperrors.CodeOf(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_CURRENCY", string(code))
	})
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("add same currency", func(t *testing.T) {
		a := MustMoney(100, "GBP")
		b := MustMoney(250, "GBP")
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, int64(350), sum.Amount)
	})

	t.Run("add mismatched currency fails", func(t *testing.T) {
		a := MustMoney(100, "GBP")
		b := MustMoney(250, "USD")
		_, err := a.Add(b)
		require.Error(t, err)
	})

	t.Run("sub floors nowhere, can go negative before clamp", func(t *testing.T) {
		a := MustMoney(100, "GBP")
		b := MustMoney(250, "GBP")
		diff, err := a.Sub(b)
		require.NoError(t, err)
		assert.Equal(t, int64(-150), diff.Amount)
		assert.Equal(t, int64(0), diff.ClampNonNegative().Amount)
	})
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "2.99 GBP", MustMoney(299, "GBP").String())
	assert.Equal(t, "0.00 GBP", MustMoney(0, "GBP").String())
}

func TestPercentage(t *testing.T) {
	t.Run("parses decimal and percent forms identically", func(t *testing.T) {
		a, err := ParsePercentage("0.15")
		require.NoError(t, err)
		b, err := ParsePercentage("15%")
		require.NoError(t, err)
		assert.InDelta(t, a.Float64(), b.Float64(), 1e-12)
	})

	t.Run("rejects out of range", func(t *testing.T) {
		_, err := NewPercentage(1.5)
		require.Error(t, err)
		code, ok := apperrors.CodeOf(err)
		require.True(t, ok)
		assert.Equal(t, "PERCENTAGE_OUT_OF_RANGE", string(code))
	})

	t.Run("rejects non-finite", func(t *testing.T) {
		_, err := NewPercentage(math.NaN())
		require.Error(t, err)
	})
}

func TestApplyOff(t *testing.T) {
	t.Run("half to even rounding", func(t *testing.T) {
		p, err := NewPercentage(0.5)
		require.NoError(t, err)
		// 3 * 0.5 = 1.5, banker's rounding -> 2 (round to even)
		result := p.ApplyOff(MustMoney(3, "GBP"))
		assert.Equal(t, int64(2), result.Amount)
	})

	t.Run("never exceeds original price", func(t *testing.T) {
		p, err := NewPercentage(0)
		require.NoError(t, err)
		result := p.ApplyOff(MustMoney(100, "GBP"))
		assert.Equal(t, int64(100), result.Amount)
	})

	t.Run("never negative", func(t *testing.T) {
		p, err := NewPercentage(1)
		require.NoError(t, err)
		result := p.ApplyOff(MustMoney(100, "GBP"))
		assert.Equal(t, int64(0), result.Amount)
	})
}
