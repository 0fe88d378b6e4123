package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhato/basket/internal/basket/domain"
)

func pct(t *testing.T, v float64) domain.Percentage {
	t.Helper()
	p, err := domain.NewPercentage(v)
	require.NoError(t, err)
	return p
}

func TestSolveDirectFastPathPicksBestPerItem(t *testing.T) {
	items := []domain.Item{
		domain.NewItem("a", "a", domain.MustMoney(1000, "GBP"), "snack"),
		domain.NewItem("b", "b", domain.MustMoney(500, "GBP"), "drink"),
	}
	tenPercent := domain.NewDirect("p10", domain.And(domain.HasAll("snack")), domain.PercentageOff(pct(t, 0.1)), domain.Unlimited())
	twentyPercent := domain.NewDirect("p20", domain.And(domain.HasAll("snack")), domain.PercentageOff(pct(t, 0.2)), domain.Unlimited())
	layer := domain.NewLayer("l1", domain.PassThrough(""), []domain.Promotion{tenPercent, twentyPercent})

	tracker := domain.NewBudgetTracker(layer.Promotions)
	apps, err := Solve(layer, items, tracker)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "p20", apps[0].PromotionKey)
	assert.Equal(t, int64(800), apps[0].FinalPrice["a"].Amount)
}

func TestSolveUnconstrainedDirectOnlyDetection(t *testing.T) {
	unlimited := domain.NewDirect("p1", domain.MatchAll(), domain.PercentageOff(pct(t, 0.1)), domain.Unlimited())
	assert.True(t, isUnconstrainedDirectOnly([]domain.Promotion{unlimited}))

	apps := uint32(1)
	limited := domain.NewDirect("p2", domain.MatchAll(), domain.PercentageOff(pct(t, 0.1)), domain.Budget{Applications: &apps})
	assert.False(t, isUnconstrainedDirectOnly([]domain.Promotion{limited}))
}

func TestSolveNoPromotionsYieldsNoApplications(t *testing.T) {
	items := []domain.Item{item("a", 1000)}
	layer := domain.NewLayer("l1", domain.PassThrough(""), nil)
	tracker := domain.NewBudgetTracker(nil)

	apps, err := Solve(layer, items, tracker)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestSolveILPRespectsItemCoverage(t *testing.T) {
	items := []domain.Item{item("a", 1000)}
	p1 := domain.NewDirect("p1", domain.MatchAll(), domain.AmountOff(domain.MustMoney(100, "GBP")), domain.Unlimited())
	apps := uint32(5)
	p2 := domain.NewDirect("p2", domain.MatchAll(), domain.AmountOff(domain.MustMoney(300, "GBP")), domain.Budget{Applications: &apps})
	layer := domain.NewLayer("l1", domain.PassThrough(""), []domain.Promotion{p1, p2})

	tracker := domain.NewBudgetTracker(layer.Promotions)
	applications, err := Solve(layer, items, tracker)
	require.NoError(t, err)
	require.Len(t, applications, 1)
	assert.Equal(t, "p2", applications[0].PromotionKey, "deeper discount should win when only one can claim the item")
}
