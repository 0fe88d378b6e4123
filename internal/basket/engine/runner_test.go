package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhato/basket/internal/basket/domain"
)

func buildStack(t *testing.T, root string, layers ...domain.Layer) domain.Stack {
	t.Helper()
	builder := NewStackBuilder(root)
	for _, l := range layers {
		builder.AddLayer(l)
	}
	stack, err := builder.Build()
	require.NoError(t, err)
	return stack
}

func TestRunnerProcessSingleLayerPassThrough(t *testing.T) {
	promo := domain.NewDirect("p1", domain.MatchAll(), domain.PercentageOff(pct(t, 0.1)), domain.Unlimited())
	layer := domain.NewLayer("l1", domain.PassThrough(""), []domain.Promotion{promo})
	stack := buildStack(t, "l1", layer)

	items := []domain.Item{domain.NewItem("a", "a", domain.MustMoney(1000, "GBP"))}
	runner := NewRunner(stack)
	receipt, err := runner.Process(items)
	require.NoError(t, err)
	require.Len(t, receipt.Redemptions, 1)
	assert.Equal(t, int64(900), receipt.Redemptions[0].FinalPrice.Amount)
	assert.Equal(t, int64(900), receipt.Total.Amount)
	assert.Empty(t, receipt.FullPriceItems)
}

func TestRunnerProcessChainsThroughLayers(t *testing.T) {
	p1 := domain.NewDirect("p1", domain.MatchAll(), domain.AmountOff(domain.MustMoney(100, "GBP")), domain.Unlimited())
	p2 := domain.NewDirect("p2", domain.MatchAll(), domain.AmountOff(domain.MustMoney(50, "GBP")), domain.Unlimited())
	first := domain.NewLayer("first", domain.PassThrough("second"), []domain.Promotion{p1})
	second := domain.NewLayer("second", domain.PassThrough(""), []domain.Promotion{p2})
	stack := buildStack(t, "first", first, second)

	items := []domain.Item{domain.NewItem("a", "a", domain.MustMoney(1000, "GBP"))}
	runner := NewRunner(stack)
	receipt, err := runner.Process(items)
	require.NoError(t, err)
	require.Len(t, receipt.Redemptions, 2)
	assert.Equal(t, int64(850), receipt.Total.Amount, "both layers' discounts should compound on the running price")
}

func TestRunnerProcessSplitRoutesByParticipation(t *testing.T) {
	discountable := domain.NewDirect("p1", domain.And(domain.HasAll("sale")), domain.PercentageOff(pct(t, 0.5)), domain.Unlimited())
	root := domain.NewLayer("root", domain.Split("redeemed", "untouched"), []domain.Promotion{discountable})
	redeemed := domain.NewLayer("redeemed", domain.PassThrough(""), nil)
	untouched := domain.NewLayer("untouched", domain.PassThrough(""), nil)
	stack := buildStack(t, "root", root, redeemed, untouched)

	items := []domain.Item{
		domain.NewItem("a", "a", domain.MustMoney(1000, "GBP"), "sale"),
		domain.NewItem("b", "b", domain.MustMoney(500, "GBP")),
	}
	runner := NewRunner(stack)
	receipt, err := runner.Process(items)
	require.NoError(t, err)
	require.Len(t, receipt.Redemptions, 1)
	assert.Equal(t, "a", receipt.Redemptions[0].ItemKey)
	require.Len(t, receipt.FullPriceItems, 1)
	assert.Equal(t, "b", receipt.FullPriceItems[0].Key)
}

func TestRunnerProcessNoPromotionsLeavesItemsFullPrice(t *testing.T) {
	layer := domain.NewLayer("l1", domain.PassThrough(""), nil)
	stack := buildStack(t, "l1", layer)

	items := []domain.Item{domain.NewItem("a", "a", domain.MustMoney(1000, "GBP"))}
	runner := NewRunner(stack)
	receipt, err := runner.Process(items)
	require.NoError(t, err)
	assert.Empty(t, receipt.Redemptions)
	require.Len(t, receipt.FullPriceItems, 1)
	assert.Equal(t, int64(1000), receipt.Total.Amount)
}

func TestTraversalOrderBreadthFirst(t *testing.T) {
	root := domain.NewLayer("root", domain.Split("left", "right"), nil)
	left := domain.NewLayer("left", domain.PassThrough(""), nil)
	right := domain.NewLayer("right", domain.PassThrough(""), nil)
	stack := buildStack(t, "root", root, left, right)

	order, err := traversalOrder(stack)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "left", "right"}, order)
}
