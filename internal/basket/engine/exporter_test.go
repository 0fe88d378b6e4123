package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhato/basket/internal/basket/domain"
)

func TestExportLayerEmptyWhenNoCandidates(t *testing.T) {
	layer := domain.NewLayer("l1", domain.PassThrough(""), nil)
	doc, err := ExportLayer(layer, nil)
	require.NoError(t, err)
	assert.Contains(t, doc, "no candidates")
	assert.NotContains(t, doc, "Maximize")
}

func TestExportLayerRendersSections(t *testing.T) {
	promo := domain.NewDirect("p1", domain.MatchAll(), domain.PercentageOff(pct(t, 0.1)), domain.Unlimited())
	layer := domain.NewLayer("l1", domain.PassThrough(""), []domain.Promotion{promo})
	items := []domain.Item{domain.NewItem("a", "a", domain.MustMoney(1000, "GBP"))}

	doc, err := ExportLayer(layer, items)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc, "\\* Layer \"l1\" *\\"))
	assert.Contains(t, doc, "Maximize")
	assert.Contains(t, doc, "Subject To")
	assert.Contains(t, doc, "item_a:")
	assert.Contains(t, doc, "Binaries")
	assert.Contains(t, doc, "x0")
	assert.Contains(t, doc, "Comments")
	assert.Contains(t, doc, `promotion "p1"`)
}

func TestExportLayerRendersBudgetRows(t *testing.T) {
	apps := uint32(1)
	monetary := domain.MustMoney(500, "GBP")
	promo := domain.NewDirect("p1", domain.MatchAll(), domain.PercentageOff(pct(t, 0.1)), domain.Budget{Applications: &apps, Monetary: &monetary})
	layer := domain.NewLayer("l1", domain.PassThrough(""), []domain.Promotion{promo})
	items := []domain.Item{domain.NewItem("a", "a", domain.MustMoney(1000, "GBP"))}

	doc, err := ExportLayer(layer, items)
	require.NoError(t, err)
	assert.Contains(t, doc, "applications_p1:")
	assert.Contains(t, doc, "monetary_p1:")
}

func TestExportStackConcatenatesInTraversalOrder(t *testing.T) {
	first := domain.NewLayer("first", domain.PassThrough("second"), nil)
	second := domain.NewLayer("second", domain.PassThrough(""), nil)
	stack := buildStack(t, "first", first, second)

	items := []domain.Item{domain.NewItem("a", "a", domain.MustMoney(1000, "GBP"))}
	doc, err := ExportStack(stack, map[string][]domain.Item{"first": items, "second": items})
	require.NoError(t, err)

	firstIdx := strings.Index(doc, `Layer "first"`)
	secondIdx := strings.Index(doc, `Layer "second"`)
	require.GreaterOrEqual(t, firstIdx, 0)
	require.GreaterOrEqual(t, secondIdx, 0)
	assert.Less(t, firstIdx, secondIdx)
}
