package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromProductSnapshotsIndependently(t *testing.T) {
	product := NewProduct("sku-1", "Widget", MustMoney(1000, "GBP"), "gadget")
	item := FromProduct("line-1", &product)

	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, int64(1000), item.Price.Amount)
	assert.True(t, item.Tags.Has("gadget"))

	product.Tags["new-tag"] = struct{}{}
	assert.False(t, item.Tags.Has("new-tag"), "item tags must not alias the product's")
}

func TestWithPriceReturnsCopy(t *testing.T) {
	original := NewItem("a", "A", MustMoney(1000, "GBP"))
	updated := original.WithPrice(MustMoney(500, "GBP"))

	assert.Equal(t, int64(1000), original.Price.Amount)
	assert.Equal(t, int64(500), updated.Price.Amount)
	assert.Equal(t, original.Key, updated.Key)
}
