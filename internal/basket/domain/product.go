package domain

// Product is an immutable priced, tagged catalogue unit, owned and
// constructed by the caller. Tags are deduplicated at construction.
type Product struct {
	Key       string
	Name      string
	UnitPrice Money
	Tags      TagSet
}

// NewProduct constructs a Product, deduplicating tags.
func NewProduct(key, name string, unitPrice Money, tags ...string) Product {
	return Product{
		Key:       key,
		Name:      name,
		UnitPrice: unitPrice,
		Tags:      NewTagSet(tags...),
	}
}

// Item is a concrete basket line. FromProduct snapshots the Product's
// name, price, and tags at construction time; afterwards Item and
// Product evolve independently.
type Item struct {
	Key     string
	Name    string
	Price   Money
	Product *Product
	Tags    TagSet
}

// NewItem constructs a standalone Item not tied to any Product.
func NewItem(key, name string, price Money, tags ...string) Item {
	return Item{
		Key:   key,
		Name:  name,
		Price: price,
		Tags:  NewTagSet(tags...),
	}
}

// FromProduct snapshots a Product into a new Item carrying a reference
// back to it.
func FromProduct(key string, product *Product) Item {
	tags := make(TagSet, len(product.Tags))
	for t := range product.Tags {
		tags[t] = struct{}{}
	}
	return Item{
		Key:     key,
		Name:    product.Name,
		Price:   product.UnitPrice,
		Product: product,
		Tags:    tags,
	}
}

// WithPrice returns a copy of the item at a new effective price. Used by
// the graph runner to advance an item's effective price between layers
// without mutating the caller's original Item.
func (i Item) WithPrice(price Money) Item {
	i.Price = price
	return i
}
