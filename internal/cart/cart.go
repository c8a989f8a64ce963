package cart

// Item is one cart line: a product snapshot plus a quantity. Identity within
// a cart is the product id; a well-formed cart has at most one line per id
// and every quantity >= 1.
type Item struct {
	ProductID   int64   `json:"product_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Thumbnail   string  `json:"thumbnail"`
	Quantity    int     `json:"quantity"`
}

// Add merges p into items: an existing line with the same product id gains
// one unit, otherwise a new quantity-1 line is appended. p's Quantity field
// is ignored.
func Add(items []Item, p Item) []Item {
	for i := range items {
		if items[i].ProductID == p.ProductID {
			items[i].Quantity++
			return items
		}
	}
	p.Quantity = 1
	return append(items, p)
}

// AdjustQuantity changes the quantity of the line at index by delta. A
// resulting quantity below 1 removes the line. An out-of-range index leaves
// the cart unchanged; the caller may be holding a position from a render that
// another tab has since invalidated.
func AdjustQuantity(items []Item, index, delta int) []Item {
	if index < 0 || index >= len(items) {
		return items
	}
	items[index].Quantity += delta
	if items[index].Quantity < 1 {
		return Remove(items, index)
	}
	return items
}

// Remove deletes the line at index, preserving order. Out-of-range indexes
// are a no-op.
func Remove(items []Item, index int) []Item {
	if index < 0 || index >= len(items) {
		return items
	}
	return append(items[:index], items[index+1:]...)
}

// Total is the cart's price total: sum of price times quantity.
func Total(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// Count is the badge count: sum of quantities.
func Count(items []Item) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
