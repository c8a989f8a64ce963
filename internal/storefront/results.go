package storefront

import (
	"sync"

	"shopfront/internal/catalog"
)

// searchCache holds each session's most recent search result set. Add-to-cart
// requests carry only a product id; the id is resolved against this cache so
// full product data never round-trips through the client.
//
// Every search draws a per-session sequence number before calling the
// catalog. A response whose number is no longer the latest is discarded, so a
// slow earlier search can never clobber the results of a newer one.
type searchCache struct {
	mu      sync.Mutex
	seq     map[string]uint64
	results map[string][]catalog.Product
}

func newSearchCache() *searchCache {
	return &searchCache{
		seq:     make(map[string]uint64),
		results: make(map[string][]catalog.Product),
	}
}

// begin registers a new in-flight search for token and returns its sequence
// number.
func (c *searchCache) begin(token string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq[token]++
	return c.seq[token]
}

// complete stores products for token if seq still identifies the latest
// search. It reports whether the result set was accepted.
func (c *searchCache) complete(token string, seq uint64, products []catalog.Product) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq[token] {
		return false
	}
	c.results[token] = products
	return true
}

// resolve looks id up in token's latest result set.
func (c *searchCache) resolve(token string, id int64) (catalog.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.results[token] {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}
