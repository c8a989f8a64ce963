// Package catalogsim is a stand-in product catalog for local development and
// tests. It speaks the same wire shape as the real catalog service so the
// storefront cannot tell them apart.
package catalogsim

import (
	"context"
	"sort"
	"strings"
	"sync"

	"shopfront/internal/catalog"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[int64]catalog.Product
}

// NewMemStore seeds a small apparel-heavy product set.
func NewMemStore() *MemStore {
	s := &MemStore{m: make(map[int64]catalog.Product)}
	for _, p := range []catalog.Product{
		{ID: 1, Title: "Classic Cotton Shirt", Description: "Plain white cotton shirt", Price: 19.99, Thumbnail: "/img/1.jpg"},
		{ID: 2, Title: "Denim Jacket", Description: "Stonewashed denim jacket", Price: 59.50, Thumbnail: "/img/2.jpg"},
		{ID: 3, Title: "Flannel Shirt", Description: "Red checked flannel shirt", Price: 24.00, Thumbnail: "/img/3.jpg"},
		{ID: 4, Title: "Running Shoes", Description: "Lightweight mesh running shoes", Price: 74.95, Thumbnail: "/img/4.jpg"},
		{ID: 5, Title: "Wool Beanie", Description: "Ribbed wool beanie", Price: 12.00, Thumbnail: "/img/5.jpg"},
		{ID: 6, Title: "Linen Shirt", Description: "Breathable summer linen shirt", Price: 34.90, Thumbnail: "/img/6.jpg"},
		{ID: 7, Title: "Leather Belt", Description: "Full-grain leather belt", Price: 20.00, Thumbnail: "/img/7.jpg"},
		{ID: 8, Title: "Canvas Tote", Description: "Heavy canvas tote bag", Price: 5.00, Thumbnail: "/img/8.jpg"},
	} {
		s.m[p.ID] = p
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

// Search matches q case-insensitively against title and description. An
// empty query returns the whole set, like the real catalog does.
func (s *MemStore) Search(ctx context.Context, q string) ([]catalog.Product, error) {
	q = strings.ToLower(strings.TrimSpace(q))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, 0, len(s.m))
	for _, p := range s.m {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (catalog.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok, nil
}
