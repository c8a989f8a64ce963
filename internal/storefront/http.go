// Package storefront is the shopper-facing controller: it drives catalog
// search and every cart mutation. Cart state lives in the snapshot store, so
// each operation re-reads the cart before changing it and writes it back
// after; between requests the store is the system of record. With no locking
// across tabs or replicas the last write wins, which is an accepted limit of
// the design.
package storefront

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shopfront/internal/cart"
	"shopfront/internal/catalog"
	"shopfront/internal/session"
	"shopfront/pkg/kit"
)

const maxBodyBytes = 1 << 16

type Server struct {
	Store   cart.Store
	Catalog *catalog.Client
	Log     *zap.Logger

	searches *searchCache
}

func NewServer(store cart.Store, cat *catalog.Client, log *zap.Logger) *Server {
	return &Server{
		Store:    store,
		Catalog:  cat,
		Log:      log,
		searches: newSearchCache(),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			if s.Log != nil {
				s.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(session.Middleware)

		pr.Get("/search", s.handleSearch)
		pr.Get("/cart", s.handleGetCart)
		pr.Post("/cart/items", s.handleAddItem)
		pr.Patch("/cart/items/{index}", s.handleUpdateQuantity)
		pr.Delete("/cart/items/{index}", s.handleRemoveItem)
		pr.Post("/checkout", s.handleCheckout)
	})

	return r
}

// CartView is what every cart-touching response returns: the lines plus the
// derived numbers the page displays (running total, badge count, whether
// checkout is allowed).
type CartView struct {
	Items           []cart.Item `json:"items"`
	Total           float64     `json:"total"`
	Count           int         `json:"count"`
	CheckoutEnabled bool        `json:"checkout_enabled"`
}

func viewOf(items []cart.Item) CartView {
	return CartView{
		Items:           items,
		Total:           cart.Total(items),
		Count:           cart.Count(items),
		CheckoutEnabled: len(items) > 0,
	}
}

type searchResp struct {
	Query    string            `json:"query"`
	Products []catalog.Product `json:"products"`
	Message  string            `json:"message,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	token, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "please enter a search term", nil)
		return
	}

	minPrice, maxPrice, err := priceBounds(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad price bound", nil)
		return
	}

	seq := s.searches.begin(token)

	products, err := s.Catalog.Search(r.Context(), q)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("catalog search failed", zap.Error(err), zap.String("query", q))
		}
		kit.WriteError(w, r, http.StatusBadGateway, "failed to load products", nil)
		return
	}

	// The full result set is cached so add-to-cart can resolve ids later;
	// price bounds only narrow what this response shows.
	s.searches.complete(token, seq, products)

	filtered := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.Price >= minPrice && p.Price <= maxPrice {
			filtered = append(filtered, p)
		}
	}

	resp := searchResp{Query: q, Products: filtered}
	if len(filtered) == 0 {
		resp.Message = "no products found"
	}
	kit.WriteJSON(w, http.StatusOK, resp)
}

func priceBounds(r *http.Request) (minPrice, maxPrice float64, err error) {
	minPrice, maxPrice = 0, math.Inf(1)

	if v := r.URL.Query().Get("min_price"); v != "" {
		minPrice, err = strconv.ParseFloat(v, 64)
		if err != nil || minPrice < 0 {
			return 0, 0, strconv.ErrSyntax
		}
	}
	if v := r.URL.Query().Get("max_price"); v != "" {
		maxPrice, err = strconv.ParseFloat(v, 64)
		if err != nil || maxPrice < 0 {
			return 0, 0, strconv.ErrSyntax
		}
	}
	return minPrice, maxPrice, nil
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	token, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	items, err := s.Store.Get(r.Context(), token)
	if err != nil {
		s.storeError(w, r, "load cart", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, viewOf(items))
}

type addItemReq struct {
	ProductID int64 `json:"product_id"`
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	token, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	var req addItemReq
	if err := decodeBody(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if req.ProductID <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "product_id required", nil)
		return
	}

	// Ids are only meaningful against this session's latest search results.
	// A stale id (results replaced by a newer search, or never fetched) must
	// not touch the cart.
	p, found := s.searches.resolve(token, req.ProductID)
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "unknown product", map[string]any{"product_id": req.ProductID})
		return
	}

	items, err := s.Store.Get(r.Context(), token)
	if err != nil {
		s.storeError(w, r, "load cart", err)
		return
	}

	items = cart.Add(items, cart.Item{
		ProductID:   p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Thumbnail:   p.Thumbnail,
	})

	if err := s.Store.Set(r.Context(), token, items); err != nil {
		s.storeError(w, r, "save cart", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, viewOf(items))
}

type adjustReq struct {
	Delta int `json:"delta"`
}

func (s *Server) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	token, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad index", nil)
		return
	}

	var req adjustReq
	if err := decodeBody(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if req.Delta == 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "delta required", nil)
		return
	}

	items, err := s.Store.Get(r.Context(), token)
	if err != nil {
		s.storeError(w, r, "load cart", err)
		return
	}

	items = cart.AdjustQuantity(items, index, req.Delta)

	if err := s.Store.Set(r.Context(), token, items); err != nil {
		s.storeError(w, r, "save cart", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, viewOf(items))
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	token, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad index", nil)
		return
	}

	items, err := s.Store.Get(r.Context(), token)
	if err != nil {
		s.storeError(w, r, "load cart", err)
		return
	}

	items = cart.Remove(items, index)

	if err := s.Store.Set(r.Context(), token, items); err != nil {
		s.storeError(w, r, "save cart", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, viewOf(items))
}

type checkoutResp struct {
	Message string   `json:"message"`
	Cart    CartView `json:"cart"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	token, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	items, err := s.Store.Get(r.Context(), token)
	if err != nil {
		s.storeError(w, r, "load cart", err)
		return
	}
	if len(items) == 0 {
		kit.WriteError(w, r, http.StatusConflict, "your cart is empty", nil)
		return
	}

	if err := s.Store.Set(r.Context(), token, []cart.Item{}); err != nil {
		s.storeError(w, r, "clear cart", err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, checkoutResp{
		Message: "thank you for your purchase",
		Cart:    viewOf([]cart.Item{}),
	})
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if s.Log != nil {
		s.Log.Error("cart store failed", zap.String("op", op), zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
