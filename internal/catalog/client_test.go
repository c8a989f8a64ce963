package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch_DecodesProducts(t *testing.T) {
	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"products": [
				{"id": 7, "title": "Flannel Shirt", "description": "red", "price": 20, "thumbnail": "/7.jpg"},
				{"id": 9, "title": "Canvas Tote", "description": "bag", "price": 5, "thumbnail": "/9.jpg"}
			],
			"total": 2
		}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	products, err := c.Search(context.Background(), "shirt & tote")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotPath != "/products/search" {
		t.Fatalf("path = %q, want /products/search", gotPath)
	}
	if gotQuery != "shirt & tote" {
		t.Fatalf("query param not url-encoded round trip: %q", gotQuery)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].ID != 7 || products[0].Price != 20 {
		t.Fatalf("unexpected first product: %+v", products[0])
	}
}

func TestSearch_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	_, err := c.Search(context.Background(), "shirt")
	if !errors.Is(err, ErrBadStatus) {
		t.Fatalf("err = %v, want ErrBadStatus", err)
	}
}

func TestSearch_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products": [`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	if _, err := c.Search(context.Background(), "shirt"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSearch_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listening anymore

	c := NewClient(ts.URL)
	_, err := c.Search(context.Background(), "shirt")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
