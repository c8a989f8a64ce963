package catalogsim_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"shopfront/internal/catalog"
	"shopfront/internal/catalogsim"
)

func newTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &catalogsim.Server{Store: catalogsim.NewMemStore(), Log: zap.NewNop()}
	h := catalogsim.NewHandler(s, catalogsim.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalogsim",
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("unmarshal %q: %v", raw, err)
		}
	}
	return resp.StatusCode
}

func TestSearch_MatchesTitleAndDescription(t *testing.T) {
	ts := newTS(t)

	var resp struct {
		Products []catalog.Product `json:"products"`
		Total    int               `json:"total"`
	}
	if code := get(t, ts.URL+"/products/search?q=ShIrT", &resp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}

	if resp.Total != 3 || len(resp.Products) != 3 {
		t.Fatalf("expected 3 shirts, got %+v", resp)
	}
	for i := 1; i < len(resp.Products); i++ {
		if resp.Products[i-1].ID >= resp.Products[i].ID {
			t.Fatalf("results not sorted by id: %+v", resp.Products)
		}
	}
}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	ts := newTS(t)

	var resp struct {
		Total int `json:"total"`
	}
	if code := get(t, ts.URL+"/products/search", &resp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Total != 8 {
		t.Fatalf("total = %d, want the full seeded set", resp.Total)
	}
}

func TestGetProduct(t *testing.T) {
	ts := newTS(t)

	var p catalog.Product
	if code := get(t, ts.URL+"/products/4", &p); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if p.ID != 4 || p.Title == "" || p.Price <= 0 {
		t.Fatalf("unexpected product: %+v", p)
	}

	if code := get(t, ts.URL+"/products/99", nil); code != http.StatusNotFound {
		t.Fatalf("missing product status = %d, want 404", code)
	}
	if code := get(t, ts.URL+"/products/abc", nil); code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", code)
	}
}
