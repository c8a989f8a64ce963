//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"
)

// Runs against a live stack: shopfront pointed at catalogsim (or the real
// catalog), e.g.
//
//	CATALOG_URL=http://localhost:8082 go run ./cmd/shopfront &
//	go run ./cmd/catalogsim &
//	go test -tags integration ./integration
var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

func TestSystem_E2E_ShoppingFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	c := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	var search struct {
		Products []struct {
			ID    int64   `json:"id"`
			Price float64 `json:"price"`
		} `json:"products"`
	}
	doJSON(t, c, http.MethodGet, baseURL+"/search?q=shirt", nil, &search, 200)
	if len(search.Products) == 0 {
		t.Fatalf("expected search results for %q", "shirt")
	}

	pid := search.Products[0].ID

	var v struct {
		Count           int     `json:"count"`
		Total           float64 `json:"total"`
		CheckoutEnabled bool    `json:"checkout_enabled"`
	}
	doJSON(t, c, http.MethodPost, baseURL+"/cart/items", map[string]any{"product_id": pid}, &v, 200)
	doJSON(t, c, http.MethodPost, baseURL+"/cart/items", map[string]any{"product_id": pid}, &v, 200)

	if v.Count != 2 || !v.CheckoutEnabled {
		t.Fatalf("unexpected cart after two adds: %+v", v)
	}

	var out struct {
		Message string `json:"message"`
	}
	doJSON(t, c, http.MethodPost, baseURL+"/checkout", nil, &out, 200)
	if out.Message == "" {
		t.Fatal("expected checkout confirmation")
	}

	doJSON(t, c, http.MethodGet, baseURL+"/cart", nil, &v, 200)
	if v.Count != 0 || v.CheckoutEnabled {
		t.Fatalf("cart not cleared after checkout: %+v", v)
	}

	doJSON(t, c, http.MethodPost, baseURL+"/checkout", nil, nil, 409)
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service at %s never became ready", url)
		default:
		}

		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body, out any, wantStatus int) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status = %d, want %d, body %s", method, url, resp.StatusCode, wantStatus, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("unmarshal %q: %v", raw, err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
