//go:build integration

package integration

import (
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestCatalogAdmin(t *testing.T) {
	// Unique names so the test can rerun against a dirty database.
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	t.Run("create category and product", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, "/api/categories", adminToken,
			map[string]string{"name": "Imported " + suffix})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			out, _ := io.ReadAll(resp.Body)
			t.Fatalf("create category status = %d, want 201: %s", resp.StatusCode, out)
		}
		category := decodeJSON[struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}](t, resp)

		resp2 := doJSON(t, http.MethodPost, "/api/products", adminToken, map[string]any{
			"name":          "Test Widget " + suffix,
			"category_id":   category.ID,
			"selling_price": 49.5,
			"cost_price":    30,
			"tax_rate":      18,
			"stock":         12,
		})
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusCreated {
			out, _ := io.ReadAll(resp2.Body)
			t.Fatalf("create product status = %d, want 201: %s", resp2.StatusCode, out)
		}
		product := decodeJSON[productResponse](t, resp2)
		if product.Stock != 12 {
			t.Errorf("stock = %d, want 12", product.Stock)
		}

		t.Run("restock", func(t *testing.T) {
			path := fmt.Sprintf("/api/products/%d/restock", product.ID)
			resp := doJSON(t, http.MethodPost, path, adminToken, map[string]int{"quantity": 8})
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("restock status = %d, want 200", resp.StatusCode)
			}
			got := decodeJSON[productResponse](t, resp)
			if got.Stock != 20 {
				t.Errorf("stock after restock = %d, want 20", got.Stock)
			}
		})

		t.Run("prefix search finds it", func(t *testing.T) {
			resp := doGet(t, "/api/products/search?q=test+widget", posToken)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("search status = %d, want 200", resp.StatusCode)
			}
			results := decodeJSON[[]productResponse](t, resp)
			if len(results) == 0 {
				t.Error("search returned no results")
			}
		})
	})

	t.Run("pos role cannot create products", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, "/api/products", posToken, map[string]any{
			"name": "Nope", "category_id": 1, "selling_price": 1, "cost_price": 1, "stock": 1,
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}
	})

	t.Run("unauthenticated rejected", func(t *testing.T) {
		resp := doGet(t, "/api/products", "")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
		body := decodeJSON[errorResponse](t, resp)
		if body.Code != http.StatusUnauthorized {
			t.Errorf("error code = %d, want 401", body.Code)
		}
	})
}

func TestAnalyticsEndpoints(t *testing.T) {
	for _, path := range []string{
		"/api/analytics/summary",
		"/api/analytics/categories",
		"/api/analytics/payments",
		"/api/analytics/hours",
		"/api/analytics/weekdays",
		"/api/analytics/top-products",
	} {
		resp := doGet(t, path, adminToken)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, resp.StatusCode)
		}
		resp.Body.Close()
	}

	t.Run("forbidden for pos role", func(t *testing.T) {
		resp := doGet(t, "/api/analytics/summary", posToken)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}
	})
}
