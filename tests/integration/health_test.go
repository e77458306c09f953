//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestHealthEndpoints(t *testing.T) {
	t.Run("livez", func(t *testing.T) {
		resp := doGet(t, "/livez", "")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("livez status = %d, want 200", resp.StatusCode)
		}
		body := decodeJSON[healthResponse](t, resp)
		if body.Status != "ok" {
			t.Errorf("livez status = %q, want ok", body.Status)
		}
	})

	t.Run("readyz", func(t *testing.T) {
		resp := doGet(t, "/readyz", "")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("readyz status = %d, want 200", resp.StatusCode)
		}
	})
}
