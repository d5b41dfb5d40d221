package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(cfg CORSConfig) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return CORS(cfg)(inner)
}

func TestCORSDefaultsAllowAnyOrigin(t *testing.T) {
	handler := corsHandler(CORSConfig{})
	req := httptest.NewRequest(http.MethodGet, "/v1/lending/pool", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q, want *", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCORSEchoesConfiguredOrigin(t *testing.T) {
	handler := corsHandler(CORSConfig{AllowedOrigins: []string{"https://pool.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/v1/lending/supply", nil)
	req.Header.Set("Origin", "https://pool.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://pool.example" {
		t.Fatalf("allow-origin = %q, want the configured origin", got)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/lending/pool", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow-origin = %q for unlisted origin, want unset", got)
	}
}
