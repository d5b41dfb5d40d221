package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func limitedHandler(limiter *RateLimiter, key string) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return limiter.Middleware(key)(inner)
}

func doRequest(t *testing.T, handler http.Handler, remote string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/lending/pool", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiterEnforcesBurst(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"lending": {RequestsPerMinute: 60, Burst: 2},
	}, nil)
	handler := limitedHandler(limiter, "lending")

	if code := doRequest(t, handler, "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first request blocked: %d", code)
	}
	if code := doRequest(t, handler, "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("second request blocked: %d", code)
	}
	if code := doRequest(t, handler, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("expected throttle, got %d", code)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"lending": {RequestsPerMinute: 60, Burst: 1},
	}, nil)
	handler := limitedHandler(limiter, "lending")

	if code := doRequest(t, handler, "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("client A blocked: %d", code)
	}
	if code := doRequest(t, handler, "10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("client B throttled by client A: %d", code)
	}
	if code := doRequest(t, handler, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("client A not throttled: %d", code)
	}
}

func TestRateLimiterIsolatesGroups(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"lending": {RequestsPerMinute: 60, Burst: 1},
		"admin":   {RequestsPerMinute: 60, Burst: 1},
	}, nil)
	lending := limitedHandler(limiter, "lending")
	admin := limitedHandler(limiter, "admin")

	if code := doRequest(t, lending, "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("lending request blocked: %d", code)
	}
	// Exhausting the lending bucket leaves the same client's admin budget intact.
	if code := doRequest(t, admin, "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("admin request throttled by lending bucket: %d", code)
	}
	if code := doRequest(t, lending, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("lending bucket not exhausted: %d", code)
	}
}

func TestRateLimiterSkipsUnknownKeys(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{}, nil)
	handler := limitedHandler(limiter, "lending")

	for i := 0; i < 10; i++ {
		if code := doRequest(t, handler, "10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d blocked without configured limit: %d", i, code)
		}
	}
}

func TestRateLimiterHonorsForwardedHeaders(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"lending": {RequestsPerMinute: 60, Burst: 1},
	}, nil)
	handler := limitedHandler(limiter, "lending")

	req := httptest.NewRequest(http.MethodGet, "/v1/lending/pool", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Real-IP", "203.0.113.7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("forwarded client blocked: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("forwarded client not throttled: %d", rec.Code)
	}
}
