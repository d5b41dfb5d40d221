package middleware

import (
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorTTL bounds how long an idle client keeps its token bucket. Lending
// traffic is bursty around accrual and liquidation windows, so buckets are
// dropped rather than persisted.
const visitorTTL = 5 * time.Minute

// RateLimit is the per-route-group budget from the daemon config.
type RateLimit struct {
	RequestsPerMinute float64
	Burst             int
}

// RateLimiter hands out one token bucket per (route group, client) pair.
// Groups without a configured limit pass through untouched, so read-only
// lending routes can stay unthrottled while admin routes are clamped.
type RateLimiter struct {
	logger   *log.Logger
	limits   map[string]RateLimit
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
}

func NewRateLimiter(limits map[string]RateLimit, logger *log.Logger) *RateLimiter {
	if logger == nil {
		logger = log.Default()
	}
	return &RateLimiter{
		logger:   logger,
		limits:   limits,
		visitors: make(map[string]*rate.Limiter),
	}
}

// Middleware throttles the named route group. The group key must match a key
// in the daemon's [ratelimit] config table ("lending", "token", "admin").
func (r *RateLimiter) Middleware(group string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			limit, ok := r.limits[group]
			if !ok {
				next.ServeHTTP(w, req)
				return
			}
			if !r.bucketFor(group, clientID(req), limit).Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// bucketFor returns the caller's bucket for the group, creating it on first
// sight. Buckets for different groups are independent so an admin burst does
// not starve the same operator's lending reads.
func (r *RateLimiter) bucketFor(group, client string, cfg RateLimit) *rate.Limiter {
	key := group + "|" + client
	r.mu.Lock()
	defer r.mu.Unlock()
	if limiter, ok := r.visitors[key]; ok {
		return limiter
	}
	perSecond := cfg.RequestsPerMinute / 60.0
	if perSecond <= 0 {
		perSecond = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	r.visitors[key] = limiter
	time.AfterFunc(visitorTTL, func() {
		r.mu.Lock()
		delete(r.visitors, key)
		r.mu.Unlock()
	})
	return limiter
}

// clientID resolves the caller identity behind the usual proxy headers,
// falling back to the connection's remote host.
func clientID(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := forwarded
		if comma := strings.IndexByte(forwarded, ','); comma >= 0 {
			first = forwarded[:comma]
		}
		if parsed := net.ParseIP(strings.TrimSpace(first)); parsed != nil {
			return parsed.String()
		}
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
