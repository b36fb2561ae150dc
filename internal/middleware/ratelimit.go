package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Strob0t/notestream/internal/config"
)

// maxBuckets caps the number of tracked client IPs.
const maxBuckets = 100000

// RateLimiter is per-IP token bucket rate limiting middleware for the notes
// API. Stream endpoints are long-lived and are not routed through it.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	cfg     config.Rate
	now     func() time.Time
}

type bucket struct {
	tokens    float64
	updatedAt time.Time
}

// NewRateLimiter creates a rate limiter from cfg's sustained rate and burst.
func NewRateLimiter(cfg config.Rate) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Handler returns HTTP middleware that enforces per-IP rate limiting.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		remaining, retryAfter, allowed := rl.allow(ip)

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			slog.DebugContext(r.Context(), "rate limited", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter))))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow takes a token from ip's bucket. It returns the tokens left, the
// seconds until the next token and whether the request may proceed.
func (rl *RateLimiter) allow(ip string) (remaining int, retryAfter float64, allowed bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	burst := float64(rl.cfg.Burst)

	b, ok := rl.buckets[ip]
	if !ok {
		if len(rl.buckets) >= maxBuckets {
			return 0, 1 / rl.cfg.RequestsPerSecond, false
		}
		b = &bucket{tokens: burst, updatedAt: now}
		rl.buckets[ip] = b
	}

	b.tokens = math.Min(burst, b.tokens+now.Sub(b.updatedAt).Seconds()*rl.cfg.RequestsPerSecond)
	b.updatedAt = now

	if b.tokens < 1 {
		return 0, (1 - b.tokens) / rl.cfg.RequestsPerSecond, false
	}
	b.tokens--
	return int(b.tokens), 0, true
}

// StartCleanup drops idle buckets every cfg.CleanupInterval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(rl.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.cfg.MaxIdleTime)
	for ip, b := range rl.buckets {
		if b.updatedAt.Before(cutoff) {
			delete(rl.buckets, ip)
		}
	}
}

// Len returns the number of tracked IP buckets.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// clientIP extracts the client IP from RemoteAddr. Proxy headers are not
// trusted; they can be spoofed to dodge the limit.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
