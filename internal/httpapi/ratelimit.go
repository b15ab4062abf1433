package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// TokenBucket implements a token bucket rate limiter, kept from the
// teacher's per-user limiter but re-keyed for the single place this
// service throttles: the login endpoint (§4.8, supplemented), keyed
// per remote address rather than per authenticated user, since an
// unauthenticated caller has no user id yet.
type TokenBucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     float64(capacity),
		capacity:   float64(capacity),
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow reports whether a token is available and consumes it if so,
// along with the retry-after delay to report when it isn't.
func (tb *TokenBucket) Allow() (allowed bool, retryAfter time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true, 0
	}

	secondsUntilNext := (1.0 - tb.tokens) / tb.refillRate
	return false, time.Duration(secondsUntilNext * float64(time.Second))
}

// LoginRateLimiter holds one TokenBucket per remote address, cleaning
// up idle buckets so long-running servers don't leak memory.
type LoginRateLimiter struct {
	buckets   map[string]*TokenBucket
	perMinute int
	mu        sync.Mutex
}

func NewLoginRateLimiter(perMinute int) *LoginRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	rl := &LoginRateLimiter{
		buckets:   make(map[string]*TokenBucket),
		perMinute: perMinute,
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *LoginRateLimiter) bucket(key string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok {
		b = NewTokenBucket(rl.perMinute, float64(rl.perMinute)/60.0)
		rl.buckets[key] = b
	}
	return b
}

func (rl *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		for key, b := range rl.buckets {
			b.mu.Lock()
			if time.Since(b.lastRefill) > time.Hour {
				delete(rl.buckets, key)
			}
			b.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}

// Middleware enforces the limiter per remote address. It wraps only the
// login route — every other endpoint apart from the /health and /readyz
// probes requires an authenticated membership already, which is a much
// stronger throttle than an IP key.
func (rl *LoginRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := remoteKey(r)
		allowed, retryAfter := rl.bucket(key).Allow()
		if !allowed {
			secs := int(retryAfter.Seconds())
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			log.Warn().Str("remote", key).Str("path", r.URL.Path).Msg("login rate limit exceeded")
			writeError(w, r, http.StatusTooManyRequests, "too many login attempts, retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func remoteKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
