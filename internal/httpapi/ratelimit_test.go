package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenBucket_AllowsUpToCapacityThenBlocks(t *testing.T) {
	tb := NewTokenBucket(2, 0.0001) // refill far too slow to matter within the test's lifetime
	if allowed, _ := tb.Allow(); !allowed {
		t.Fatal("expected first request to be allowed")
	}
	if allowed, _ := tb.Allow(); !allowed {
		t.Fatal("expected second request (within capacity) to be allowed")
	}
	allowed, retryAfter := tb.Allow()
	if allowed {
		t.Fatal("expected third request to be blocked once capacity is exhausted")
	}
	if retryAfter <= 0 {
		t.Error("expected a positive retry-after delay once blocked")
	}
}

func TestRemoteKey_PrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.5")

	if got := remoteKey(r); got != "203.0.113.5" {
		t.Errorf("remoteKey() = %q, want %q", got, "203.0.113.5")
	}
}

func TestRemoteKey_FallsBackToRemoteAddrHost(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	if got := remoteKey(r); got != "10.0.0.1" {
		t.Errorf("remoteKey() = %q, want %q", got, "10.0.0.1")
	}
}

func TestLoginRateLimiter_Middleware_BlocksAfterLimit(t *testing.T) {
	rl := NewLoginRateLimiter(1) // one token per minute, refills far too slowly to matter here
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r1 := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	r1.RemoteAddr = "192.0.2.1:1111"
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, r1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("first request: got status %d, want %d", rec1.Code, http.StatusOK)
	}

	r2 := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	r2.RemoteAddr = "192.0.2.1:2222" // same host, different port: same remote key
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, r2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got status %d, want %d", rec2.Code, http.StatusTooManyRequests)
	}
	if rec2.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header on the 429 response")
	}

	r3 := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	r3.RemoteAddr = "198.51.100.9:1111" // different remote: independent bucket
	rec3 := httptest.NewRecorder()
	handler.ServeHTTP(rec3, r3)
	if rec3.Code != http.StatusOK {
		t.Fatalf("request from a different remote: got status %d, want %d", rec3.Code, http.StatusOK)
	}
}
