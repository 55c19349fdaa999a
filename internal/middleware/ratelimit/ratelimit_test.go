package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterAllow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 2})
	defer rl.Stop()

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Fatal("third request should be rejected")
	}
	if !rl.Allow("b") {
		t.Fatal("other clients are limited independently")
	}
	m := rl.GetMetrics()
	if m.Rejected != 1 || m.ClientCount != 2 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestLimiterMiddleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	codes := make([]int, 2)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transactions", nil))
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestLimiterWindowResetAndSweep(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1, Window: time.Minute, IdleAfter: 5 * time.Minute})
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || rl.Allow("a") {
		t.Fatal("expected one request per window")
	}
	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Fatal("new window should admit the client again")
	}

	now = now.Add(6 * time.Minute)
	if n := rl.sweep(); n != 1 {
		t.Fatalf("sweep dropped %d clients, want 1", n)
	}
	if m := rl.GetMetrics(); m.ClientCount != 0 {
		t.Fatalf("ClientCount = %d after sweep", m.ClientCount)
	}
}
