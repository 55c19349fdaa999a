// Package ratelimit throttles dashboard writes per client address.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter counts requests per client in fixed windows. Idle clients are
// forgotten by a background sweep until Stop is called.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*window

	rejected atomic.Int64
	done     chan struct{}
	stopOnce sync.Once
}

type window struct {
	start time.Time
	seen  time.Time
	count int
}

type Config struct {
	// RequestsPerMinute is the budget of one client per Window.
	RequestsPerMinute int
	Window            time.Duration
	// IdleAfter is how long a client may be silent before it is dropped.
	IdleAfter       time.Duration
	CleanupInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 120,
		Window:            time.Minute,
		IdleAfter:         10 * time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = def.IdleAfter
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	l := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow records a request from client and reports whether it fits in the
// client's current window.
func (l *Limiter) Allow(client string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[client]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		l.windows[client] = &window{start: now, seen: now, count: 1}
		return true
	}
	w.seen = now
	w.count++
	if w.count > l.cfg.RequestsPerMinute {
		l.rejected.Add(1)
		return false
	}
	return true
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

// sweep drops clients idle for longer than IdleAfter and returns how many
// were dropped.
func (l *Limiter) sweep() int {
	cutoff := l.now().Add(-l.cfg.IdleAfter)

	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for client, w := range l.windows {
		if w.seen.Before(cutoff) {
			delete(l.windows, client)
			n++
		}
	}
	return n
}

// Stop ends the background sweep. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

type Metrics struct {
	Rejected    int64
	ClientCount int64
}

func (l *Limiter) GetMetrics() Metrics {
	l.mu.Lock()
	clients := int64(len(l.windows))
	l.mu.Unlock()
	return Metrics{Rejected: l.rejected.Load(), ClientCount: clients}
}

// Middleware answers over-limit requests with onLimit, or with a plain 429
// when onLimit is nil.
func (l *Limiter) Middleware(clientOf func(*http.Request) string, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(l.cfg.Window.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.Allow(clientOf(r)) {
				next.ServeHTTP(w, r)
				return
			}
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			w.Header().Set("Retry-After", retryAfter)
			http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
		})
	}
}
