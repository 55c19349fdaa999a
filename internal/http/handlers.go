package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports readiness. The dashboard keeps serving cached data
// while the store is offline, so only missing templates make it not ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	state := s.ctrl.State()
	store := map[string]any{"online": state.Online()}
	if last := state.LastRefresh(); !last.IsZero() {
		store["last_refresh"] = last.Format(time.RFC3339)
	}
	checks["store"] = store

	stats := s.ctrl.Documents().Stats()
	checks["report_cache"] = map[string]any{"entries": stats.Size, "status": "ok"}

	limits := s.limiter.GetMetrics()
	checks["rate_limiter"] = map[string]any{"active_clients": limits.ClientCount, "status": "ok"}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.trace.GetMetrics()
	limits := s.limiter.GetMetrics()
	cacheStats := s.ctrl.Documents().Stats()
	state := s.ctrl.State()

	online := 0
	if state.Online() {
		online = 1
	}

	w.WriteHeader(http.StatusOK)
	metric(w, "http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric(w, "http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric(w, "http_response_time_avg_ms", "gauge", "Average response time", traceMetrics.AverageResponseTime.Milliseconds())
	metric(w, "transactions_cached", "gauge", "Transactions in the dashboard cache", len(state.Transactions()))
	metric(w, "store_online", "gauge", "Whether the last store check succeeded", online)
	metric(w, "report_cache_hits_total", "counter", "Report cache hits", cacheStats.Hits)
	metric(w, "report_cache_misses_total", "counter", "Report cache misses", cacheStats.Misses)
	metric(w, "report_cache_entries", "gauge", "Built reports held for download", cacheStats.Size)
	metric(w, "rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", limits.Rejected)
	metric(w, "active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", limits.ClientCount)
	metric(w, "uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.started).Seconds()))
}

func metric[T int | int64](w http.ResponseWriter, name, kind, help string, value T) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %d\n\n", name, value)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
