package http

import (
	"net/http"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics exposes a small JSON counter set for scraping.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]int64{
		"requests_total": s.metrics.requestsTotal.Load(),
		"responses_2xx":  s.metrics.responses2xx.Load(),
		"responses_4xx":  s.metrics.responses4xx.Load(),
		"responses_5xx":  s.metrics.responses5xx.Load(),
		"rate_limited":   s.metrics.rateLimited.Load(),
		"cache_hits":     s.metrics.cacheHits.Load(),
		"cache_misses":   s.metrics.cacheMisses.Load(),
		"cache_size":     int64(s.results.Size()),
	}).Write(w)
}
