package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"frogbudget/internal/analytics"
	"frogbudget/internal/cache"
	applog "frogbudget/internal/log"
	"frogbudget/internal/services"
)

type Server struct {
	http.Server
	budget      *services.BudgetService
	rateLimiter *rateLimiter
	logger      *applog.Logger
	httpLog     *applog.HTTPLogger

	// results caches computed analytics per user and option combination.
	// Mutations invalidate; the change worker re-warms via AMQP.
	results      *cache.LRUCache[*analytics.Result]
	cacheManager *cache.Manager

	metrics      serverMetrics
	shutdownOnce sync.Once
}

// serverMetrics holds the counters exposed on /metrics.
type serverMetrics struct {
	requestsTotal  atomic.Int64
	responses2xx   atomic.Int64
	responses4xx   atomic.Int64
	responses5xx   atomic.Int64
	rateLimited    atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
}

// NewServer configures routes, middleware and the analytics cache,
// returning a ready-to-run http.Server.
func NewServer(addr string, budget *services.BudgetService, cacheSize int, cacheTTL time.Duration, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	httpLogger := logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		budget:       budget,
		rateLimiter:  newRateLimiter(),
		logger:       httpLogger,
		httpLog:      applog.NewHTTPLogger(httpLogger),
		results:      cache.NewLRUCache[*analytics.Result](cacheSize, cacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.results)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/dashboard", s.wrap(s.handleDashboard))

	mux.HandleFunc("GET /api/profile", s.wrap(s.handleGetProfile))
	mux.HandleFunc("PUT /api/profile", s.wrap(s.handlePutProfile))

	mux.HandleFunc("GET /api/categories", s.wrap(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.wrap(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.wrap(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.wrap(s.handleDeleteCategory))
	mux.HandleFunc("POST /api/categories/reorder", s.wrap(s.handleReorderCategories))
	mux.HandleFunc("POST /api/categories/seed", s.wrap(s.handleSeedCategories))

	mux.HandleFunc("GET /api/purchases", s.wrap(s.handleListPurchases))
	mux.HandleFunc("POST /api/purchases", s.wrap(s.handleCreatePurchase))
	mux.HandleFunc("PUT /api/purchases/{id}", s.wrap(s.handleUpdatePurchase))
	mux.HandleFunc("DELETE /api/purchases/{id}", s.wrap(s.handleDeletePurchase))
	mux.HandleFunc("GET /api/purchases/export.csv", s.wrap(s.handleExportPurchases))
	mux.HandleFunc("POST /api/purchases/import", s.wrap(s.handleImportPurchases))

	mux.HandleFunc("GET /api/wishlist", s.wrap(s.handleListWishlist))
	mux.HandleFunc("POST /api/wishlist", s.wrap(s.handleCreateWishlistItem))
	mux.HandleFunc("PUT /api/wishlist/{id}", s.wrap(s.handleUpdateWishlistItem))
	mux.HandleFunc("DELETE /api/wishlist/{id}", s.wrap(s.handleDeleteWishlistItem))

	return s
}

// wrap applies the common middleware chain: request ID, security headers,
// rate limiting on mutating methods, and request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), applog.RequestIDContextKey, requestID)
		r = r.WithContext(ctx)

		s.metrics.requestsTotal.Add(1)
		s.httpLog.LogStart(ctx, r, ip)

		if isMutating(r.Method) && !s.rateLimiter.allow(ip) {
			s.metrics.rateLimited.Add(1)
			s.logger.WarnContext(ctx, "rate limit exceeded",
				applog.FieldClientIP, ip,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		switch {
		case rw.statusCode >= 500:
			s.metrics.responses5xx.Add(1)
		case rw.statusCode >= 400:
			s.metrics.responses4xx.Add(1)
		default:
			s.metrics.responses2xx.Add(1)
		}
		s.httpLog.LogEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), ip)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// invalidateResults drops every cached option combination for a user after
// a mutation so the next dashboard read recomputes from fresh data.
func (s *Server) invalidateResults(userID string) {
	for _, opts := range []analytics.Options{
		{},
		{IncludeWishlist: true},
		{Rollover: true},
		{IncludeWishlist: true, Rollover: true},
	} {
		s.results.Delete(analytics.CacheKey(userID, opts))
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
