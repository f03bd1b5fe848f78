package http

import (
	"errors"
	"net/http"
	"time"

	"frogbudget/internal/analytics"
	applog "frogbudget/internal/log"
	"frogbudget/internal/storage"
)

// handleDashboard serves the full analytics result for one user. Results
// are cached per user and option combination; a miss recomputes from the
// current stored state.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	includeWishlist, errResp := parseBoolParam(r, "wishlist")
	if errResp != nil {
		errResp.Write(w)
		return
	}
	rollover, errResp := parseBoolParam(r, "rollover")
	if errResp != nil {
		errResp.Write(w)
		return
	}

	opts := analytics.Options{IncludeWishlist: includeWishlist, Rollover: rollover}
	key := analytics.CacheKey(userID, opts)

	if result, ok := s.results.Get(key); ok {
		s.metrics.cacheHits.Add(1)
		NewJSONResponse().Body(result).Write(w)
		return
	}
	s.metrics.cacheMisses.Add(1)

	snap, err := s.loadSnapshot(r, userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to load analytics snapshot",
			applog.FieldUserID, userID, applog.FieldError, err)
		InternalServerError("internal error").Write(w)
		return
	}

	result := analytics.Recompute(snap, opts, time.Now())
	s.results.Set(key, result)
	NewJSONResponse().Body(result).Write(w)
}

// loadSnapshot reads one user's complete state. A user without a profile is
// legal; the engine short-circuits on the nil.
func (s *Server) loadSnapshot(r *http.Request, userID string) (analytics.Snapshot, error) {
	ctx := r.Context()
	store := s.budget.Storage()

	var snap analytics.Snapshot

	profile, err := store.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return snap, err
	}
	snap.Profile = profile

	if snap.Categories, err = store.ListCategories(ctx, userID); err != nil {
		return snap, err
	}
	if snap.Purchases, err = store.ListPurchases(ctx, userID, storage.PurchaseFilter{}); err != nil {
		return snap, err
	}
	if snap.Wishlist, err = store.ListWishlist(ctx, userID); err != nil {
		return snap, err
	}
	return snap, nil
}
