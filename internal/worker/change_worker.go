// Package worker consumes change messages and keeps derived analytics
// fresh: on every change it reloads the user's data, recomputes the full
// result set, refreshes the cache, and mirrors new purchases to the
// spreadsheet backend.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"frogbudget/internal/amqp"
	"frogbudget/internal/analytics"
	"frogbudget/internal/cache"
	"frogbudget/internal/core"
	"frogbudget/internal/sheets"
	"frogbudget/internal/storage"
)

// Store is the subset of the repository the worker reads from.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*core.Profile, error)
	ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	ListPurchases(ctx context.Context, userID string, filter storage.PurchaseFilter) ([]core.Purchase, error)
	ListWishlist(ctx context.Context, userID string) ([]core.WishlistItem, error)
	GetPurchase(ctx context.Context, userID, id string) (*core.Purchase, error)
}

// ChangeWorker recomputes analytics when data changes.
type ChangeWorker struct {
	storage Store
	results *cache.LRUCache[*analytics.Result]
	mirror  sheets.PurchaseWriter
}

func NewChangeWorker(storage Store, results *cache.LRUCache[*analytics.Result], mirror sheets.PurchaseWriter) *ChangeWorker {
	return &ChangeWorker{
		storage: storage,
		results: results,
		mirror:  mirror,
	}
}

// HandleChange processes one change message: reload, recompute, refresh
// cache, mirror. Returning an error requeues the message; recomputation is
// idempotent so a retry is safe.
func (w *ChangeWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	if msg.UserID == "" {
		// Nothing to recompute; drop rather than requeue forever.
		slog.WarnContext(ctx, "Change message without user id, skipping",
			"table", msg.Table, "op", msg.Op)
		return nil
	}

	snap, err := w.loadSnapshot(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("load snapshot for %s: %w", msg.UserID, err)
	}

	w.refreshResults(msg.UserID, snap)

	if msg.Table == amqp.TablePurchases && msg.Op == amqp.OpInsert && msg.RecordID != "" {
		if err := w.mirrorPurchase(ctx, snap, msg.UserID, msg.RecordID); err != nil {
			return fmt.Errorf("mirror purchase %s: %w", msg.RecordID, err)
		}
	}

	return nil
}

// loadSnapshot fetches the user's full data set. A missing profile is not
// an error: the engine short-circuits on it.
func (w *ChangeWorker) loadSnapshot(ctx context.Context, userID string) (analytics.Snapshot, error) {
	var snap analytics.Snapshot

	profile, err := w.storage.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return snap, fmt.Errorf("get profile: %w", err)
	}
	snap.Profile = profile

	if snap.Categories, err = w.storage.ListCategories(ctx, userID); err != nil {
		return snap, fmt.Errorf("list categories: %w", err)
	}
	if snap.Purchases, err = w.storage.ListPurchases(ctx, userID, storage.PurchaseFilter{}); err != nil {
		return snap, fmt.Errorf("list purchases: %w", err)
	}
	if snap.Wishlist, err = w.storage.ListWishlist(ctx, userID); err != nil {
		return snap, fmt.Errorf("list wishlist: %w", err)
	}
	return snap, nil
}

// refreshResults recomputes and caches every option combination so the
// next dashboard request hits the cache regardless of its toggles.
func (w *ChangeWorker) refreshResults(userID string, snap analytics.Snapshot) {
	if w.results == nil {
		return
	}
	now := time.Now()
	for _, wishlist := range []bool{false, true} {
		for _, rollover := range []bool{false, true} {
			opts := analytics.Options{IncludeWishlist: wishlist, Rollover: rollover}
			w.results.Set(analytics.CacheKey(userID, opts), analytics.Recompute(snap, opts, now))
		}
	}
}

func (w *ChangeWorker) mirrorPurchase(ctx context.Context, snap analytics.Snapshot, userID, purchaseID string) error {
	if w.mirror == nil {
		slog.WarnContext(ctx, "No purchase mirror configured, skipping",
			"purchase_id", purchaseID)
		return nil
	}

	purchase, err := w.storage.GetPurchase(ctx, userID, purchaseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted between insert and consume; nothing to mirror.
			return nil
		}
		return fmt.Errorf("get purchase: %w", err)
	}

	categoryName := "Uncategorized"
	for _, c := range snap.Categories {
		if c.ID == purchase.CategoryID {
			categoryName = c.Name
			break
		}
	}

	ref, err := w.mirror.Append(ctx, *purchase, categoryName)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored purchase",
		"purchase_id", purchase.ID,
		"user_id", userID,
		"sheets_ref", ref,
		"amount_cents", purchase.Amount.Cents)
	return nil
}
