package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"frogbudget/internal/amqp"
	"frogbudget/internal/core"
	"frogbudget/internal/csvio"
	"frogbudget/internal/storage"
)

// ErrAlreadySeeded is returned when default seeding is requested for a
// user that already has categories.
var ErrAlreadySeeded = errors.New("categories already seeded")

// ErrInvalidInput marks errors caused by input that failed domain
// validation, so transport layers can map them to client errors.
var ErrInvalidInput = errors.New("invalid input")

// BudgetService orchestrates writes across SQLite and AMQP. Every mutation
// lands in SQLite first; the change event is published best-effort so a
// broker outage never fails a request.
type BudgetService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewBudgetService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *BudgetService {
	return &BudgetService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

func (s *BudgetService) Storage() *storage.SQLiteRepository {
	return s.storage
}

// SaveProfile validates and upserts the profile, then announces the change.
func (s *BudgetService) SaveProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate profile: %w", errors.Join(ErrInvalidInput, err))
	}
	if err := s.storage.UpsertProfile(ctx, p); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.TableProfiles, amqp.OpUpdate, p.UserID, p.UserID)
	return nil
}

// CreateCategory validates and stores a category.
func (s *BudgetService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validate category: %w", errors.Join(ErrInvalidInput, err))
	}
	c.IsActive = true
	created, err := s.storage.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	s.publishChange(ctx, amqp.TableCategories, amqp.OpInsert, created.UserID, created.ID)
	return created, nil
}

func (s *BudgetService) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate category: %w", errors.Join(ErrInvalidInput, err))
	}
	if err := s.storage.UpdateCategory(ctx, c); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.TableCategories, amqp.OpUpdate, c.UserID, c.ID)
	return nil
}

func (s *BudgetService) DeleteCategory(ctx context.Context, userID, id string) error {
	if err := s.storage.SoftDeleteCategory(ctx, userID, id); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.TableCategories, amqp.OpDelete, userID, id)
	return nil
}

func (s *BudgetService) ReorderCategories(ctx context.Context, userID string, orderedIDs []string) error {
	if err := s.storage.ReorderCategories(ctx, userID, orderedIDs); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.TableCategories, amqp.OpUpdate, userID, "")
	return nil
}

// SeedDefaultCategories inserts the starter category split. It refuses to
// run for a user that already has categories, including soft-deleted ones.
func (s *BudgetService) SeedDefaultCategories(ctx context.Context, userID string) ([]core.Category, error) {
	count, err := s.storage.CountCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadySeeded
	}

	seeded := make([]core.Category, 0, len(defaultCategories))
	for _, c := range DefaultCategories(userID) {
		created, err := s.storage.CreateCategory(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		seeded = append(seeded, created)
	}

	slog.InfoContext(ctx, "Seeded default categories",
		"user_id", userID,
		"count", len(seeded))
	s.publishChange(ctx, amqp.TableCategories, amqp.OpInsert, userID, "")
	return seeded, nil
}

// CreatePurchase validates the purchase, checks the category belongs to
// the user, and stores it.
func (s *BudgetService) CreatePurchase(ctx context.Context, p core.Purchase) (core.Purchase, error) {
	if err := p.Validate(); err != nil {
		return core.Purchase{}, fmt.Errorf("validate purchase: %w", errors.Join(ErrInvalidInput, err))
	}
	if err := s.categoryExists(ctx, p.UserID, p.CategoryID); err != nil {
		return core.Purchase{}, err
	}
	created, err := s.storage.CreatePurchase(ctx, p)
	if err != nil {
		return core.Purchase{}, err
	}
	s.publishChange(ctx, amqp.TablePurchases, amqp.OpInsert, created.UserID, created.ID)
	return created, nil
}

func (s *BudgetService) UpdatePurchase(ctx context.Context, p core.Purchase) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate purchase: %w", errors.Join(ErrInvalidInput, err))
	}
	if err := s.categoryExists(ctx, p.UserID, p.CategoryID); err != nil {
		return err
	}
	if err := s.storage.UpdatePurchase(ctx, p); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.TablePurchases, amqp.OpUpdate, p.UserID, p.ID)
	return nil
}

func (s *BudgetService) DeletePurchase(ctx context.Context, userID, id string) error {
	if err := s.storage.DeletePurchase(ctx, userID, id); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.TablePurchases, amqp.OpDelete, userID, id)
	return nil
}

// ImportPurchases stores parsed statement rows under the given category.
// Rows are validated individually; the first failure aborts the import.
func (s *BudgetService) ImportPurchases(ctx context.Context, userID, categoryID string, rows []csvio.ImportedRow) ([]core.Purchase, error) {
	if err := s.categoryExists(ctx, userID, categoryID); err != nil {
		return nil, err
	}

	imported := make([]core.Purchase, 0, len(rows))
	for _, row := range rows {
		p := core.Purchase{
			UserID:     userID,
			CategoryID: categoryID,
			Name:       row.Name,
			Amount:     row.Amount,
			Date:       row.Date,
		}
		if err := p.Validate(); err != nil {
			return imported, fmt.Errorf("validate imported row %q: %w", row.Name, errors.Join(ErrInvalidInput, err))
		}
		created, err := s.storage.CreatePurchase(ctx, p)
		if err != nil {
			return imported, fmt.Errorf("store imported row %q: %w", row.Name, err)
		}
		imported = append(imported, created)
	}

	if len(imported) > 0 {
		slog.InfoContext(ctx, "Imported purchases",
			"user_id", userID,
			"category_id", categoryID,
			"count", len(imported))
		s.publishChange(ctx, amqp.TablePurchases, amqp.OpInsert, userID, "")
	}
	return imported, nil
}

func (s *BudgetService) CreateWishlistItem(ctx context.Context, w core.WishlistItem) (core.WishlistItem, error) {
	if err := w.Validate(); err != nil {
		return core.WishlistItem{}, fmt.Errorf("validate wishlist item: %w", errors.Join(ErrInvalidInput, err))
	}
	if err := s.categoryExists(ctx, w.UserID, w.CategoryID); err != nil {
		return core.WishlistItem{}, err
	}
	created, err := s.storage.CreateWishlistItem(ctx, w)
	if err != nil {
		return core.WishlistItem{}, err
	}
	s.publishChange(ctx, amqp.TableWishlist, amqp.OpInsert, created.UserID, created.ID)
	return created, nil
}

func (s *BudgetService) UpdateWishlistItem(ctx context.Context, w core.WishlistItem) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("validate wishlist item: %w", errors.Join(ErrInvalidInput, err))
	}
	if err := s.storage.UpdateWishlistItem(ctx, w); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.TableWishlist, amqp.OpUpdate, w.UserID, w.ID)
	return nil
}

func (s *BudgetService) DeleteWishlistItem(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteWishlistItem(ctx, userID, id); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.TableWishlist, amqp.OpDelete, userID, id)
	return nil
}

// categoryExists confirms the category is active and belongs to the user.
func (s *BudgetService) categoryExists(ctx context.Context, userID, categoryID string) error {
	categories, err := s.storage.ListCategories(ctx, userID)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if c.ID == categoryID {
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", categoryID, storage.ErrNotFound)
}

func (s *BudgetService) publishChange(ctx context.Context, table, op, userID, recordID string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping change message",
			"table", table, "op", op)
		return
	}
	if err := s.amqpClient.PublishChange(ctx, table, op, userID, recordID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"table", table,
			"op", op,
			"user_id", userID,
			"record_id", recordID,
			"error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *BudgetService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close budget service: %v", errs)
	}

	return nil
}
