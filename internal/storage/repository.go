package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"frogbudget/internal/core"
)

// ErrNotFound is returned when a requested row does not exist for the user.
var ErrNotFound = errors.New("record not found")

// PurchaseFilter narrows a purchase listing. Zero values mean "no filter".
type PurchaseFilter struct {
	CategoryID string
	From       core.Date
	To         core.Date
}

// SQLiteRepository persists all four collections. Every query filters by
// user id; no operation can see another user's rows.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetProfile returns the user's profile, or ErrNotFound when none exists.
func (r *SQLiteRepository) GetProfile(ctx context.Context, userID string) (*core.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, income_amount_cents, income_frequency, currency
		 FROM profiles WHERE user_id = ?`, userID)

	var p core.Profile
	var cents int64
	var freq string
	if err := row.Scan(&p.UserID, &cents, &freq, &p.Currency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.IncomeAmount = core.Money{Cents: cents}
	p.IncomeFrequency = core.IncomeFrequency(freq)
	return &p, nil
}

// UpsertProfile creates or replaces the user's profile row.
func (r *SQLiteRepository) UpsertProfile(ctx context.Context, p core.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, income_amount_cents, income_frequency, currency)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   income_amount_cents = excluded.income_amount_cents,
		   income_frequency    = excluded.income_frequency,
		   currency            = excluded.currency,
		   updated_at          = CURRENT_TIMESTAMP`,
		p.UserID, p.IncomeAmount.Cents, string(p.IncomeFrequency), p.Currency)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	slog.InfoContext(ctx, "Profile saved",
		"user_id", p.UserID,
		"income_cents", p.IncomeAmount.Cents,
		"frequency", p.IncomeFrequency)
	return nil
}

// ListCategories returns the user's active categories ordered by ord ASC.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, percentage, color, ord, is_active
		 FROM categories WHERE user_id = ? AND is_active = 1
		 ORDER BY ord ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Percentage, &c.Color, &c.Order, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CountCategories includes soft-deleted rows; it decides whether the
// default seeding step has ever run for this user.
func (r *SQLiteRepository) CountCategories(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// CreateCategory inserts a category, assigning an id when absent.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, percentage, color, ord, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Percentage, c.Color, c.Order, c.IsActive)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"id", c.ID,
		"user_id", c.UserID,
		"name", c.Name,
		"percentage", c.Percentage)
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories
		 SET name = ?, percentage = ?, color = ?, ord = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		c.Name, c.Percentage, c.Color, c.Order, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

// SoftDeleteCategory flags the category inactive so historical purchases
// stay resolvable.
func (r *SQLiteRepository) SoftDeleteCategory(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("soft delete category: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

// ReorderCategories rewrites ord for the given id sequence.
func (r *SQLiteRepository) ReorderCategories(ctx context.Context, userID string, orderedIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback()

	for i, id := range orderedIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE categories SET ord = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND user_id = ?`, i, id, userID); err != nil {
			return fmt.Errorf("reorder category %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// ListPurchases returns the user's purchases, optionally filtered, newest
// date first.
func (r *SQLiteRepository) ListPurchases(ctx context.Context, userID string, filter PurchaseFilter) ([]core.Purchase, error) {
	query := `SELECT id, user_id, category_id, name, amount_cents, purchase_date, notes, created_at
	 FROM purchases WHERE user_id = ?`
	args := []any{userID}

	if filter.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if !filter.From.IsZero() {
		query += ` AND purchase_date >= ?`
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		query += ` AND purchase_date <= ?`
		args = append(args, filter.To.String())
	}
	query += ` ORDER BY purchase_date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []core.Purchase
	for rows.Next() {
		var p core.Purchase
		var cents int64
		var dateStr string
		if err := rows.Scan(&p.ID, &p.UserID, &p.CategoryID, &p.Name, &cents, &dateStr, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		p.Amount = core.Money{Cents: cents}
		if p.Date, err = core.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("parse purchase date %q: %w", dateStr, err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (r *SQLiteRepository) GetPurchase(ctx context.Context, userID, id string) (*core.Purchase, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, name, amount_cents, purchase_date, notes, created_at
		 FROM purchases WHERE id = ? AND user_id = ?`, id, userID)

	var p core.Purchase
	var cents int64
	var dateStr string
	err := row.Scan(&p.ID, &p.UserID, &p.CategoryID, &p.Name, &cents, &dateStr, &p.Notes, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	p.Amount = core.Money{Cents: cents}
	if p.Date, err = core.ParseDate(dateStr); err != nil {
		return nil, fmt.Errorf("parse purchase date %q: %w", dateStr, err)
	}
	return &p, nil
}

func (r *SQLiteRepository) CreatePurchase(ctx context.Context, p core.Purchase) (core.Purchase, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO purchases (id, user_id, category_id, name, amount_cents, purchase_date, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.CategoryID, p.Name, p.Amount.Cents, p.Date.String(), p.Notes)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("create purchase: %w", err)
	}

	slog.InfoContext(ctx, "Purchase saved",
		"id", p.ID,
		"user_id", p.UserID,
		"name", p.Name,
		"amount_cents", p.Amount.Cents,
		"date", p.Date.String())
	return p, nil
}

func (r *SQLiteRepository) UpdatePurchase(ctx context.Context, p core.Purchase) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE purchases
		 SET category_id = ?, name = ?, amount_cents = ?, purchase_date = ?, notes = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		p.CategoryID, p.Name, p.Amount.Cents, p.Date.String(), p.Notes, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *SQLiteRepository) DeletePurchase(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM purchases WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *SQLiteRepository) ListWishlist(ctx context.Context, userID string) ([]core.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, name, amount_cents, priority, notes
		 FROM wishlist WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	var items []core.WishlistItem
	for rows.Next() {
		var w core.WishlistItem
		var cents int64
		var priority string
		if err := rows.Scan(&w.ID, &w.UserID, &w.CategoryID, &w.Name, &cents, &priority, &w.Notes); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		w.Amount = core.Money{Cents: cents}
		w.Priority = core.Priority(priority)
		items = append(items, w)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) CreateWishlistItem(ctx context.Context, w core.WishlistItem) (core.WishlistItem, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wishlist (id, user_id, category_id, name, amount_cents, priority, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.CategoryID, w.Name, w.Amount.Cents, string(w.Priority), w.Notes)
	if err != nil {
		return core.WishlistItem{}, fmt.Errorf("create wishlist item: %w", err)
	}
	return w, nil
}

func (r *SQLiteRepository) UpdateWishlistItem(ctx context.Context, w core.WishlistItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE wishlist
		 SET category_id = ?, name = ?, amount_cents = ?, priority = ?, notes = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		w.CategoryID, w.Name, w.Amount.Cents, string(w.Priority), w.Notes, w.ID, w.UserID)
	if err != nil {
		return fmt.Errorf("update wishlist item: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *SQLiteRepository) DeleteWishlistItem(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func rowsAffectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
