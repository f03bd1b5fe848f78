// Package sheets defines the outbound port for mirroring purchases to an
// external spreadsheet, plus its adapters.
package sheets

import (
	"context"

	"frogbudget/internal/core"
)

// PurchaseWriter mirrors a purchase to an external sheet. The mirror is
// best-effort: callers log failures and move on, the database stays the
// source of truth.
type PurchaseWriter interface {
	Append(ctx context.Context, p core.Purchase, categoryName string) (rowRef string, err error)
}
