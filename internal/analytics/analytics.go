// Package analytics implements the budget analytics engine: per-category
// budget figures, month-to-month rollover, spending trends, alerts and
// month-end projections.
//
// Every function here is a pure computation over an in-memory snapshot.
// Nothing is mutated, nothing is cached, and "now" is an explicit argument,
// so identical inputs always produce identical outputs. The surrounding
// application reloads collections on change notifications and calls
// Recompute from scratch; there is no incremental path.
package analytics

import (
	"time"

	"frogbudget/internal/core"
)

// Income frequency multipliers used to normalize a per-paycheck amount to a
// monthly figure. Fixed approximations, not calendar-exact.
const (
	weeklyPerMonth   = 4.33
	biweeklyPerMonth = 2.17
)

// Snapshot is the immutable input to every engine computation: the last
// successfully loaded state of one user's data, passed by value.
type Snapshot struct {
	Profile    *core.Profile
	Categories []core.Category
	Purchases  []core.Purchase
	Wishlist   []core.WishlistItem
}

// Options toggles the two user-facing analytics switches.
type Options struct {
	// IncludeWishlist injects wishlist items as simulated purchases dated
	// today, previewing a hypothetical spend without persisting anything.
	IncludeWishlist bool
	// Rollover carries prior months' surplus or deficit into this month's
	// effective budgets.
	Rollover bool
}

// CacheKey names the cached Result for one user and option combination.
func CacheKey(userID string, opts Options) string {
	key := userID
	if opts.IncludeWishlist {
		key += "|wishlist"
	}
	if opts.Rollover {
		key += "|rollover"
	}
	return key
}

// Result aggregates every derived view for one computation pass.
type Result struct {
	CategoryBudgets  []CategoryBudget  `json:"categoryBudgets"`
	MonthlySnapshots []MonthlySnapshot `json:"monthlySnapshots"`
	DailySpending    []DailySpending   `json:"dailySpending"`
	Alerts           []Alert           `json:"alerts"`
	Projection       Projection        `json:"projection"`

	TotalSpentThisMonth    float64 `json:"totalSpentThisMonth"`
	TotalBudgetedThisMonth float64 `json:"totalBudgetedThisMonth"`
	TotalEffectiveBudget   float64 `json:"totalEffectiveBudget"`
	TotalRollover          float64 `json:"totalRollover"`
	TotalWishlistCost      float64 `json:"totalWishlistCost"`
}

const (
	defaultMonthsBack = 12
	defaultDaysBack   = 30
)

// Recompute derives every analytics output from a snapshot. A missing
// profile or zero categories short-circuits to an all-zero result; that is
// the engine's only precondition and it degrades, never fails.
func Recompute(snap Snapshot, opts Options, now time.Time) *Result {
	res := &Result{
		CategoryBudgets:  []CategoryBudget{},
		MonthlySnapshots: []MonthlySnapshot{},
		DailySpending:    []DailySpending{},
		Alerts:           []Alert{},
	}
	for _, w := range snap.Wishlist {
		res.TotalWishlistCost += w.Amount.Dollars()
	}
	if snap.Profile == nil || len(snap.Categories) == 0 {
		return res
	}

	purchases := snap.Purchases
	if opts.IncludeWishlist {
		purchases = append(append([]core.Purchase{}, purchases...), SimulatedPurchases(snap.Wishlist, now)...)
	}

	res.CategoryBudgets = CalculateCategoryBudgets(snap.Categories, purchases, *snap.Profile, opts.Rollover, now)
	// Trends always reflect real purchases only, even in wishlist preview mode.
	res.MonthlySnapshots = MonthlySnapshots(snap.Purchases, snap.Categories, *snap.Profile, defaultMonthsBack, now)
	res.DailySpending = DailySpendingSeries(snap.Purchases, defaultDaysBack, now)
	res.Alerts = GenerateAlerts(res.CategoryBudgets, purchases, now)
	res.Projection = Projections(res.CategoryBudgets, purchases, now)

	for _, cb := range res.CategoryBudgets {
		res.TotalSpentThisMonth += cb.Spent.ThisMonth
		res.TotalBudgetedThisMonth += cb.Budgeted.Monthly
		res.TotalEffectiveBudget += cb.Rollover.EffectiveBudget
		res.TotalRollover += cb.Rollover.Amount
	}
	return res
}

// SimulatedPurchases turns wishlist items into purchases dated today. The
// returned purchases are never persisted; they exist only inside one
// computation pass.
func SimulatedPurchases(wishlist []core.WishlistItem, now time.Time) []core.Purchase {
	if len(wishlist) == 0 {
		return nil
	}
	today := core.DateOf(now)
	sims := make([]core.Purchase, len(wishlist))
	for i, w := range wishlist {
		sims[i] = core.Purchase{
			ID:         "wishlist-" + w.ID,
			UserID:     w.UserID,
			CategoryID: w.CategoryID,
			Name:       w.Name,
			Amount:     w.Amount,
			Date:       today,
			Notes:      w.Notes,
			CreatedAt:  now,
		}
	}
	return sims
}

// MonthlyIncome normalizes the profile's per-paycheck income to a monthly
// figure. Unknown frequencies fall back to the biweekly multiplier.
func MonthlyIncome(p core.Profile) float64 {
	amount := p.IncomeAmount.Dollars()
	switch p.IncomeFrequency {
	case core.Weekly:
		return amount * weeklyPerMonth
	case core.Biweekly:
		return amount * biweeklyPerMonth
	case core.Monthly:
		return amount
	default:
		return amount * biweeklyPerMonth
	}
}

// Calendar window helpers. All bucketing is by calendar date.

func monthStart(t time.Time) core.Date {
	return core.NewDate(t.Year(), int(t.Month()), 1)
}

func monthEnd(t time.Time) core.Date {
	// Day zero of the next month is the last day of this month.
	return core.Date{Time: time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)}
}

func yearStart(t time.Time) core.Date {
	return core.NewDate(t.Year(), 1, 1)
}

// weekStart returns the most recent Sunday at or before t.
func weekStart(t time.Time) core.Date {
	return core.Date{Time: time.Date(t.Year(), t.Month(), t.Day()-int(t.Weekday()), 0, 0, 0, 0, time.UTC)}
}

func inRange(d, start, end core.Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}
