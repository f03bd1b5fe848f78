package analytics

import (
	"frogbudget/internal/core"
)

// rolloverFor computes the surplus or deficit a category carries into the
// current month.
//
// Look-back policy: the window starts at the month of the category's
// earliest purchase and runs month by month up to, but excluding, the
// current month. A category with no purchases before this month carries
// zero. Empty months inside the window still accrue a full month's budget
// as surplus.
//
// The amount is never clamped here: a deeply negative rollover is reported
// as-is and clamping for display is the caller's concern. The only guard is
// the zero division: effective percent used is 0 when the effective budget
// is not positive.
func rolloverFor(category core.Category, purchases []core.Purchase, monthlyBudget, thisMonthSpent float64, currentMonthStart core.Date) Rollover {
	var earliest core.Date
	for _, p := range purchases {
		if p.CategoryID != category.ID || !p.Date.Before(currentMonthStart.Time) {
			continue
		}
		if earliest.IsZero() || p.Date.Before(earliest.Time) {
			earliest = p.Date
		}
	}

	amount := 0.0
	if !earliest.IsZero() {
		cursor := core.NewDate(earliest.Year(), earliest.Month(), 1)
		for cursor.Before(currentMonthStart.Time) {
			spent := 0.0
			end := monthEnd(cursor.Time)
			for _, p := range purchases {
				if p.CategoryID == category.ID && inRange(p.Date, cursor, end) {
					spent += p.Amount.Dollars()
				}
			}
			amount += monthlyBudget - spent
			cursor = core.Date{Time: cursor.AddDate(0, 1, 0)}
		}
	}

	effective := monthlyBudget + amount
	percentUsed := 0.0
	if effective > 0 {
		percentUsed = thisMonthSpent / effective * 100
	}
	return Rollover{
		Amount:               amount,
		EffectiveBudget:      effective,
		EffectivePercentUsed: percentUsed,
	}
}
