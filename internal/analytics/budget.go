package analytics

import (
	"time"

	"frogbudget/internal/core"
)

// Status classifies a category's monthly budget consumption.
type Status string

const (
	StatusOK        Status = "ok"
	StatusWarning   Status = "warning"
	StatusDanger    Status = "danger"
	StatusOverspent Status = "overspent"
)

// Classification thresholds, strict lower bounds: exactly 80% is still
// warning, exactly 100% is still danger.
const (
	overspentThreshold = 100.0
	dangerThreshold    = 80.0
	warningThreshold   = 60.0
)

type (
	// PeriodBudget holds budgeted amounts per period, in dollars. Daily,
	// weekly and biweekly figures use fixed divisors (30, 4.33, 2.17)
	// rather than calendar-exact day counts.
	PeriodBudget struct {
		Daily    float64 `json:"daily"`
		Weekly   float64 `json:"weekly"`
		Biweekly float64 `json:"biweekly"`
		Monthly  float64 `json:"monthly"`
		Yearly   float64 `json:"yearly"`
	}

	// PeriodSpent holds spent amounts over five overlapping windows
	// relative to now.
	PeriodSpent struct {
		Today     float64 `json:"today"`
		ThisWeek  float64 `json:"thisWeek"`
		ThisMonth float64 `json:"thisMonth"`
		ThisYear  float64 `json:"thisYear"`
		AllTime   float64 `json:"allTime"`
	}

	Remaining struct {
		Monthly float64 `json:"monthly"`
		Yearly  float64 `json:"yearly"`
	}

	PercentUsed struct {
		Monthly float64 `json:"monthly"`
		Yearly  float64 `json:"yearly"`
	}

	// Rollover carries prior months' surplus or deficit into this month.
	// When rollover is disabled the effective fields mirror the plain
	// monthly figures and Amount is zero.
	Rollover struct {
		Amount               float64 `json:"amount"`
		EffectiveBudget      float64 `json:"effectiveBudget"`
		EffectivePercentUsed float64 `json:"effectivePercentUsed"`
	}

	// CategoryBudget is the per-category view model, freshly computed on
	// every call. It has no identity or lifecycle beyond one render pass.
	CategoryBudget struct {
		Category           core.Category   `json:"category"`
		Budgeted           PeriodBudget    `json:"budgeted"`
		Spent              PeriodSpent     `json:"spent"`
		Remaining          Remaining       `json:"remaining"`
		PercentUsed        PercentUsed     `json:"percentUsed"`
		Status             Status          `json:"status"`
		Rollover           Rollover        `json:"rollover"`
		ThisMonthPurchases []core.Purchase `json:"thisMonthPurchases"`
	}
)

// CalculateCategoryBudgets produces one CategoryBudget per category from
// the full purchase set and the user's profile. Purchases referencing other
// categories are ignored per category; empty inputs degrade to zeros.
func CalculateCategoryBudgets(categories []core.Category, purchases []core.Purchase, profile core.Profile, rolloverEnabled bool, now time.Time) []CategoryBudget {
	today := core.DateOf(now)
	mStart := monthStart(now)
	mEnd := monthEnd(now)
	yStart := yearStart(now)
	wStart := weekStart(now)

	monthlyIncome := MonthlyIncome(profile)
	yearlyIncome := monthlyIncome * 12

	budgets := make([]CategoryBudget, 0, len(categories))
	for _, category := range categories {
		monthlyBudget := monthlyIncome * category.Percentage / 100
		yearlyBudget := yearlyIncome * category.Percentage / 100

		spent := PeriodSpent{}
		var monthPurchases []core.Purchase
		for _, p := range purchases {
			if p.CategoryID != category.ID {
				continue
			}
			amount := p.Amount.Dollars()
			spent.AllTime += amount
			if p.Date.SameDay(today) {
				spent.Today += amount
			}
			if !p.Date.Before(wStart.Time) {
				spent.ThisWeek += amount
			}
			if inRange(p.Date, mStart, mEnd) {
				spent.ThisMonth += amount
				monthPurchases = append(monthPurchases, p)
			}
			if !p.Date.Before(yStart.Time) {
				spent.ThisYear += amount
			}
		}

		monthlyPercentUsed := 0.0
		if monthlyBudget > 0 {
			monthlyPercentUsed = spent.ThisMonth / monthlyBudget * 100
		}
		yearlyPercentUsed := 0.0
		if yearlyBudget > 0 {
			yearlyPercentUsed = spent.ThisYear / yearlyBudget * 100
		}

		status := StatusOK
		switch {
		case monthlyPercentUsed > overspentThreshold:
			status = StatusOverspent
		case monthlyPercentUsed > dangerThreshold:
			status = StatusDanger
		case monthlyPercentUsed > warningThreshold:
			status = StatusWarning
		}

		rollover := Rollover{
			EffectiveBudget:      monthlyBudget,
			EffectivePercentUsed: monthlyPercentUsed,
		}
		if rolloverEnabled {
			rollover = rolloverFor(category, purchases, monthlyBudget, spent.ThisMonth, mStart)
		}

		budgets = append(budgets, CategoryBudget{
			Category: category,
			Budgeted: PeriodBudget{
				Daily:    monthlyBudget / 30,
				Weekly:   monthlyBudget / weeklyPerMonth,
				Biweekly: monthlyBudget / biweeklyPerMonth,
				Monthly:  monthlyBudget,
				Yearly:   yearlyBudget,
			},
			Spent: spent,
			Remaining: Remaining{
				Monthly: monthlyBudget - spent.ThisMonth,
				Yearly:  yearlyBudget - spent.ThisYear,
			},
			PercentUsed: PercentUsed{
				Monthly: monthlyPercentUsed,
				Yearly:  yearlyPercentUsed,
			},
			Status:             status,
			Rollover:           rollover,
			ThisMonthPurchases: monthPurchases,
		})
	}
	return budgets
}
