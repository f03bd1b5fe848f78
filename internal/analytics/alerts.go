package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"frogbudget/internal/core"
)

type AlertType string

const (
	AlertOverspent     AlertType = "overspent"
	AlertWarning       AlertType = "warning"
	AlertLargePurchase AlertType = "large_purchase"
)

// A purchase counts as large when it exceeds this share of the total
// monthly budget across all categories.
const largePurchaseShare = 0.1

// Alert is a derived, transient notification. Overspent and warning alerts
// are timestamped "now"; large-purchase alerts carry the purchase's own
// creation time so sorting interleaves them by actual recency.
type Alert struct {
	ID           string    `json:"id"`
	Type         AlertType `json:"type"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	Message      string    `json:"message"`
	Value        float64   `json:"value"`
	Threshold    float64   `json:"threshold"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Projection is a linear extrapolation of month-end total spend based on
// spend per day so far. No seasonality, no smoothing.
type Projection struct {
	Projected     float64 `json:"projected"`
	Budgeted      float64 `json:"budgeted"`
	DailyAverage  float64 `json:"dailyAverage"`
	DaysInMonth   int     `json:"daysInMonth"`
	DaysPassed    int     `json:"daysPassed"`
	DaysRemaining int     `json:"daysRemaining"`
}

// GenerateAlerts derives threshold alerts from computed category budgets
// plus large-purchase alerts from this month's raw purchases. The warning
// alert type is triggered by the danger status tier; the warning tier
// itself stays silent.
func GenerateAlerts(categoryBudgets []CategoryBudget, purchases []core.Purchase, now time.Time) []Alert {
	alerts := []Alert{}

	for _, cb := range categoryBudgets {
		switch cb.Status {
		case StatusOverspent:
			alerts = append(alerts, Alert{
				ID:           "overspent-" + cb.Category.ID,
				Type:         AlertOverspent,
				CategoryID:   cb.Category.ID,
				CategoryName: cb.Category.Name,
				Message: fmt.Sprintf("%s is over budget by %s",
					cb.Category.Name, core.FormatDollars(math.Abs(cb.Remaining.Monthly))),
				Value:     cb.PercentUsed.Monthly,
				Threshold: overspentThreshold,
				CreatedAt: now,
			})
		case StatusDanger:
			alerts = append(alerts, Alert{
				ID:           "warning-" + cb.Category.ID,
				Type:         AlertWarning,
				CategoryID:   cb.Category.ID,
				CategoryName: cb.Category.Name,
				Message: fmt.Sprintf("%s is at %.0f%% of monthly budget",
					cb.Category.Name, cb.PercentUsed.Monthly),
				Value:     cb.PercentUsed.Monthly,
				Threshold: dangerThreshold,
				CreatedAt: now,
			})
		}
	}

	var totalMonthlyBudget float64
	for _, cb := range categoryBudgets {
		totalMonthlyBudget += cb.Budgeted.Monthly
	}
	largeThreshold := totalMonthlyBudget * largePurchaseShare

	mStart := monthStart(now)
	mEnd := monthEnd(now)
	for _, p := range purchases {
		if !inRange(p.Date, mStart, mEnd) || p.Amount.Dollars() <= largeThreshold {
			continue
		}
		name := ""
		for _, cb := range categoryBudgets {
			if cb.Category.ID == p.CategoryID {
				name = cb.Category.Name
				break
			}
		}
		alerts = append(alerts, Alert{
			ID:           "large-" + p.ID,
			Type:         AlertLargePurchase,
			CategoryID:   p.CategoryID,
			CategoryName: name,
			Message: fmt.Sprintf("Large purchase: %s (%s)",
				p.Name, core.FormatDollars(p.Amount.Dollars())),
			Value:     p.Amount.Dollars(),
			Threshold: largeThreshold,
			CreatedAt: p.CreatedAt,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
	return alerts
}

// Projections extrapolates month-end spend. Total spent is recomputed from
// the raw purchase set rather than reused from categoryBudgets, so it stays
// correct when the budgets were computed with simulated wishlist purchases.
func Projections(categoryBudgets []CategoryBudget, purchases []core.Purchase, now time.Time) Projection {
	mStart := monthStart(now)
	mEnd := monthEnd(now)
	daysInMonth := mEnd.Day()
	daysPassed := now.Day()
	daysRemaining := daysInMonth - daysPassed

	var totalSpent float64
	for _, p := range purchases {
		if inRange(p.Date, mStart, mEnd) {
			totalSpent += p.Amount.Dollars()
		}
	}

	dailyAverage := 0.0
	if daysPassed > 0 {
		dailyAverage = totalSpent / float64(daysPassed)
	}

	var budgeted float64
	for _, cb := range categoryBudgets {
		budgeted += cb.Budgeted.Monthly
	}

	return Projection{
		Projected:     totalSpent + dailyAverage*float64(daysRemaining),
		Budgeted:      budgeted,
		DailyAverage:  dailyAverage,
		DaysInMonth:   daysInMonth,
		DaysPassed:    daysPassed,
		DaysRemaining: daysRemaining,
	}
}
