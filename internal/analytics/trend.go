package analytics

import (
	"fmt"
	"time"

	"frogbudget/internal/core"
)

type (
	// MonthlySnapshot is a historical aggregate of spend for one calendar
	// month, used for trend charts. TotalBudgeted is the monthly income,
	// not the sum of category budgets.
	MonthlySnapshot struct {
		Month         string             `json:"month"` // YYYY-MM
		TotalSpent    float64            `json:"totalSpent"`
		TotalBudgeted float64            `json:"totalBudgeted"`
		ByCategory    map[string]float64 `json:"byCategory"` // category id -> spent
	}

	// DailySpending is one day's total spend and purchase count.
	DailySpending struct {
		Date   core.Date `json:"date"`
		Amount float64   `json:"amount"`
		Count  int       `json:"count"`
	}
)

// MonthlySnapshots aggregates purchases into the last monthsBack calendar
// months including the current one, ordered oldest to newest. Months with
// no purchases are zero-valued entries, never gaps, so callers can plot a
// continuous series.
func MonthlySnapshots(purchases []core.Purchase, categories []core.Category, profile core.Profile, monthsBack int, now time.Time) []MonthlySnapshot {
	monthlyIncome := MonthlyIncome(profile)

	snapshots := make([]MonthlySnapshot, 0, monthsBack)
	for i := monthsBack - 1; i >= 0; i-- {
		first := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		start := monthStart(first)
		end := monthEnd(first)

		snap := MonthlySnapshot{
			Month:         fmt.Sprintf("%04d-%02d", first.Year(), int(first.Month())),
			TotalBudgeted: monthlyIncome,
			ByCategory:    make(map[string]float64, len(categories)),
		}
		for _, c := range categories {
			snap.ByCategory[c.ID] = 0
		}
		for _, p := range purchases {
			if !inRange(p.Date, start, end) {
				continue
			}
			amount := p.Amount.Dollars()
			snap.TotalSpent += amount
			if _, ok := snap.ByCategory[p.CategoryID]; ok {
				snap.ByCategory[p.CategoryID] += amount
			}
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// DailySpendingSeries aggregates purchases into the last daysBack calendar
// days including today, ordered oldest to newest and zero-filled.
func DailySpendingSeries(purchases []core.Purchase, daysBack int, now time.Time) []DailySpending {
	today := core.DateOf(now)

	series := make([]DailySpending, 0, daysBack)
	for i := daysBack - 1; i >= 0; i-- {
		day := core.Date{Time: today.AddDate(0, 0, -i)}
		entry := DailySpending{Date: day}
		for _, p := range purchases {
			if p.Date.SameDay(day) {
				entry.Amount += p.Amount.Dollars()
				entry.Count++
			}
		}
		series = append(series, entry)
	}
	return series
}
