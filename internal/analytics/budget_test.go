package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"frogbudget/internal/core"
)

// Fixed reference clock: Wednesday 2025-08-20. August has 31 days and the
// most recent Sunday is the 17th.
var testNow = time.Date(2025, 8, 20, 10, 30, 0, 0, time.UTC)

func testProfile(cents int64, freq core.IncomeFrequency) core.Profile {
	return core.Profile{
		UserID:          "u1",
		IncomeAmount:    core.Money{Cents: cents},
		IncomeFrequency: freq,
		Currency:        "USD",
	}
}

func testCategory(id, name string, pct float64) core.Category {
	return core.Category{ID: id, UserID: "u1", Name: name, Percentage: pct, IsActive: true}
}

func testPurchase(catID string, cents int64, d core.Date) core.Purchase {
	return core.Purchase{
		ID:         catID + "-" + d.String(),
		UserID:     "u1",
		CategoryID: catID,
		Name:       "purchase",
		Amount:     core.Money{Cents: cents},
		Date:       d,
		CreatedAt:  d.Time,
	}
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMonthlyIncomeNormalization(t *testing.T) {
	cases := []struct {
		freq core.IncomeFrequency
		want float64
	}{
		{core.Weekly, 1000 * 4.33},
		{core.Biweekly, 1000 * 2.17},
		{core.Monthly, 1000},
		{"", 1000 * 2.17}, // unknown frequency falls back to biweekly
	}
	for _, tc := range cases {
		got := MonthlyIncome(testProfile(100000, tc.freq))
		if !almost(got, tc.want) {
			t.Fatalf("freq %q expected %v, got %v", tc.freq, tc.want, got)
		}
	}
}

func TestBudgetSplitCommutes(t *testing.T) {
	profile := testProfile(200000, core.Monthly) // $2000/month
	cats := []core.Category{
		testCategory("c1", "Daily", 51),
		testCategory("c2", "Music", 13),
		testCategory("c3", "Games", 36),
	}
	budgets := CalculateCategoryBudgets(cats, nil, profile, false, testNow)

	var sum, pctSum float64
	for i, cb := range budgets {
		want := 2000 * cats[i].Percentage / 100
		if !almost(cb.Budgeted.Monthly, want) {
			t.Fatalf("%s monthly budget expected %v, got %v", cats[i].Name, want, cb.Budgeted.Monthly)
		}
		if !almost(cb.Budgeted.Yearly, want*12) {
			t.Fatalf("%s yearly budget expected %v, got %v", cats[i].Name, want*12, cb.Budgeted.Yearly)
		}
		sum += cb.Budgeted.Monthly
		pctSum += cats[i].Percentage
	}
	if !almost(sum, 2000*pctSum/100) {
		t.Fatalf("summed budgets %v != income share %v", sum, 2000*pctSum/100)
	}
}

func TestFixedPeriodDivisors(t *testing.T) {
	profile := testProfile(200000, core.Monthly)
	budgets := CalculateCategoryBudgets([]core.Category{testCategory("c1", "Food", 50)}, nil, profile, false, testNow)
	b := budgets[0].Budgeted
	if !almost(b.Daily, 1000.0/30) || !almost(b.Weekly, 1000.0/4.33) || !almost(b.Biweekly, 1000.0/2.17) {
		t.Fatalf("unexpected period budgets: %+v", b)
	}
}

func TestZeroBudgetHasZeroPercent(t *testing.T) {
	profile := testProfile(0, core.Monthly)
	purchases := []core.Purchase{testPurchase("c1", 5000, core.NewDate(2025, 8, 10))}
	budgets := CalculateCategoryBudgets([]core.Category{testCategory("c1", "Food", 50)}, purchases, profile, false, testNow)

	cb := budgets[0]
	if cb.PercentUsed.Monthly != 0 || cb.PercentUsed.Yearly != 0 {
		t.Fatalf("zero budget must yield zero percent used, got %+v", cb.PercentUsed)
	}
	if math.IsNaN(cb.PercentUsed.Monthly) || math.IsInf(cb.PercentUsed.Monthly, 0) {
		t.Fatalf("percent used must never be NaN/Inf")
	}
}

func TestStatusBoundaries(t *testing.T) {
	// $2000/month income, 50% category -> $1000 monthly budget.
	profile := testProfile(200000, core.Monthly)
	cases := []struct {
		spentCents int64
		want       Status
	}{
		{60000, StatusOK},        // exactly 60% is ok
		{60001, StatusWarning},   // 60% + epsilon
		{80000, StatusWarning},   // exactly 80% is warning, not danger
		{80001, StatusDanger},    // 80% + epsilon
		{100000, StatusDanger},   // exactly 100% is danger, not overspent
		{100001, StatusOverspent},
	}
	for _, tc := range cases {
		purchases := []core.Purchase{testPurchase("c1", tc.spentCents, core.NewDate(2025, 8, 5))}
		budgets := CalculateCategoryBudgets([]core.Category{testCategory("c1", "Food", 50)}, purchases, profile, false, testNow)
		if budgets[0].Status != tc.want {
			t.Fatalf("spent %d cents expected status %q, got %q (%.4f%%)",
				tc.spentCents, tc.want, budgets[0].Status, budgets[0].PercentUsed.Monthly)
		}
	}
}

func TestSpentWindows(t *testing.T) {
	profile := testProfile(200000, core.Monthly)
	cat := testCategory("c1", "Food", 50)
	purchases := []core.Purchase{
		testPurchase("c1", 1000, core.NewDate(2025, 8, 20)),  // today
		testPurchase("c1", 2000, core.NewDate(2025, 8, 17)),  // Sunday, start of week
		testPurchase("c1", 3000, core.NewDate(2025, 8, 16)),  // Saturday, previous week
		testPurchase("c1", 4000, core.NewDate(2025, 8, 1)),   // this month
		testPurchase("c1", 5000, core.NewDate(2025, 1, 2)),   // this year
		testPurchase("c1", 6000, core.NewDate(2024, 12, 31)), // prior year
		testPurchase("c2", 9999, core.NewDate(2025, 8, 20)),  // other category
	}
	budgets := CalculateCategoryBudgets([]core.Category{cat}, purchases, profile, false, testNow)
	spent := budgets[0].Spent

	if !almost(spent.Today, 10) {
		t.Fatalf("today expected 10, got %v", spent.Today)
	}
	if !almost(spent.ThisWeek, 30) { // today + Sunday
		t.Fatalf("thisWeek expected 30, got %v", spent.ThisWeek)
	}
	if !almost(spent.ThisMonth, 100) { // everything in August
		t.Fatalf("thisMonth expected 100, got %v", spent.ThisMonth)
	}
	if !almost(spent.ThisYear, 150) {
		t.Fatalf("thisYear expected 150, got %v", spent.ThisYear)
	}
	if !almost(spent.AllTime, 210) {
		t.Fatalf("allTime expected 210, got %v", spent.AllTime)
	}
	if len(budgets[0].ThisMonthPurchases) != 4 {
		t.Fatalf("expected 4 this-month purchases, got %d", len(budgets[0].ThisMonthPurchases))
	}
}

func TestEndToEndFoodScenario(t *testing.T) {
	// Income $2000/month, one category "Food" at 50%; $100 on day 1 and
	// $50 on day 15 of the current month.
	profile := testProfile(200000, core.Monthly)
	purchases := []core.Purchase{
		testPurchase("food", 10000, core.NewDate(2025, 8, 1)),
		testPurchase("food", 5000, core.NewDate(2025, 8, 15)),
	}
	budgets := CalculateCategoryBudgets([]core.Category{testCategory("food", "Food", 50)}, purchases, profile, false, testNow)

	cb := budgets[0]
	if !almost(cb.Budgeted.Monthly, 1000) {
		t.Fatalf("monthlyBudget expected 1000, got %v", cb.Budgeted.Monthly)
	}
	if !almost(cb.Spent.ThisMonth, 150) {
		t.Fatalf("thisMonthSpent expected 150, got %v", cb.Spent.ThisMonth)
	}
	if !almost(cb.PercentUsed.Monthly, 15) {
		t.Fatalf("monthlyPercentUsed expected 15, got %v", cb.PercentUsed.Monthly)
	}
	if cb.Status != StatusOK {
		t.Fatalf("status expected ok, got %q", cb.Status)
	}
	if !almost(cb.Remaining.Monthly, 850) {
		t.Fatalf("monthlyRemaining expected 850, got %v", cb.Remaining.Monthly)
	}
}

func TestCalculatorIsIdempotent(t *testing.T) {
	profile := testProfile(200000, core.Biweekly)
	cats := []core.Category{testCategory("c1", "Food", 50), testCategory("c2", "Fun", 30)}
	purchases := []core.Purchase{
		testPurchase("c1", 12345, core.NewDate(2025, 8, 3)),
		testPurchase("c2", 6789, core.NewDate(2025, 7, 21)),
	}

	first := CalculateCategoryBudgets(cats, purchases, profile, true, testNow)
	second := CalculateCategoryBudgets(cats, purchases, profile, true, testNow)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must yield identical output")
	}
}

func TestRolloverDisabledMirrorsMonthly(t *testing.T) {
	profile := testProfile(200000, core.Monthly)
	purchases := []core.Purchase{testPurchase("c1", 30000, core.NewDate(2025, 8, 2))}
	budgets := CalculateCategoryBudgets([]core.Category{testCategory("c1", "Food", 50)}, purchases, profile, false, testNow)

	r := budgets[0].Rollover
	if r.Amount != 0 {
		t.Fatalf("disabled rollover amount expected 0, got %v", r.Amount)
	}
	if !almost(r.EffectiveBudget, budgets[0].Budgeted.Monthly) {
		t.Fatalf("effective budget should mirror monthly budget")
	}
	if !almost(r.EffectivePercentUsed, budgets[0].PercentUsed.Monthly) {
		t.Fatalf("effective percent should mirror monthly percent")
	}
}
