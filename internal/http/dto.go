package http

import (
	"fmt"

	"frogbudget/internal/core"
)

// Request payloads carry money as decimal strings ("12.34") so amounts
// survive the trip without float drift. Responses include both the decimal
// string and raw cents.

type profilePayload struct {
	IncomeAmount    string `json:"incomeAmount"`
	IncomeFrequency string `json:"incomeFrequency"`
	Currency        string `json:"currency"`
}

type profileResponse struct {
	UserID          string `json:"userId"`
	IncomeAmount    string `json:"incomeAmount"`
	IncomeCents     int64  `json:"incomeCents"`
	IncomeFrequency string `json:"incomeFrequency"`
	Currency        string `json:"currency"`
}

type categoryPayload struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

type categoryResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
	Order      int     `json:"order"`
}

type categoryListResponse struct {
	Categories    []categoryResponse `json:"categories"`
	PercentageSum float64            `json:"percentageSum"`
}

type reorderPayload struct {
	OrderedIDs []string `json:"orderedIds"`
}

type purchasePayload struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	Notes      string `json:"notes"`
}

type purchaseResponse struct {
	ID          string `json:"id"`
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amountCents"`
	Date        string `json:"date"`
	Notes       string `json:"notes"`
}

type wishlistPayload struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Priority   string `json:"priority"`
	Notes      string `json:"notes"`
}

type wishlistResponse struct {
	ID          string `json:"id"`
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amountCents"`
	Priority    string `json:"priority"`
	Notes       string `json:"notes"`
}

type importResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Dupes    int `json:"dupes"`
}

func moneyString(m core.Money) string {
	return fmt.Sprintf("%.2f", m.Dollars())
}

func toProfileResponse(p core.Profile) profileResponse {
	return profileResponse{
		UserID:          p.UserID,
		IncomeAmount:    moneyString(p.IncomeAmount),
		IncomeCents:     p.IncomeAmount.Cents,
		IncomeFrequency: string(p.IncomeFrequency),
		Currency:        p.Currency,
	}
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:         c.ID,
		Name:       c.Name,
		Percentage: c.Percentage,
		Color:      c.Color,
		Order:      c.Order,
	}
}

func toPurchaseResponse(p core.Purchase) purchaseResponse {
	return purchaseResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Amount:      moneyString(p.Amount),
		AmountCents: p.Amount.Cents,
		Date:        p.Date.String(),
		Notes:       p.Notes,
	}
}

func toWishlistResponse(w core.WishlistItem) wishlistResponse {
	return wishlistResponse{
		ID:          w.ID,
		CategoryID:  w.CategoryID,
		Name:        w.Name,
		Amount:      moneyString(w.Amount),
		AmountCents: w.Amount.Cents,
		Priority:    string(w.Priority),
		Notes:       w.Notes,
	}
}
