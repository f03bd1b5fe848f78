package services

import "frogbudget/internal/core"

// defaultCategories is the starter split applied the first time a user
// seeds categories. The percentages sum to 97, leaving a little income
// unallocated.
var defaultCategories = []core.Category{
	{Name: "Daily + Gifts", Percentage: 51, Color: "#22c55e", Order: 1, IsActive: true},
	{Name: "Music", Percentage: 13, Color: "#8b5cf6", Order: 2, IsActive: true},
	{Name: "Entertainment", Percentage: 10, Color: "#f59e0b", Order: 3, IsActive: true},
	{Name: "Gillian PC", Percentage: 8, Color: "#ec4899", Order: 4, IsActive: true},
	{Name: "Mushroom", Percentage: 6, Color: "#84cc16", Order: 5, IsActive: true},
	{Name: "Video/Streaming", Percentage: 5, Color: "#06b6d4", Order: 6, IsActive: true},
	{Name: "GIS", Percentage: 3, Color: "#64748b", Order: 7, IsActive: true},
	{Name: "PC", Percentage: 1, Color: "#ef4444", Order: 8, IsActive: true},
}

// DefaultCategories returns a copy of the starter categories for the user.
func DefaultCategories(userID string) []core.Category {
	out := make([]core.Category, len(defaultCategories))
	copy(out, defaultCategories)
	for i := range out {
		out[i].UserID = userID
	}
	return out
}
