// Package csvio reads and writes purchase data as CSV. Import understands
// the export layouts of a few common card providers; export writes a single
// stable layout that import can read back.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"

	"frogbudget/internal/core"
)

var exportHeader = []string{"date", "name", "amount", "category", "notes"}

// Export writes purchases as CSV. Category ids are resolved to names via
// the given categories; unknown ids are written as "Uncategorized".
func Export(w io.Writer, purchases []core.Purchase, categories []core.Category) error {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, p := range purchases {
		name, ok := names[p.CategoryID]
		if !ok {
			name = "Uncategorized"
		}
		record := []string{
			p.Date.String(),
			p.Name,
			fmt.Sprintf("%.2f", p.Amount.Dollars()),
			name,
			p.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write purchase %s: %w", p.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
