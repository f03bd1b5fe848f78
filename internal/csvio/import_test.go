package csvio

import (
	"strings"
	"testing"
	"time"

	"frogbudget/internal/core"
)

func TestImport_Chase(t *testing.T) {
	input := `Transaction Date,Post Date,Description,Category,Type,Amount
08/15/2025,08/16/2025,COFFEE SHOP,Food & Drink,Sale,-4.50
08/16/2025,08/17/2025,Payment Thank You - Web,,Payment,250.00
08/17/2025,08/18/2025,GROCERY STORE,Groceries,Sale,-82.19
`
	result, err := Import(strings.NewReader(input), FormatChase, nil)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("Import() rows = %d, want 2", len(result.Rows))
	}
	if result.Skipped != 1 {
		t.Errorf("Import() skipped = %d, want 1", result.Skipped)
	}

	first := result.Rows[0]
	if first.Name != "COFFEE SHOP" {
		t.Errorf("row name = %q, want COFFEE SHOP", first.Name)
	}
	if first.Amount.Cents != 450 {
		t.Errorf("row amount = %d cents, want 450", first.Amount.Cents)
	}
	if first.Date.String() != "2025-08-15" {
		t.Errorf("row date = %s, want 2025-08-15", first.Date)
	}
}

func TestImport_Discover(t *testing.T) {
	input := `Trans. Date,Post Date,Description,Amount,Category
08/10/2025,08/11/2025,GAS STATION,35.00,Gasoline
08/12/2025,08/13/2025,CASHBACK BONUS REDEMPTION,-15.00,Awards
`
	result, err := Import(strings.NewReader(input), FormatDiscover, nil)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("Import() rows = %d, want 1", len(result.Rows))
	}
	if result.Skipped != 1 {
		t.Errorf("Import() skipped = %d, want 1", result.Skipped)
	}
	if result.Rows[0].Name != "GAS STATION" {
		t.Errorf("row name = %q, want GAS STATION", result.Rows[0].Name)
	}
}

func TestImport_Amazon(t *testing.T) {
	input := `Order Date,Order ID,Product Name,Total Owed
2025-08-01,111-222,USB Cable,12.99
2025-08-03,111-223,Refund: USB Cable,-12.99
`
	result, err := Import(strings.NewReader(input), FormatAmazon, nil)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("Import() rows = %d, want 1", len(result.Rows))
	}
	row := result.Rows[0]
	if row.Name != "USB Cable" {
		t.Errorf("row name = %q, want USB Cable", row.Name)
	}
	if row.Amount.Cents != 1299 {
		t.Errorf("row amount = %d cents, want 1299", row.Amount.Cents)
	}
	if row.Date.String() != "2025-08-01" {
		t.Errorf("row date = %s, want 2025-08-01", row.Date)
	}
}

func TestImport_FuzzyHeaders(t *testing.T) {
	// Misspelled headers within edit distance 2 still resolve.
	input := `Dat,Descripton,Amnt
08/15/2025,STORE,10.00
`
	result, err := Import(strings.NewReader(input), FormatChase, nil)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("Import() rows = %d, want 1", len(result.Rows))
	}
}

func TestImport_UnresolvableHeaders(t *testing.T) {
	input := `foo,bar,baz
1,2,3
`
	_, err := Import(strings.NewReader(input), FormatChase, nil)
	if err == nil {
		t.Fatal("Import() should fail when no columns resolve")
	}
}

func TestImport_UnknownFormat(t *testing.T) {
	_, err := Import(strings.NewReader("a,b\n"), Format("visa"), nil)
	if err == nil {
		t.Fatal("Import() should fail for unknown format")
	}
}

func TestImport_Dedupe(t *testing.T) {
	existing := []core.Purchase{
		{
			ID:     "p1",
			Name:   "Coffee Shop",
			Amount: core.Money{Cents: 450},
			Date:   core.NewDate(2025, 8, 15),
		},
	}
	input := `Transaction Date,Description,Amount
08/15/2025,COFFEE SHOP,4.50
08/15/2025,COFFEE SHOP,4.51
08/15/2025,COFFEE SHOP,9.00
08/16/2025,COFFEE SHOP,4.50
`
	result, err := Import(strings.NewReader(input), FormatChase, existing)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	// Same name+date with amount within a cent dedupes; a different
	// amount or date does not.
	if result.Dupes != 2 {
		t.Errorf("Import() dupes = %d, want 2", result.Dupes)
	}
	if len(result.Rows) != 2 {
		t.Errorf("Import() rows = %d, want 2", len(result.Rows))
	}
}

func TestImport_AmountNoise(t *testing.T) {
	input := `Transaction Date,Description,Amount
08/15/2025,BIG STORE,"$1,234.56"
08/16/2025,PAREN STORE,(45.00)
`
	result, err := Import(strings.NewReader(input), FormatChase, nil)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("Import() rows = %d, want 2", len(result.Rows))
	}
	if result.Rows[0].Amount.Cents != 123456 {
		t.Errorf("row amount = %d cents, want 123456", result.Rows[0].Amount.Cents)
	}
	if result.Rows[1].Amount.Cents != 4500 {
		t.Errorf("row amount = %d cents, want 4500", result.Rows[1].Amount.Cents)
	}
}

func TestParseStatementDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2025-08-15", "2025-08-15", false},
		{"08/15/2025", "2025-08-15", false},
		{"8/5/2025", "2025-08-05", false},
		{"not a date", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseStatementDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseStatementDate(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseStatementDate(%q) error = %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("parseStatementDate(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestExport_RoundTrip(t *testing.T) {
	categories := []core.Category{
		{ID: "cat-1", Name: "Food", IsActive: true},
	}
	purchases := []core.Purchase{
		{
			ID:         "p1",
			CategoryID: "cat-1",
			Name:       "Lunch",
			Amount:     core.Money{Cents: 1250},
			Date:       core.NewDate(2025, 8, 20),
			Notes:      "team lunch",
			CreatedAt:  time.Now(),
		},
		{
			ID:         "p2",
			CategoryID: "gone",
			Name:       "Mystery",
			Amount:     core.Money{Cents: 999},
			Date:       core.NewDate(2025, 8, 21),
		},
	}

	var buf strings.Builder
	if err := Export(&buf, purchases, categories); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Export() lines = %d, want 3", len(lines))
	}
	if lines[0] != "date,name,amount,category,notes" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2025-08-20,Lunch,12.50,Food,team lunch" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "Uncategorized") {
		t.Errorf("row 2 should fall back to Uncategorized, got %q", lines[2])
	}
}
