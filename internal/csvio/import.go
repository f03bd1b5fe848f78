package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"frogbudget/internal/core"
)

// Format identifies the CSV layout of a statement export.
type Format string

const (
	FormatDiscover Format = "discover"
	FormatChase    Format = "chase"
	FormatAmazon   Format = "amazon"
)

var ErrUnknownFormat = errors.New("unknown csv format")

// ImportedRow is one parsed statement line, not yet assigned a category.
type ImportedRow struct {
	Name   string
	Amount core.Money
	Date   core.Date
}

// ImportResult separates new rows from duplicates already present in the
// existing purchase set.
type ImportResult struct {
	Rows    []ImportedRow
	Skipped int // payment/refund/credit lines
	Dupes   int
}

// descriptions that mark a line as a payment toward the card rather than
// a purchase
var skipMarkers = []string{
	"payment",
	"refund",
	"cashback",
	"cash back",
	"credit",
}

// Import parses a statement CSV in the given format and drops rows that
// duplicate an existing purchase. A duplicate shares the trimmed lowercase
// name, a date, and an amount within one cent.
func Import(r io.Reader, format Format, existing []core.Purchase) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateIdx, nameIdx, amountIdx, err := resolveColumns(header, format)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if dateIdx >= len(record) || nameIdx >= len(record) || amountIdx >= len(record) {
			continue
		}

		name := strings.TrimSpace(record[nameIdx])
		if name == "" || isSkippable(name) {
			result.Skipped++
			continue
		}

		date, err := parseStatementDate(record[dateIdx])
		if err != nil {
			continue
		}
		amount, err := parseStatementAmount(record[amountIdx])
		if err != nil {
			continue
		}

		row := ImportedRow{Name: name, Amount: amount, Date: date}
		if isDuplicate(row, existing) {
			result.Dupes++
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// resolveColumns maps the format's expected column names onto the header.
// Amazon exports use fixed names; card exports vary, so matching falls
// back from exact names to any date-like header, then to a small edit
// distance against the expected name.
func resolveColumns(header []string, format Format) (dateIdx, nameIdx, amountIdx int, err error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	switch format {
	case FormatAmazon:
		dateIdx = indexOf(normalized, "order date")
		nameIdx = indexOf(normalized, "product name")
		amountIdx = indexOf(normalized, "total owed")
	case FormatChase, FormatDiscover:
		dateIdx = indexOf(normalized, "transaction date")
		if dateIdx < 0 {
			dateIdx = indexOf(normalized, "trans. date")
		}
		if dateIdx < 0 {
			dateIdx = indexContaining(normalized, "date")
		}
		nameIdx = firstIndex(normalized, "description", "name", "merchant")
		amountIdx = firstIndex(normalized, "amount", "debit", "charge")
	default:
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if dateIdx < 0 {
		dateIdx = fuzzyIndex(normalized, "date")
	}
	if nameIdx < 0 {
		nameIdx = fuzzyIndex(normalized, "description")
	}
	if amountIdx < 0 {
		amountIdx = fuzzyIndex(normalized, "amount")
	}
	if dateIdx < 0 || nameIdx < 0 || amountIdx < 0 {
		return 0, 0, 0, fmt.Errorf("%w: cannot locate date/name/amount columns in %v", ErrUnknownFormat, header)
	}
	return dateIdx, nameIdx, amountIdx, nil
}

func indexOf(headers []string, want string) int {
	for i, h := range headers {
		if h == want {
			return i
		}
	}
	return -1
}

func firstIndex(headers []string, wants ...string) int {
	for _, want := range wants {
		if i := indexOf(headers, want); i >= 0 {
			return i
		}
	}
	return -1
}

func indexContaining(headers []string, substr string) int {
	for i, h := range headers {
		if strings.Contains(h, substr) {
			return i
		}
	}
	return -1
}

// fuzzyIndex tolerates minor header variations ("descripton", "amnt")
// within an edit distance of 2.
func fuzzyIndex(headers []string, want string) int {
	best, bestDist := -1, 3
	for i, h := range headers {
		if dist := levenshtein.ComputeDistance(h, want); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

func isSkippable(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range skipMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

var statementDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
}

func parseStatementDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range statementDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, core.ErrInvalidDate
}

// parseStatementAmount tolerates currency noise and takes the absolute
// value: card exports sign charges inconsistently across providers.
func parseStatementAmount(s string) (core.Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSuffix(s, "-")
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

func isDuplicate(row ImportedRow, existing []core.Purchase) bool {
	name := strings.ToLower(strings.TrimSpace(row.Name))
	for _, p := range existing {
		if strings.ToLower(strings.TrimSpace(p.Name)) != name {
			continue
		}
		if !p.Date.SameDay(row.Date) {
			continue
		}
		if math.Abs(float64(p.Amount.Cents-row.Amount.Cents)) <= 1 {
			return true
		}
	}
	return false
}
