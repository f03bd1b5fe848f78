package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Weekly   IncomeFrequency = "weekly"
	Biweekly IncomeFrequency = "biweekly"
	Monthly  IncomeFrequency = "monthly"
)

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type (
	IncomeFrequency string

	Priority string

	// Date is a calendar date with no time-of-day semantics. The wrapped
	// time.Time is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Profile holds per-user income settings. One row per user.
	Profile struct {
		UserID          string
		IncomeAmount    Money // per paycheck
		IncomeFrequency IncomeFrequency
		Currency        string
	}

	// Category is a named bucket of spending with a fixed percentage share
	// of monthly income. Soft-deleted via IsActive so historical purchases
	// stay resolvable.
	Category struct {
		ID         string
		UserID     string
		Name       string
		Percentage float64 // 0-100
		Color      string
		Order      int
		IsActive   bool
	}

	Purchase struct {
		ID         string
		UserID     string
		CategoryID string
		Name       string
		Amount     Money
		Date       Date
		Notes      string
		CreatedAt  time.Time
	}

	// WishlistItem is a planned purchase. It can be injected into analytics
	// as a simulated purchase dated today without being persisted.
	WishlistItem struct {
		ID         string
		UserID     string
		CategoryID string
		Name       string
		Amount     Money
		Priority   Priority
		Notes      string
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidPercentage = errors.New("percentage must be between 0 and 100")
	ErrInvalidFrequency  = errors.New("invalid income frequency")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyCategory     = errors.New("empty category id")
	ErrEmptyUser         = errors.New("empty user id")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as a plain "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SameDay reports whether two dates fall on the same calendar day.
func (d Date) SameDay(other Date) bool {
	return d.Year() == other.Year() && d.YearDay() == other.YearDay()
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (f IncomeFrequency) Validate() error {
	switch f {
	case Weekly, Biweekly, Monthly:
		return nil
	}
	return ErrInvalidFrequency
}

func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}
	return ErrInvalidPriority
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrEmptyUser
	}
	if p.IncomeAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return p.IncomeFrequency.Validate()
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return ErrEmptyUser
	}
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if c.Percentage < 0 || c.Percentage > 100 {
		return ErrInvalidPercentage
	}
	return nil
}

func (p Purchase) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrEmptyUser
	}
	if strings.TrimSpace(p.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if p.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return p.Date.Validate()
}

func (w WishlistItem) Validate() error {
	if strings.TrimSpace(w.UserID) == "" {
		return ErrEmptyUser
	}
	if strings.TrimSpace(w.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(w.Name)) == 0 {
		return ErrEmptyName
	}
	if w.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return w.Priority.Validate()
}

// PercentageSum returns the summed percentage across active categories.
// The soft invariant is that it equals 100; callers surface a warning when
// it does not, nothing is enforced.
func PercentageSum(categories []Category) float64 {
	var sum float64
	for _, c := range categories {
		if c.IsActive {
			sum += c.Percentage
		}
	}
	return sum
}
