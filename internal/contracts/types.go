package contracts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Percentages travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the ISO calendar date format used on the wire
const DateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

// FirstOfMonth returns the first day of the date's month
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// LastOfMonth returns the last day of the date's month
func (d Date) LastOfMonth() Date {
	return Date{Time: d.FirstOfMonth().AddDate(0, 1, -1)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
