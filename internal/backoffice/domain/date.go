package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DateLayout   = "2006-01-02"
	PeriodLayout = "2006-01"
)

// Date is a calendar day without time zone, serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today is the current UTC day.
func Today() Date {
	return NewDate(time.Now().UTC())
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
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

// ValidPeriod reports whether s is a YYYY-MM competence.
func ValidPeriod(s string) bool {
	_, err := time.Parse(PeriodLayout, s)
	return err == nil
}

// PeriodBounds returns the first and last day of a YYYY-MM period.
func PeriodBounds(period string) (Date, Date, error) {
	start, err := time.Parse(PeriodLayout, period)
	if err != nil {
		return Date{}, Date{}, fmt.Errorf("invalid period %q, expected YYYY-MM", period)
	}
	return Date{start}, Date{start.AddDate(0, 1, -1)}, nil
}
