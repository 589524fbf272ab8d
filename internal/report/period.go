// Package report aggregates sale and expense history into period-scoped
// business metrics. Everything here is a pure function over the records it
// is given; loading and caching happen elsewhere.
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cassa/internal/core"
)

var ErrInvalidPeriod = errors.New("invalid period")

// Dated is a record that belongs to a calendar date.
type Dated interface {
	RecordDate() core.Date
}

// Period is a calendar year-month.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func NewPeriod(year, month int) Period {
	return Period{Year: year, Month: month}
}

// PeriodOf returns the period containing d.
func PeriodOf(d core.Date) Period {
	return Period{Year: d.Year, Month: d.Month}
}

// ParsePeriod reads "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	y, m, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || len(y) != 4 || len(m) != 2 {
		return Period{}, fmt.Errorf("parse period %q: %w", s, ErrInvalidPeriod)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, ErrInvalidPeriod)
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, ErrInvalidPeriod)
	}
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, err)
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.Year < 1 || p.Year > 9999 || p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains reports whether d falls in the period, comparing components only.
func (p Period) Contains(d core.Date) bool {
	return d.Year == p.Year && d.Month == p.Month
}

// Days returns the number of days in the period.
func (p Period) Days() int {
	return core.DaysIn(p.Year, p.Month)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// InPeriod reports whether r's stored date is in year/month.
func InPeriod[T Dated](r T, year, month int) bool {
	return NewPeriod(year, month).Contains(r.RecordDate())
}

// FilterPeriod returns the records of year/month in input order. The result
// is a new slice; duplicates are kept.
func FilterPeriod[T Dated](records []T, year, month int) []T {
	p := NewPeriod(year, month)
	out := make([]T, 0, len(records))
	for _, r := range records {
		if p.Contains(r.RecordDate()) {
			out = append(out, r)
		}
	}
	return out
}

// FilterDay returns the records dated exactly d, in input order.
func FilterDay[T Dated](records []T, d core.Date) []T {
	out := make([]T, 0)
	for _, r := range records {
		if r.RecordDate() == d {
			out = append(out, r)
		}
	}
	return out
}
