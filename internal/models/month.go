package models

import (
	"fmt"
	"time"
)

// MonthLayout is the YYYY-MM format accepted for month filters.
const MonthLayout = "2006-01"

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(raw string) (Month, error) {
	t, err := time.Parse(MonthLayout, raw)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", raw, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// StartISO is the first calendar date of the month.
func (m Month) StartISO() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

// EndISO is the last calendar date of the month.
func (m Month) EndISO() string {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether dateISO falls within [StartISO, EndISO].
// YYYY-MM-DD strings order lexically.
func (m Month) Contains(dateISO string) bool {
	return dateISO >= m.StartISO() && dateISO <= m.EndISO()
}
