// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/outright-forecast/pkg/constants"
)

const (
	// DateLayout is the format of meeting-date keys.
	DateLayout = constants.DateLayout

	// MonthLabelLayout is the format of month labels in result series.
	MonthLabelLayout = "Jan 2006"
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseMeetingDate parses a meeting-date key.
func ParseMeetingDate(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid meeting date %q: %w", key, err)
	}
	return t, nil
}

// IsWeekday reports whether t falls Monday through Friday.
func IsWeekday(t time.Time) bool {
	day := t.Weekday()
	return day != time.Saturday && day != time.Sunday
}

// LastWorkingDay returns the last Monday-Friday date of the given month.
func LastWorkingDay(year int, month time.Month) time.Time {
	// Day 0 of the following month is the last day of this one.
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	switch last.Weekday() {
	case time.Saturday:
		last = last.AddDate(0, 0, -1)
	case time.Sunday:
		last = last.AddDate(0, 0, -2)
	}
	return last
}

// SameDay reports whether two times fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MonthLabel renders the month label used in result series, e.g. "Jan 2026".
func MonthLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(MonthLabelLayout)
}

// MonthAbbreviations returns the January-December short month names.
func MonthAbbreviations() []string {
	names := make([]string, 0, constants.MonthsPerYear)
	for m := time.January; m <= time.December; m++ {
		names = append(names, m.String()[:3])
	}
	return names
}
