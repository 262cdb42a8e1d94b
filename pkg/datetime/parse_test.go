package datetime

import (
	"testing"
	"time"
)

func TestMustParseTime(t *testing.T) {
	tests := []struct {
		name     string
		layout   string
		dateStr  string
		expected string
	}{
		{
			name:     "Valid date",
			layout:   DateLayout,
			dateStr:  "2026-01-28",
			expected: "2026-01-28",
		},
		{
			name:     "Another valid date",
			layout:   DateLayout,
			dateStr:  "2030-12-09",
			expected: "2030-12-09",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MustParseTime(tt.layout, tt.dateStr)
			if result.Format(tt.layout) != tt.expected {
				t.Errorf("MustParseTime() = %s, expected %s", result.Format(tt.layout), tt.expected)
			}
		})
	}
}

func TestMustParseTimePanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected MustParseTime to panic with invalid date")
		}
	}()

	MustParseTime(DateLayout, "invalid-date")
}

func TestParseMeetingDate(t *testing.T) {
	if _, err := ParseMeetingDate("2026-03-18"); err != nil {
		t.Fatalf("ParseMeetingDate() unexpected error: %v", err)
	}
	if _, err := ParseMeetingDate("2026-13-01"); err == nil {
		t.Fatal("expected error for invalid month")
	}
	if _, err := ParseMeetingDate("March 18"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestLastWorkingDay(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		month    time.Month
		expected string
	}{
		// 2026-01-31 is a Saturday.
		{name: "Saturday month end", year: 2026, month: time.January, expected: "2026-01-30"},
		// 2026-05-31 is a Sunday.
		{name: "Sunday month end", year: 2026, month: time.May, expected: "2026-05-29"},
		// 2026-03-31 is a Tuesday.
		{name: "Weekday month end", year: 2026, month: time.March, expected: "2026-03-31"},
		{name: "December", year: 2026, month: time.December, expected: "2026-12-31"},
		{name: "Leap February", year: 2028, month: time.February, expected: "2028-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LastWorkingDay(tt.year, tt.month).Format(DateLayout)
			if result != tt.expected {
				t.Errorf("LastWorkingDay() = %s, expected %s", result, tt.expected)
			}
		})
	}
}

func TestIsWeekday(t *testing.T) {
	if !IsWeekday(MustParseTime(DateLayout, "2026-01-30")) {
		t.Error("expected Friday to be a weekday")
	}
	if IsWeekday(MustParseTime(DateLayout, "2026-01-31")) {
		t.Error("expected Saturday not to be a weekday")
	}
}

func TestMonthLabel(t *testing.T) {
	if got := MonthLabel(2026, time.January); got != "Jan 2026" {
		t.Errorf("MonthLabel() = %s, expected Jan 2026", got)
	}
	names := MonthAbbreviations()
	if len(names) != 12 || names[0] != "Jan" || names[11] != "Dec" {
		t.Errorf("MonthAbbreviations() = %v", names)
	}
}
