// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/outright-forecast/pkg/datetime"
)

// ValidateMeetingDate checks that a scheduled meeting falls on a weekday in the
// forecast year. A non-empty warning means the date parses but is suspect.
func ValidateMeetingDate(date string, year int) (string, error) {
	t, err := datetime.ParseMeetingDate(date)
	if err != nil {
		return "", err
	}

	if t.Year() != year {
		return fmt.Sprintf("Meeting '%s' is outside the forecast year %d - its change applies to every month or none",
			date, year), nil
	}
	if !datetime.IsWeekday(t) {
		return fmt.Sprintf("Meeting '%s' falls on a weekend", date), nil
	}

	return "", nil
}

// ConfigValidator performs comprehensive meeting schedule validation.
type ConfigValidator struct {
	Year     int
	Meetings []string
}

// ValidateAll validates the meeting schedule and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	seen := make(map[string]bool, len(cv.Meetings))
	for _, date := range cv.Meetings {
		if seen[date] {
			warnings = append(warnings, fmt.Sprintf("Meeting '%s' is listed more than once", date))
			continue
		}
		seen[date] = true

		warning, err := ValidateMeetingDate(date, cv.Year)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
	}

	return warnings
}
