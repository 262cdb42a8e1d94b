// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/outright-forecast/internal/metrics"
)

// FindMonth finds a month by label in a raw result series.
// Returns a pointer to the row if found, nil otherwise.
func FindMonth(rows []metrics.RawRow, month string) *metrics.RawRow {
	for i := range rows {
		if rows[i].Month == month {
			return &rows[i]
		}
	}
	return nil
}

// Outrights extracts the outright column of a raw result series.
func Outrights(rows []metrics.RawRow) []float64 {
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row.Outright
	}
	return values
}
