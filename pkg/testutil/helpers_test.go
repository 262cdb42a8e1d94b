package testutil

import (
	"testing"

	"github.com/iwvelando/outright-forecast/internal/metrics"
)

func TestFindMonth(t *testing.T) {
	rows := []metrics.RawRow{
		{Month: "Jan 2026", AvgRate: 5.25, Outright: 94.75},
		{Month: "Feb 2026", AvgRate: 5.0, Outright: 95.0},
		{Month: "Mar 2026", AvgRate: 4.75, Outright: 95.25},
	}

	tests := []struct {
		name             string
		month            string
		expectFound      bool
		expectedOutright float64
	}{
		{
			name:             "Find first month",
			month:            "Jan 2026",
			expectFound:      true,
			expectedOutright: 94.75,
		},
		{
			name:             "Find last month",
			month:            "Mar 2026",
			expectFound:      true,
			expectedOutright: 95.25,
		},
		{
			name:        "Missing month",
			month:       "Apr 2026",
			expectFound: false,
		},
		{
			name:        "Label is case sensitive",
			month:       "jan 2026",
			expectFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindMonth(rows, tt.month)
			if tt.expectFound {
				if result == nil {
					t.Fatalf("FindMonth(%s) returned nil, expected row", tt.month)
				}
				if result.Outright != tt.expectedOutright {
					t.Errorf("FindMonth(%s).Outright = %f, expected %f", tt.month, result.Outright, tt.expectedOutright)
				}
			} else if result != nil {
				t.Errorf("FindMonth(%s) = %+v, expected nil", tt.month, result)
			}
		})
	}
}

func TestFindMonthReturnsSliceElement(t *testing.T) {
	rows := []metrics.RawRow{{Month: "Jan 2026", Outright: 94.75}}
	FindMonth(rows, "Jan 2026").Outright = 95.0
	if rows[0].Outright != 95.0 {
		t.Error("expected FindMonth to point into the slice")
	}
}

func TestOutrights(t *testing.T) {
	values := Outrights([]metrics.RawRow{{Outright: 94.75}, {Outright: 95.0}})
	if len(values) != 2 || values[0] != 94.75 || values[1] != 95.0 {
		t.Errorf("Outrights() = %v", values)
	}
	if len(Outrights(nil)) != 0 {
		t.Error("expected empty result for nil input")
	}
}
