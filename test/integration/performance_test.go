package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/iwvelando/outright-forecast/internal/cases"
	"github.com/iwvelando/outright-forecast/internal/compare"
	"github.com/iwvelando/outright-forecast/internal/forecast"
	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/internal/scenario"
	"github.com/iwvelando/outright-forecast/pkg/adapters"
	"github.com/iwvelando/outright-forecast/pkg/constants"
	"go.uber.org/zap"
)

// busyScenario moves the rate at every scheduled meeting and sets every
// calendar delta.
func busyScenario() scenario.Input {
	in := scenario.Default(constants.DefaultMeetingDates)
	in.ME, in.QE, in.YE = "2bps", "5", "15bps"
	for i, date := range constants.DefaultMeetingDates {
		if i%2 == 0 {
			in.Meetings[date] = "-25bps"
		} else {
			in.Meetings[date] = "+25"
		}
	}
	return in
}

// TestPerformance tests performance characteristics of the compute path
func TestPerformance(t *testing.T) {
	logger := zap.NewNop()

	start := time.Now()
	params, err := adapters.InputToParams(busyScenario(), constants.DefaultForecastYear)
	if err != nil {
		t.Fatalf("InputToParams() error = %v", err)
	}
	parseTime := time.Since(start)

	start = time.Now()
	const runs = 200
	var rows []metrics.RawRow
	for i := 0; i < runs; i++ {
		rows, err = forecast.GetOutrights(logger, params)
		if err != nil {
			t.Fatalf("GetOutrights() error = %v", err)
		}
	}
	computeTime := time.Since(start)

	start = time.Now()
	series := metrics.DeriveSeries(rows)
	deriveTime := time.Since(start)

	t.Logf("Performance metrics:")
	t.Logf("  Input parsing: %v", parseTime)
	t.Logf("  %d computations: %v", runs, computeTime)
	t.Logf("  Spread derivation: %v", deriveTime)

	if computeTime > 10*time.Second {
		t.Errorf("%d computations took too long: %v", runs, computeTime)
	}
	if len(series) != constants.MonthsPerYear {
		t.Errorf("expected %d months, got %d", constants.MonthsPerYear, len(series))
	}
}

// TestDataConsistency checks that repeated computations are identical
func TestDataConsistency(t *testing.T) {
	params, err := adapters.InputToParams(busyScenario(), constants.DefaultForecastYear)
	if err != nil {
		t.Fatalf("InputToParams() error = %v", err)
	}

	first, err := forecast.GetOutrights(zap.NewNop(), params)
	if err != nil {
		t.Fatalf("GetOutrights() error = %v", err)
	}
	for run := 0; run < 5; run++ {
		again, err := forecast.GetOutrights(zap.NewNop(), params)
		if err != nil {
			t.Fatalf("GetOutrights() error = %v", err)
		}
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("run %d month %d differs: %+v vs %+v", run, i, first[i], again[i])
			}
		}
	}
}

func BenchmarkGetOutrights(b *testing.B) {
	params, err := adapters.InputToParams(busyScenario(), constants.DefaultForecastYear)
	if err != nil {
		b.Fatalf("InputToParams() error = %v", err)
	}
	logger := zap.NewNop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := forecast.GetOutrights(logger, params); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAlign(b *testing.B) {
	params, err := adapters.InputToParams(busyScenario(), constants.DefaultForecastYear)
	if err != nil {
		b.Fatalf("InputToParams() error = %v", err)
	}
	rows, err := forecast.GetOutrights(zap.NewNop(), params)
	if err != nil {
		b.Fatal(err)
	}

	selected := make([]cases.Case, 8)
	for i := range selected {
		selected[i] = cases.Case{ID: fmt.Sprintf("case-%d", i), Name: fmt.Sprintf("Case %d", i), Results: rows}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := compare.Align(selected); err != nil {
			b.Fatal(err)
		}
	}
}
