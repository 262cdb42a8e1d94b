// Package forecast projects a short-term-rate scenario into monthly average
// policy rates and outrights for one calendar year.
package forecast

import (
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/iwvelando/outright-forecast/pkg/datetime"
	"github.com/iwvelando/outright-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// Meeting is a scheduled rate change, in percent.
type Meeting struct {
	Date      time.Time
	ChangePct float64
}

// Params holds a parsed scenario. All rates are in percent.
type Params struct {
	Year     int
	EffrPct  float64
	Meetings []Meeting
	MEPct    float64
	QEPct    float64
	YEPct    float64
}

// GetOutrights walks every day of the year and averages the daily policy rate
// per month.
//
// A meeting change applies from the day after the meeting and accumulates.
// On the last working day of each month the month-end bump (quarter-end for
// March, June and September, year-end for December) is added and carried
// through the following weekend days until the next weekday clears it.
func GetOutrights(logger *zap.Logger, params Params) ([]metrics.RawRow, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if params.Year <= 0 {
		return nil, fmt.Errorf("invalid forecast year %d", params.Year)
	}

	meetings := append([]Meeting(nil), params.Meetings...)
	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].Date.Before(meetings[j].Date)
	})

	var sums [constants.MonthsPerYear]float64
	var counts [constants.MonthsPerYear]int

	start := time.Date(params.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(params.Year, time.December, 31, 0, 0, 0, 0, time.UTC)

	cumulative := 0.0
	next := 0
	bumpActive := false
	bump := 0.0

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for next < len(meetings) && meetings[next].Date.Before(day) {
			cumulative += meetings[next].ChangePct
			logger.Debug("applied meeting change",
				zap.String("op", "forecast.GetOutrights"),
				zap.String("meeting", meetings[next].Date.Format(datetime.DateLayout)),
				zap.Float64("cumulativePct", cumulative),
			)
			next++
		}

		rate := params.EffrPct + cumulative
		month := day.Month()
		lastWorking := datetime.SameDay(day, datetime.LastWorkingDay(params.Year, month))

		if lastWorking {
			bumpActive = true
			bump = periodEndBump(params, month)
		} else if datetime.IsWeekday(day) {
			bumpActive = false
			bump = 0
		}

		if bumpActive {
			rate += bump
		}

		sums[month-1] += rate
		counts[month-1]++
	}

	rows := make([]metrics.RawRow, 0, constants.MonthsPerYear)
	for i := 0; i < constants.MonthsPerYear; i++ {
		avg := params.EffrPct
		if counts[i] > 0 {
			avg = sums[i] / float64(counts[i])
		}
		rows = append(rows, metrics.RawRow{
			Month:    datetime.MonthLabel(params.Year, time.Month(i+1)),
			AvgRate:  mathutil.RoundTo(avg, constants.DisplayPrecision),
			Outright: mathutil.RoundTo(constants.OutrightBase-avg, constants.DisplayPrecision),
		})
	}

	logger.Debug("computed outrights",
		zap.String("op", "forecast.GetOutrights"),
		zap.Int("year", params.Year),
		zap.Int("meetings", len(meetings)),
	)

	return rows, nil
}

func periodEndBump(params Params, month time.Month) float64 {
	switch month {
	case time.December:
		return params.YEPct
	case time.March, time.June, time.September:
		return params.QEPct
	default:
		return params.MEPct
	}
}
