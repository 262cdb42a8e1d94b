// Package metrics turns a raw monthly outright series into the display
// series, adding the spread between consecutive months.
package metrics

import (
	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/iwvelando/outright-forecast/pkg/format"
)

// RawRow is one month as produced by the compute service or read back from a
// stored case.
type RawRow struct {
	Month    string  `json:"month"`
	AvgRate  float64 `json:"avg_rate"`
	Outright float64 `json:"outright"`
}

// ResultRow is one month of the display series. Spread is nil for the final
// row, which has no successor to difference against.
type ResultRow struct {
	Month    string
	AvgRate  float64
	Outright float64
	Spread   *float64
}

// DisplayRow is the string form consumed by exporters.
type DisplayRow struct {
	Month    string `json:"month"`
	Rate     string `json:"rate"`
	Outright string `json:"outright"`
	Spread   string `json:"spread"`
}

// DeriveSeries computes spread[i] = outright[i] - outright[i+1] for every row
// but the last. Spreads are taken from the unrounded source outrights; only
// rendering rounds to display precision. Empty input yields an empty series.
func DeriveSeries(raw []RawRow) []ResultRow {
	rows := make([]ResultRow, len(raw))
	for i, r := range raw {
		rows[i] = ResultRow{Month: r.Month, AvgRate: r.AvgRate, Outright: r.Outright}
		if i < len(raw)-1 {
			spread := format.Difference(r.Outright, raw[i+1].Outright)
			rows[i].Spread = &spread
		}
	}
	return rows
}

// Raw strips the derived spread, giving the form that is persisted.
func Raw(rows []ResultRow) []RawRow {
	raw := make([]RawRow, len(rows))
	for i, r := range rows {
		raw[i] = RawRow{Month: r.Month, AvgRate: r.AvgRate, Outright: r.Outright}
	}
	return raw
}

// RateText renders the average rate at display precision.
func (r ResultRow) RateText() string {
	return format.Display(r.AvgRate)
}

// OutrightText renders the outright at display precision.
func (r ResultRow) OutrightText() string {
	return format.Display(r.Outright)
}

// SpreadText renders the spread at display precision, or "N/A".
func (r ResultRow) SpreadText() string {
	if r.Spread == nil {
		return constants.NotApplicable
	}
	return format.Display(*r.Spread)
}

// Display renders the series for export.
func Display(rows []ResultRow) []DisplayRow {
	out := make([]DisplayRow, len(rows))
	for i, r := range rows {
		out[i] = DisplayRow{
			Month:    r.Month,
			Rate:     r.RateText(),
			Outright: r.OutrightText(),
			Spread:   r.SpreadText(),
		}
	}
	return out
}
