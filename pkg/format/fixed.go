// Package format renders numeric series values for display.
package format

import (
	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/shopspring/decimal"
)

// Fixed returns value with exactly places decimals (e.g. "94.7500").
func Fixed(value float64, places int) string {
	return decimal.NewFromFloat(value).StringFixed(int32(places))
}

// Display returns value at the display precision used for rates, outrights
// and spreads.
func Display(value float64) string {
	return Fixed(value, constants.DisplayPrecision)
}

// Difference returns a - b computed in decimal arithmetic, so that quoting
// two four-decimal outrights never yields binary noise such as 0.049999.
func Difference(a, b float64) float64 {
	diff, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Float64()
	return diff
}

// Percent renders a rate with a trailing percent sign at display precision.
func Percent(value float64) string {
	return Display(value) + "%"
}
