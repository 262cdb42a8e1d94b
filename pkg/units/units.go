// Package units parses and adjusts user-entered rate strings that carry an
// optional unit suffix ("%" or "bps").
//
// Values are held internally as a tagged magnitude and only rendered back to
// the suffixed string form at the boundary with the compute service and the
// case store.
package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/shopspring/decimal"
)

// Kind identifies the unit a value was entered in.
type Kind int

const (
	// Plain is a bare number with no suffix.
	Plain Kind = iota
	// Percent is a value suffixed with "%".
	Percent
	// BasisPoints is a value suffixed with "bps".
	BasisPoints
)

const (
	percentSuffix = "%"
	bpsSuffix     = "bps"
)

// String returns the suffix name of the kind.
func (k Kind) String() string {
	switch k {
	case Percent:
		return "percent"
	case BasisPoints:
		return "bps"
	default:
		return "plain"
	}
}

// Value is a magnitude tagged with the unit it was entered in.
type Value struct {
	Kind      Kind
	Magnitude decimal.Decimal
}

// leadingNumber matches the numeric prefix of a string the way a lenient
// float parser does: "5.25abc" reads as 5.25.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// maxExponent bounds exponent notation and maxMagnitude bounds the value
// itself; anything larger is not a rate.
const maxExponent = 6

var (
	half         = decimal.NewFromFloat(0.5)
	bpsPerUnit   = decimal.NewFromFloat(constants.PercentageMultiplier)
	maxMagnitude = decimal.New(1, maxExponent)
)

// parseBounded parses numeric, rejecting exponents beyond maxExponent before
// the decimal is built and magnitudes beyond maxMagnitude after.
func parseBounded(numeric string) (decimal.Decimal, bool) {
	if i := strings.IndexAny(numeric, "eE"); i >= 0 {
		exp, err := strconv.Atoi(numeric[i+1:])
		if err != nil || exp > maxExponent || exp < -maxExponent {
			return decimal.Zero, false
		}
	}
	magnitude, err := decimal.NewFromString(numeric)
	if err != nil || magnitude.Abs().GreaterThan(maxMagnitude) {
		return decimal.Zero, false
	}
	return magnitude, true
}

// Parse reads a suffixed string into a Value. It never fails: a missing,
// non-numeric or out-of-range base reads as zero of the detected kind.
func Parse(text string) Value {
	kind, numeric := splitSuffix(strings.TrimSpace(text))
	match := leadingNumber.FindString(strings.TrimSpace(numeric))
	if match == "" {
		return Value{Kind: kind, Magnitude: decimal.Zero}
	}
	magnitude, ok := parseBounded(strings.TrimPrefix(match, "+"))
	if !ok {
		return Value{Kind: kind, Magnitude: decimal.Zero}
	}
	return Value{Kind: kind, Magnitude: magnitude}
}

// String renders the value with its original suffix: percent values to two
// decimals, basis points to the nearest integer, plain values as an integer
// when integral and otherwise rounded to at most two decimals.
func (v Value) String() string {
	switch v.Kind {
	case Percent:
		return v.Magnitude.StringFixed(2) + percentSuffix
	case BasisPoints:
		// Round half towards positive infinity.
		return v.Magnitude.Add(half).Floor().String() + bpsSuffix
	default:
		if v.Magnitude.IsInteger() {
			return v.Magnitude.String()
		}
		return v.Magnitude.Round(2).String()
	}
}

// Add returns the value shifted by delta, keeping its kind.
func (v Value) Add(delta decimal.Decimal) Value {
	return Value{Kind: v.Kind, Magnitude: v.Magnitude.Add(delta)}
}

// Percent converts the value to percent. Basis points and plain numbers are
// both read as basis points.
func (v Value) Percent() decimal.Decimal {
	if v.Kind == Percent {
		return v.Magnitude
	}
	return v.Magnitude.Div(bpsPerUnit)
}

// Step is a signed increment applied by Adjust.
type Step struct {
	delta decimal.Decimal
}

// Delta returns the signed increment.
func (s Step) Delta() decimal.Decimal {
	return s.delta
}

var (
	// EffrUp raises the base rate by a quarter point.
	EffrUp = Step{delta: decimal.RequireFromString(constants.EffrStep)}
	// EffrDown lowers the base rate by a quarter point.
	EffrDown = Step{delta: decimal.RequireFromString(constants.EffrStep).Neg()}
	// BpsUp raises a delta or meeting field by one.
	BpsUp = Step{delta: decimal.RequireFromString(constants.BpsStep)}
	// BpsDown lowers a delta or meeting field by one.
	BpsDown = Step{delta: decimal.RequireFromString(constants.BpsStep).Neg()}
)

// StepFor picks the step for a field: the base rate moves in quarter points,
// everything else in single basis points.
func StepFor(isBaseRate, up bool) Step {
	switch {
	case isBaseRate && up:
		return EffrUp
	case isBaseRate:
		return EffrDown
	case up:
		return BpsUp
	default:
		return BpsDown
	}
}

// Adjust applies step to current and renders the result with the original
// suffix. Malformed input is treated as zero.
func Adjust(current string, step Step) string {
	if strings.TrimSpace(current) == "" {
		current = constants.DefaultDelta
	}
	return Parse(current).Add(step.delta).String()
}

// ParseRate strictly parses a rate string to percent. "25bps" and "25" both
// read as 0.25 percent, "0.25%" as 0.25. Empty input is zero. Unlike Parse, a
// malformed or out-of-range number is an error.
func ParseRate(text string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return decimal.Zero, nil
	}

	kind, numeric := splitSuffix(trimmed)
	numeric = strings.TrimPrefix(strings.TrimSpace(numeric), "+")
	magnitude, ok := parseBounded(numeric)
	if !ok {
		switch kind {
		case BasisPoints:
			return decimal.Zero, fmt.Errorf("invalid bps value: %s", text)
		case Percent:
			return decimal.Zero, fmt.Errorf("invalid percent value: %s", text)
		default:
			return decimal.Zero, fmt.Errorf("invalid numeric value: %s", text)
		}
	}
	return Value{Kind: kind, Magnitude: magnitude}.Percent(), nil
}

func splitSuffix(text string) (Kind, string) {
	lower := strings.ToLower(text)
	switch {
	case strings.HasSuffix(lower, percentSuffix):
		return Percent, text[:len(text)-len(percentSuffix)]
	case strings.HasSuffix(lower, bpsSuffix):
		return BasisPoints, text[:len(text)-len(bpsSuffix)]
	default:
		return Plain, text
	}
}
