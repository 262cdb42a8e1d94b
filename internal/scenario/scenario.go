// Package scenario holds the user-editable rate scenario: base rate,
// month/quarter/year-end deltas and the per-meeting rate path.
package scenario

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/iwvelando/outright-forecast/pkg/units"
)

// Input is one scenario exactly as entered. Values are kept as raw strings so
// that what the user typed is what the compute service and case store see.
type Input struct {
	Effr     string            `json:"effr"`
	ME       string            `json:"me"`
	QE       string            `json:"qe"`
	YE       string            `json:"ye"`
	Meetings map[string]string `json:"meetings"`
}

// Field names addressable through Set and Adjust.
const (
	FieldEffr = "effr"
	FieldME   = "me"
	FieldQE   = "qe"
	FieldYE   = "ye"

	meetingPrefix = "meeting:"
)

// MeetingField returns the field name addressing the meeting on date.
func MeetingField(date string) string {
	return meetingPrefix + date
}

// Default returns the reset state for the given meeting schedule.
func Default(schedule []string) Input {
	in := Input{
		Effr:     constants.DefaultEffr,
		ME:       constants.DefaultDelta,
		QE:       constants.DefaultDelta,
		YE:       constants.DefaultDelta,
		Meetings: make(map[string]string, len(schedule)),
	}
	for _, date := range schedule {
		in.Meetings[date] = constants.DefaultDelta
	}
	return in
}

// WithDefaults returns a copy with every blank field set to its default and
// every scheduled meeting present. Meetings outside the schedule are kept.
func (in Input) WithDefaults(schedule []string) Input {
	out := in.Clone()
	if strings.TrimSpace(out.Effr) == "" {
		out.Effr = constants.DefaultEffr
	}
	if strings.TrimSpace(out.ME) == "" {
		out.ME = constants.DefaultDelta
	}
	if strings.TrimSpace(out.QE) == "" {
		out.QE = constants.DefaultDelta
	}
	if strings.TrimSpace(out.YE) == "" {
		out.YE = constants.DefaultDelta
	}
	for _, date := range schedule {
		if strings.TrimSpace(out.Meetings[date]) == "" {
			out.Meetings[date] = constants.DefaultDelta
		}
	}
	for date, value := range out.Meetings {
		if strings.TrimSpace(value) == "" {
			out.Meetings[date] = constants.DefaultDelta
		}
	}
	return out
}

// Clone returns a deep copy.
func (in Input) Clone() Input {
	out := in
	out.Meetings = make(map[string]string, len(in.Meetings))
	for date, value := range in.Meetings {
		out.Meetings[date] = value
	}
	return out
}

// Get returns the raw value of a field.
func (in Input) Get(field string) (string, error) {
	switch field {
	case FieldEffr:
		return in.Effr, nil
	case FieldME:
		return in.ME, nil
	case FieldQE:
		return in.QE, nil
	case FieldYE:
		return in.YE, nil
	}
	if date, ok := strings.CutPrefix(field, meetingPrefix); ok {
		return in.Meetings[date], nil
	}
	return "", fmt.Errorf("unknown field %q", field)
}

// Set stores a raw value into a field.
func (in *Input) Set(field, value string) error {
	switch field {
	case FieldEffr:
		in.Effr = value
	case FieldME:
		in.ME = value
	case FieldQE:
		in.QE = value
	case FieldYE:
		in.YE = value
	default:
		date, ok := strings.CutPrefix(field, meetingPrefix)
		if !ok || date == "" {
			return fmt.Errorf("unknown field %q", field)
		}
		if in.Meetings == nil {
			in.Meetings = make(map[string]string)
		}
		in.Meetings[date] = value
	}
	return nil
}

// Adjust steps a field up or down, preserving its unit suffix. The base rate
// moves in quarter points, every other field in single basis points.
func (in *Input) Adjust(field string, up bool) (string, error) {
	current, err := in.Get(field)
	if err != nil {
		return "", err
	}
	next := units.Adjust(current, units.StepFor(field == FieldEffr, up))
	if err := in.Set(field, next); err != nil {
		return "", err
	}
	return next, nil
}

// MeetingDates returns the meeting keys in date order.
func (in Input) MeetingDates() []string {
	dates := make([]string, 0, len(in.Meetings))
	for date := range in.Meetings {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Equal reports whether two inputs hold identical raw strings.
func (in Input) Equal(other Input) bool {
	if in.Effr != other.Effr || in.ME != other.ME || in.QE != other.QE || in.YE != other.YE {
		return false
	}
	if len(in.Meetings) != len(other.Meetings) {
		return false
	}
	for date, value := range in.Meetings {
		if otherValue, ok := other.Meetings[date]; !ok || otherValue != value {
			return false
		}
	}
	return true
}
