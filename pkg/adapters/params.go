// Package adapters converts between the raw scenario strings users enter and
// the parsed parameters the forecast engine consumes.
package adapters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/outright-forecast/internal/forecast"
	"github.com/iwvelando/outright-forecast/internal/scenario"
	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/iwvelando/outright-forecast/pkg/datetime"
	"github.com/iwvelando/outright-forecast/pkg/units"
)

// InputToParams parses every raw field of in. A blank base rate falls back to
// the default; blank deltas and meeting values are zero.
func InputToParams(in scenario.Input, year int) (forecast.Params, error) {
	effrText := in.Effr
	if strings.TrimSpace(effrText) == "" {
		effrText = constants.DefaultEffr
	}
	effr, err := ratePct(effrText)
	if err != nil {
		return forecast.Params{}, err
	}

	me, err := ratePct(in.ME)
	if err != nil {
		return forecast.Params{}, fmt.Errorf("month-end: %w", err)
	}
	qe, err := ratePct(in.QE)
	if err != nil {
		return forecast.Params{}, fmt.Errorf("quarter-end: %w", err)
	}
	ye, err := ratePct(in.YE)
	if err != nil {
		return forecast.Params{}, fmt.Errorf("year-end: %w", err)
	}

	meetings, err := MeetingsToChanges(in.Meetings)
	if err != nil {
		return forecast.Params{}, err
	}

	return forecast.Params{
		Year:     year,
		EffrPct:  effr,
		Meetings: meetings,
		MEPct:    me,
		QEPct:    qe,
		YEPct:    ye,
	}, nil
}

// MeetingsToChanges parses the meeting map into dated changes, ordered by
// date so the result does not depend on map iteration order.
func MeetingsToChanges(meetings map[string]string) ([]forecast.Meeting, error) {
	keys := make([]string, 0, len(meetings))
	for key := range meetings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changes := make([]forecast.Meeting, 0, len(keys))
	for _, key := range keys {
		date, err := datetime.ParseMeetingDate(key)
		if err != nil {
			return nil, err
		}
		change, err := ratePct(meetings[key])
		if err != nil {
			return nil, fmt.Errorf("meeting %s: %w", key, err)
		}
		changes = append(changes, forecast.Meeting{Date: date, ChangePct: change})
	}
	return changes, nil
}

func ratePct(text string) (float64, error) {
	value, err := units.ParseRate(text)
	if err != nil {
		return 0, err
	}
	pct, _ := value.Float64()
	return pct, nil
}
