// Package cases defines persisted scenarios ("cases") and the SQLite-backed
// store that holds them.
package cases

import (
	"errors"
	"time"

	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/internal/scenario"
)

// ErrNotFound is returned when no case has the requested id.
var ErrNotFound = errors.New("case not found")

// Case is a named snapshot of scenario inputs plus the raw series computed
// from them. Results may be empty. Spreads are never stored; they are derived
// again every time the series is materialized.
type Case struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Created time.Time        `json:"created"`
	Updated *time.Time       `json:"updated,omitempty"`
	Inputs  scenario.Input   `json:"inputs"`
	Results []metrics.RawRow `json:"results"`
}

// Summary is the listing form of a case.
type Summary struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
}

// Summary returns the listing form of c.
func (c Case) Summary() Summary {
	return Summary{ID: c.ID, Name: c.Name, Created: c.Created}
}

// Series returns the display series derived from the stored results.
func (c Case) Series() []metrics.ResultRow {
	return metrics.DeriveSeries(c.Results)
}
