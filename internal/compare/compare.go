// Package compare aligns the results of several cases onto a shared
// January-December axis for side-by-side inspection.
package compare

import (
	"context"
	"errors"

	"github.com/iwvelando/outright-forecast/internal/cases"
	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/iwvelando/outright-forecast/pkg/datetime"
	"github.com/iwvelando/outright-forecast/pkg/format"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MinCases is the smallest comparison set.
const MinCases = 2

// fetchConcurrency bounds concurrent case reads.
const fetchConcurrency = 4

var (
	// ErrTooFewCases is returned when fewer than two cases are selected.
	ErrTooFewCases = errors.New("select at least 2 cases to compare")

	// ErrInsufficientData is returned when fewer than two selected cases
	// could be loaded.
	ErrInsufficientData = errors.New("could not load enough case data for comparison")
)

// Cell is one matrix entry.
type Cell struct {
	Value     float64
	Available bool
}

// String renders the cell at display precision, or "-" when unavailable.
func (c Cell) String() string {
	if !c.Available {
		return constants.Unavailable
	}
	return format.Display(c.Value)
}

// Column identifies the case behind a matrix column.
type Column struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Stats summarizes one case over the aligned months.
type Stats struct {
	Months       int     `json:"months"`
	MeanOutright float64 `json:"meanOutright"`
	MinOutright  float64 `json:"minOutright"`
	MaxOutright  float64 `json:"maxOutright"`
	MeanSpread   float64 `json:"meanSpread"`
	SpreadStdDev float64 `json:"spreadStdDev"`
}

// Comparison holds month-by-case matrices: Outrights[month][case].
type Comparison struct {
	Months    []string
	Columns   []Column
	Outrights [][]Cell
	Spreads   [][]Cell
	Stats     []Stats
}

// Align builds the comparison matrices. Each case's results are placed on the
// axis by position, not by month label; missing positions are unavailable.
// Spreads are recomputed from the aligned outrights, so a spread is only
// available when both of its months are on the axis.
func Align(selected []cases.Case) (*Comparison, error) {
	if len(selected) < MinCases {
		return nil, ErrTooFewCases
	}

	cmp := &Comparison{
		Months:    datetime.MonthAbbreviations(),
		Columns:   make([]Column, len(selected)),
		Outrights: make([][]Cell, constants.MonthsPerYear),
		Spreads:   make([][]Cell, constants.MonthsPerYear),
		Stats:     make([]Stats, len(selected)),
	}
	for month := range cmp.Outrights {
		cmp.Outrights[month] = make([]Cell, len(selected))
		cmp.Spreads[month] = make([]Cell, len(selected))
	}

	for col, c := range selected {
		cmp.Columns[col] = Column{ID: c.ID, Name: c.Name}
		rows := min(len(c.Results), constants.MonthsPerYear)
		for month := 0; month < rows; month++ {
			cmp.Outrights[month][col] = Cell{Value: c.Results[month].Outright, Available: true}
			if month+1 < rows {
				spread := format.Difference(c.Results[month].Outright, c.Results[month+1].Outright)
				cmp.Spreads[month][col] = Cell{Value: spread, Available: true}
			}
		}
		cmp.Stats[col] = columnStats(cmp, col)
	}

	return cmp, nil
}

func columnStats(cmp *Comparison, col int) Stats {
	var outrights, spreads []float64
	for month := range cmp.Outrights {
		if cell := cmp.Outrights[month][col]; cell.Available {
			outrights = append(outrights, cell.Value)
		}
		if cell := cmp.Spreads[month][col]; cell.Available {
			spreads = append(spreads, cell.Value)
		}
	}
	if len(outrights) == 0 {
		return Stats{}
	}

	s := Stats{
		Months:       len(outrights),
		MeanOutright: stat.Mean(outrights, nil),
		MinOutright:  floats.Min(outrights),
		MaxOutright:  floats.Max(outrights),
	}
	if len(spreads) > 0 {
		s.MeanSpread = stat.Mean(spreads, nil)
	}
	if len(spreads) > 1 {
		s.SpreadStdDev = stat.StdDev(spreads, nil)
	}
	return s
}

// Getter reads a full case by id.
type Getter interface {
	Get(ctx context.Context, id string) (*cases.Case, error)
}

// Resolve fetches every id concurrently, keeping the selection order. Ids that
// fail to resolve are dropped; fewer than two survivors is
// ErrInsufficientData.
func Resolve(ctx context.Context, getter Getter, ids []string) ([]cases.Case, error) {
	if len(ids) < MinCases {
		return nil, ErrTooFewCases
	}

	fetched := make([]*cases.Case, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			c, err := getter.Get(gctx, id)
			if err == nil {
				fetched[i] = c
			}
			return nil
		})
	}
	_ = g.Wait()

	resolved := make([]cases.Case, 0, len(ids))
	for _, c := range fetched {
		if c != nil {
			resolved = append(resolved, *c)
		}
	}
	if len(resolved) < MinCases {
		return nil, ErrInsufficientData
	}
	return resolved, nil
}

// Build resolves ids and aligns the resulting cases.
func Build(ctx context.Context, getter Getter, ids []string) (*Comparison, error) {
	resolved, err := Resolve(ctx, getter, ids)
	if err != nil {
		return nil, err
	}
	return Align(resolved)
}
