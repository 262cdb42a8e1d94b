// Package export renders case series and comparisons as XLSX workbooks and
// PDF reports.
package export

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/iwvelando/outright-forecast/pkg/mathutil"
	"github.com/iwvelando/outright-forecast/pkg/output"
	"github.com/xuri/excelize/v2"
)

const (
	maxSheetNameLength = 31
	maxColumnWidth     = 50
	defaultSheet       = "Sheet1"
)

// Sheet is one worksheet of a workbook export.
type Sheet struct {
	Name string
	Rows []metrics.RawRow
}

// SheetName strips characters Excel forbids in sheet names and truncates to 31
// characters. An empty result falls back to "Case <index>".
func SheetName(name string, index int) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return -1
		}
		return r
	}, name)
	safe = strings.Trim(strings.TrimSpace(safe), "'")
	if utf8.RuneCountInString(safe) > maxSheetNameLength {
		safe = string([]rune(safe)[:maxSheetNameLength])
	}
	if safe == "" {
		safe = fmt.Sprintf("Case %d", index)
	}
	return safe
}

// uniqueSheetName suffixes name until it is unused; Excel compares sheet names
// case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if len(base)+utf8.RuneCountInString(suffix) > maxSheetNameLength {
			base = base[:maxSheetNameLength-utf8.RuneCountInString(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// WriteWorkbook writes one sheet per entry with Month, Rate, Outright and
// 1M Spread columns. Spreads are numeric except on the final row.
func WriteWorkbook(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		name := uniqueSheetName(SheetName(sheet.Name, i), used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("naming sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", name, err)
		}
		if err := writeSeriesSheet(f, name, sheet.Rows); err != nil {
			return fmt.Errorf("writing sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

func writeSeriesSheet(f *excelize.File, name string, raw []metrics.RawRow) error {
	header := make([]interface{}, len(output.SeriesHeader))
	widths := make([]int, len(output.SeriesHeader))
	for i, h := range output.SeriesHeader {
		header[i] = h
		widths[i] = len(h)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}

	for i, row := range metrics.DeriveSeries(raw) {
		var spread interface{} = constants.NotApplicable
		if row.Spread != nil {
			spread = mathutil.RoundTo(*row.Spread, constants.DisplayPrecision)
		}
		values := []interface{}{row.Month, row.AvgRate, row.Outright, spread}
		for col, v := range values {
			widths[col] = max(widths[col], len(fmt.Sprint(v)))
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}

	for col, width := range widths {
		column, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, column, column, float64(min(width+2, maxColumnWidth))); err != nil {
			return err
		}
	}
	return nil
}
