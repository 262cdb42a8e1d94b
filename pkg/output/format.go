// Package output provides utilities for formatting and displaying outright
// series and case comparisons.
package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/iwvelando/outright-forecast/internal/compare"
	"github.com/iwvelando/outright-forecast/internal/metrics"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SeriesHeader is the column header shared by the CSV and XLSX exports.
var SeriesHeader = []string{"Month", "Rate (%)", "Outright", "1M Spread"}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, title string, rows []metrics.ResultRow) {
	fmt.Fprintf(w, "--- Results for %s ---\n", title)
	fmt.Fprintf(w, "Month    | Rate (%%) | Outright | 1M Spread\n")
	fmt.Fprintf(w, "_____    | ________ | ________ | _________\n")
	for _, row := range metrics.Display(rows) {
		fmt.Fprintf(w, "%s | %8s | %8s | %9s\n", row.Month, row.Rate, row.Outright, row.Spread)
	}
}

// CsvFormat outputs the display series in comma-separated value format.
func CsvFormat(w io.Writer, rows []metrics.ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SeriesHeader); err != nil {
		return err
	}
	for _, row := range metrics.Display(rows) {
		if err := cw.Write([]string{row.Month, row.Rate, row.Outright, row.Spread}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PrettyComparison outputs the outright and spread matrices followed by a
// per-case summary.
func PrettyComparison(w io.Writer, cmp *compare.Comparison) {
	p := message.NewPrinter(language.English)

	writeMatrix(w, "Outrights", cmp, cmp.Outrights)
	fmt.Fprintln(w)
	writeMatrix(w, "1M Spreads", cmp, cmp.Spreads)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "--- Summary ---\n")
	for i, col := range cmp.Columns {
		s := cmp.Stats[i]
		if s.Months == 0 {
			fmt.Fprintf(w, "%s: no results\n", col.Name)
			continue
		}
		_, _ = p.Fprintf(w, "%s: %d months, outright mean %.4f (min %.4f, max %.4f), spread mean %.4f, stddev %.4f\n",
			col.Name, s.Months, s.MeanOutright, s.MinOutright, s.MaxOutright, s.MeanSpread, s.SpreadStdDev)
	}
}

func writeMatrix(w io.Writer, title string, cmp *compare.Comparison, cells [][]compare.Cell) {
	fmt.Fprintf(w, "--- %s ---\n", title)
	fmt.Fprintf(w, "%-5s", "Month")
	for _, col := range cmp.Columns {
		fmt.Fprintf(w, " | %12s", truncate(col.Name, 12))
	}
	fmt.Fprintln(w)
	for month, label := range cmp.Months {
		fmt.Fprintf(w, "%-5s", label)
		for _, cell := range cells[month] {
			fmt.Fprintf(w, " | %12s", cell.String())
		}
		fmt.Fprintln(w)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// CsvComparison outputs both comparison matrices as one CSV table with an
// outright and a spread column per case.
func CsvComparison(w io.Writer, cmp *compare.Comparison) error {
	cw := csv.NewWriter(w)
	header := []string{"Month"}
	for _, col := range cmp.Columns {
		header = append(header, fmt.Sprintf("Outright (%s)", col.Name), fmt.Sprintf("1M Spread (%s)", col.Name))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for month, label := range cmp.Months {
		record := []string{label}
		for i := range cmp.Columns {
			record = append(record, cmp.Outrights[month][i].String(), cmp.Spreads[month][i].String())
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
