package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/outright-forecast/internal/compare"
	"github.com/iwvelando/outright-forecast/pkg/format"
)

const (
	pageWidth    = 297.0
	marginLeft   = 12.0
	marginRight  = 12.0
	marginTop    = 12.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight

	monthColumnWidth = 20.0
	maxCaseNameChars = 24
)

type comparisonReport struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	cmp *compare.Comparison
}

// WriteComparisonPDF renders the outright and spread matrices plus the summary
// statistics of a comparison as a landscape A4 report.
func WriteComparisonPDF(w io.Writer, cmp *compare.Comparison, generated time.Time) error {
	r := &comparisonReport{
		pdf: fpdf.New("L", "mm", "A4", ""),
		cmp: cmp,
	}
	r.tr = r.pdf.UnicodeTranslatorFromDescriptor("")
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)
	r.pdf.SetTitle("Outright Comparison", true)
	r.pdf.SetCreationDate(generated)

	r.pdf.AddPage()
	r.addTitle(generated)
	r.addMatrix("Outrights", cmp.Outrights)
	r.addMatrix("1M Spreads", cmp.Spreads)
	r.addSummary()

	if err := r.pdf.Error(); err != nil {
		return err
	}
	return r.pdf.Output(w)
}

func (r *comparisonReport) addTitle(generated time.Time) {
	r.pdf.SetFont("Arial", "B", 18)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, "Outright Comparison", "", 1, "L", false, 0, "")

	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(100, 100, 100)
	r.pdf.CellFormat(contentWidth, 5, fmt.Sprintf("%d cases, generated %s", len(r.cmp.Columns), generated.Format("2 January 2006 15:04")), "", 1, "L", false, 0, "")
	r.pdf.Ln(4)
}

func (r *comparisonReport) caseWidths() []float64 {
	widths := make([]float64, len(r.cmp.Columns)+1)
	widths[0] = monthColumnWidth
	caseWidth := (contentWidth - monthColumnWidth) / float64(len(r.cmp.Columns))
	for i := 1; i < len(widths); i++ {
		widths[i] = caseWidth
	}
	return widths
}

func (r *comparisonReport) caseHeaders(first string) []string {
	headers := []string{first}
	for _, col := range r.cmp.Columns {
		headers = append(headers, truncateString(col.Name, maxCaseNameChars))
	}
	return headers
}

func (r *comparisonReport) addMatrix(title string, cells [][]compare.Cell) {
	r.addSectionTitle(title)

	widths := r.caseWidths()
	r.drawTableHeader(r.caseHeaders("Month"), widths)
	for month, label := range r.cmp.Months {
		row := []string{label}
		for _, cell := range cells[month] {
			row = append(row, cell.String())
		}
		r.drawTableRow(row, widths)
	}
	r.pdf.Ln(6)
}

func (r *comparisonReport) addSummary() {
	r.addSectionTitle("Summary")

	widths := []float64{73, 27, 35, 35, 35, 34, 34}
	r.drawTableHeader([]string{"Case", "Months", "Mean Outright", "Min Outright", "Max Outright", "Mean Spread", "Spread StdDev"}, widths)
	for i, col := range r.cmp.Columns {
		s := r.cmp.Stats[i]
		if s.Months == 0 {
			r.drawTableRow([]string{truncateString(col.Name, 40), "0", "-", "-", "-", "-", "-"}, widths)
			continue
		}
		r.drawTableRow([]string{
			truncateString(col.Name, 40),
			fmt.Sprintf("%d", s.Months),
			format.Display(s.MeanOutright),
			format.Display(s.MinOutright),
			format.Display(s.MaxOutright),
			format.Display(s.MeanSpread),
			format.Display(s.SpreadStdDev),
		}, widths)
	}
}

func (r *comparisonReport) addSectionTitle(title string) {
	r.pdf.SetFont("Arial", "B", 11)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 7, title, "", 1, "L", false, 0, "")
}

func (r *comparisonReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 8)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, r.tr(header), "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *comparisonReport) drawTableRow(cells []string, widths []float64) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.SetFont("Arial", "", 8)

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, r.tr(cell), "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
