// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/iwvelando/outright-forecast/pkg/constants"
)

// ValidateOutputFormat checks that a console output format is pretty or csv.
func ValidateOutputFormat(format string) error {
	return oneOf("output format", format, constants.OutputFormatPretty, constants.OutputFormatCSV)
}

// ValidateExportFormat checks that a file export format is csv, xlsx or pdf.
func ValidateExportFormat(format string) error {
	return oneOf("export format", format,
		constants.ExportFormatCSV, constants.ExportFormatXLSX, constants.ExportFormatPDF)
}

// oneOf matches exactly; callers normalize case themselves.
func oneOf(kind, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("expected %s of %s, got %q", kind, strings.Join(allowed, ", "), value)
}
