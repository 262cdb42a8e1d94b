// Package constants provides shared constants for the outright-forecast application.
package constants

// DateLayout is the format of meeting-date keys in scenario inputs.
const DateLayout = "2006-01-02"

// Calendar constants
const (
	// MonthsPerYear is the number of months in a year and the width of the
	// comparison axis.
	MonthsPerYear = 12

	// DefaultForecastYear is the calendar year the compute engine projects.
	DefaultForecastYear = 2026
)

// Scenario input defaults
const (
	// DefaultEffr is the base rate used when a scenario carries none.
	DefaultEffr = "5.25%"

	// DefaultDelta is the zero value for every delta and meeting field.
	DefaultDelta = "0"

	// EffrStep is the percent step applied to the base rate by up/down.
	EffrStep = "0.25"

	// BpsStep is the step applied to every other field by up/down.
	BpsStep = "1"
)

// Display constants
const (
	// DisplayPrecision is the number of decimals used for rates, outrights
	// and spreads.
	DisplayPrecision = 4

	// NotApplicable marks the spread of the final row of a series.
	NotApplicable = "N/A"

	// Unavailable marks a comparison cell with no data.
	Unavailable = "-"

	// OutrightBase is the level outrights are quoted against (100 - rate).
	OutrightBase = 100.0

	// PercentageMultiplier converts basis points to percent.
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Export file formats
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
	ExportFormatPDF  = "pdf"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default client configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides of client configuration.
	EnvPrefix = "OUTRIGHT"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":5001"

	// DefaultBaseURL is the default server location used by the client
	DefaultBaseURL = "http://localhost:5001"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultDatabasePath is the default location of the case database
	DefaultDatabasePath = "data/cases.db"

	// DefaultClientTimeoutSeconds bounds each client request
	DefaultClientTimeoutSeconds = 30
)

// DefaultMeetingDates is the scheduled rate-setting calendar for the default
// forecast year, keyed by decision date.
var DefaultMeetingDates = []string{
	"2026-01-28",
	"2026-03-18",
	"2026-04-29",
	"2026-06-17",
	"2026-07-29",
	"2026-09-16",
	"2026-10-28",
	"2026-12-09",
}
