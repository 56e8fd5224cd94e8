// Package export renders the trouble report as CSV or PDF for handoff
// outside the scanning floor.
package export

import "errors"

// Format represents the export output format
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// Request contains parameters for an export operation
type Request struct {
	Format  Format
	Title   string
	Carrier string // empty = all carriers
}

// TroubleRow is one line of the report being exported.
type TroubleRow struct {
	Code         string
	Comment      string
	Contributors []string
	Carrier      string
	Result       string
	Status       string
}

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
var ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
