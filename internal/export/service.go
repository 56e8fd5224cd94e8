package export

import (
	"fmt"
	"time"
)

// Service provides trouble report export functionality
type Service struct{}

// NewService creates a new export service
func NewService() *Service {
	return &Service{}
}

// Export generates an export of the given rows in the requested format.
// The carrier filter is applied here so both formats see the same subset.
func (s *Service) Export(req Request, rows []TroubleRow) (*Result, error) {
	if req.Title == "" {
		req.Title = "Trouble Report"
	}
	if req.Carrier != "" {
		filtered := make([]TroubleRow, 0, len(rows))
		for _, row := range rows {
			if row.Carrier == req.Carrier {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	switch req.Format {
	case FormatCSV:
		return exportCSV(rows, req.Title)
	case FormatPDF:
		html, err := RenderReportHTML(TemplateData{
			Title:       req.Title,
			Carrier:     req.Carrier,
			GeneratedAt: time.Now(),
			Rows:        rows,
		})
		if err != nil {
			return nil, fmt.Errorf("render template: %w", err)
		}
		return exportPDF(html, req.Title)
	default:
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}
}
