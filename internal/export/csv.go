package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// exportCSV renders the report rows as a CSV file.
func exportCSV(rows []TroubleRow, title string) (*Result, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"code", "carrier", "comment", "contributors", "result", "status"}); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Code,
			row.Carrier,
			row.Comment,
			strings.Join(row.Contributors, ", "),
			row.Result,
			row.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("csv row %s: %w", row.Code, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}

	return &Result{
		Data:     buf.Bytes(),
		Filename: sanitizeFilename(title) + ".csv",
		MimeType: "text/csv",
	}, nil
}
