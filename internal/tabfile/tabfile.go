// Package tabfile reads and writes the flat tab-separated record files
// that back every ledger. Each record is one line; columns are joined
// with tabs in a fixed order per file.
package tabfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadLines returns the non-empty lines of the file, dropping exact
// duplicates while preserving first-seen order. A missing file reads as
// empty, never as an error.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	seen := make(map[string]struct{})
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}
	return lines, nil
}

// WriteLines rewrites the whole file atomically: the new content lands in
// a temp file in the same directory and replaces the target via rename.
func WriteLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadRows reads the file and splits each line into its tab-separated
// columns. Rows shorter than minCols are widened by WidenRow before being
// returned, so callers always see the current column layout.
func ReadRows(path string, minCols, insertAt int) ([][]string, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, WidenRow(strings.Split(line, "\t"), minCols, insertAt))
	}
	return rows, nil
}

// WriteRows joins each row's columns with tabs and rewrites the file.
func WriteRows(path string, rows [][]string) error {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, "\t"))
	}
	return WriteLines(path, lines)
}

// WidenRow upgrades a row persisted under an older, narrower column layout
// by inserting the default "-" field at insertAt until the row has at
// least minCols columns. Rows already wide enough pass through untouched.
func WidenRow(row []string, minCols, insertAt int) []string {
	for len(row) < minCols {
		if insertAt > len(row) {
			row = append(row, "-")
			continue
		}
		row = append(row[:insertAt], append([]string{"-"}, row[insertAt:]...)...)
	}
	return row
}
