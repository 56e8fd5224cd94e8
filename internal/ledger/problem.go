package ledger

import (
	"sync"

	"picktrack/api/internal/tabfile"
)

// problems.txt columns: code, category, user, pickerMentioned, comment,
// location, sku, quantity, result, flag. The result column was inserted
// before the flag after launch; legacy nine-column rows are widened on
// read with "-" at index 8.
const (
	problemCols         = 10
	problemResultColumn = 8
)

// ProblemRecord is a fine-grained trouble entry, keyed by (code, category).
type ProblemRecord struct {
	Code            string
	Category        Category
	User            string
	PickerMentioned string
	Comment         string
	Location        string
	SKU             string
	Quantity        string
	Result          string
	Flag            Flag
}

// ProblemLedger is the file-backed fine trouble store. At most one record
// exists per (code, category) pair.
type ProblemLedger struct {
	mu   sync.Mutex
	path string
}

func NewProblemLedger(path string) *ProblemLedger {
	return &ProblemLedger{path: path}
}

// Merge up-serts a problem report, replacing any existing row for the same
// (code, category) wholesale. A NoProblem report is a clear signal instead
// of an insert: the row for the referenced category is deleted, or every
// row for the code when no category is referenced.
func (l *ProblemLedger) Merge(rec ProblemRecord, referenced Category) error {
	if rec.Category == CategoryNoProblem {
		if referenced == CategoryUnknown {
			return l.Delete(rec.Code)
		}
		return l.DeleteRow(rec.Code, referenced)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.readRows()
	if err != nil {
		return err
	}
	if rec.Result == "" {
		rec.Result = "-"
	}
	if rec.Flag == FlagUnknown {
		rec.Flag = FlagOpen
	}
	for i, existing := range rows {
		if existing.Code == rec.Code && existing.Category == rec.Category {
			rows[i] = rec
			return l.writeRows(rows)
		}
	}
	rows = append(rows, rec)
	return l.writeRows(rows)
}

// SetResult overwrites the result and flag of the row for (code,
// category). A missing row is a tolerated no-op.
func (l *ProblemLedger) SetResult(code string, category Category, result string, flag Flag) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.readRows()
	if err != nil {
		return err
	}
	for i, rec := range rows {
		if rec.Code == code && rec.Category == category {
			rec.Result = result
			rec.Flag = flag
			rows[i] = rec
			break
		}
	}
	return l.writeRows(rows)
}

// DeleteRow removes the exact (code, category) row.
func (l *ProblemLedger) DeleteRow(code string, category Category) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.readRows()
	if err != nil {
		return err
	}
	kept := rows[:0]
	for _, rec := range rows {
		if rec.Code != code || rec.Category != category {
			kept = append(kept, rec)
		}
	}
	return l.writeRows(kept)
}

// Delete removes every row for the code across all categories.
func (l *ProblemLedger) Delete(code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.readRows()
	if err != nil {
		return err
	}
	kept := rows[:0]
	for _, rec := range rows {
		if rec.Code != code {
			kept = append(kept, rec)
		}
	}
	return l.writeRows(kept)
}

// Records returns the current ledger contents in file order.
func (l *ProblemLedger) Records() ([]ProblemRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readRows()
}

// FlagsFor returns the set of distinct flags present among the rows
// sharing a code, the input to status derivation.
func FlagsFor(rows []ProblemRecord, code string) []Flag {
	seen := make(map[Flag]struct{})
	var flags []Flag
	for _, rec := range rows {
		if rec.Code != code {
			continue
		}
		if _, dup := seen[rec.Flag]; dup {
			continue
		}
		seen[rec.Flag] = struct{}{}
		flags = append(flags, rec.Flag)
	}
	return flags
}

func (l *ProblemLedger) readRows() ([]ProblemRecord, error) {
	raw, err := tabfile.ReadRows(l.path, problemCols, problemResultColumn)
	if err != nil {
		return nil, err
	}
	rows := make([]ProblemRecord, 0, len(raw))
	for _, cols := range raw {
		rows = append(rows, ProblemRecord{
			Code:            cols[0],
			Category:        ParseCategory(cols[1]),
			User:            cols[2],
			PickerMentioned: cols[3],
			Comment:         cols[4],
			Location:        cols[5],
			SKU:             cols[6],
			Quantity:        cols[7],
			Result:          cols[8],
			Flag:            ParseFlag(cols[9]),
		})
	}
	return rows, nil
}

func (l *ProblemLedger) writeRows(rows []ProblemRecord) error {
	raw := make([][]string, 0, len(rows))
	for _, rec := range rows {
		raw = append(raw, []string{
			rec.Code,
			rec.Category.String(),
			rec.User,
			rec.PickerMentioned,
			rec.Comment,
			rec.Location,
			rec.SKU,
			rec.Quantity,
			rec.Result,
			rec.Flag.Marker(),
		})
	}
	return tabfile.WriteRows(l.path, raw)
}
