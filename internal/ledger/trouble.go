package ledger

import (
	"strings"
	"sync"

	"picktrack/api/internal/tabfile"
)

// troubleshoot.txt columns: code, comment, contributors, carrier, result,
// flag. The result column was added after launch; legacy five-column rows
// are widened on read with "-" at index 4.
const (
	troubleCols         = 6
	troubleResultColumn = 4
)

// TroubleRecord is a coarse trouble entry, keyed by code alone.
type TroubleRecord struct {
	Code         string
	Comment      string
	Contributors []string
	Carrier      string
	Result       string
	Flag         Flag
}

// TroubleLedger is the file-backed coarse trouble store. At most one
// record exists per code; merges up-sert, never duplicate.
type TroubleLedger struct {
	mu   sync.Mutex
	path string
}

func NewTroubleLedger(path string) *TroubleLedger {
	return &TroubleLedger{path: path}
}

// Merge folds one problem report into the ledger. On an existing record
// the tail comment is appended only if not already present, the reporting
// user joins the contributor set, and the flag is forced back to open. A
// new record starts with result "-" and flag open.
func (l *TroubleLedger) Merge(code, tail, user, carrier string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.readRows()
	if err != nil {
		return err
	}
	for i, rec := range rows {
		if rec.Code != code {
			continue
		}
		rec.Comment = appendComment(rec.Comment, tail)
		rec.Contributors = sortedMembers(setOf(append(rec.Contributors, user)...))
		rec.Flag = FlagOpen
		rows[i] = rec
		return l.writeRows(rows)
	}
	rows = append(rows, TroubleRecord{
		Code:         code,
		Comment:      tail,
		Contributors: []string{user},
		Carrier:      carrier,
		Result:       "-",
		Flag:         FlagOpen,
	})
	return l.writeRows(rows)
}

// SetResult overwrites the result and flag of the record for code. A
// missing record is a tolerated no-op.
func (l *TroubleLedger) SetResult(code, result string, flag Flag) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.readRows()
	if err != nil {
		return err
	}
	for i, rec := range rows {
		if rec.Code == code {
			rec.Result = result
			rec.Flag = flag
			rows[i] = rec
			break
		}
	}
	return l.writeRows(rows)
}

// Clear removes the record for code, if any.
func (l *TroubleLedger) Clear(code string) error {
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
func (l *TroubleLedger) Records() ([]TroubleRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readRows()
}

// Get returns the record for one code.
func (l *TroubleLedger) Get(code string) (TroubleRecord, bool, error) {
	rows, err := l.Records()
	if err != nil {
		return TroubleRecord{}, false, err
	}
	for _, rec := range rows {
		if rec.Code == code {
			return rec, true, nil
		}
	}
	return TroubleRecord{}, false, nil
}

func (l *TroubleLedger) readRows() ([]TroubleRecord, error) {
	raw, err := tabfile.ReadRows(l.path, troubleCols, troubleResultColumn)
	if err != nil {
		return nil, err
	}
	rows := make([]TroubleRecord, 0, len(raw))
	for _, cols := range raw {
		rows = append(rows, TroubleRecord{
			Code:         cols[0],
			Comment:      cols[1],
			Contributors: splitList(cols[2]),
			Carrier:      cols[3],
			Result:       cols[4],
			Flag:         ParseFlag(cols[5]),
		})
	}
	return rows, nil
}

func (l *TroubleLedger) writeRows(rows []TroubleRecord) error {
	raw := make([][]string, 0, len(rows))
	for _, rec := range rows {
		raw = append(raw, []string{
			rec.Code,
			rec.Comment,
			strings.Join(rec.Contributors, ", "),
			rec.Carrier,
			rec.Result,
			rec.Flag.Marker(),
		})
	}
	return tabfile.WriteRows(l.path, raw)
}

// appendComment joins tail onto comment with ", " unless the exact text is
// already one of the comment's entries.
func appendComment(comment, tail string) string {
	if tail == "" {
		return comment
	}
	if comment == "" {
		return tail
	}
	for _, part := range strings.Split(comment, ", ") {
		if part == tail {
			return comment
		}
	}
	return comment + ", " + tail
}
