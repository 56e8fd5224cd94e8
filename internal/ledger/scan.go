package ledger

import (
	"strings"
	"sync"

	"picktrack/api/internal/tabfile"
)

// scanned.txt columns: code, carrier, scanners, remark. Legacy rows from
// before the carrier column get "Default" patched in on read.
const scanCols = 4

// ScanRecord is the completion state for one pick-list code.
type ScanRecord struct {
	Code      string
	Carrier   string
	Scanners  []string
	Pending   []string
	Confirmed []string
	Remark    string
}

// Concluded reports whether every scanner has confirmed the code.
func (r ScanRecord) Concluded() bool {
	return len(r.Pending) == 0 && len(r.Confirmed) > 0
}

// ScanLedger is the file-backed store of scan records. Every mutation is
// one read-all/rewrite-all cycle under the ledger mutex; readers between
// mutations see the last fully written state.
type ScanLedger struct {
	mu   sync.Mutex
	path string
}

func NewScanLedger(path string) *ScanLedger {
	return &ScanLedger{path: path}
}

// MergeScan folds one scan event into the ledger and returns the new
// remark and the effective carrier. Codes are carrier-sticky: on an
// existing record the stored carrier silently wins over the supplied one.
// The scanning user lands in the confirmed set when confirmed is true,
// otherwise in the pending set, and is removed from the opposite set so
// the two stay disjoint.
func (l *ScanLedger) MergeScan(code, user, carrier string, confirmed bool) (string, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.readRows()
	if err != nil {
		return "", "", err
	}

	for i, rec := range rows {
		if rec.Code != code {
			continue
		}
		if carrier != "" && carrier != rec.Carrier {
			carrier = rec.Carrier
		} else if carrier == "" {
			carrier = rec.Carrier
		}
		pending, good := DecodeRemark(rec.Remark)
		if confirmed {
			good[user] = struct{}{}
			delete(pending, user)
		} else {
			pending[user] = struct{}{}
			delete(good, user)
		}
		remark := EncodeRemark(pending, good)
		rows[i] = ScanRecord{
			Code:      code,
			Carrier:   carrier,
			Scanners:  sortedMembers(union(pending, good)),
			Pending:   sortedMembers(pending),
			Confirmed: sortedMembers(good),
			Remark:    remark,
		}
		return remark, carrier, l.writeRows(rows)
	}

	pending, good := setOf(), setOf(user)
	if !confirmed {
		pending, good = setOf(user), setOf()
	}
	remark := EncodeRemark(pending, good)
	rows = append(rows, ScanRecord{
		Code:      code,
		Carrier:   carrier,
		Scanners:  []string{user},
		Pending:   sortedMembers(pending),
		Confirmed: sortedMembers(good),
		Remark:    remark,
	})
	return remark, carrier, l.writeRows(rows)
}

// BulkDelete removes every record whose code is in the set. Absent codes
// are not an error.
func (l *ScanLedger) BulkDelete(codes map[string]struct{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.readRows()
	if err != nil {
		return err
	}
	kept := rows[:0]
	for _, rec := range rows {
		if _, drop := codes[rec.Code]; !drop {
			kept = append(kept, rec)
		}
	}
	return l.writeRows(kept)
}

// Conclude moves every pending user into the confirmed set and recomputes
// the remark. It returns the updated record and true when a transition
// happened; a code that is already concluded (or unknown) is a no-op.
func (l *ScanLedger) Conclude(code string) (ScanRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.readRows()
	if err != nil {
		return ScanRecord{}, false, err
	}
	for i, rec := range rows {
		if rec.Code != code {
			continue
		}
		pending, good := DecodeRemark(rec.Remark)
		if len(pending) == 0 {
			return rec, false, nil
		}
		for user := range pending {
			good[user] = struct{}{}
		}
		rec.Pending = nil
		rec.Confirmed = sortedMembers(good)
		rec.Remark = EncodeRemark(nil, good)
		rows[i] = rec
		return rec, true, l.writeRows(rows)
	}
	return ScanRecord{}, false, nil
}

// Reopen moves a concluded code back to open. The new pending set is
// re-derived from the recorded scanner list, not from the confirmed set:
// the scanner list is the source of truth for who has touched the code.
func (l *ScanLedger) Reopen(code string) (ScanRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.readRows()
	if err != nil {
		return ScanRecord{}, false, err
	}
	for i, rec := range rows {
		if rec.Code != code {
			continue
		}
		pending, _ := DecodeRemark(rec.Remark)
		if len(pending) > 0 {
			return rec, false, nil
		}
		reopened := setOf(rec.Scanners...)
		rec.Pending = sortedMembers(reopened)
		rec.Confirmed = nil
		rec.Remark = EncodeRemark(reopened, nil)
		rows[i] = rec
		return rec, true, l.writeRows(rows)
	}
	return ScanRecord{}, false, nil
}

// Records returns the current ledger contents in file order.
func (l *ScanLedger) Records() ([]ScanRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readRows()
}

// Get returns the record for one code.
func (l *ScanLedger) Get(code string) (ScanRecord, bool, error) {
	rows, err := l.Records()
	if err != nil {
		return ScanRecord{}, false, err
	}
	for _, rec := range rows {
		if rec.Code == code {
			return rec, true, nil
		}
	}
	return ScanRecord{}, false, nil
}

func (l *ScanLedger) readRows() ([]ScanRecord, error) {
	lines, err := tabfile.ReadLines(l.path)
	if err != nil {
		return nil, err
	}
	rows := make([]ScanRecord, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, parseScanRow(line))
	}
	return rows, nil
}

func (l *ScanLedger) writeRows(rows []ScanRecord) error {
	lines := make([]string, 0, len(rows))
	for _, rec := range rows {
		lines = append(lines, strings.Join([]string{
			rec.Code, rec.Carrier, strings.Join(rec.Scanners, ", "), rec.Remark,
		}, "\t"))
	}
	return tabfile.WriteLines(l.path, lines)
}

// parseScanRow tolerates the pre-carrier three-column layout and anything
// shorter; a row never fails to parse.
func parseScanRow(line string) ScanRecord {
	parts := strings.Split(line, "\t")
	var code, carrier, scanners, remark string
	switch {
	case len(parts) >= scanCols:
		code, carrier, scanners, remark = parts[0], parts[1], parts[2], parts[3]
	case len(parts) == 3:
		code, carrier, scanners, remark = parts[0], "Default", parts[1], parts[2]
	default:
		code, carrier = parts[0], "Default"
	}
	pending, good := DecodeRemark(remark)
	return ScanRecord{
		Code:      code,
		Carrier:   carrier,
		Scanners:  splitList(scanners),
		Pending:   sortedMembers(pending),
		Confirmed: sortedMembers(good),
		Remark:    remark,
	}
}

func splitList(joined string) []string {
	var members []string
	for _, member := range strings.Split(joined, ",") {
		if member = strings.TrimSpace(member); member != "" {
			members = append(members, member)
		}
	}
	return members
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for member := range a {
		out[member] = struct{}{}
	}
	for member := range b {
		out[member] = struct{}{}
	}
	return out
}
