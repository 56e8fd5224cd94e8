package ledger

import (
	"fmt"
	"strings"
	"sync"

	"picktrack/api/internal/tabfile"
)

// CodeLength is the fixed length of a pick-list code; scan input beyond
// it is the tail suffix naming a sub-item or problem reference.
const CodeLength = 13

// ValidateCode checks the fixed-length alphanumeric shape of a base code.
func ValidateCode(code string) error {
	if len(code) != CodeLength {
		return fmt.Errorf("pick-list code must be %d characters, got %d", CodeLength, len(code))
	}
	for _, r := range code {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return fmt.Errorf("pick-list code contains invalid character %q", r)
		}
	}
	return nil
}

// SplitCode separates scan input into the base code and the tail suffix.
func SplitCode(input string) (code, tail string) {
	if len(input) <= CodeLength {
		return input, ""
	}
	return input[:CodeLength], input[CodeLength:]
}

// PickListEntry is one stored pick-list code and its bound carrier.
type PickListEntry struct {
	Code    string
	Carrier string
}

// PickList is the master registry of stored codes. Each code is bound to
// exactly one carrier; the binding is checked by the add and scan paths.
type PickList struct {
	mu   sync.Mutex
	path string
}

func NewPickList(path string) *PickList {
	return &PickList{path: path}
}

// Upsert stores or rebinds a code.
func (p *PickList) Upsert(code, carrier string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries, err := p.readEntries()
	if err != nil {
		return err
	}
	for i, entry := range entries {
		if entry.Code == code {
			entries[i].Carrier = carrier
			return p.writeEntries(entries)
		}
	}
	entries = append(entries, PickListEntry{Code: code, Carrier: carrier})
	return p.writeEntries(entries)
}

// Delete removes every entry whose code is in the set.
func (p *PickList) Delete(codes map[string]struct{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries, err := p.readEntries()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, entry := range entries {
		if _, drop := codes[entry.Code]; !drop {
			kept = append(kept, entry)
		}
	}
	return p.writeEntries(kept)
}

// All returns the stored entries in file order.
func (p *PickList) All() ([]PickListEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readEntries()
}

// Carrier returns the carrier bound to an exact stored code.
func (p *PickList) Carrier(code string) (string, bool, error) {
	entries, err := p.All()
	if err != nil {
		return "", false, err
	}
	for _, entry := range entries {
		if entry.Code == code {
			return entry.Carrier, true, nil
		}
	}
	return "", false, nil
}

// CarrierForBase returns the carrier expected for a scan of base code
// k13: the binding of the exact scanned code when stored, otherwise the
// binding of the first stored code sharing the 13-character base.
func (p *PickList) CarrierForBase(scanned, base string) (string, bool, error) {
	entries, err := p.All()
	if err != nil {
		return "", false, err
	}
	var baseCarrier string
	baseFound := false
	for _, entry := range entries {
		if entry.Code == scanned {
			return entry.Carrier, true, nil
		}
		if !baseFound && strings.HasPrefix(entry.Code, base) {
			baseCarrier, baseFound = entry.Carrier, true
		}
	}
	return baseCarrier, baseFound, nil
}

func (p *PickList) readEntries() ([]PickListEntry, error) {
	lines, err := tabfile.ReadLines(p.path)
	if err != nil {
		return nil, err
	}
	entries := make([]PickListEntry, 0, len(lines))
	for _, line := range lines {
		code, carrier, _ := strings.Cut(line, "\t")
		if carrier == "" {
			carrier = "Default"
		}
		entries = append(entries, PickListEntry{Code: code, Carrier: carrier})
	}
	return entries, nil
}

func (p *PickList) writeEntries(entries []PickListEntry) error {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.Code+"\t"+entry.Carrier)
	}
	return tabfile.WriteLines(p.path, lines)
}
