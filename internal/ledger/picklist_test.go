package ledger

import (
	"path/filepath"
	"testing"
)

func newPickList(t *testing.T) *PickList {
	t.Helper()
	return NewPickList(filepath.Join(t.TempDir(), "picklists.txt"))
}

func TestValidateCode(t *testing.T) {
	if err := ValidateCode("PL62506270001"); err != nil {
		t.Fatalf("valid code rejected: %v", err)
	}
	if err := ValidateCode("SHORT"); err == nil {
		t.Fatal("short code accepted")
	}
	if err := ValidateCode("PL62506270 01"); err == nil {
		t.Fatal("code with space accepted")
	}
	if err := ValidateCode("pl62506270001"); err == nil {
		t.Fatal("lowercase code accepted")
	}
}

func TestSplitCode(t *testing.T) {
	code, tail := SplitCode("ABCDEFGHIJKLMX1")
	if code != "ABCDEFGHIJKLM" || tail != "X1" {
		t.Fatalf("got %q / %q", code, tail)
	}
	code, tail = SplitCode("ABCDEFGHIJKLM")
	if code != "ABCDEFGHIJKLM" || tail != "" {
		t.Fatalf("got %q / %q", code, tail)
	}
}

func TestPickListUpsertRebinds(t *testing.T) {
	p := newPickList(t)

	p.Upsert("ABCDEFGHIJKLM", "UPS")
	p.Upsert("ABCDEFGHIJKLM", "FedEx")

	entries, err := p.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Carrier != "FedEx" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestPickListDelete(t *testing.T) {
	p := newPickList(t)
	p.Upsert("AAAAAAAAAAAAA", "UPS")
	p.Upsert("BBBBBBBBBBBBB", "UPS")

	if err := p.Delete(map[string]struct{}{"AAAAAAAAAAAAA": {}}); err != nil {
		t.Fatal(err)
	}
	entries, _ := p.All()
	if len(entries) != 1 || entries[0].Code != "BBBBBBBBBBBBB" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestCarrierForBasePrefersExactMatch(t *testing.T) {
	p := newPickList(t)
	p.Upsert("ABCDEFGHIJKLM", "UPS")
	p.Upsert("ABCDEFGHIJKLMX1", "FedEx")

	carrier, ok, err := p.CarrierForBase("ABCDEFGHIJKLMX1", "ABCDEFGHIJKLM")
	if err != nil || !ok {
		t.Fatalf("CarrierForBase: ok=%v err=%v", ok, err)
	}
	if carrier != "FedEx" {
		t.Fatalf("exact code binding should win, got %q", carrier)
	}

	carrier, ok, _ = p.CarrierForBase("ABCDEFGHIJKLMX9", "ABCDEFGHIJKLM")
	if !ok || carrier != "UPS" {
		t.Fatalf("base binding expected, got ok=%v carrier=%q", ok, carrier)
	}

	_, ok, _ = p.CarrierForBase("ZZZZZZZZZZZZZ", "ZZZZZZZZZZZZZ")
	if ok {
		t.Fatal("unknown base should not resolve")
	}
}
