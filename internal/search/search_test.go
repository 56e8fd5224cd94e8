package search

import (
	"path/filepath"
	"testing"

	"picktrack/api/internal/ledger"
)

func newLedgers(t *testing.T) *Ledgers {
	t.Helper()
	dir := t.TempDir()
	scans := ledger.NewScanLedger(filepath.Join(dir, "scanned.txt"))
	troubles := ledger.NewTroubleLedger(filepath.Join(dir, "troubleshoot.txt"))
	problems := ledger.NewProblemLedger(filepath.Join(dir, "problems.txt"))

	if _, _, err := scans.MergeScan("AAAAAAAAAAAAA", "Alice", "UPS", true); err != nil {
		t.Fatal(err)
	}
	if _, _, err := scans.MergeScan("BBBBBBBBBBBBB", "Bob", "FedEx", false); err != nil {
		t.Fatal(err)
	}
	if err := troubles.Merge("AAAAAAAAAAAAA", "X1", "Alice", "UPS"); err != nil {
		t.Fatal(err)
	}
	if err := problems.Merge(ledger.ProblemRecord{
		Code:     "BBBBBBBBBBBBB",
		Category: ledger.CategoryMissing,
		User:     "Bob",
		Comment:  "skid short two cartons",
		Location: "D14",
		SKU:      "SKU-778",
		Quantity: "2",
	}, ledger.CategoryMissing); err != nil {
		t.Fatal(err)
	}

	return NewLedgers(scans, troubles, problems)
}

func TestLedgersSearchMatchesAcrossTypes(t *testing.T) {
	l := newLedgers(t)

	results, total, err := l.Search(Query{Text: "aaaaaaaaaaaaa"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("expected scan + trouble hit, got %d: %+v", total, results)
	}
	if results[0].Type != ResultScan || results[1].Type != ResultTrouble {
		t.Fatalf("unexpected hit types: %+v", results)
	}
}

func TestLedgersSearchTypeAndCarrierFilters(t *testing.T) {
	l := newLedgers(t)

	results, _, err := l.Search(Query{Text: "bbb", FilterType: ResultScan})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Carrier != "FedEx" {
		t.Fatalf("unexpected results: %+v", results)
	}

	results, _, err = l.Search(Query{Text: "aaa", FilterType: ResultScan, FilterCarrier: "FedEx"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("carrier filter leaked: %+v", results)
	}
}

func TestLedgersSearchMatchesProblemFields(t *testing.T) {
	l := newLedgers(t)

	results, total, err := l.Search(Query{Text: "skid short"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || results[0].Type != ResultProblem {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].ID != "BBBBBBBBBBBBB_Missing" {
		t.Fatalf("unexpected problem doc id %q", results[0].ID)
	}
}

func TestLedgersSearchPagination(t *testing.T) {
	l := newLedgers(t)

	results, total, err := l.Search(Query{Text: "b", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || total < 2 {
		t.Fatalf("limit not applied: len=%d total=%d", len(results), total)
	}

	page2, _, err := l.Search(Query{Text: "b", Limit: 1, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page2) != 1 || page2[0].ID == results[0].ID {
		t.Fatalf("offset not applied: %+v vs %+v", results, page2)
	}

	empty, _, err := l.Search(Query{Text: "b", Offset: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Fatalf("offset past end should return nothing: %+v", empty)
	}
}

func TestLedgersSearchBlankQuery(t *testing.T) {
	l := newLedgers(t)

	results, total, err := l.Search(Query{Text: "   "})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 || total != 0 {
		t.Fatalf("blank query should match nothing: %+v", results)
	}
}

func TestServiceFallsBackWithoutMeili(t *testing.T) {
	svc := NewService(nil, newLedgers(t))

	resp := svc.Search(Query{Text: "AAAAAAAAAAAAA"})
	if resp.Total != 2 {
		t.Fatalf("expected fallback hits, got %+v", resp)
	}
	if resp.Query != "AAAAAAAAAAAAA" {
		t.Fatalf("query not echoed: %q", resp.Query)
	}

	// Index calls are no-ops without a configured backend.
	svc.IndexScan(ScanDoc{ID: "AAAAAAAAAAAAA"})
	svc.DeleteTrouble("AAAAAAAAAAAAA")
}

func TestProblemDocFor(t *testing.T) {
	doc := ProblemDocFor(ledger.ProblemRecord{
		Code:     "CCCCCCCCCCCCC",
		Category: ledger.CategoryTSP,
		Comment:  "wrap torn",
	})
	if doc.ID != "CCCCCCCCCCCCC_TSP" || doc.Category != "TSP" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
}
