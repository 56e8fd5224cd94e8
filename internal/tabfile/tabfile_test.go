package tabfile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadLinesMissingFile(t *testing.T) {
	lines, err := ReadLines(filepath.Join(t.TempDir(), "absent.txt"))
	if err != nil {
		t.Fatalf("ReadLines on missing file: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %v", lines)
	}
}

func TestReadLinesDropsBlanksAndDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.txt")
	raw := "a\tb\n\na\tb\nc\td\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	want := []string{"a\tb", "c\td"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
}

func TestWriteLinesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.txt")
	want := []string{"one", "two\tcol"}
	if err := WriteLines(path, want); err != nil {
		t.Fatalf("WriteLines: %v", err)
	}
	got, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWriteLinesEmptyTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.txt")
	if err := WriteLines(path, []string{"stale"}); err != nil {
		t.Fatal(err)
	}
	if err := WriteLines(path, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty file, got %q", data)
	}
}

func TestWidenRowInsertsDefaultAtIndex(t *testing.T) {
	row := []string{"CODE", "comment", "Alice", "UPS", "⚠️"}
	got := WidenRow(row, 6, 4)
	want := []string{"CODE", "comment", "Alice", "UPS", "-", "⚠️"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWidenRowLeavesCurrentLayoutAlone(t *testing.T) {
	row := []string{"CODE", "comment", "Alice", "UPS", "done", "✅"}
	got := WidenRow(append([]string(nil), row...), 6, 4)
	if !reflect.DeepEqual(got, row) {
		t.Fatalf("row mutated: %v", got)
	}
}

func TestReadRowsWidensLegacyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trouble.txt")
	raw := "AAA\tc1\tAlice\tUPS\t⚠️\nBBB\tc2\tBob\tFedEx\tdone\t✅\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadRows(path, 6, 4)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][4] != "-" || rows[0][5] != "⚠️" {
		t.Fatalf("legacy row not widened: %v", rows[0])
	}
	if rows[1][4] != "done" {
		t.Fatalf("current row altered: %v", rows[1])
	}
}
