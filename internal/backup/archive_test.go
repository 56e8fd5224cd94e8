package backup

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestBuildArchive(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"scanned.txt":     "PL62506270001\tUPS\tAlice\tGood (Alice)\n",
		"names/alice.txt": "PL62506270001\tAlice\tGood (Alice)\n",
	}
	if err := os.MkdirAll(filepath.Join(dir, "names"), 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Excluded entries.
	if err := os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scanned.txt.tmp"), []byte("partial\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := buildArchive(dir)
	if err != nil {
		t.Fatalf("buildArchive() error = %v", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(gz)

	got := map[string]string{}
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		body, err := io.ReadAll(tr)
		if err != nil {
			t.Fatal(err)
		}
		got[header.Name] = string(body)
	}

	if len(got) != len(files) {
		t.Fatalf("unexpected archive entries: %v", got)
	}
	for name, content := range files {
		if got[name] != content {
			t.Fatalf("entry %s = %q, want %q", name, got[name], content)
		}
	}
}
