package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAuditTrailLifecycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scanned.txt", "PL62506270001\tUPS\tAlice\tGood (Alice)\n")

	svc := New(dir)
	if err := svc.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	// Idempotent on an existing repo.
	if err := svc.Init(); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}

	writeFile(t, dir, "scanned.txt", "PL62506270001\tUPS\tAlice, Bob\tGood (Alice, Bob)\n")
	if err := svc.Record("Bob", "scan PL62506270001"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	history, err := svc.History(10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected baseline + 1, got %d", len(history))
	}
	if !strings.Contains(history[0].Message, "scan PL62506270001") {
		t.Fatalf("newest entry wrong: %+v", history[0])
	}
	if history[0].Author != "Bob" {
		t.Fatalf("author not recorded: %+v", history[0])
	}
	if len(history[0].Hash) != 7 {
		t.Fatalf("hash not abbreviated: %q", history[0].Hash)
	}
}

func TestRecordWithoutChangesIsNoOp(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scanned.txt", "row\n")

	svc := New(dir)
	if err := svc.Init(); err != nil {
		t.Fatal(err)
	}
	if err := svc.Record("Alice", "nothing changed"); err != nil {
		t.Fatalf("Record() on clean tree should be a no-op, got %v", err)
	}

	history, err := svc.History(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("empty commit recorded: %+v", history)
	}
}

func TestHistoryLimit(t *testing.T) {
	dir := t.TempDir()
	svc := New(dir)
	if err := svc.Init(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		writeFile(t, dir, "scanned.txt", fmt.Sprintf("row-%d\n", i))
		if err := svc.Record("Alice", fmt.Sprintf("mutation %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	history, err := svc.History(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("limit not applied: %d entries", len(history))
	}
}

func TestConcurrentRecord(t *testing.T) {
	dir := t.TempDir()
	svc := New(dir)
	if err := svc.Init(); err != nil {
		t.Fatal(err)
	}

	const writers = 8
	for i := 0; i < writers; i++ {
		writeFile(t, dir, fmt.Sprintf("file-%d.txt", i), "payload\n")
	}

	var wg sync.WaitGroup
	errCh := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := svc.Record("Alice", fmt.Sprintf("mutation %d", idx)); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("Record() concurrent error = %v", err)
		}
	}
}
