package registry

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New(t.TempDir())
	if err := r.Seed(); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return r
}

func TestSeedDefaults(t *testing.T) {
	r := newRegistry(t)

	users, err := r.Users()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(users, []string{DefaultName}) {
		t.Fatalf("unexpected seeded users: %v", users)
	}

	carriers, err := r.Carriers()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(carriers, []string{DefaultName, "UPS", "FedEx"}) {
		t.Fatalf("unexpected seeded carriers: %v", carriers)
	}
}

func TestEnsureUserIdempotent(t *testing.T) {
	r := newRegistry(t)

	if err := r.EnsureUser("Alice"); err != nil {
		t.Fatal(err)
	}
	if err := r.EnsureUser("Alice"); err != nil {
		t.Fatal(err)
	}
	users, _ := r.Users()
	if !reflect.DeepEqual(users, []string{"Alice", DefaultName}) {
		t.Fatalf("unexpected users: %v", users)
	}
}

func TestCreateUserRejectsDuplicate(t *testing.T) {
	r := newRegistry(t)

	if err := r.CreateUser("Alice", "hash1"); err != nil {
		t.Fatal(err)
	}
	if err := r.CreateUser("Alice", "hash2"); err == nil {
		t.Fatal("expected duplicate user error")
	}
	hash, ok, err := r.PasswordHash("Alice")
	if err != nil || !ok {
		t.Fatalf("PasswordHash: ok=%v err=%v", ok, err)
	}
	if hash != "hash1" {
		t.Fatalf("credential overwritten: %q", hash)
	}
}

func TestDeleteUserRemovesLogAndProtectsDefault(t *testing.T) {
	dir := t.TempDir()
	r := New(dir)
	if err := r.Seed(); err != nil {
		t.Fatal(err)
	}
	r.EnsureUser("Alice")
	if err := r.UpsertUserLog("Alice", "AAAAAAAAAAAAA", "Good (Alice)"); err != nil {
		t.Fatal(err)
	}

	removed, err := r.DeleteUser("alice")
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if removed != "Alice" {
		t.Fatalf("case-insensitive match failed: %q", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "names", "alice.txt")); !os.IsNotExist(err) {
		t.Fatal("operator log not removed")
	}

	if _, err := r.DeleteUser(DefaultName); err == nil {
		t.Fatal("Default must be protected")
	}
}

func TestCarrierLifecycle(t *testing.T) {
	r := newRegistry(t)

	if err := r.EnsureCarrier("DHL"); err != nil {
		t.Fatal(err)
	}
	if err := r.EnsureCarrier("DHL"); err != nil {
		t.Fatal(err)
	}
	carriers, _ := r.Carriers()
	if !reflect.DeepEqual(carriers, []string{DefaultName, "UPS", "FedEx", "DHL"}) {
		t.Fatalf("unexpected carriers: %v", carriers)
	}

	if err := r.DeleteCarrier("DHL"); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteCarrier(DefaultName); err == nil {
		t.Fatal("Default carrier must be protected")
	}
}

func TestUpsertUserLogReplacesByCode(t *testing.T) {
	r := newRegistry(t)
	r.EnsureUser("Alice")

	r.UpsertUserLog("Alice", "AAAAAAAAAAAAA", "Not Completed Yet (Alice)")
	r.UpsertUserLog("Alice", "BBBBBBBBBBBBB", "Good (Alice)")
	r.UpsertUserLog("Alice", "AAAAAAAAAAAAA", "Good (Alice)")

	entries, err := r.UserLog("Alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %+v", entries)
	}
	if entries[0].Code != "AAAAAAAAAAAAA" || entries[0].Remark != "Good (Alice)" {
		t.Fatalf("entry not replaced in place: %+v", entries[0])
	}
}
