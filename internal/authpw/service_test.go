package authpw

import (
	"errors"
	"testing"
)

type fakeUserStore struct {
	users map[string]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]string)}
}

func (f *fakeUserStore) PasswordHash(name string) (string, bool, error) {
	hash, ok := f.users[name]
	return hash, ok, nil
}

func (f *fakeUserStore) CreateUser(name, passwordHash string) error {
	if _, ok := f.users[name]; ok {
		return errors.New("exists")
	}
	f.users[name] = passwordHash
	return nil
}

func (f *fakeUserStore) SetPassword(name, passwordHash string) error {
	f.users[name] = passwordHash
	return nil
}

func TestSignUpAndSignIn(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store)

	if err := svc.SignUp("Alice", "hunter22"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if store.users["Alice"] == "hunter22" {
		t.Fatal("password stored in clear")
	}

	if err := svc.SignIn("Alice", "hunter22"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := svc.SignIn("Alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.SignIn("Nobody", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown name, got %v", err)
	}
}

func TestSignUpRejectsDuplicateAndWeakInput(t *testing.T) {
	svc := NewService(newFakeUserStore())

	if err := svc.SignUp("Alice", "hunter22"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SignUp("Alice", "other-pass"); err == nil {
		t.Fatal("duplicate sign-up accepted")
	}
	if err := svc.SignUp("", "hunter22"); err == nil {
		t.Fatal("empty name accepted")
	}
	if err := svc.SignUp("Bob", "abc"); err == nil {
		t.Fatal("short password accepted")
	}
}

func TestSignInLegacyAccountWithoutCredential(t *testing.T) {
	store := newFakeUserStore()
	store.users["Default"] = ""
	svc := NewService(store)

	if err := svc.SignIn("Default", ""); err != nil {
		t.Fatalf("legacy account with empty password: %v", err)
	}
	if err := svc.SignIn("Default", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSetPassword(t *testing.T) {
	store := newFakeUserStore()
	store.users["Alice"] = ""
	svc := NewService(store)

	if err := svc.SetPassword("Alice", "new-secret"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := svc.SignIn("Alice", "new-secret"); err != nil {
		t.Fatalf("SignIn after SetPassword: %v", err)
	}
}
