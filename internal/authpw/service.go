// Package authpw provides name/password authentication for operator
// accounts stored in the membership registry.
package authpw

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the registry the auth service needs.
type UserStore interface {
	PasswordHash(name string) (string, bool, error)
	CreateUser(name, passwordHash string) error
	SetPassword(name, passwordHash string) error
}

// Service verifies and manages operator credentials.
type Service struct {
	store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{store: store}
}

// ErrInvalidCredentials is returned for any failed sign-in so callers
// cannot distinguish unknown names from wrong passwords.
var ErrInvalidCredentials = errors.New("invalid name or password")

// SignUp creates a new operator account.
func (s *Service) SignUp(name, password string) error {
	if name == "" || password == "" {
		return errors.New("name and password are required")
	}
	if len(password) < 4 {
		return errors.New("password must be at least 4 characters")
	}

	if _, exists, err := s.store.PasswordHash(name); err != nil {
		return err
	} else if exists {
		return errors.New("name already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.CreateUser(name, string(hash))
}

// SignIn authenticates an operator. Accounts seeded without a credential
// (the registry's legacy rows carry an empty hash) accept only an empty
// password.
func (s *Service) SignIn(name, password string) error {
	if name == "" {
		return ErrInvalidCredentials
	}

	hash, ok, err := s.store.PasswordHash(name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}
	if hash == "" {
		if password != "" {
			return ErrInvalidCredentials
		}
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// SetPassword replaces an operator's credential.
func (s *Service) SetPassword(name, password string) error {
	if len(password) < 4 {
		return errors.New("password must be at least 4 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.SetPassword(name, string(hash))
}
