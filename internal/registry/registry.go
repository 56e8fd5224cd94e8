// Package registry manages the operator and carrier membership files and
// the per-operator scan logs. Both registries are append-mostly lists the
// engine ensures entries into as it is handed new names.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"picktrack/api/internal/tabfile"
)

// DefaultName is the protected fallback entry present in both registries.
const DefaultName = "Default"

// Registry owns users.txt, carriers.txt and the names/ log directory
// under one data directory.
type Registry struct {
	mu           sync.Mutex
	usersPath    string
	carriersPath string
	namesDir     string
}

func New(dataDir string) *Registry {
	return &Registry{
		usersPath:    filepath.Join(dataDir, "users.txt"),
		carriersPath: filepath.Join(dataDir, "carriers.txt"),
		namesDir:     filepath.Join(dataDir, "names"),
	}
}

// Seed creates the registry files with their default entries when absent.
func (r *Registry) Seed() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.loadUsers()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		if err := r.saveUsers(map[string]string{DefaultName: ""}); err != nil {
			return err
		}
	}

	carriers, err := tabfile.ReadLines(r.carriersPath)
	if err != nil {
		return err
	}
	if len(carriers) == 0 {
		if err := tabfile.WriteLines(r.carriersPath, []string{DefaultName, "UPS", "FedEx"}); err != nil {
			return err
		}
	}
	return os.MkdirAll(r.namesDir, 0o755)
}

// Users returns the registered operator names, sorted.
func (r *Registry) Users() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.loadUsers()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// PasswordHash returns the stored credential for an operator.
func (r *Registry) PasswordHash(name string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.loadUsers()
	if err != nil {
		return "", false, err
	}
	hash, ok := users[name]
	return hash, ok, nil
}

// EnsureUser registers the name with an empty credential if it is new.
func (r *Registry) EnsureUser(name string) error {
	if name == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.loadUsers()
	if err != nil {
		return err
	}
	if _, ok := users[name]; ok {
		return nil
	}
	users[name] = ""
	return r.saveUsers(users)
}

// CreateUser registers a new operator with a credential. Registering an
// existing name is an error.
func (r *Registry) CreateUser(name, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.loadUsers()
	if err != nil {
		return err
	}
	if _, ok := users[name]; ok {
		return fmt.Errorf("user %q already exists", name)
	}
	users[name] = passwordHash
	return r.saveUsers(users)
}

// SetPassword overwrites an operator's credential.
func (r *Registry) SetPassword(name, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.loadUsers()
	if err != nil {
		return err
	}
	if _, ok := users[name]; !ok {
		return fmt.Errorf("user %q not found", name)
	}
	users[name] = passwordHash
	return r.saveUsers(users)
}

// DeleteUser removes an operator (matched case-insensitively) and their
// log file. The Default entry cannot be deleted.
func (r *Registry) DeleteUser(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.loadUsers()
	if err != nil {
		return "", err
	}
	for existing := range users {
		if !strings.EqualFold(existing, name) || existing == DefaultName {
			continue
		}
		delete(users, existing)
		if err := r.saveUsers(users); err != nil {
			return "", err
		}
		if err := os.Remove(r.logPath(existing)); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("remove operator log: %w", err)
		}
		return existing, nil
	}
	return "", fmt.Errorf("user %q not found", name)
}

// Carriers returns the registered carriers in file order, falling back to
// the Default entry when the file is empty.
func (r *Registry) Carriers() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	carriers, err := tabfile.ReadLines(r.carriersPath)
	if err != nil {
		return nil, err
	}
	if len(carriers) == 0 {
		return []string{DefaultName}, nil
	}
	return carriers, nil
}

// EnsureCarrier appends the carrier if it is new.
func (r *Registry) EnsureCarrier(name string) error {
	if name == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	carriers, err := tabfile.ReadLines(r.carriersPath)
	if err != nil {
		return err
	}
	for _, existing := range carriers {
		if existing == name {
			return nil
		}
	}
	return tabfile.WriteLines(r.carriersPath, append(carriers, name))
}

// DeleteCarrier removes a carrier. The Default entry cannot be deleted.
func (r *Registry) DeleteCarrier(name string) error {
	if name == DefaultName {
		return fmt.Errorf("carrier %q is protected", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	carriers, err := tabfile.ReadLines(r.carriersPath)
	if err != nil {
		return err
	}
	kept := carriers[:0]
	found := false
	for _, existing := range carriers {
		if existing == name {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return fmt.Errorf("carrier %q not found", name)
	}
	return tabfile.WriteLines(r.carriersPath, kept)
}

// UpsertUserLog records the latest remark for a code in the operator's
// personal log, replacing any earlier line for the same code.
func (r *Registry) UpsertUserLog(user, code, remark string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.logPath(user)
	lines, err := tabfile.ReadLines(path)
	if err != nil {
		return err
	}
	entry := strings.Join([]string{code, user, remark}, "\t")
	for i, line := range lines {
		if strings.HasPrefix(line, code) {
			lines[i] = entry
			return tabfile.WriteLines(path, lines)
		}
	}
	return tabfile.WriteLines(path, append(lines, entry))
}

// UserLogEntry is one line of an operator's personal log.
type UserLogEntry struct {
	Code   string
	User   string
	Remark string
}

// UserLog returns the operator's personal log in file order.
func (r *Registry) UserLog(user string) ([]UserLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines, err := tabfile.ReadLines(r.logPath(user))
	if err != nil {
		return nil, err
	}
	entries := make([]UserLogEntry, 0, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, "\t", 3)
		entry := UserLogEntry{Code: parts[0]}
		if len(parts) > 1 {
			entry.User = parts[1]
		}
		if len(parts) > 2 {
			entry.Remark = parts[2]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Registry) logPath(user string) string {
	return filepath.Join(r.namesDir, strings.ToLower(user)+".txt")
}

func (r *Registry) loadUsers() (map[string]string, error) {
	lines, err := tabfile.ReadLines(r.usersPath)
	if err != nil {
		return nil, err
	}
	users := make(map[string]string, len(lines))
	for _, line := range lines {
		name, hash, _ := strings.Cut(line, "\t")
		if name != "" {
			users[name] = hash
		}
	}
	return users, nil
}

func (r *Registry) saveUsers(users map[string]string) error {
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+"\t"+users[name])
	}
	return tabfile.WriteLines(r.usersPath, lines)
}
