// Package credstore persists the session's bearer token and user record
// under the Taskdeck config directory so a session survives restarts.
// Corrupt or unreadable state is reported as absence, never as an error:
// a session the client cannot read is operationally the same as no session.
package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jfanara/taskdeck/pkg/domain"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// Store reads and writes session credentials in a single directory.
type Store struct {
	dir string
}

// New returns a store rooted at ~/.taskdeck.
func New() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("credstore.New: get home dir: %w", err)
	}
	return NewAt(filepath.Join(home, ".taskdeck")), nil
}

// NewAt returns a store rooted at the given directory.
func NewAt(dir string) *Store {
	return &Store{dir: dir}
}

// SaveToken writes the bearer token as a raw string.
func (s *Store) SaveToken(token string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token), 0600); err != nil {
		return fmt.Errorf("credstore: save token: %w", err)
	}
	return nil
}

// LoadToken returns the stored token, or "" if none was ever stored.
func (s *Store) LoadToken() string {
	data, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// HasToken reports whether a non-empty token is stored.
func (s *Store) HasToken() bool {
	return s.LoadToken() != ""
}

// RemoveToken deletes the stored token. Removing an absent token is not an error.
func (s *Store) RemoveToken() error {
	return removeIfPresent(filepath.Join(s.dir, tokenFile))
}

// SaveUser writes the user record as JSON.
func (s *Store) SaveUser(user domain.User) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("credstore: marshal user: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, userFile), data, 0600); err != nil {
		return fmt.Errorf("credstore: save user: %w", err)
	}
	return nil
}

// LoadUser returns the stored user record. Missing or malformed data is
// reported as absent.
func (s *Store) LoadUser() (*domain.User, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if err != nil {
		return nil, false
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, false
	}
	return &user, true
}

// RemoveUser deletes the stored user record. Removing an absent record is not an error.
func (s *Store) RemoveUser() error {
	return removeIfPresent(filepath.Join(s.dir, userFile))
}

// Clear removes both the token and the user record.
func (s *Store) Clear() error {
	if err := s.RemoveToken(); err != nil {
		return err
	}
	return s.RemoveUser()
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("credstore: create %s: %w", s.dir, err)
	}
	return nil
}

func removeIfPresent(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("credstore: remove %s: %w", path, err)
	}
	return nil
}
