// Package tokenstore persists the operator's session token between
// console invocations. The store holds at most one opaque token;
// absence is a valid, unauthenticated state.
package tokenstore

import (
	"os"
	"path/filepath"
	"strings"
)

// Store reads and writes the session token file.
type Store struct {
	path string
}

// DefaultPath returns the default token file location.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".domwatch", "token")
}

// New returns a Store backed by the given file path, or the default
// location when path is empty.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// Get returns the stored token, or an empty string when no token is
// stored. A missing file is not an error.
func (s *Store) Get() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Set stores the token, replacing any previous one.
func (s *Store) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}

// Clear removes the stored token. Clearing an already-empty store is
// not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Token implements the client's TokenSource: every authenticated
// request reads the current value at call time, so a logout or token
// replacement takes effect on the very next request.
func (s *Store) Token() string {
	return s.Get()
}
