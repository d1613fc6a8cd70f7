package credfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nodeops/jobctl/internal/core/domain"
)

// DefaultPath returns the default credential artifact location.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".jobctl", "session.json")
}

// Store reads and writes the credential artifact at a fixed path.
// At most one credential is stored; Save always overwrites.
type Store struct {
	path string
}

// New creates a Store for the given path. An empty path selects
// DefaultPath().
func New(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// Path returns the artifact location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the cached credential. A missing, unreadable or
// unparseable artifact returns (nil, nil): absence is not an error,
// it just means a login is needed. The broken file stays in place as
// an overwrite target for the next Save.
func (s *Store) Load() (*domain.Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, nil
	}
	if !cred.Valid() {
		return nil, nil
	}
	return &cred, nil
}

// Save writes the credential, replacing any prior artifact. The file
// is written to a temp name first and renamed into place so a crash
// mid-write leaves either the old artifact or the new one, never a
// truncated mix. The artifact holds a live token, so the directory
// and file are owner-only.
func (s *Store) Save(cred *domain.Credential) error {
	if !cred.Valid() {
		return fmt.Errorf("refusing to save incomplete credential")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replace credential: %w", err)
	}
	return nil
}

// Clear removes the artifact. Used when the node rejects the cached
// token so a later invocation starts from a clean login.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}
