package credential

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DefaultCredentialsDir is the default directory for the credential file,
// relative to the user's home directory.
const DefaultCredentialsDir = ".config/courier"

// credentialsFileName is the name of the single-record credential file.
const credentialsFileName = "credentials.json"

// Store is durable storage for exactly one credential record.
//
// Load is fail-open: any I/O error or malformed content reads as "no
// record" and is never raised to the caller. Save must propagate failures,
// since a credential that cannot be persisted forces re-authorization on
// every process restart.
type Store interface {
	Load() *Record
	Save(record *Record) error
	Clear() error
}

// FileStore persists the credential record as a JSON file.
//
// SECURITY: The file holds bearer credentials equivalent to a login. It is
// created with 0600 permissions inside a 0700 directory, and token values
// are never logged.
type FileStore struct {
	path string
}

// DefaultCredentialsPath returns the default credential file location under
// the user's home directory.
func DefaultCredentialsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultCredentialsDir, credentialsFileName), nil
}

// NewFileStore creates a file store at the given path, or at the default
// per-user location when path is empty. The containing directory is created
// if needed; creation is idempotent.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		defaultPath, err := DefaultCredentialsPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}

	return &FileStore{path: path}, nil
}

// Path returns the credential file location. The watcher uses it to observe
// external writes.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted record if present. Missing files, unreadable
// files, malformed JSON, and incomplete records all yield nil. A present
// but unusable file is logged at warn level so the operator has a
// diagnostic, but the manager still degrades to Unauthorized.
func (s *FileStore) Load() *Record {
	// #nosec G304 -- path is fixed at construction, not user input per call
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Credential file unreadable, treating as absent",
				"path", s.path,
				"error", err.Error())
		}
		return nil
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		slog.Warn("Credential file corrupt, treating as absent",
			"path", s.path,
			"error", err.Error())
		return nil
	}

	if !record.complete() {
		slog.Warn("Credential file incomplete, treating as absent",
			"path", s.path)
		return nil
	}

	return &record
}

// Save writes the full record, overwriting any previous content. The write
// goes to a temporary file in the same directory followed by a rename, so a
// concurrent reader (or a reader after a crash) never observes a
// half-written record.
func (s *FileStore) Save(record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".credentials-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary credential file: %w", err)
	}
	tmpPath := tmp.Name()

	// Restrict permissions before any credential bytes hit the disk.
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to restrict credential file permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace credential file: %w", err)
	}

	// SECURITY AUDIT: credentials stored (values never logged).
	slog.Info("SECURITY_AUDIT: credentials stored",
		"event", "credentials_stored",
		"path", s.path,
		"expires_at", record.ExpiresAt)

	return nil
}

// Clear removes the persisted record. It does not fail if no record exists.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove credential file: %w", err)
	}

	// SECURITY AUDIT: credentials destroyed.
	slog.Info("SECURITY_AUDIT: credentials cleared",
		"event", "credentials_cleared",
		"path", s.path)

	return nil
}

// MemoryStore is an in-memory Store. It backs tests and ephemeral runs
// where nothing should touch the filesystem.
type MemoryStore struct {
	mu     sync.Mutex
	record *Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the held record, or nil.
func (s *MemoryStore) Load() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record == nil {
		return nil
	}
	copied := *s.record
	return &copied
}

// Save replaces the held record.
func (s *MemoryStore) Save(record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *record
	s.record = &copied
	return nil
}

// Clear drops the held record.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = nil
	return nil
}
