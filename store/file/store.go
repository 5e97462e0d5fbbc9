// Package file provides a JSON-file-backed Store implementation. This is the
// default backend: a single document at a well-known path, shared between
// the CLI and any other process on the machine.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kashstash/stash/endpoint"
)

// compile-time interface check.
var _ endpoint.Store = (*Store)(nil)

// Store persists the configuration document as a single JSON file.
//
// Writes go through a temp file in the same directory followed by a rename,
// so a reader in another process always sees either the old document or the
// new one, never a partial write.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a file store at path. The parent directory is created if it
// does not exist.
func New(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
	}
	return &Store{path: path, logger: logger}, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string { return s.path }

// Load reads and decodes the document. An absent file yields the empty
// default. A file that cannot be read or does not decode is logged and
// also yields the empty default: corrupt storage must never make the
// application unusable.
func (s *Store) Load(_ context.Context) (*endpoint.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("config file unreadable, starting empty",
				"path", s.path, "error", err)
		}
		return &endpoint.Document{}, nil
	}

	doc, err := endpoint.DecodeDocument(raw)
	if err != nil {
		s.logger.Warn("config file corrupt, starting empty",
			"path", s.path, "error", err)
		return &endpoint.Document{}, nil
	}
	return doc, nil
}

// Save atomically replaces the backing file with the encoded document.
func (s *Store) Save(_ context.Context, doc *endpoint.Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".stash-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	success = true
	return nil
}

// Close is a no-op for the file store.
func (s *Store) Close() error { return nil }
