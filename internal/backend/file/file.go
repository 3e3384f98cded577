// Package file implements storage.Storage as a single JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mytasks/internal/log"
	"mytasks/internal/storage"
)

// Storage keeps every key in one JSON object. Each write replaces the file
// atomically, so readers in other processes never observe a partial write.
type Storage struct {
	path    string
	mu      sync.Mutex
	corrupt bool // last read found an unreadable document
}

// New returns a Storage at path. The file is created on the first write.
func New(path string) *Storage {
	return &Storage{path: path}
}

// Path returns the backing file path.
func (s *Storage) Path() string { return s.path }

// GetItem implements storage.Storage.
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := items[key]
	return v, ok, nil
}

// SetItem implements storage.Storage.
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return err
	}
	items[key] = value
	return s.write(items)
}

// RemoveItem implements storage.Storage.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return s.write(items)
}

// Close implements storage.Storage.
func (s *Storage) Close() error { return nil }

// read loads the document. A missing or empty file is an empty store. An
// unreadable document is also treated as empty so the next write can
// replace it; the broken file is moved aside first (see write).
func (s *Storage) read() (map[string]string, error) {
	items := make(map[string]string)
	s.corrupt = false

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn().
			Err(&storage.CorruptError{Key: filepath.Base(s.path), Err: err}).
			Str("path", s.path).
			Msg("storage file is unreadable, starting from an empty store")
		s.corrupt = true
		return make(map[string]string), nil
	}
	return items, nil
}

// BackupPath is where an unreadable document is kept once it is replaced.
func (s *Storage) BackupPath() string { return s.path + ".corrupt" }

// write replaces the document via a temp file and rename.
func (s *Storage) write(items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := ensureDir(dir); err != nil {
		return err
	}
	if s.corrupt {
		if err := os.Rename(s.path, s.BackupPath()); err != nil {
			return fmt.Errorf("back up unreadable %s: %w", s.path, err)
		}
		log.Warn().Str("backup", s.BackupPath()).Msg("unreadable storage file moved aside")
		s.corrupt = false
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	log.Debug().Str("path", s.path).Int("keys", len(items)).Msg("storage file written")
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}
	return nil
}
