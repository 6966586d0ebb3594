package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/models"
)

// JSONStore keeps every user in one JSON document keyed by username.
type JSONStore struct {
	path  string
	guard LoadGuard
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

// Init creates the config directory and an empty document if none exists.
func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &PersistenceError{Op: "init", Path: s.path, Err: err}
	}

	if _, err := os.Stat(s.path); err == nil {
		return nil
	}

	return s.Save(models.UserStore{})
}

// Load never fails. An absent document is an empty store; an unreadable or
// corrupt one is logged, copied aside, and treated as empty. Records and
// entries with mistyped fields load individually and are written back as
// stored.
func (s *JSONStore) Load() (models.UserStore, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.guard.Succeeded()
		} else {
			logger.Warn("User store unreadable, starting empty", "path", s.path, "error", err)
			s.guard.Failed(err)
		}
		return models.UserStore{}, nil
	}
	s.guard.Succeeded()

	var store models.UserStore
	if err := json.Unmarshal(data, &store); err != nil {
		logger.Warn("User store is not valid JSON, starting empty", "path", s.path, "error", err)
		s.quarantine(data)
		return models.UserStore{}, nil
	}
	if store == nil {
		store = models.UserStore{}
	}

	return store.Normalize(), nil
}

// quarantine keeps a copy of a corrupt document so a later save cannot
// destroy the only copy.
func (s *JSONStore) quarantine(data []byte) {
	dest := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(dest, data, 0600); err != nil {
		logger.Error("Failed to quarantine corrupt user store", "path", dest, "error", err)
		return
	}
	logger.Warn("Corrupt user store copied aside", "path", dest)
}

// Save writes to a temp file in the same directory, syncs it and renames it
// over the document, so a reader sees either the old or the new store.
func (s *JSONStore) Save(store models.UserStore) error {
	if err := s.guard.CheckSave(s.path); err != nil {
		return err
	}
	if store == nil {
		store = models.UserStore{}
	}

	data, err := json.MarshalIndent(store.Normalize(), "", "    ")
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: fmt.Errorf("failed to serialize store: %w", err)}
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// LastLoadError is set while the document exists but cannot be read.
func (s *JSONStore) LastLoadError() error {
	return s.guard.Err()
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
