package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/migration"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/storage"
	"github.com/julianstephens/soulsync/migrations"
)

// Store keeps one row per user, the record serialized as JSON.
type Store struct {
	path  string
	db    *sql.DB
	guard storage.LoadGuard
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &storage.PersistenceError{Op: "init", Path: s.path, Err: err}
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.runMigrations(); err != nil {
		return &storage.PersistenceError{Op: "init", Path: s.path, Err: fmt.Errorf("failed to run migrations: %w", err)}
	}
	return nil
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return &storage.PersistenceError{Op: "init", Path: s.path, Err: err}
	}
	s.db = db
	return nil
}

// connect opens an existing database and checks its schema version.
func (s *Store) connect() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); err != nil {
		return err
	}
	if err := s.open(); err != nil {
		return err
	}
	if err := s.validateSchemaVersion(); err != nil {
		s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Load never fails. A database that was never initialized is an empty
// store. One that cannot be read is logged and treated as empty, and Save
// refuses to write until a later Load succeeds. Rows whose record cannot be
// decoded are kept as stored.
func (s *Store) Load() (models.UserStore, error) {
	store, err := s.load()
	if err != nil {
		logger.Warn("User database unreadable, starting empty", "path", s.path, "error", err)
		s.guard.Failed(err)
		return models.UserStore{}, nil
	}
	s.guard.Succeeded()
	return store, nil
}

func (s *Store) load() (models.UserStore, error) {
	store := models.UserStore{}
	if err := s.connect(); err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, err
	}

	rows, err := s.db.Query("SELECT username, record FROM users ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var username, raw string
		if err := rows.Scan(&username, &raw); err != nil {
			return nil, err
		}
		rec, err := models.DecodeRecord([]byte(raw))
		if err != nil {
			logger.Warn("Keeping unreadable user record as stored", "username", username, "error", err)
		}
		store[username] = rec.Normalize()
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store, nil
}

// LastLoadError is set while the database cannot be read.
func (s *Store) LastLoadError() error {
	return s.guard.Err()
}

// Save upserts every user in one transaction. Users absent from the given
// store are left in place.
func (s *Store) Save(store models.UserStore) error {
	if err := s.guard.CheckSave(s.path); err != nil {
		return err
	}
	if s.db == nil {
		if err := s.Init(); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &storage.PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO users (username, record, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at
	`)
	if err != nil {
		return &storage.PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for username, rec := range store {
		if rec.Unreadable() {
			continue
		}
		data, err := json.Marshal(rec.Normalize())
		if err != nil {
			return &storage.PersistenceError{Op: "save", Path: s.path, Err: fmt.Errorf("failed to serialize %s: %w", username, err)}
		}
		if _, err := stmt.Exec(username, string(data), now); err != nil {
			return &storage.PersistenceError{Op: "save", Path: s.path, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &storage.PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) runMigrations() error {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to access sqlite migrations: %w", err)
	}

	runner := migration.NewRunner(s.db, subFS, migration.DriverSQLite)
	_, err = runner.ApplyMigrations(func(msg string) {
		logger.Info(msg)
	})
	return err
}

func (s *Store) validateSchemaVersion() error {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to access sqlite migrations: %w", err)
	}

	runner := migration.NewRunner(s.db, subFS, migration.DriverSQLite)
	if err := runner.ValidateVersion(); err != nil {
		return err
	}
	// Pick up migrations added since the database was created.
	_, err = runner.ApplyMigrations(func(msg string) { logger.Info(msg) })
	return err
}

// SchemaVersion reports the applied migration version, for diagnostics.
func (s *Store) SchemaVersion() (int, error) {
	if err := s.connect(); err != nil {
		return 0, err
	}
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return 0, err
	}
	return migration.NewRunner(s.db, subFS, migration.DriverSQLite).GetCurrentVersion()
}

// DB exposes the handle for backups.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) GetConfigPath() string {
	return s.path
}
