package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/migration"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/storage"
	"github.com/julianstephens/soulsync/migrations"
)

// Store keeps one row per user in the soulsync schema, the record as JSONB.
type Store struct {
	connStr string
	db      *sql.DB
	guard   storage.LoadGuard
}

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func New(connStr string) *Store {
	s := &Store{
		connStr: connStr,
	}
	s.ensureSearchPath()
	return s
}

func (s *Store) ensureSearchPath() {
	if strings.HasPrefix(s.connStr, "postgres://") || strings.HasPrefix(s.connStr, "postgresql://") {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
		return
	}
	if !hasParam(s.connStr, "search_path") {
		s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
	}
}

// hasParam reports whether a connection string (URL or key=value DSN)
// carries the given parameter, case-insensitively.
func hasParam(connStr, key string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for k := range u.Query() {
			if strings.EqualFold(k, key) {
				return true
			}
		}
	}

	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], key) {
			return true
		}
	}
	return false
}

// IsConnString reports whether a store location names a Postgres database
// rather than a file.
func IsConnString(location string) bool {
	return strings.HasPrefix(location, "postgres://") ||
		strings.HasPrefix(location, "postgresql://") ||
		strings.Contains(location, "host=") ||
		strings.Contains(location, "dbname=")
}

// ValidateConnString checks that connStr is a PostgreSQL URI or DSN and
// that it carries no password. Passwords belong in ~/.pgpass or PGPASSWORD.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := parsedURL.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}
		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return true, nil
	}

	for _, pair := range strings.Fields(connStr) {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[0]), "password") {
			return false, ErrEmbeddedCredentials
		}
	}
	return true, nil
}

func (s *Store) openDB() (*sql.DB, error) {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A CLI session needs few connections.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasParam(s.connStr, "sslmode") {
			return nil, fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (s *Store) Init() error {
	if s.db == nil {
		db, err := s.openDB()
		if err != nil {
			return &storage.PersistenceError{Op: "init", Path: s.GetConfigPath(), Err: err}
		}
		s.db = db
	}

	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		return &storage.PersistenceError{Op: "init", Path: s.GetConfigPath(), Err: fmt.Errorf("failed to create schema: %w", err)}
	}

	if err := s.withRunner(func(r *migration.Runner) error {
		_, err := r.ApplyMigrations(func(msg string) { logger.Info(msg) })
		return err
	}); err != nil {
		return &storage.PersistenceError{Op: "init", Path: s.GetConfigPath(), Err: fmt.Errorf("failed to run migrations: %w", err)}
	}
	return nil
}

func (s *Store) connect() error {
	if s.db != nil {
		return nil
	}
	db, err := s.openDB()
	if err != nil {
		return err
	}
	s.db = db

	if err := s.withRunner(func(r *migration.Runner) error { return r.ValidateVersion() }); err != nil {
		s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Load fails with a PersistenceError only when the server is unreachable.
// Undecodable rows are logged and left out.
func (s *Store) Load() (models.UserStore, error) {
	store, err := s.load()
	if err != nil {
		logger.Warn("User database unreadable, starting empty", "path", s.GetConfigPath(), "error", err)
		s.guard.Failed(err)
		return models.UserStore{}, nil
	}
	s.guard.Succeeded()
	return store, nil
}

func (s *Store) load() (models.UserStore, error) {
	store := models.UserStore{}
	if err := s.connect(); err != nil {
		return nil, err
	}

	var exists bool
	if err := s.db.QueryRow("SELECT to_regclass('users') IS NOT NULL").Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return store, nil
	}

	rows, err := s.db.Query("SELECT username, record FROM users ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var username string
		var raw []byte
		if err := rows.Scan(&username, &raw); err != nil {
			return nil, err
		}
		rec, err := models.DecodeRecord(raw)
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

// Save upserts every user in a single transaction.
func (s *Store) Save(store models.UserStore) error {
	if err := s.guard.CheckSave(s.GetConfigPath()); err != nil {
		return err
	}
	if s.db == nil {
		if err := s.Init(); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &storage.PersistenceError{Op: "save", Path: s.GetConfigPath(), Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO users (username, record, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (username) DO UPDATE SET record = EXCLUDED.record, updated_at = now()
	`)
	if err != nil {
		return &storage.PersistenceError{Op: "save", Path: s.GetConfigPath(), Err: err}
	}
	defer stmt.Close()

	for username, rec := range store {
		if rec.Unreadable() {
			continue
		}
		data, err := json.Marshal(rec.Normalize())
		if err != nil {
			return &storage.PersistenceError{Op: "save", Path: s.GetConfigPath(), Err: fmt.Errorf("failed to serialize %s: %w", username, err)}
		}
		if _, err := stmt.Exec(username, string(data)); err != nil {
			return &storage.PersistenceError{Op: "save", Path: s.GetConfigPath(), Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &storage.PersistenceError{Op: "save", Path: s.GetConfigPath(), Err: err}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) withRunner(fn func(*migration.Runner) error) error {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return fn(migration.NewRunner(s.db, subFS, migration.DriverPostgres))
}

// SchemaVersion reports the applied migration version, for diagnostics.
func (s *Store) SchemaVersion() (int, error) {
	if err := s.connect(); err != nil {
		return 0, err
	}
	var version int
	err := s.withRunner(func(r *migration.Runner) error {
		v, err := r.GetCurrentVersion()
		version = v
		return err
	})
	return version, err
}

func (s *Store) GetConfigPath() string {
	// Never echo the connection string.
	return "postgresql"
}
