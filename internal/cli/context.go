package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/soulsync/internal/assistant"
	"github.com/julianstephens/soulsync/internal/backup"
	"github.com/julianstephens/soulsync/internal/keyring"
	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/records"
	"github.com/julianstephens/soulsync/internal/session"
	"github.com/julianstephens/soulsync/internal/storage"
	"github.com/julianstephens/soulsync/internal/storage/postgres"
	"github.com/julianstephens/soulsync/internal/storage/sqlite"
)

var ErrNotLoggedIn = errors.New("not logged in. Use 'soulsync login' or 'soulsync register' first")

// Assistant is the language model collaborator; *assistant.Client in production.
type Assistant interface {
	session.Replier
	Reflect(ctx context.Context, entry string) (string, error)
}

type Context struct {
	Store     storage.Provider
	Records   *records.Service
	Assistant Assistant

	// User is the logged-in username; when empty it is read from the keyring.
	User string
	Out  io.Writer
	Now  func() time.Time
}

// NewContext wires the record service and assistant around a store.
func NewContext(store storage.Provider, ai Assistant) *Context {
	return &Context{
		Store:     store,
		Records:   records.NewService(store),
		Assistant: ai,
		Out:       os.Stdout,
		Now:       time.Now,
	}
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Today returns the current time; commands use it so tests can pin the clock.
func (c *Context) Today() time.Time {
	return c.now()
}

// RequireUser returns the logged-in user, checking it still has a record.
func (c *Context) RequireUser() (string, error) {
	username := c.User
	if username == "" {
		name, err := keyring.GetSessionUser()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return "", ErrNotLoggedIn
			}
			return "", fmt.Errorf("failed to read session: %w", err)
		}
		username = name
	}

	exists, err := c.Records.Exists(username)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("user %q no longer exists in the store. Log in again", username)
	}
	c.User = username
	return username, nil
}

// PerformAutomaticBackup snapshots file-based stores and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	mgr, err := backup.NewManager(c.Store.GetConfigPath())
	if err != nil {
		logger.Debug("Automatic backup skipped", "reason", err)
		return
	}
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// OpenStore picks a provider from the location: a PostgreSQL connection
// string, a .db/.sqlite file, or a JSON document for anything else.
func OpenStore(location string) (storage.Provider, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("store location cannot be empty")
	}

	if postgres.IsConnString(location) {
		if _, err := postgres.ValidateConnString(location); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: use ~/.pgpass or PGPASSWORD instead", err)
			}
			return nil, err
		}
		return postgres.New(location), nil
	}

	path := ExpandHome(location)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return sqlite.NewStore(path), nil
	default:
		return storage.NewJSONStore(path), nil
	}
}

// ConfigDir is where logs and backups live for a store location.
func ConfigDir(location string) string {
	if postgres.IsConnString(location) {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "."
		}
		return filepath.Join(dir, "soulsync")
	}
	return filepath.Dir(ExpandHome(location))
}

// RejectedError is a negative Result surfaced as a command failure.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

func (e *RejectedError) UserMessage() string {
	return e.Message
}

// Report prints a successful Result and turns a negative one into an error.
func (c *Context) Report(res records.Result, err error) error {
	if err != nil {
		return err
	}
	if !res.OK {
		return &RejectedError{Message: res.Message}
	}
	c.Printf("✓ %s\n", res.Message)
	return nil
}

// AssistantNotice is the inline text shown when the assistant fails.
func AssistantNotice(err error) string {
	var serr *assistant.ServiceError
	if errors.As(err, &serr) {
		return serr.UserMessage()
	}
	return "I encountered an issue. Please try again."
}
