package backup

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/logger"
)

// ErrUnsupportedStore is returned for stores that are not a local file.
var ErrUnsupportedStore = errors.New("backups are only supported for file-based stores (.json or .db)")

type Kind int

const (
	KindJSON Kind = iota
	KindSQLite
)

func (k Kind) suffix() string {
	if k == KindSQLite {
		return ".db"
	}
	return ".json"
}

// Info describes one backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager snapshots a user store file into <dir>/backups.
type Manager struct {
	storePath string
	backupDir string
	kind      Kind
	now       func() time.Time
}

// NewManager picks the snapshot strategy from the store's extension.
func NewManager(storePath string) (*Manager, error) {
	var kind Kind
	switch strings.ToLower(filepath.Ext(storePath)) {
	case ".json":
		kind = KindJSON
	case ".db", ".sqlite", ".sqlite3":
		kind = KindSQLite
	default:
		return nil, ErrUnsupportedStore
	}
	return &Manager{
		storePath: storePath,
		backupDir: filepath.Join(filepath.Dir(storePath), constants.BackupDirName),
		kind:      kind,
		now:       time.Now,
	}, nil
}

func (m *Manager) BackupDir() string {
	return m.backupDir
}

func (m *Manager) Create() (string, error) {
	return m.create(false)
}

// create skips rotation when called from Restore so the pre-restore copy
// cannot evict the backup being restored.
func (m *Manager) create(skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	if _, err := os.Stat(m.storePath); os.IsNotExist(err) {
		return "", fmt.Errorf("user store does not exist: %s", m.storePath)
	}

	dest, err := m.nextName()
	if err != nil {
		return "", err
	}

	if m.kind == KindSQLite {
		err = snapshotSQLite(m.storePath, dest)
	} else {
		err = snapshotJSON(m.storePath, dest)
	}
	if err != nil {
		return "", fmt.Errorf("failed to back up user store: %w", err)
	}

	if !skipRotation {
		if err := m.rotate(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	return dest, nil
}

func (m *Manager) nextName() (string, error) {
	stamp := m.now().Format("20060102-150405")
	for i := 0; i <= 100; i++ {
		name := constants.BackupFilePrefix + stamp + m.kind.suffix()
		if i > 0 {
			name = fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, stamp, i, m.kind.suffix())
		}
		path := filepath.Join(m.backupDir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

func snapshotSQLite(src, dest string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dest); err != nil {
		db.Close()
		return copyFile(src, dest)
	}
	return nil
}

func snapshotJSON(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("user store is not valid JSON")
	}
	return os.WriteFile(dest, data, 0600)
}

// List returns backups newest first. Files that do not carry a parsable
// timestamp are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, m.kind.suffix()) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), m.kind.suffix())
		if parts := strings.Split(stamp, "-"); len(parts) == 3 {
			stamp = parts[0] + "-" + parts[1]
		}
		ts, err := time.ParseInLocation("20060102-150405", stamp, time.Local)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.backupDir, name),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the store with backupPath. The current store is backed
// up first and returned as safetyCopy ("" when there was no store).
func (m *Manager) Restore(backupPath string) (safetyCopy string, err error) {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if err := m.verify(backupPath); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if _, err := os.Stat(m.storePath); err == nil {
		safetyCopy, err = m.create(true)
		if err != nil {
			return "", fmt.Errorf("failed to back up current store before restore: %w", err)
		}
	}

	tmp := m.storePath + ".restore.tmp"
	if err := copyFile(backupPath, tmp); err != nil {
		return safetyCopy, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.storePath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tmp, "error", rmErr)
		}
		return safetyCopy, fmt.Errorf("failed to restore user store: %w", err)
	}
	return safetyCopy, nil
}

func (m *Manager) verify(path string) error {
	if m.kind == KindJSON {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var doc map[string]json.RawMessage
		return json.Unmarshal(data, &doc)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	var count int
	return db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
