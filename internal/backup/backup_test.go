package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/storage"
	"github.com/julianstephens/soulsync/internal/storage/sqlite"
)

func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func sampleStore(goalTitle string) models.UserStore {
	return models.UserStore{
		"ana": models.UserRecord{
			Password: "$2a$10$abcdefghijklmnopqrstuv",
			Goals: []models.Goal{
				{ID: "11111111-2222-3333-4444-555555555555", Title: goalTitle, Status: models.GoalToDo},
			},
		},
	}
}

func setupJSON(t *testing.T) (string, *storage.JSONStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	store := storage.NewJSONStore(path)
	if err := store.Save(sampleStore("Run a 5k")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return path, store
}

func setupSQLite(t *testing.T) (string, *sqlite.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.db")
	store := sqlite.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.Save(sampleStore("Run a 5k")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return path, store
}

func newManager(t *testing.T, path string) *Manager {
	t.Helper()
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	mgr.now = steppingClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local))
	return mgr
}

func TestNewManagerKinds(t *testing.T) {
	tests := []struct {
		path    string
		want    Kind
		wantErr bool
	}{
		{"/tmp/users.json", KindJSON, false},
		{"/tmp/users.db", KindSQLite, false},
		{"/tmp/users.SQLITE", KindSQLite, false},
		{"postgres://localhost/soulsync", 0, true},
		{"/tmp/users.txt", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			mgr, err := NewManager(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedStore) {
					t.Errorf("NewManager(%q) error = %v, want ErrUnsupportedStore", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewManager(%q) failed: %v", tt.path, err)
			}
			if mgr.kind != tt.want {
				t.Errorf("kind = %v, want %v", mgr.kind, tt.want)
			}
		})
	}
}

func TestCreateJSONBackup(t *testing.T) {
	path, _ := setupJSON(t)
	mgr := newManager(t, path)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Dir(backupPath) != filepath.Join(filepath.Dir(path), "backups") {
		t.Errorf("backup written to %s", backupPath)
	}

	restored, err := storage.NewJSONStore(backupPath).Load()
	if err != nil {
		t.Fatal(err)
	}
	if rec, ok := restored["ana"]; !ok || len(rec.Goals) != 1 {
		t.Errorf("backup content = %+v", restored)
	}
}

func TestCreateRejectsCorruptJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := newManager(t, path).Create(); err == nil {
		t.Error("Create should refuse to snapshot a corrupt document")
	}
}

func TestCreateMissingStore(t *testing.T) {
	mgr := newManager(t, filepath.Join(t.TempDir(), "users.json"))
	if _, err := mgr.Create(); err == nil {
		t.Error("Create should fail when the store does not exist")
	}
}

func TestCreateSQLiteBackup(t *testing.T) {
	path, _ := setupSQLite(t)
	mgr := newManager(t, path)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	snap := sqlite.NewStore(backupPath)
	defer snap.Close()
	got, err := snap.Load()
	if err != nil {
		t.Fatalf("Load of backup failed: %v", err)
	}
	if got["ana"].Goals[0].Title != "Run a 5k" {
		t.Errorf("backup content = %+v", got)
	}
}

func TestListNewestFirst(t *testing.T) {
	path, _ := setupJSON(t)
	mgr := newManager(t, path)

	var created []string
	for i := 0; i < 3; i++ {
		p, err := mgr.Create()
		if err != nil {
			t.Fatal(err)
		}
		created = append(created, p)
	}
	// Unrelated files are ignored.
	os.WriteFile(filepath.Join(mgr.BackupDir(), "notes.txt"), []byte("x"), 0600)
	os.WriteFile(filepath.Join(mgr.BackupDir(), "soulsync-garbage.json"), []byte("{}"), 0600)

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	if backups[0].Path != created[2] || backups[2].Path != created[0] {
		t.Errorf("unexpected order: %v", backups)
	}
}

func TestListEmptyDir(t *testing.T) {
	mgr := newManager(t, filepath.Join(t.TempDir(), "users.json"))
	backups, err := mgr.List()
	if err != nil || len(backups) != 0 {
		t.Errorf("List() = %v, %v", backups, err)
	}
}

func TestRotation(t *testing.T) {
	path, _ := setupJSON(t)
	mgr := newManager(t, path)

	var first string
	for i := 0; i < 17; i++ {
		p, err := mgr.Create()
		if err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			first = p
		}
	}

	backups, _ := mgr.List()
	if len(backups) != 14 {
		t.Errorf("expected 14 backups after rotation, got %d", len(backups))
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Error("oldest backup should have been removed")
	}
}

func TestUniqueNamesWithinSameSecond(t *testing.T) {
	path, _ := setupJSON(t)
	mgr := newManager(t, path)
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	a, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}
	b, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("backups in the same second must not collide")
	}
	backups, _ := mgr.List()
	if len(backups) != 2 {
		t.Errorf("expected both backups listed, got %d", len(backups))
	}
}

func TestRestoreJSON(t *testing.T) {
	path, store := setupJSON(t)
	mgr := newManager(t, path)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(sampleStore("Changed")); err != nil {
		t.Fatal(err)
	}

	safety, err := mgr.Restore(backupPath)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if safety == "" {
		t.Error("expected a safety copy of the current store")
	}

	got, _ := store.Load()
	if got["ana"].Goals[0].Title != "Run a 5k" {
		t.Errorf("restored title = %q", got["ana"].Goals[0].Title)
	}

	pre, _ := storage.NewJSONStore(safety).Load()
	if pre["ana"].Goals[0].Title != "Changed" {
		t.Errorf("safety copy title = %q", pre["ana"].Goals[0].Title)
	}
}

func TestRestoreSQLite(t *testing.T) {
	path, store := setupSQLite(t)
	mgr := newManager(t, path)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(sampleStore("Changed")); err != nil {
		t.Fatal(err)
	}
	store.Close()

	if _, err := mgr.Restore(backupPath); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	reopened := sqlite.NewStore(path)
	defer reopened.Close()
	got, err := reopened.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got["ana"].Goals[0].Title != "Run a 5k" {
		t.Errorf("restored title = %q", got["ana"].Goals[0].Title)
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	path, _ := setupJSON(t)
	mgr := newManager(t, path)

	bad := filepath.Join(t.TempDir(), "soulsync-20250101-000000.json")
	os.WriteFile(bad, []byte("[1,2"), 0600)
	if _, err := mgr.Restore(bad); err == nil {
		t.Error("Restore should reject an invalid backup")
	}
	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Restore should fail for a missing file")
	}

	got, _ := storage.NewJSONStore(path).Load()
	if _, ok := got["ana"]; !ok {
		t.Error("store should be untouched after a failed restore")
	}
}
