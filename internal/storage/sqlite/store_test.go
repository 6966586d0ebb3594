package sqlite

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/julianstephens/soulsync/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "users.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := setupTestStore(t)

	want := models.UserStore{
		"ana": models.UserRecord{
			Password: "pw",
			Goals:    []models.Goal{{ID: "g1", Title: "Walk", Status: models.GoalInProgress}},
			Moods:    []models.MoodEntry{{Date: "2023-01-01", MoodText: models.MoodSad}},
		}.Normalize(),
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}

	version, err := s.SchemaVersion()
	if err != nil || version != 1 {
		t.Errorf("SchemaVersion() = %d, %v", version, err)
	}
}

func TestStore_SaveUpserts(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Save(models.UserStore{"ana": {Password: "a"}, "ben": {Password: "b"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(models.UserStore{"ana": {Password: "a2"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["ana"].Password != "a2" {
		t.Errorf("ana not updated: %+v", got["ana"])
	}
	if _, ok := got["ben"]; !ok {
		t.Error("users absent from a save should be kept")
	}
}

func TestStore_LoadUninitialized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	s := NewStore(path)
	defer s.Close()

	got, err := s.Load()
	if err != nil || len(got) != 0 {
		t.Errorf("Load() = %v, %v; want empty store", got, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Load should not create the database")
	}
}

func TestStore_KeepsUndecodableRows(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Save(models.UserStore{"ana": {Password: "a"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DB().Exec(`INSERT INTO users (username, record, updated_at) VALUES ('broken', '{not json', '')`); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec, ok := got["broken"]; !ok || !rec.Unreadable() {
		t.Errorf("undecodable row should load as unreadable, got %+v (present %v)", rec, ok)
	}
	if _, ok := got["ana"]; !ok {
		t.Error("readable rows should still load")
	}

	if err := s.Save(got); err != nil {
		t.Fatal(err)
	}
	var record string
	if err := s.DB().QueryRow(`SELECT record FROM users WHERE username = 'broken'`).Scan(&record); err != nil {
		t.Fatal(err)
	}
	if record != "{not json" {
		t.Errorf("save rewrote a row it could not read: %q", record)
	}
}

func TestStore_LoadFailsOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	garbage := []byte("this is not a sqlite database, just some bytes")
	if err := os.WriteFile(path, garbage, 0600); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)
	defer s.Close()

	got, err := s.Load()
	if err != nil || len(got) != 0 {
		t.Fatalf("Load() = %v, %v; want empty store", got, err)
	}
	if s.LastLoadError() == nil {
		t.Error("LastLoadError() should report the unreadable database")
	}

	if err := s.Save(models.UserStore{"ana": {Password: "a"}}); err == nil {
		t.Error("Save after a failed load should be refused")
	}
	data, _ := os.ReadFile(path)
	if string(data) != string(garbage) {
		t.Error("refused save still modified the file")
	}
}
