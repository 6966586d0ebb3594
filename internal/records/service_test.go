package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/storage"
)

func setupTestService(t *testing.T, opts ...Option) (*Service, *storage.JSONStore) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "users.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	opts = append([]Option{WithHashCost(bcrypt.MinCost)}, opts...)
	return NewService(store, opts...), store
}

// fixedClock returns successive instants one minute apart.
func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

// mustOK returns a checker that takes an accessor's (Result, error) pair
// directly, e.g. mustOK(t)(svc.AddGoal(...)).
func mustOK(t *testing.T) func(Result, error) {
	t.Helper()
	return func(res Result, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.OK {
			t.Fatalf("unexpected negative result: %s", res.Message)
		}
	}
}

func strPtr(s string) *string { return &s }

func TestService_MutationsCreateMissingRecord(t *testing.T) {
	svc, _ := setupTestService(t)

	mustOK(t)(svc.AddJournalEntry("ana", "first entry"))

	rec, found, err := svc.Record("ana")
	if err != nil || !found {
		t.Fatalf("Record() = %v, %v", found, err)
	}
	if len(rec.Journals) != 1 || rec.Goals == nil {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestService_NegativeResultDoesNotSave(t *testing.T) {
	svc, store := setupTestService(t)

	res, err := svc.DeleteGoal("ana", "missing")
	if err != nil || res.OK {
		t.Fatalf("DeleteGoal() = %+v, %v", res, err)
	}
	got, _ := store.Load()
	if _, exists := got["ana"]; exists {
		t.Error("a not-found outcome should leave the store untouched")
	}
}

func TestService_ClockStampsEntries(t *testing.T) {
	start := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	svc, _ := setupTestService(t, WithClock(fixedClock(start)))

	mustOK(t)(svc.AddMood("ana", models.MoodCalm, "", ""))
	rec, _, _ := svc.Record("ana")
	m := rec.Moods[0]
	if m.Timestamp != "2024-05-06T07:08:09.000000" || m.Date != "2024-05-06" || m.Time != "07:08:09" {
		t.Errorf("unexpected stamps: %+v", m)
	}
	if m.MoodEmoji != "😌" {
		t.Errorf("emoji = %q", m.MoodEmoji)
	}
}

func TestService_IDGeneratorCollisions(t *testing.T) {
	ids := []string{"a", "a", "a", "b"}
	i := 0
	gen := func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
	svc, _ := setupTestService(t, WithIDGenerator(gen))

	mustOK(t)(svc.AddGoal("ana", GoalInput{Title: "one"}))
	mustOK(t)(svc.AddGoal("ana", GoalInput{Title: "two"}))

	goals, _ := svc.Goals("ana")
	if goals[0].ID == goals[1].ID {
		t.Errorf("duplicate goal ids: %q", goals[0].ID)
	}
}

func TestService_WriteKeepsOtherUsersWithBadFields(t *testing.T) {
	svc, store := setupTestService(t)
	doc := `{
		"alice": {"password": "pw", "goals": [{"id": "g1", "title": "Walk", "status": "To Do"}]},
		"bob": {"password": "pw2", "moods": [{"timestamp": 12345}]},
		"carl": "garbage"
	}`
	if err := os.WriteFile(store.GetConfigPath(), []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	goals, err := svc.Goals("alice")
	if err != nil || len(goals) != 1 {
		t.Fatalf("Goals() = %+v, %v; want the stored goal", goals, err)
	}
	mustOK(t)(svc.AddGoal("alice", GoalInput{Title: "Read"}))

	data, err := os.ReadFile(store.GetConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	var users map[string]json.RawMessage
	if err := json.Unmarshal(data, &users); err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 || string(users["carl"]) != `"garbage"` {
		t.Fatalf("users after write: %s", data)
	}
	var bob struct {
		Password string            `json:"password"`
		Moods    []json.RawMessage `json:"moods"`
	}
	if err := json.Unmarshal(users["bob"], &bob); err != nil {
		t.Fatal(err)
	}
	var mood bytes.Buffer
	if len(bob.Moods) == 1 {
		_ = json.Compact(&mood, bob.Moods[0])
	}
	if bob.Password != "pw2" || mood.String() != `{"timestamp":12345}` {
		t.Errorf("bob after write: %s", users["bob"])
	}

	rec, _, _ := svc.Record("alice")
	if rec.Password != "pw" || len(rec.Goals) != 2 {
		t.Errorf("alice after write: %+v", rec)
	}
	h, _ := svc.MoodHistory("bob")
	if len(h.Entries) != 0 || len(h.Skipped) != 1 {
		t.Errorf("bob's history = %+v", h)
	}

	res, err := svc.AddMood("carl", models.MoodCalm, "", "")
	if err != nil || res.OK {
		t.Errorf("AddMood on an unreadable record = %+v, %v; want refusal", res, err)
	}
}

func TestService_ConcurrentMutations(t *testing.T) {
	svc, _ := setupTestService(t)

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if err := svc.AppendChat("ana", models.UserMessage(fmt.Sprintf("msg %d", i))); err != nil {
				t.Error(err)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.AddGoal("ana", GoalInput{Title: fmt.Sprintf("goal %d", i)}); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	rec, _, err := svc.Record("ana")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.ChatHistory) != n || len(rec.Goals) != n {
		t.Errorf("chat=%d goals=%d, want %d each", len(rec.ChatHistory), len(rec.Goals), n)
	}
}
