package moods

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/soulsync/internal/assistant"
	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/records"
	"github.com/julianstephens/soulsync/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *storage.JSONStore, *bytes.Buffer) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "users.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	clock := func() time.Time {
		current = current.Add(time.Hour)
		return current
	}

	ctx := cli.NewContext(store, assistant.New(assistant.Config{}))
	ctx.Records = records.NewService(store, records.WithHashCost(bcrypt.MinCost), records.WithClock(clock))
	if res, err := ctx.Records.Register("ana", "pw"); err != nil || !res.OK {
		t.Fatalf("register failed: %+v, %v", res, err)
	}
	ctx.User = "ana"
	out := &bytes.Buffer{}
	ctx.Out = out
	return ctx, store, out
}

func TestMoodLogCmd(t *testing.T) {
	ctx, _, out := setupTestContext(t)

	cmd := &MoodLogCmd{Label: "happy", Description: "sunny walk"}
	if err := cmd.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Your mood 'Happy 😀' has been logged!") {
		t.Errorf("output = %q", out.String())
	}
}

func TestMoodLogCmd_UnknownLabel(t *testing.T) {
	if err := (&MoodLogCmd{Label: "Hangry"}).Validate(); err == nil {
		t.Error("unknown mood should fail validation")
	}
}

func TestMoodHistoryCmd(t *testing.T) {
	ctx, store, out := setupTestContext(t)

	for _, label := range []string{"Calm", "Sad", "Excited"} {
		if err := (&MoodLogCmd{Label: label}).Run(ctx); err != nil {
			t.Fatal(err)
		}
	}

	// A legacy entry without any date is reported, not shown.
	users, _ := store.Load()
	rec := users["ana"]
	rec.Moods = append(rec.Moods, models.MoodEntry{MoodText: "Neutral"})
	users["ana"] = rec
	if err := store.Save(users); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&MoodHistoryCmd{Last: 2}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "Recent moods (2 of 3)") {
		t.Errorf("header missing:\n%s", text)
	}
	if strings.Index(text, "Excited") > strings.Index(text, "Sad") {
		t.Errorf("expected newest first:\n%s", text)
	}
	if strings.Contains(text, "Calm") {
		t.Errorf("--last 2 should hide the oldest:\n%s", text)
	}
	if !strings.Contains(text, "skipped mood entry #4") {
		t.Errorf("skipped entry not reported:\n%s", text)
	}
}

func TestMoodHistoryCmd_Empty(t *testing.T) {
	ctx, _, out := setupTestContext(t)
	if err := (&MoodHistoryCmd{Last: 10}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No moods logged yet") {
		t.Errorf("output = %q", out.String())
	}
	if err := (&MoodHistoryCmd{Last: 0}).Validate(); err == nil {
		t.Error("--last 0 should fail validation")
	}
}
