package insights

import (
	"testing"
	"time"

	"github.com/julianstephens/soulsync/internal/models"
)

func strPtr(s string) *string { return &s }

func TestMoodValue(t *testing.T) {
	tests := []struct {
		label models.MoodLabel
		want  float64
	}{
		{models.MoodHappy, 5},
		{models.MoodEnergized, 4.5},
		{models.MoodCalm, 3.5},
		{models.MoodAngry, 1},
		{"HAPPY", 5},
		{"Bored", 0},
	}
	for _, tt := range tests {
		if got := MoodValue(tt.label); got != tt.want {
			t.Errorf("MoodValue(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestMoodTrend(t *testing.T) {
	moods := []models.MoodEntry{
		{MoodText: models.MoodSad, Timestamp: "2024-03-02T09:00:00"},
		{MoodText: models.MoodHappy, Date: "2024-03-01", Time: "20:00:00"},
		{Date: "2024-03-01"}, // no label
		{MoodText: models.MoodCalm},
		{MoodText: models.MoodHappy, Timestamp: "2024-03-02T18:00:00"},
	}

	trend := MoodTrend(moods)
	if len(trend.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(trend.Points))
	}
	if trend.Points[0].Label != models.MoodHappy || trend.Points[1].Label != models.MoodSad {
		t.Errorf("trend not oldest first: %+v", trend.Points)
	}
	if len(trend.Skipped) != 2 {
		t.Errorf("expected 2 skipped entries, got %+v", trend.Skipped)
	}
	if avg := trend.Average(); avg != (5+1+5)/3.0 {
		t.Errorf("Average() = %v", avg)
	}

	days := trend.DailyDistribution()
	if len(days) != 2 || days[0].Date != "2024-03-01" {
		t.Fatalf("unexpected days: %+v", days)
	}
	if days[1].Counts[models.MoodHappy] != 1 || days[1].Counts[models.MoodSad] != 1 {
		t.Errorf("unexpected counts: %+v", days[1].Counts)
	}
	if (Trend{}).Average() != 0 {
		t.Error("empty trend should average 0")
	}
}

func TestSummarizeGoals(t *testing.T) {
	got := SummarizeGoals([]models.Goal{
		{Status: models.GoalCompleted},
		{Status: models.GoalCompleted},
		{Status: models.GoalToDo},
		{Status: models.GoalCancelled},
		{Status: "Someday"},
	})
	want := GoalSummary{Total: 5, ToDo: 1, Completed: 2, Cancelled: 1, Unknown: 1}
	if got != want {
		t.Errorf("SummarizeGoals() = %+v, want %+v", got, want)
	}
}

func TestWeeklyReflection(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	rec := models.UserRecord{
		Goals: []models.Goal{
			{ID: "1", Title: "soon", DueDate: strPtr("2024-03-12"), Status: models.GoalInProgress},
			{ID: "2", Title: "done", DueDate: strPtr("2024-03-11"), Status: models.GoalCompleted},
			{ID: "3", Title: "later", DueDate: strPtr("2024-04-30"), Status: models.GoalToDo},
			{ID: "4", Title: "overdue", DueDate: strPtr("2024-03-01"), Status: models.GoalToDo},
		},
		Moods: []models.MoodEntry{
			{MoodText: models.MoodSad, Timestamp: "2024-02-01T10:00:00"},
			{MoodText: models.MoodCalm, Timestamp: "2024-03-05T10:00:00"},
			{MoodText: models.MoodCalm, Timestamp: "2024-03-06T10:00:00"},
			{MoodText: models.MoodHappy, Timestamp: "2024-03-07T10:00:00"},
		},
		Journals: []models.JournalEntry{
			{Content: "old", Date: "2024-01-01"},
			{Content: "new", Timestamp: "2024-03-09T21:00:00"},
			{Content: "broken"},
		},
	}

	w := WeeklyReflection(rec, now)
	if len(w.Moods.Points) != 3 || w.TopMood != models.MoodCalm {
		t.Errorf("moods = %+v, top = %q", w.Moods.Points, w.TopMood)
	}
	if w.JournalCount != 1 || w.SkippedJournal != 1 {
		t.Errorf("journals = %d, skipped = %d", w.JournalCount, w.SkippedJournal)
	}
	if len(w.GoalsDueSoon) != 1 || w.GoalsDueSoon[0].ID != "1" {
		t.Errorf("due soon = %+v", w.GoalsDueSoon)
	}
	if w.Goals.Total != 4 || w.Goals.Completed != 1 {
		t.Errorf("goals = %+v", w.Goals)
	}
}
