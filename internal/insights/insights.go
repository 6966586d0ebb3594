// Package insights derives dashboard figures from a user record. Nothing
// here reads or writes the store.
package insights

import (
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/records"
)

var moodValues = map[string]float64{
	"happy":     5,
	"energized": 4.5,
	"excited":   4,
	"calm":      3.5,
	"neutral":   3,
	"anxious":   2,
	"stressed":  2,
	"sad":       1,
	"angry":     1,
}

// MoodValue places a label on a 0-5 scale; unknown labels score 0.
func MoodValue(label models.MoodLabel) float64 {
	return moodValues[strings.ToLower(string(label))]
}

type TrendPoint struct {
	At    time.Time
	Label models.MoodLabel
	Value float64
}

// Trend is the mood series oldest first. Entries without a resolvable time
// or without a label are reported in Skipped.
type Trend struct {
	Points  []TrendPoint
	Skipped []*models.MalformedRecordError
}

func MoodTrend(moods []models.MoodEntry) Trend {
	h := records.ResolveMoods(moods)
	t := Trend{Skipped: h.Skipped}
	for i := len(h.Entries) - 1; i >= 0; i-- {
		r := h.Entries[i]
		if r.Entry.MoodText == "" {
			t.Skipped = append(t.Skipped, &models.MalformedRecordError{Collection: "mood", Index: r.Index, Reason: "no mood label"})
			continue
		}
		t.Points = append(t.Points, TrendPoint{At: r.At, Label: r.Entry.MoodText, Value: MoodValue(r.Entry.MoodText)})
	}
	return t
}

// Average returns the mean mood value, or 0 for an empty trend.
func (t Trend) Average() float64 {
	if len(t.Points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range t.Points {
		sum += p.Value
	}
	return sum / float64(len(t.Points))
}

type DayCounts struct {
	Date   string
	Counts map[models.MoodLabel]int
}

// DailyDistribution counts labels per calendar day, oldest day first.
func (t Trend) DailyDistribution() []DayCounts {
	byDay := map[string]map[models.MoodLabel]int{}
	for _, p := range t.Points {
		day := p.At.Format(constants.DateFormat)
		if byDay[day] == nil {
			byDay[day] = map[models.MoodLabel]int{}
		}
		byDay[day][p.Label]++
	}

	out := make([]DayCounts, 0, len(byDay))
	for day, counts := range byDay {
		out = append(out, DayCounts{Date: day, Counts: counts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

type GoalSummary struct {
	Total      int
	ToDo       int
	InProgress int
	Completed  int
	Cancelled  int
	Unknown    int
}

func SummarizeGoals(goals []models.Goal) GoalSummary {
	s := GoalSummary{Total: len(goals)}
	for _, g := range goals {
		switch g.Status {
		case models.GoalToDo:
			s.ToDo++
		case models.GoalInProgress:
			s.InProgress++
		case models.GoalCompleted:
			s.Completed++
		case models.GoalCancelled:
			s.Cancelled++
		default:
			s.Unknown++
		}
	}
	return s
}

// Week summarizes the seven days ending at To.
type Week struct {
	From, To       time.Time
	Moods          Trend
	TopMood        models.MoodLabel
	JournalCount   int
	Goals          GoalSummary
	GoalsDueSoon   []models.Goal
	SkippedMoods   int
	SkippedJournal int
}

// WeeklyReflection gathers the past week of moods and journals, the current
// goal standing, and open goals due within the next week.
func WeeklyReflection(rec models.UserRecord, now time.Time) Week {
	from := now.AddDate(0, 0, -7)
	w := Week{From: from, To: now, Goals: SummarizeGoals(rec.Goals)}

	all := MoodTrend(rec.Moods)
	w.SkippedMoods = len(all.Skipped)
	counts := map[models.MoodLabel]int{}
	for _, p := range all.Points {
		if p.At.Before(from) || p.At.After(now) {
			continue
		}
		w.Moods.Points = append(w.Moods.Points, p)
		counts[p.Label]++
		if counts[p.Label] > counts[w.TopMood] || (counts[p.Label] == counts[w.TopMood] && p.Label != w.TopMood) {
			w.TopMood = p.Label
		}
	}

	journals := records.ResolveJournals(rec.Journals)
	w.SkippedJournal = len(journals.Skipped)
	for _, j := range journals.Entries {
		if !j.At.Before(from) && !j.At.After(now) {
			w.JournalCount++
		}
	}

	horizon := now.AddDate(0, 0, 7).Format(constants.DateFormat)
	today := now.Format(constants.DateFormat)
	for _, g := range records.SortGoals(rec.Goals, records.SortDueAsc) {
		if !g.HasDueDate() || g.Status == models.GoalCompleted || g.Status == models.GoalCancelled {
			continue
		}
		if *g.DueDate >= today && *g.DueDate <= horizon {
			w.GoalsDueSoon = append(w.GoalsDueSoon, g)
		}
	}
	return w
}
