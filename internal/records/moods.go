package records

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/models"
)

// AddMood appends a mood entry stamped with the current time. The emoji is
// derived from the label when empty. Moods are never edited or removed.
func (s *Service) AddMood(username string, label models.MoodLabel, emoji, description string) (Result, error) {
	parsed, _ := models.ParseMoodLabel(string(label))
	if emoji == "" {
		emoji = parsed.Emoji()
	}

	now := s.now()
	entry := models.MoodEntry{
		Timestamp:   now.Format(constants.TimestampFormat),
		MoodText:    parsed,
		MoodEmoji:   emoji,
		Description: strings.TrimSpace(description),
		Date:        now.Format(constants.DateFormat),
		Time:        now.Format(constants.TimeFormat),
	}
	if err := entry.Validate(); err != nil {
		return fail(fmt.Sprintf("Unknown mood %q.", label)), nil
	}

	return s.mutate(username, func(rec *models.UserRecord) (Result, bool) {
		rec.Moods = append(rec.Moods, entry)
		return ok(fmt.Sprintf("Your mood '%s %s' has been logged!", parsed, emoji)), true
	})
}

// MoodHistory resolves every entry's time and returns them newest first.
// Entries that cannot be resolved are reported in Skipped and left as stored.
func (s *Service) MoodHistory(username string) (models.History[models.ResolvedMood], error) {
	rec, _, err := s.Record(username)
	if err != nil {
		return models.History[models.ResolvedMood]{}, err
	}
	return ResolveMoods(rec.Moods), nil
}

func ResolveMoods(moods []models.MoodEntry) models.History[models.ResolvedMood] {
	h := models.History[models.ResolvedMood]{Entries: []models.ResolvedMood{}}
	for i, m := range moods {
		at, err := m.Resolve()
		if err != nil {
			skip := &models.MalformedRecordError{Collection: "mood", Index: i, Reason: err.Error()}
			logger.Warn("Skipping mood entry", "index", i, "reason", skip.Reason)
			h.Skipped = append(h.Skipped, skip)
			continue
		}
		h.Entries = append(h.Entries, models.ResolvedMood{Index: i, At: at, Entry: m})
	}
	sort.SliceStable(h.Entries, func(i, j int) bool {
		return h.Entries[i].At.After(h.Entries[j].At)
	})
	return h
}
