package records

import (
	"sort"
	"strings"

	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/models"
)

// AddJournalEntry appends an entry. Blank content is refused; journals have
// no edit or delete.
func (s *Service) AddJournalEntry(username, content string) (Result, error) {
	if strings.TrimSpace(content) == "" {
		return fail("Please write something before saving your entry."), nil
	}

	now := s.now()
	entry := models.JournalEntry{
		Timestamp: now.Format(constants.TimestampFormat),
		Content:   content,
		Date:      now.Format(constants.DateFormat),
	}

	return s.mutate(username, func(rec *models.UserRecord) (Result, bool) {
		rec.Journals = append(rec.Journals, entry)
		return ok("Your entry has been saved!"), true
	})
}

// JournalHistory returns resolvable entries newest first.
func (s *Service) JournalHistory(username string) (models.History[models.ResolvedJournal], error) {
	rec, _, err := s.Record(username)
	if err != nil {
		return models.History[models.ResolvedJournal]{}, err
	}
	return ResolveJournals(rec.Journals), nil
}

func ResolveJournals(journals []models.JournalEntry) models.History[models.ResolvedJournal] {
	h := models.History[models.ResolvedJournal]{Entries: []models.ResolvedJournal{}}
	for i, j := range journals {
		at, err := j.Resolve()
		if err != nil {
			skip := &models.MalformedRecordError{Collection: "journal", Index: i, Reason: err.Error()}
			logger.Warn("Skipping journal entry", "index", i, "reason", skip.Reason)
			h.Skipped = append(h.Skipped, skip)
			continue
		}
		h.Entries = append(h.Entries, models.ResolvedJournal{Index: i, At: at, Entry: j})
	}
	sort.SliceStable(h.Entries, func(i, j int) bool {
		return h.Entries[i].At.After(h.Entries[j].At)
	})
	return h
}
