package models

import (
	"encoding/json"
	"time"
)

type JournalEntry struct {
	Timestamp string `json:"timestamp,omitempty"`
	Content   string `json:"content"`
	Date      string `json:"date,omitempty"`

	raw string
}

func (j JournalEntry) MarshalJSON() ([]byte, error) {
	if j.raw != "" {
		return []byte(j.raw), nil
	}
	type journalAlias JournalEntry
	return json.Marshal(journalAlias(j))
}

// Resolve returns the entry's timestamp, or midnight of its legacy date.
func (j JournalEntry) Resolve() (time.Time, error) {
	if j.raw != "" {
		return time.Time{}, ErrUnreadableEntry
	}
	if j.Timestamp != "" {
		return ParseTimestamp(j.Timestamp)
	}
	if j.Date == "" {
		return time.Time{}, ErrMissingDate
	}
	return ParseTimestamp(j.Date)
}

type ResolvedJournal struct {
	Index int
	At    time.Time
	Entry JournalEntry
}
