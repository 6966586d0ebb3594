package models

import (
	"encoding/json"
	"strings"
)

// UserRecord is everything stored for one username.
type UserRecord struct {
	Password    string         `json:"password,omitempty"`
	Goals       []Goal         `json:"goals"`
	Moods       []MoodEntry    `json:"moods"`
	Journals    []JournalEntry `json:"journals"`
	ChatHistory []ChatMessage  `json:"chat_history"`

	extra map[string]json.RawMessage
	raw   string
}

// Normalize replaces missing collections with empty ones.
func (r UserRecord) Normalize() UserRecord {
	if r.Goals == nil {
		r.Goals = []Goal{}
	}
	if r.Moods == nil {
		r.Moods = []MoodEntry{}
	}
	if r.Journals == nil {
		r.Journals = []JournalEntry{}
	}
	if r.ChatHistory == nil {
		r.ChatHistory = []ChatMessage{}
	}
	return r
}

// Readable returns a copy without the goals and chat messages that could
// not be decoded. Mood and journal entries stay so history views can report
// them by position.
func (r UserRecord) Readable() UserRecord {
	r = r.Normalize()
	goals := make([]Goal, 0, len(r.Goals))
	for _, g := range r.Goals {
		if !g.Unreadable() {
			goals = append(goals, g)
		}
	}
	chat := make([]ChatMessage, 0, len(r.ChatHistory))
	for _, c := range r.ChatHistory {
		if !c.Unreadable() {
			chat = append(chat, c)
		}
	}
	r.Goals, r.ChatHistory = goals, chat
	return r
}

// WithoutCredential returns a copy safe to hand to third parties.
func (r UserRecord) WithoutCredential() UserRecord {
	r.Password = ""
	if _, kept := r.extra["password"]; kept {
		extra := make(map[string]json.RawMessage, len(r.extra))
		for k, v := range r.extra {
			if k != "password" {
				extra[k] = v
			}
		}
		r.extra = extra
	}
	return r
}

// HasHashedPassword reports whether the stored credential is a bcrypt hash.
func (r UserRecord) HasHashedPassword() bool {
	return strings.HasPrefix(r.Password, "$2a$") ||
		strings.HasPrefix(r.Password, "$2b$") ||
		strings.HasPrefix(r.Password, "$2y$")
}

// UserStore maps usernames to records. It is always loaded and saved whole.
type UserStore map[string]UserRecord

// Normalize returns a copy of the store with every record normalized.
func (s UserStore) Normalize() UserStore {
	out := make(UserStore, len(s))
	for name, rec := range s {
		out[name] = rec.Normalize()
	}
	return out
}

// Record returns the user's record, normalized, and whether it existed.
func (s UserStore) Record(username string) (UserRecord, bool) {
	rec, ok := s[username]
	return rec.Normalize(), ok
}
