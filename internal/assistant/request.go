package assistant

import (
	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/models"
)

// Summary is the compact view of a record sent with every chat request.
type Summary struct {
	GoalsCount          int               `json:"goals_count"`
	CompletedGoals      int               `json:"completed_goals"`
	RecentMood          *models.MoodEntry `json:"recent_mood"`
	JournalEntriesCount int               `json:"journal_entries_count"`
}

// Request is everything the model sees for one chat turn.
type Request struct {
	Username       string
	Conversation   []models.ChatMessage
	Summary        Summary
	Record         models.UserRecord
	RecentJournals []models.JournalEntry
}

func Summarize(rec models.UserRecord) Summary {
	s := Summary{
		GoalsCount:          len(rec.Goals),
		JournalEntriesCount: len(rec.Journals),
	}
	for _, g := range rec.Goals {
		if g.Status == models.GoalCompleted {
			s.CompletedGoals++
		}
	}
	if n := len(rec.Moods); n > 0 {
		last := rec.Moods[n-1]
		s.RecentMood = &last
	}
	return s
}

// NewRequest bounds the conversation to the latest turns and strips the
// record of its credential and chat history.
func NewRequest(username string, rec models.UserRecord, conversation []models.ChatMessage) Request {
	view := rec.WithoutCredential()
	view.ChatHistory = nil

	return Request{
		Username:       username,
		Conversation:   lastN(conversation, constants.ChatWindow),
		Summary:        Summarize(rec),
		Record:         view,
		RecentJournals: lastN(rec.Journals, constants.RecentJournalCount),
	}
}

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return append([]T(nil), items...)
	}
	return append([]T(nil), items[len(items)-n:]...)
}
