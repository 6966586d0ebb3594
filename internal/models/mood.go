package models

import (
	"encoding/json"
	"strings"
	"time"
)

type MoodLabel string

const (
	MoodHappy     MoodLabel = "Happy"
	MoodSad       MoodLabel = "Sad"
	MoodAngry     MoodLabel = "Angry"
	MoodStressed  MoodLabel = "Stressed"
	MoodAnxious   MoodLabel = "Anxious"
	MoodExcited   MoodLabel = "Excited"
	MoodNeutral   MoodLabel = "Neutral"
	MoodCalm      MoodLabel = "Calm"
	MoodEnergized MoodLabel = "Energized"
)

// DefaultMood is preselected when the user is asked for a mood.
const DefaultMood = MoodNeutral

// UnknownMoodEmoji is shown for labels outside the known set.
const UnknownMoodEmoji = "❓"

// MoodLabels lists the known labels in the order they are offered to the user.
var MoodLabels = []MoodLabel{
	MoodHappy, MoodSad, MoodAngry, MoodStressed, MoodAnxious,
	MoodExcited, MoodNeutral, MoodCalm, MoodEnergized,
}

var moodEmojis = map[MoodLabel]string{
	MoodHappy:     "😀",
	MoodSad:       "😢",
	MoodAngry:     "😡",
	MoodStressed:  "😣",
	MoodAnxious:   "😰",
	MoodExcited:   "🤩",
	MoodNeutral:   "😐",
	MoodCalm:      "😌",
	MoodEnergized: "⚡",
}

// ParseMoodLabel matches a label case-insensitively.
func ParseMoodLabel(s string) (MoodLabel, bool) {
	s = strings.TrimSpace(s)
	for _, label := range MoodLabels {
		if strings.EqualFold(s, string(label)) {
			return label, true
		}
	}
	return MoodLabel(s), false
}

func (m MoodLabel) Valid() bool {
	_, ok := moodEmojis[m]
	return ok
}

// Emoji returns the glyph for a known label, or UnknownMoodEmoji.
func (m MoodLabel) Emoji() string {
	if e, ok := moodEmojis[m]; ok {
		return e
	}
	return UnknownMoodEmoji
}

// MoodEntry is one logged mood. Timestamp is authoritative; Date and Time are
// kept for entries written before timestamps existed.
type MoodEntry struct {
	Timestamp   string    `json:"timestamp,omitempty"`
	MoodText    MoodLabel `json:"mood_text,omitempty" validate:"mood_label"`
	MoodEmoji   string    `json:"mood_emoji,omitempty"`
	Description string    `json:"description"`
	Date        string    `json:"date,omitempty"`
	Time        string    `json:"time,omitempty"`

	raw string
}

// UnmarshalJSON reads the legacy "mood" key as mood_text.
func (m *MoodEntry) UnmarshalJSON(data []byte) error {
	type moodAlias MoodEntry
	var raw struct {
		moodAlias
		Mood string `json:"mood"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	entry := MoodEntry(raw.moodAlias)
	if entry.MoodText == "" && raw.Mood != "" {
		entry.MoodText = MoodLabel(raw.Mood)
	}
	if label, ok := ParseMoodLabel(string(entry.MoodText)); ok {
		entry.MoodText = label
	}
	*m = entry
	return nil
}

func (m MoodEntry) MarshalJSON() ([]byte, error) {
	if m.raw != "" {
		return []byte(m.raw), nil
	}
	type moodAlias MoodEntry
	return json.Marshal(moodAlias(m))
}

// Validate checks a new entry before it is stored. Stored entries are never
// validated; unknown labels there are displayed as they are.
func (m MoodEntry) Validate() error {
	return validate.Struct(m)
}

// Label returns the display label, "Unknown Mood" when none was recorded.
func (m MoodEntry) Label() string {
	if m.MoodText == "" {
		return "Unknown Mood"
	}
	return string(m.MoodText)
}

// Emoji returns the stored glyph, falling back to the one derived from the label.
func (m MoodEntry) Emoji() string {
	if m.MoodEmoji != "" && m.MoodEmoji != UnknownMoodEmoji {
		return m.MoodEmoji
	}
	return m.MoodText.Emoji()
}

// Resolve returns the point in time the entry was logged. Entries without a
// timestamp are rebuilt from date and time, with time defaulting to midnight.
func (m MoodEntry) Resolve() (time.Time, error) {
	if m.raw != "" {
		return time.Time{}, ErrUnreadableEntry
	}
	if m.Timestamp != "" {
		return ParseTimestamp(m.Timestamp)
	}
	if m.Date == "" {
		return time.Time{}, ErrMissingDate
	}
	clock := m.Time
	if clock == "" {
		clock = "00:00:00"
	}
	return ParseTimestamp(m.Date + "T" + clock)
}

// ResolvedMood pairs a stored entry with its resolved time and position.
type ResolvedMood struct {
	Index int
	At    time.Time
	Entry MoodEntry
}
