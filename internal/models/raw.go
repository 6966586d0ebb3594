package models

import "encoding/json"

// decodeEntries decodes a JSON array one element at a time. An element that
// does not decode is passed to keep, which wraps its stored bytes so the
// next save writes them back unchanged.
func decodeEntries[T any](data json.RawMessage, keep func(raw string) T) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			out = append(out, keep(string(item)))
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// UnmarshalJSON decodes each field on its own. A field that does not decode
// is kept verbatim, as are fields this version does not know about.
func (r *UserRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var rec UserRecord
	for key, value := range fields {
		var err error
		switch key {
		case "password":
			err = json.Unmarshal(value, &rec.Password)
		case "goals":
			rec.Goals, err = decodeEntries(value, func(raw string) Goal { return Goal{raw: raw} })
		case "moods":
			rec.Moods, err = decodeEntries(value, func(raw string) MoodEntry { return MoodEntry{raw: raw} })
		case "journals":
			rec.Journals, err = decodeEntries(value, func(raw string) JournalEntry { return JournalEntry{raw: raw} })
		case "chat_history":
			rec.ChatHistory, err = decodeEntries(value, func(raw string) ChatMessage { return ChatMessage{raw: raw} })
		default:
			err = errUnknownField
		}
		if err != nil {
			if rec.extra == nil {
				rec.extra = make(map[string]json.RawMessage)
			}
			rec.extra[key] = value
		}
	}

	*r = rec
	return nil
}

// MarshalJSON writes the known fields over any kept ones. A kept field is
// only replaced once its known counterpart holds data.
func (r UserRecord) MarshalJSON() ([]byte, error) {
	if r.raw != "" {
		return []byte(r.raw), nil
	}
	r = r.Normalize()

	out := make(map[string]any, len(r.extra)+5)
	for key, value := range r.extra {
		out[key] = value
	}
	set := func(key string, value any, empty bool) {
		if _, kept := r.extra[key]; kept && empty {
			return
		}
		out[key] = value
	}
	if r.Password != "" {
		out["password"] = r.Password
	}
	set("goals", r.Goals, len(r.Goals) == 0)
	set("moods", r.Moods, len(r.Moods) == 0)
	set("journals", r.Journals, len(r.Journals) == 0)
	set("chat_history", r.ChatHistory, len(r.ChatHistory) == 0)
	return json.Marshal(out)
}

// DecodeRecord decodes one stored record. A record that is not a JSON
// object comes back unreadable along with the decode error; saving it
// writes the original bytes back.
func DecodeRecord(data []byte) (UserRecord, error) {
	var rec UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return UserRecord{raw: string(data)}, err
	}
	return rec, nil
}

// UnmarshalJSON keeps a user whose record is not a JSON object as raw bytes
// instead of failing the whole store.
func (s *UserStore) UnmarshalJSON(data []byte) error {
	var users map[string]json.RawMessage
	if err := json.Unmarshal(data, &users); err != nil {
		return err
	}
	out := make(UserStore, len(users))
	for name, value := range users {
		out[name], _ = DecodeRecord(value)
	}
	*s = out
	return nil
}

// Unreadable reports whether the record could not be decoded at all.
func (r UserRecord) Unreadable() bool { return r.raw != "" }

// Unreadable reports whether the stored goal could not be decoded.
func (g Goal) Unreadable() bool { return g.raw != "" }

// Unreadable reports whether the stored entry could not be decoded.
func (m MoodEntry) Unreadable() bool { return m.raw != "" }

// Unreadable reports whether the stored entry could not be decoded.
func (j JournalEntry) Unreadable() bool { return j.raw != "" }

// Unreadable reports whether the stored message could not be decoded.
func (c ChatMessage) Unreadable() bool { return c.raw != "" }
