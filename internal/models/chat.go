package models

import (
	"bytes"
	"encoding/json"
)

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
	// ReplyError is set on a user turn whose assistant reply failed.
	ReplyError string `json:"reply_error,omitempty"`

	raw string
}

func (c ChatMessage) MarshalJSON() ([]byte, error) {
	if c.raw != "" {
		return []byte(c.raw), nil
	}
	type chatAlias ChatMessage
	return json.Marshal(chatAlias(c))
}

// UnmarshalJSON accepts structured content (objects, arrays) and keeps it as
// compact JSON text.
func (c *ChatMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role       ChatRole        `json:"role"`
		Content    json.RawMessage `json:"content"`
		ReplyError string          `json:"reply_error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	msg := ChatMessage{Role: raw.Role, ReplyError: raw.ReplyError}
	content := bytes.TrimSpace(raw.Content)
	switch {
	case len(content) == 0 || bytes.Equal(content, []byte("null")):
	case content[0] == '"':
		if err := json.Unmarshal(content, &msg.Content); err != nil {
			return err
		}
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, content); err != nil {
			return err
		}
		msg.Content = buf.String()
	}

	*c = msg
	return nil
}

func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}
