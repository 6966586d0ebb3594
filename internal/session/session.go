package session

import (
	"context"
	"errors"
	"strings"

	"github.com/julianstephens/soulsync/internal/assistant"
	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/records"
)

var ErrEmptyQuery = errors.New("message cannot be empty")

// Replier produces the assistant's turn for a chat request.
type Replier interface {
	Reply(ctx context.Context, req assistant.Request) (string, error)
}

// Session is the state of one interactive user session. Nothing here is
// process-wide; every screen or command receives the session it works on.
type Session struct {
	Username      string
	EditingGoalID *string
	ChatBuffer    []models.ChatMessage

	records *records.Service
	ai      Replier
}

// New starts a session with the user's stored chat history in the buffer.
func New(username string, svc *records.Service, ai Replier) (*Session, error) {
	history, err := svc.ChatHistory(username)
	if err != nil {
		return nil, err
	}
	return &Session{
		Username:   username,
		ChatBuffer: append([]models.ChatMessage(nil), history...),
		records:    svc,
		ai:         ai,
	}, nil
}

func (s *Session) StartEditing(goalID string) {
	s.EditingGoalID = &goalID
}

func (s *Session) StopEditing() {
	s.EditingGoalID = nil
}

// Exchange is the visible outcome of one question.
type Exchange struct {
	Reply  string
	Failed bool
	// Notice is the inline explanation shown when Failed is set.
	Notice string
}

// Ask records the user's turn, asks the assistant and records its reply.
//
// The user turn is persisted before the model is called. The assistant turn
// is persisted only when a reply arrives; otherwise the user turn is marked
// with the failure and the returned Exchange carries a readable notice. Only
// store failures are returned as errors.
func (s *Session) Ask(ctx context.Context, query string) (Exchange, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Exchange{}, ErrEmptyQuery
	}

	turn := models.UserMessage(query)
	if err := s.records.AppendChat(s.Username, turn); err != nil {
		return Exchange{}, err
	}
	s.ChatBuffer = append(s.ChatBuffer, turn)

	rec, _, err := s.records.Record(s.Username)
	if err != nil {
		return Exchange{}, err
	}

	reply, err := s.ai.Reply(ctx, assistant.NewRequest(s.Username, rec, s.ChatBuffer))
	if err != nil {
		return s.replyFailed(err)
	}

	answer := models.AssistantMessage(reply)
	if err := s.records.AppendChat(s.Username, answer); err != nil {
		return Exchange{}, err
	}
	s.ChatBuffer = append(s.ChatBuffer, answer)
	return Exchange{Reply: reply}, nil
}

func (s *Session) replyFailed(cause error) (Exchange, error) {
	notice := "I encountered an issue. Please try again."
	reason := cause.Error()

	var serr *assistant.ServiceError
	if errors.As(cause, &serr) {
		notice = serr.UserMessage()
		reason = serr.Kind.String()
		if serr.Err != nil {
			reason += ": " + serr.Err.Error()
		}
	}
	logger.Warn("Assistant reply failed", "username", s.Username, "reason", reason)

	if _, err := s.records.MarkReplyFailed(s.Username, reason); err != nil {
		return Exchange{}, err
	}
	s.ChatBuffer[len(s.ChatBuffer)-1].ReplyError = reason

	return Exchange{Failed: true, Notice: notice}, nil
}
