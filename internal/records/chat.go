package records

import (
	"errors"

	"github.com/julianstephens/soulsync/internal/models"
)

// AppendChat persists messages at the end of the user's chat history.
func (s *Service) AppendChat(username string, msgs ...models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	res, err := s.mutate(username, func(rec *models.UserRecord) (Result, bool) {
		rec.ChatHistory = append(rec.ChatHistory, msgs...)
		return ok(""), true
	})
	if err == nil && !res.OK {
		return errors.New(res.Message)
	}
	return err
}

// MarkReplyFailed records on the latest user turn that its reply could not
// be generated. It reports false when there is no user turn to mark.
func (s *Service) MarkReplyFailed(username, reason string) (bool, error) {
	res, err := s.mutate(username, func(rec *models.UserRecord) (Result, bool) {
		for i := len(rec.ChatHistory) - 1; i >= 0; i-- {
			if !rec.ChatHistory[i].Unreadable() && rec.ChatHistory[i].Role == models.RoleUser {
				rec.ChatHistory[i].ReplyError = reason
				return ok(""), true
			}
		}
		return fail("no user turn"), false
	})
	return res.OK, err
}

func (s *Service) ChatHistory(username string) ([]models.ChatMessage, error) {
	rec, _, err := s.Record(username)
	if err != nil {
		return nil, err
	}
	return rec.ChatHistory, nil
}
