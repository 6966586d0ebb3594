package chat

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/soulsync/internal/assistant"
	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/records"
	"github.com/julianstephens/soulsync/internal/storage"
)

type stubAssistant struct {
	reply string
	err   error
	last  assistant.Request
}

func (s *stubAssistant) Reply(ctx context.Context, req assistant.Request) (string, error) {
	s.last = req
	return s.reply, s.err
}

func (s *stubAssistant) Reflect(ctx context.Context, entry string) (string, error) {
	return "", errors.New("not used")
}

func setupTestContext(t *testing.T, ai *stubAssistant) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "users.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	ctx := cli.NewContext(store, ai)
	ctx.Records = records.NewService(store, records.WithHashCost(bcrypt.MinCost))
	if res, err := ctx.Records.Register("ana", "pw"); err != nil || !res.OK {
		t.Fatalf("register failed: %+v, %v", res, err)
	}
	ctx.User = "ana"
	out := &bytes.Buffer{}
	ctx.Out = out
	return ctx, out
}

func TestChatAskCmd(t *testing.T) {
	ai := &stubAssistant{reply: "Take a deep breath."}
	ctx, out := setupTestContext(t, ai)

	if err := (&ChatAskCmd{Message: []string{"I", "feel", "stressed"}}).Run(ctx); err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "Take a deep breath." {
		t.Errorf("output = %q", out.String())
	}
	if got := ai.last.Conversation[len(ai.last.Conversation)-1].Content; got != "I feel stressed" {
		t.Errorf("assistant saw %q", got)
	}

	history, _ := ctx.Records.ChatHistory("ana")
	if len(history) != 2 || history[1].Role != models.RoleAssistant {
		t.Errorf("history = %+v", history)
	}
}

func TestChatAskCmd_Failure(t *testing.T) {
	ai := &stubAssistant{err: &assistant.ServiceError{Kind: assistant.KindMissingCredentials}}
	ctx, out := setupTestContext(t, ai)

	if err := (&ChatAskCmd{Message: []string{"hello"}}).Run(ctx); err != nil {
		t.Fatalf("a failed reply is not a command error: %v", err)
	}
	if !strings.Contains(out.String(), assistant.MissingCredentialsMessage) {
		t.Errorf("output = %q", out.String())
	}

	history, _ := ctx.Records.ChatHistory("ana")
	if len(history) != 1 || history[0].ReplyError == "" {
		t.Errorf("history = %+v", history)
	}

	out.Reset()
	if err := (&ChatHistoryCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "(no reply: missing credentials)") {
		t.Errorf("history output = %q", out.String())
	}
}

func TestChatAskCmd_Empty(t *testing.T) {
	ctx, _ := setupTestContext(t, &stubAssistant{})
	err := (&ChatAskCmd{Message: []string{"   "}}).Run(ctx)
	var rejected *cli.RejectedError
	if !errors.As(err, &rejected) {
		t.Errorf("error = %v", err)
	}
}

func TestChatHistoryCmd_Last(t *testing.T) {
	ai := &stubAssistant{reply: "ok"}
	ctx, out := setupTestContext(t, ai)
	for _, q := range []string{"one", "two", "three"} {
		if err := (&ChatAskCmd{Message: []string{q}}).Run(ctx); err != nil {
			t.Fatal(err)
		}
	}

	out.Reset()
	if err := (&ChatHistoryCmd{Last: 2}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if strings.Contains(text, "two") || !strings.Contains(text, "You: three") || !strings.Contains(text, "SoulSync: ok") {
		t.Errorf("output:\n%s", text)
	}
}

func TestChatSuggestCmd(t *testing.T) {
	ctx, out := setupTestContext(t, &stubAssistant{})
	if _, err := ctx.Records.AddJournalEntry("ana", "today was fine"); err != nil {
		t.Fatal(err)
	}
	if err := (&ChatSuggestCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Tell me about my recent journal entries.") {
		t.Errorf("output = %q", out.String())
	}
	if strings.Contains(out.String(), "Summarize my goals.") {
		t.Errorf("goal prompt shown without goals: %q", out.String())
	}
}
