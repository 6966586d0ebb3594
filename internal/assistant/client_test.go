package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julianstephens/soulsync/internal/models"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func fakeProvider(t *testing.T, status int, body string, seen *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const okBody = `{"id":"c1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"You seem calmer this week."},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`

func sampleRecord() models.UserRecord {
	rec := models.UserRecord{
		Password: "$2a$10$secrethash",
		Goals: []models.Goal{
			{ID: "1", Title: "Run", Status: models.GoalCompleted},
			{ID: "2", Title: "Read", Status: models.GoalToDo},
		},
		Moods: []models.MoodEntry{
			{MoodText: models.MoodSad, Date: "2024-01-01"},
			{MoodText: models.MoodCalm, Timestamp: "2024-01-02T10:00:00"},
		},
	}
	for _, c := range []string{"one", "two", "three", "four"} {
		rec.Journals = append(rec.Journals, models.JournalEntry{Content: c, Date: "2024-01-0" + string(rune('1'+len(rec.Journals)))})
	}
	for i := 0; i < 8; i++ {
		rec.ChatHistory = append(rec.ChatHistory, models.UserMessage("old question"))
	}
	return rec.Normalize()
}

func TestReply(t *testing.T) {
	var seen capturedRequest
	srv := fakeProvider(t, http.StatusOK, okBody, &seen)
	c := New(Config{APIKey: "test-key", BaseURL: srv.URL})

	rec := sampleRecord()
	var convo []models.ChatMessage
	for i := 0; i < 7; i++ {
		convo = append(convo, models.UserMessage("q"), models.AssistantMessage("a"))
	}
	convo = append(convo, models.UserMessage("How am I doing?"))

	reply, err := c.Reply(context.Background(), NewRequest("ana", rec, convo))
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if reply != "You seem calmer this week." {
		t.Errorf("reply = %q", reply)
	}

	if seen.Model != "llama-3.1-8b-instant" || seen.MaxTokens != 540 {
		t.Errorf("model/max tokens = %q/%d", seen.Model, seen.MaxTokens)
	}
	if len(seen.Messages) != 6 {
		t.Fatalf("expected system prompt + 5 turns, got %d messages", len(seen.Messages))
	}
	if seen.Messages[0].Role != "system" || seen.Messages[5].Content != "How am I doing?" {
		t.Errorf("unexpected message layout: %+v", seen.Messages)
	}

	system := seen.Messages[0].Content
	for _, want := range []string{"ana", `"goals_count": 2`, `"completed_goals": 1`, `"journal_entries_count": 4`, "Content: four"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if strings.Contains(system, "secrethash") {
		t.Error("credential leaked into the prompt")
	}
	if strings.Contains(system, "Content: one") {
		t.Error("only the last three journal entries should be quoted")
	}
	if strings.Contains(system, "old question") {
		t.Error("stored chat history should not be embedded in the record context")
	}
}

func TestReflect(t *testing.T) {
	var seen capturedRequest
	srv := fakeProvider(t, http.StatusOK, okBody, &seen)
	c := New(Config{APIKey: "test-key", BaseURL: srv.URL + "/"})

	if _, err := c.Reflect(context.Background(), "I felt tired today."); err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if seen.Model != "llama-3.3-70b-versatile" || seen.MaxTokens != 150 {
		t.Errorf("model/max tokens = %q/%d", seen.Model, seen.MaxTokens)
	}
	if seen.Messages[1].Content != "My journal entry: I felt tired today." {
		t.Errorf("user message = %q", seen.Messages[1].Content)
	}
}

func TestReply_MissingCredentials(t *testing.T) {
	c := New(Config{APIKey: "  "})
	if c.Configured() {
		t.Fatal("blank key should leave the client unconfigured")
	}

	_, err := c.Reply(context.Background(), NewRequest("ana", sampleRecord(), nil))
	var serr *ServiceError
	if !errors.As(err, &serr) || serr.Kind != KindMissingCredentials {
		t.Fatalf("Reply() error = %v, want missing credentials", err)
	}
	if serr.UserMessage() != MissingCredentialsMessage {
		t.Errorf("UserMessage() = %q", serr.UserMessage())
	}
}

func TestReply_Failures(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		srv := fakeProvider(t, http.StatusUnauthorized, `{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`, nil)
		c := New(Config{APIKey: "test-key", BaseURL: srv.URL})

		_, err := c.Reply(context.Background(), NewRequest("ana", sampleRecord(), nil))
		var serr *ServiceError
		if !errors.As(err, &serr) || serr.Kind != KindProvider {
			t.Fatalf("Reply() error = %v, want provider error", err)
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := fakeProvider(t, http.StatusOK, `{"id":"c1","object":"chat.completion","choices":[]}`, nil)
		c := New(Config{APIKey: "test-key", BaseURL: srv.URL})

		_, err := c.Reply(context.Background(), NewRequest("ana", sampleRecord(), nil))
		var serr *ServiceError
		if !errors.As(err, &serr) || serr.Kind != KindProvider {
			t.Fatalf("Reply() error = %v, want provider error", err)
		}
	})

	t.Run("network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c := New(Config{APIKey: "test-key", BaseURL: url})

		_, err := c.Reply(context.Background(), NewRequest("ana", sampleRecord(), nil))
		var serr *ServiceError
		if !errors.As(err, &serr) || serr.Kind != KindNetwork {
			t.Fatalf("Reply() error = %v, want network error", err)
		}
		if !strings.Contains(serr.UserMessage(), "trouble connecting") {
			t.Errorf("UserMessage() = %q", serr.UserMessage())
		}
	})
}

func TestNewRequest(t *testing.T) {
	rec := sampleRecord()
	req := NewRequest("ana", rec, rec.ChatHistory)

	if len(req.Conversation) != 5 {
		t.Errorf("conversation window = %d, want 5", len(req.Conversation))
	}
	if len(req.RecentJournals) != 3 || req.RecentJournals[2].Content != "four" {
		t.Errorf("recent journals = %+v", req.RecentJournals)
	}
	if req.Summary.RecentMood == nil || req.Summary.RecentMood.MoodText != models.MoodCalm {
		t.Errorf("recent mood = %+v", req.Summary.RecentMood)
	}
	if req.Record.Password != "" || req.Record.ChatHistory != nil {
		t.Error("request record should carry neither credential nor chat history")
	}
	if rec.Password == "" {
		t.Error("NewRequest mutated the caller's record")
	}

	empty := Summarize(models.UserRecord{})
	if empty.RecentMood != nil || empty.GoalsCount != 0 {
		t.Errorf("Summarize(empty) = %+v", empty)
	}
}

func TestSuggestedPrompts(t *testing.T) {
	if got := SuggestedPrompts(models.UserRecord{}); len(got) != 2 {
		t.Errorf("empty record prompts = %v", got)
	}
	got := SuggestedPrompts(sampleRecord())
	if len(got) != 5 || got[0] != "Summarize my goals." {
		t.Errorf("prompts = %v", got)
	}
}

func TestReflectionPrompt(t *testing.T) {
	p := ReflectionPrompt()
	found := false
	for _, candidate := range ReflectionPrompts() {
		if candidate == p {
			found = true
		}
	}
	if !found {
		t.Errorf("ReflectionPrompt() = %q is not a known prompt", p)
	}
}
