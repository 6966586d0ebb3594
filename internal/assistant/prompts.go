package assistant

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/julianstephens/soulsync/internal/models"
)

const reflectionSystemPrompt = `You are a compassionate, empathetic companion. Respond to the user's journal entry with a short, gentle and supportive reflection focused on their emotional well-being. Reflect their feelings back rather than giving advice, unless they ask for it. If the entry is brief, you may close with one soft follow-up question.`

func chatSystemPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are SoulSync, a warm and emotionally intelligent wellness companion for %s.\n\n", req.Username)
	b.WriteString(`You help them with emotional wellness and personal growth by:
- reading their goals, mood log and journal entries
- offering empathetic, personal reflections and insights
- pointing out patterns and suggesting gentle next steps
- coaching them to reflect and decide for themselves
You can only read their data. You never change or delete it.

`)

	b.WriteString("User data summary:\n")
	b.WriteString(indentJSON(req.Summary))
	b.WriteString("\n\nUser data (context only, do not quote large sections unless asked):\n")
	b.WriteString(indentJSON(req.Record))

	if len(req.RecentJournals) > 0 {
		b.WriteString("\n\nRecent journal entries:\n")
		for i, j := range req.RecentJournals {
			if i > 0 {
				b.WriteString("\n---\n")
			}
			date := j.Date
			if date == "" {
				date = "N/A"
			}
			fmt.Fprintf(&b, "Date: %s\nContent: %s", date, j.Content)
		}
	}

	b.WriteString(`

Guidelines:
- Be warm, thoughtful and human.
- Explain insights clearly; keep answers concise.
- Ask a reflective question when it helps.
- If a question is unclear, gently ask for clarification.
- You are not a substitute for professional medical or psychological care.`)

	return b.String()
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

var reflectionPrompts = []string{
	"What's on your mind today?",
	"How are you truly feeling right now?",
	"What's one thing you're grateful for today?",
	"What challenged you today, and how did you overcome it?",
	"If you could tell your past self one thing, what would it be?",
	"What is one small victory you had today?",
	"What are you looking forward to tomorrow?",
}

// ReflectionPrompt returns a random journaling prompt.
func ReflectionPrompt() string {
	return reflectionPrompts[rand.IntN(len(reflectionPrompts))]
}

// ReflectionPrompts returns every journaling prompt.
func ReflectionPrompts() []string {
	return append([]string(nil), reflectionPrompts...)
}

// SuggestedPrompts offers quick questions that fit what the user has logged.
func SuggestedPrompts(rec models.UserRecord) []string {
	var out []string
	if len(rec.Goals) > 0 {
		out = append(out, "Summarize my goals.")
	}
	if len(rec.Moods) > 0 {
		out = append(out, "What's my recent mood trend?")
	}
	if len(rec.Journals) > 0 {
		out = append(out, "Tell me about my recent journal entries.")
	}
	return append(out,
		"Give me a general motivational message.",
		"How can I improve my well-being?",
	)
}
