package chat

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/julianstephens/soulsync/internal/assistant"
	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/session"
)

type ChatCmd struct {
	Ask     ChatAskCmd     `cmd:"" help:"Ask the assistant a question." default:"withargs"`
	History ChatHistoryCmd `cmd:"" help:"Show the conversation so far."`
	Suggest ChatSuggestCmd `cmd:"" help:"Suggest questions to ask."`
}

type ChatAskCmd struct {
	Message []string `arg:"" help:"Your message."`
}

func (c *ChatAskCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	sess, err := session.New(username, ctx.Records, ctx.Assistant)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ex, err := sess.Ask(runCtx, strings.Join(c.Message, " "))
	if err != nil {
		if errors.Is(err, session.ErrEmptyQuery) {
			return &cli.RejectedError{Message: "Please type a message first."}
		}
		return err
	}
	if ex.Failed {
		ctx.Println(ex.Notice)
		return nil
	}
	ctx.Println(ex.Reply)
	return nil
}

type ChatHistoryCmd struct {
	Last int `short:"n" help:"Number of messages to show (0 for all)." default:"20"`
}

func (c *ChatHistoryCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	history, err := ctx.Records.ChatHistory(username)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		ctx.Println("No conversation yet. Try 'soulsync chat ask How are you?'.")
		return nil
	}

	shown := history
	if c.Last > 0 && len(shown) > c.Last {
		shown = shown[len(shown)-c.Last:]
	}
	for _, m := range shown {
		who := "You"
		if m.Role == models.RoleAssistant {
			who = "SoulSync"
		}
		ctx.Printf("%s: %s\n", who, m.Content)
		if m.ReplyError != "" {
			ctx.Printf("  (no reply: %s)\n", m.ReplyError)
		}
	}
	return nil
}

type ChatSuggestCmd struct{}

func (c *ChatSuggestCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	rec, _, err := ctx.Records.Record(username)
	if err != nil {
		return err
	}
	ctx.Println("Try asking:")
	for _, p := range assistant.SuggestedPrompts(rec) {
		ctx.Printf("  • %s\n", p)
	}
	return nil
}
