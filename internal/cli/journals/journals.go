package journals

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/soulsync/internal/assistant"
	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/constants"
)

type JournalCmd struct {
	Write   JournalWriteCmd   `cmd:"" help:"Write a journal entry."`
	History JournalHistoryCmd `cmd:"" help:"Show recent entries, newest first." default:"1"`
	Reflect JournalReflectCmd `cmd:"" help:"Ask the assistant to reflect on an entry."`
	Prompt  JournalPromptCmd  `cmd:"" help:"Show a writing prompt."`
}

type JournalWriteCmd struct {
	Content string `arg:"" optional:"" help:"Entry text (opens an editor form when omitted)."`
	Reflect bool   `short:"r" help:"Ask the assistant for a reflection after saving."`
}

func (c *JournalWriteCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}

	content := c.Content
	if strings.TrimSpace(content) == "" {
		if err := cli.NewJournalForm(&content, assistant.ReflectionPrompt()).Run(); err != nil {
			return err
		}
	}
	if err := ctx.Report(ctx.Records.AddJournalEntry(username, content)); err != nil {
		return err
	}
	if c.Reflect {
		showReflection(ctx, content)
	}
	return nil
}

type JournalHistoryCmd struct {
	Last int `short:"n" help:"Number of entries to show." default:"5"`
}

func (c *JournalHistoryCmd) Validate() error {
	if c.Last < 1 {
		return fmt.Errorf("--last must be at least 1")
	}
	return nil
}

func (c *JournalHistoryCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	history, err := ctx.Records.JournalHistory(username)
	if err != nil {
		return err
	}

	if len(history.Entries) == 0 {
		ctx.Println("Your journal is empty. Start with 'soulsync journal write'.")
	} else {
		shown := history.Entries
		if len(shown) > c.Last {
			shown = shown[:c.Last]
		}
		for i, j := range shown {
			if i > 0 {
				ctx.Println()
			}
			ctx.Printf("── %s ──\n", j.At.Format(constants.DisplayFormat))
			ctx.Println(j.Entry.Content)
		}
	}

	for _, skip := range history.Skipped {
		ctx.Printf("⚠ %s\n", skip.Error())
	}
	return nil
}

type JournalReflectCmd struct {
	Text string `arg:"" optional:"" help:"Text to reflect on (defaults to your latest entry)."`
}

func (c *JournalReflectCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}

	text := strings.TrimSpace(c.Text)
	if text == "" {
		history, err := ctx.Records.JournalHistory(username)
		if err != nil {
			return err
		}
		if len(history.Entries) == 0 {
			return &cli.RejectedError{Message: "Please write something before asking for a reflection."}
		}
		text = history.Entries[0].Entry.Content
	}
	showReflection(ctx, text)
	return nil
}

// showReflection prints the assistant's reflection, or the failure notice inline.
func showReflection(ctx *cli.Context, text string) {
	reply, err := ctx.Assistant.Reflect(context.Background(), text)
	if err != nil {
		ctx.Printf("\n%s\n", cli.AssistantNotice(err))
		return
	}
	ctx.Printf("\n💭 AI Reflection\n%s\n", reply)
}

type JournalPromptCmd struct {
	All bool `help:"List every prompt."`
}

func (c *JournalPromptCmd) Run(ctx *cli.Context) error {
	if c.All {
		for _, p := range assistant.ReflectionPrompts() {
			ctx.Printf("  • %s\n", p)
		}
		return nil
	}
	ctx.Println(assistant.ReflectionPrompt())
	return nil
}
