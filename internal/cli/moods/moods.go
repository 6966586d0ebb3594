package moods

import (
	"fmt"
	"strings"

	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/models"
)

type MoodCmd struct {
	Log     MoodLogCmd     `cmd:"" help:"Log how you feel right now."`
	History MoodHistoryCmd `cmd:"" help:"Show recent moods, newest first." default:"1"`
}

type MoodLogCmd struct {
	Label       string `arg:"" optional:"" help:"Mood (Happy, Sad, Angry, Stressed, Anxious, Excited, Neutral, Calm, Energized). Opens a form when omitted."`
	Description string `short:"d" help:"A few words about why."`
	Emoji       string `help:"Override the emoji shown with the mood."`
}

func (c *MoodLogCmd) Validate() error {
	if c.Label == "" {
		return nil
	}
	if _, ok := models.ParseMoodLabel(c.Label); !ok {
		return fmt.Errorf("unknown mood %q (choose one of %s)", c.Label, labelList())
	}
	return nil
}

func (c *MoodLogCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}

	fm := cli.MoodFormModel{Label: models.MoodLabel(c.Label), Description: c.Description}
	if c.Label == "" {
		fm = *cli.NewMoodFormModel()
		fm.Description = c.Description
		if err := cli.NewMoodForm(&fm).Run(); err != nil {
			return err
		}
	}
	return ctx.Report(ctx.Records.AddMood(username, fm.Label, c.Emoji, fm.Description))
}

type MoodHistoryCmd struct {
	Last int `short:"n" help:"Number of entries to show." default:"10"`
}

func (c *MoodHistoryCmd) Validate() error {
	if c.Last < 1 {
		return fmt.Errorf("--last must be at least 1")
	}
	return nil
}

func (c *MoodHistoryCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	history, err := ctx.Records.MoodHistory(username)
	if err != nil {
		return err
	}

	if len(history.Entries) == 0 {
		ctx.Println("No moods logged yet. Try 'soulsync mood log'.")
	} else {
		shown := history.Entries
		if c.Last > 0 && len(shown) > c.Last {
			shown = shown[:c.Last]
		}
		ctx.Printf("Recent moods (%d of %d):\n", len(shown), len(history.Entries))
		for _, m := range shown {
			line := fmt.Sprintf("  %s  %s %s", m.At.Format(constants.DisplayFormat), m.Entry.Emoji(), m.Entry.Label())
			if m.Entry.Description != "" {
				line += " - " + m.Entry.Description
			}
			ctx.Println(line)
		}
	}

	for _, skip := range history.Skipped {
		ctx.Printf("⚠ %s\n", skip.Error())
	}
	return nil
}

func labelList() string {
	names := make([]string, len(models.MoodLabels))
	for i, l := range models.MoodLabels {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}
