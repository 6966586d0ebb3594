package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/session"
	"github.com/julianstephens/soulsync/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	sess, err := session.New(username, ctx.Records, ctx.Assistant)
	if err != nil {
		return err
	}

	m := tui.New(tui.Config{
		Records:   ctx.Records,
		Session:   sess,
		Reflector: ctx.Assistant,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
