package system

import (
	"fmt"

	"github.com/julianstephens/soulsync/internal/cli"
)

type InitCmd struct {
	Source string `help:"Existing user store (users.json, .db file or PostgreSQL connection string) to copy users from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized soulsync storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		imp := &ImportCmd{Source: c.Source}
		if err := imp.Run(ctx); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
	}
	return nil
}
