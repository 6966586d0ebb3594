package system

import (
	"errors"
	"fmt"
	"sort"

	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/storage"
)

// ImportCmd copies users from another store into the configured one in a
// single load/save cycle.
type ImportCmd struct {
	Source    string `required:"" help:"Store to import from (users.json, .db file or PostgreSQL connection string)."`
	Overwrite bool   `help:"Replace users that already exist in the destination."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	if c.Source == ctx.Store.GetConfigPath() || cli.ExpandHome(c.Source) == ctx.Store.GetConfigPath() {
		return errors.New("source and destination are the same store")
	}

	src, err := cli.OpenStore(c.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	incoming, err := src.Load()
	if err == nil {
		err = storage.LastLoadError(src)
	}
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}
	if len(incoming) == 0 {
		ctx.Println("Source store has no users; nothing to import.")
		return nil
	}

	dest, err := ctx.Store.Load()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(incoming))
	for name := range incoming {
		names = append(names, name)
	}
	sort.Strings(names)

	var imported, skipped, unreadable []string
	for _, name := range names {
		if incoming[name].Unreadable() {
			unreadable = append(unreadable, name)
			continue
		}
		if _, exists := dest[name]; exists && !c.Overwrite {
			skipped = append(skipped, name)
			continue
		}
		dest[name] = incoming[name]
		imported = append(imported, name)
	}

	if len(imported) > 0 {
		if err := ctx.Store.Save(dest); err != nil {
			return err
		}
	}

	ctx.Printf("✓ Imported %d user(s) from %s\n", len(imported), src.GetConfigPath())
	for _, name := range skipped {
		ctx.Printf("  skipped %s (already exists, use --overwrite to replace)\n", name)
	}
	for _, name := range unreadable {
		ctx.Printf("  skipped %s (stored record could not be read)\n", name)
	}
	return nil
}
