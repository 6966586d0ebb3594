package system

import (
	"fmt"

	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/mcp"
)

// McpCmd serves the logged-in user's records to MCP clients over stdio.
// Nothing may be printed to stdout while it runs.
type McpCmd struct{}

func (c *McpCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}

	srv := mcp.NewSoulSyncMCPServer(ctx.Records, username)
	logger.Info("Starting MCP server", "username", username)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	logger.Info("MCP server stopped")
	return nil
}
