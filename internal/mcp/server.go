package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/records"
)

// SoulSyncMCPServer exposes one user's records to MCP clients, read only.
type SoulSyncMCPServer struct {
	mcpServer *server.MCPServer
	records   *records.Service
	username  string
}

// NewSoulSyncMCPServer builds the server and registers every tool.
func NewSoulSyncMCPServer(svc *records.Service, username string) *SoulSyncMCPServer {
	s := server.NewMCPServer(
		"SoulSync MCP Server",
		constants.Version,
		server.WithLogging(),
		server.WithRecovery(),
	)

	srv := &SoulSyncMCPServer{
		mcpServer: s,
		records:   svc,
		username:  username,
	}
	srv.registerTools()
	return srv
}

// Start runs the stdio event loop until the client disconnects.
func (s *SoulSyncMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the underlying mcp-go server.
func (s *SoulSyncMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

func (s *SoulSyncMCPServer) registerTools() {
	s.mcpServer.AddTool(summaryTool, s.summaryHandler)
	s.mcpServer.AddTool(listGoalsTool, s.listGoalsHandler)
	s.mcpServer.AddTool(moodHistoryTool, s.moodHistoryHandler)
	s.mcpServer.AddTool(journalHistoryTool, s.journalHistoryHandler)
}
