// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
)

// ToolAnalyzeAuthor is the name of the analysis tool.
const ToolAnalyzeAuthor = "analyze_author"

// NewMCPServer initializes and configures the codemod MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Code Modification Analyzer",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
	}

	s.AddTool(mcp.NewTool(ToolAnalyzeAuthor,
		mcp.WithDescription("Summarize how many lines an author added and deleted in a git repository, with the most modified files."),
		mcp.WithString("author", mcp.Description("Case-insensitive regular expression searched in commit author names."), mcp.Required()),
		mcp.WithString("repo", mcp.Description("Local path or remote URL of the repository (defaults to the server's repository).")),
		mcp.WithString("branch", mcp.Description("Branch to analyze. Falls back to main, master, develop, dev, then the first branch.")),
		mcp.WithString("start_date", mcp.Description("Inclusive start date, YYYY-MM-DD.")),
		mcp.WithString("end_date", mcp.Description("Inclusive end date, YYYY-MM-DD.")),
		mcp.WithString("files", mcp.Description("Comma-separated file paths or '*' wildcard patterns.")),
		mcp.WithNumber("limit", mcp.Description("Number of top files to return (default 10).")),
	), h.handleAnalyzeAuthor)

	return s
}

// StartMCPServer serves the codemod MCP server over stdio until the client disconnects.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.GitClient, version string) error {
	s := NewMCPServer(baseCfg, client, version)
	return server.ServeStdio(s)
}
