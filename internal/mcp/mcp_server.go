// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/seeyebe/gmap/internal/contract"
)

// NewMCPServer initializes and configures the gmap MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, objects contract.ObjectStore) *server.MCPServer {
	s := server.NewMCPServer(
		"gmap Commit Stats Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		objects: objects,
	}

	s.AddTool(mcp.NewTool("fetch_commit_stats",
		mcp.WithDescription("Return per-file added and deleted line counts for every commit in a time range. Results are cached, so repeated calls are cheap."),
		mcp.WithString("since", mcp.Description("Oldest commit time: RFC3339, YYYY-MM-DD, 'N days ago' or a revision. Empty means unbounded.")),
		mcp.WithString("until", mcp.Description("Newest commit time, same formats as since. Empty means unbounded.")),
		mcp.WithBoolean("include_merges", mcp.Description("Include merge commits. Defaults to the server configuration.")),
		mcp.WithBoolean("include_binary", mcp.Description("Include binary files with zero line counts. Defaults to the server configuration.")),
	), h.handleFetchCommitStats)

	s.AddTool(mcp.NewTool("get_commit_info",
		mcp.WithDescription("Return author, date, title line and parents of one commit."),
		mcp.WithString("revision", mcp.Description("Commit id, branch, tag or any revision expression such as HEAD~2."), mcp.Required()),
	), h.handleGetCommitInfo)

	return s
}

// StartMCPServer serves the gmap MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, objects contract.ObjectStore) error {
	s := NewMCPServer(baseCfg, mgr, objects)
	return server.ServeStdio(s)
}
