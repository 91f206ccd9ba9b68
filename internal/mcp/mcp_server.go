// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the debtlens MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Debtlens Analysis Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("list_repositories",
		mcp.WithDescription("List the repositories with a mined dataset, split into analysed and excluded ones."),
	), h.handleListRepositories)

	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Run the technical debt pipeline for one repository: trend, seasonality, correlation and causality."),
		mcp.WithString("repo", mcp.Description("Repository name as used in the dataset file names (owner.repo)."), mcp.Required()),
		mcp.WithString("seasonality_test", mcp.Description("Seasonality test variant. Defaults to the configured one."), mcp.Enum("combined", "qs", "kw")),
		mcp.WithBoolean("plots", mcp.Description("Render the charts of the repository into the output directory.")),
	), h.handleAnalyzeRepository)

	s.AddTool(mcp.NewTool("get_hotspots",
		mcp.WithDescription("Rank the non-merge commits of a repository by the technical debt they introduced or removed."),
		mcp.WithString("repo", mcp.Description("Repository name as used in the dataset file names (owner.repo)."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of hotspots returned.")),
	), h.handleGetHotspots)

	return s
}

// StartMCPServer starts the debtlens MCP server on standard input and output.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
