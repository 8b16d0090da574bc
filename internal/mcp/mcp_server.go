// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/hfconf/hfconf/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the hfconf MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"hfconf Fit Configuration Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: describe_analysis ---
	s.AddTool(mcp.NewTool("describe_analysis",
		mcp.WithDescription("Build an analysis file and return the model description handed to the fitting engine."),
		mcp.WithString("analysis_path", mcp.Description("Path to the analysis YAML file (defaults to the configured analysis).")),
	), h.handleDescribeAnalysis)

	// --- 2. Tool: check_analysis ---
	s.AddTool(mcp.NewTool("check_analysis",
		mcp.WithDescription("Build an analysis file and list consistency findings such as regions without cuts or overridden normalizations."),
		mcp.WithString("analysis_path", mcp.Description("Path to the analysis YAML file (defaults to the configured analysis).")),
		mcp.WithString("severity", mcp.Description("Only return findings of this severity."), mcp.Enum("warning", "info")),
	), h.handleCheckAnalysis)

	// --- 3. Tool: get_run_status ---
	s.AddTool(mcp.NewTool("get_run_status",
		mcp.WithDescription("Report the run store backend and how many builds it has recorded."),
	), h.handleGetRunStatus)

	return s
}

// StartMCPServer starts the hfconf MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
