package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hfconf/hfconf/internal/analysis"
	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// analysisPath returns the requested analysis file or the configured default.
func (h *toolHandler) analysisPath(request mcp.CallToolRequest) (string, error) {
	if p := request.GetString("analysis_path", ""); p != "" {
		return p, nil
	}
	if h.baseCfg != nil && h.baseCfg.AnalysisPath != "" {
		return h.baseCfg.AnalysisPath, nil
	}
	return "", errors.New("analysis_path is required")
}

func (h *toolHandler) handleDescribeAnalysis(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := h.analysisPath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reg, err := analysis.LoadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}

	return jsonResult(reg.Summary()), nil
}

func (h *toolHandler) handleCheckAnalysis(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := h.analysisPath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	findings, err := analysis.Check(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}

	filtered := []schema.LintFinding{}
	severity := schema.Severity(request.GetString("severity", ""))
	for _, f := range findings {
		if severity == "" || f.Severity == severity {
			filtered = append(filtered, f)
		}
	}

	return jsonResult(filtered), nil
}

func (h *toolHandler) handleGetRunStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil || h.mgr.GetRunStore() == nil {
		return mcp.NewToolResultError("run tracking is not enabled"), nil
	}

	status, err := h.mgr.GetRunStore().GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get run status: %v", err)), nil
	}

	return jsonResult(status), nil
}

// jsonResult renders v as an indented JSON tool result.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}
