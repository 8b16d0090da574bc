package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/internal/iocache"
	mcp_internal "github.com/hfconf/hfconf/internal/mcp"
	"github.com/hfconf/hfconf/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hfTestPath = filepath.Join("..", "analysis", "testdata", "hf_test.yaml")

func callTool(t *testing.T, mgr contract.StoreManager, baseCfg *contract.Config, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(baseCfg, mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestDescribeAnalysis(t *testing.T) {
	res := callTool(t, nil, &contract.Config{}, "describe_analysis", map[string]any{"analysis_path": hfTestPath})
	require.False(t, res.IsError, resultText(res))

	var model schema.ModelSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &model))
	assert.Equal(t, "hf_test", model.Analysis.Name)
	require.Len(t, model.FitConfigs, 1)
	assert.Equal(t, "Sig", model.FitConfigs[0].SignalSample)
}

func TestDescribeAnalysis_DefaultPath(t *testing.T) {
	res := callTool(t, nil, &contract.Config{AnalysisPath: hfTestPath}, "describe_analysis", nil)
	assert.False(t, res.IsError)
}

func TestDescribeAnalysis_Errors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		res := callTool(t, nil, &contract.Config{}, "describe_analysis", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "analysis_path is required")
	})

	t.Run("unreadable file", func(t *testing.T) {
		res := callTool(t, nil, &contract.Config{}, "describe_analysis", map[string]any{"analysis_path": "missing.yaml"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "build failed")
	})
}

func TestCheckAnalysis(t *testing.T) {
	res := callTool(t, nil, &contract.Config{}, "check_analysis", map[string]any{"analysis_path": hfTestPath})
	require.False(t, res.IsError, resultText(res))

	var all []schema.LintFinding
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &all))

	res = callTool(t, nil, &contract.Config{}, "check_analysis", map[string]any{
		"analysis_path": hfTestPath,
		"severity":      "warning",
	})
	var warnings []schema.LintFinding
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &warnings))
	assert.LessOrEqual(t, len(warnings), len(all))
	for _, f := range warnings {
		assert.Equal(t, schema.SeverityWarning, f.Severity)
	}
}

func TestGetRunStatus(t *testing.T) {
	t.Run("tracking disabled", func(t *testing.T) {
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetRunStore").Return(nil)
		res := callTool(t, mgr, &contract.Config{}, "get_run_status", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "not enabled")
	})

	t.Run("status", func(t *testing.T) {
		store := &iocache.MockRunStore{}
		store.On("GetStatus").Return(schema.RunStoreStatus{Backend: "sqlite", Connected: true, TotalRuns: 3}, nil)
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetRunStore").Return(store)

		res := callTool(t, mgr, &contract.Config{}, "get_run_status", nil)
		require.False(t, res.IsError)
		var status schema.RunStoreStatus
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &status))
		assert.Equal(t, 3, status.TotalRuns)
	})

	t.Run("store error", func(t *testing.T) {
		store := &iocache.MockRunStore{}
		store.On("GetStatus").Return(schema.RunStoreStatus{}, errors.New("locked"))
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetRunStore").Return(store)

		res := callTool(t, mgr, &contract.Config{}, "get_run_status", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "locked")
	})
}

func TestDescribeAnalysis_NonFiniteParamSetting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nan.yaml")
	doc := "analysis: {name: x}\nfit_configs:\n  - name: SPlusB\n    measurement:\n      name: M\n      lumi: 1\n      param_settings: [{name: Lumi, value: .nan}]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	res := callTool(t, nil, &contract.Config{}, "describe_analysis", map[string]any{"analysis_path": path})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "non-finite")
}
