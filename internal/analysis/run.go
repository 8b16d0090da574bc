package analysis

import (
	"context"
	"time"

	"github.com/hfconf/hfconf/core"
	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/schema"
)

// Output is an assembled analysis ready for hand-off.
type Output struct {
	Registry *core.Registry
	Model    schema.ModelSummary
	RunID    int64 // zero when run tracking is disabled or failed
}

// Assemble loads the analysis named by cfg, validates it and records the
// hand-off in the run store when one is configured. Tracking failures are
// logged and never fail the build.
func Assemble(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	reg, err := LoadFile(cfg.AnalysisPath)
	if err != nil {
		return nil, err
	}
	out := &Output{Registry: reg, Model: reg.Summary()}

	var runStore contract.RunStore
	if mgr != nil {
		runStore = mgr.GetRunStore()
	}
	if runStore == nil {
		return out, nil
	}

	configParams := map[string]any{
		"analysis_path": cfg.AnalysisPath,
		"output":        string(cfg.Output),
		"output_file":   cfg.OutputFile,
		"precision":     cfg.Precision,
		"strict":        cfg.Strict,
	}
	runID, err := runStore.BeginRun(startTime, reg.AnalysisName, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return out, nil
	}
	if runID <= 0 {
		return out, nil
	}
	out.RunID = runID

	if err := runStore.RecordYields(runID, out.Model.FlattenYields()); err != nil {
		contract.LogWarn("Failed to record yields", err)
	}
	if err := runStore.EndRun(runID, time.Now(), runCounts(out.Model)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
	return out, nil
}

func runCounts(m schema.ModelSummary) schema.RunCounts {
	counts := schema.RunCounts{FitConfigs: len(m.FitConfigs), Findings: len(m.Findings)}
	for _, fc := range m.FitConfigs {
		counts.Samples += len(fc.Samples)
	}
	return counts
}

// Check loads the analysis at path and returns its lint findings.
func Check(path string) ([]schema.LintFinding, error) {
	reg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return core.Lint(reg), nil
}

// ClearStaleWorkspace removes the engine workspace left by a previous run so
// the engine rebuilds it from the new model. It does nothing unless the
// analysis asks for the engine to build its workspace. It returns the removed path.
func ClearStaleWorkspace(reg *core.Registry, cfg *contract.Config) (string, error) {
	if !reg.ExecuteHistFactory || cfg.KeepWorkspace {
		return "", nil
	}
	path := reg.StaleWorkspacePath(cfg.WorkspaceDir)
	removed, err := contract.RemoveStaleWorkspace(path)
	if err != nil || !removed {
		return "", err
	}
	return path, nil
}
