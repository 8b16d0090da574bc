package analysis

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/internal/outwriter"
)

// ExecuteBuild assembles the analysis, clears the stale engine workspace and
// writes the model description in the configured format.
func ExecuteBuild(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	out, err := Assemble(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	removed, err := ClearStaleWorkspace(out.Registry, cfg)
	if err != nil {
		return fmt.Errorf("cannot prepare engine workspace: %w", err)
	}
	if removed != "" {
		_, _ = fmt.Fprintf(os.Stderr, "%sRemoved stale workspace %s\n", contract.StatusPrefix(cfg, "🧹"), removed)
	}
	if out.RunID > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "%sRecorded run %d\n", contract.StatusPrefix(cfg, "📝"), out.RunID)
	}

	return outwriter.NewOutWriter().WriteModel(out.Model, cfg, time.Since(start))
}

// ExecuteCheck writes the lint findings of the analysis. In strict mode any
// warning fails the check.
func ExecuteCheck(_ context.Context, cfg *contract.Config) error {
	start := time.Now()

	findings, err := Check(cfg.AnalysisPath)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteFindings(findings, cfg, time.Since(start)); err != nil {
		return err
	}

	if n := outwriter.CountWarnings(findings); cfg.Strict && n > 0 {
		return fmt.Errorf("%d warnings in strict mode", n)
	}
	return nil
}

