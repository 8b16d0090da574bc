package cmd

import (
	"github.com/hfconf/hfconf/internal/analysis"
	"github.com/hfconf/hfconf/internal/contract"
	"github.com/spf13/cobra"
)

// buildCmd assembles the fit model and hands it off.
var buildCmd = &cobra.Command{
	Use:   "build <analysis.yaml>",
	Short: "Assemble the fit model of an analysis and write its description.",
	Long: `Load an analysis file, build every fit config and write the model
description that the fitting engine consumes.

The build:
- Applies sample operations in file order, so later normalization calls win
- Rejects invalid yields, systematics, channels and measurements with the file position
- Lists consistency findings next to the model
- Removes the stale engine workspace (data/<analysis>.root) when the analysis
  asks the engine to rebuild it, unless --keep-workspace is set
- Records the run and its yields when --runs-backend is set

Examples:
  # Human-readable overview
  hfconf build analysis.yaml --detail

  # Engine-facing model description
  hfconf build analysis.yaml --output json --output-file model.json

  # Per-bin yields for pandas or DuckDB
  hfconf build analysis.yaml --output parquet --output-file yields.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := analysis.ExecuteBuild(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot build analysis", err)
		}
	},
}
