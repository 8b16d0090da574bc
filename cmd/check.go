package cmd

import (
	"github.com/hfconf/hfconf/internal/analysis"
	"github.com/hfconf/hfconf/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD validation of analysis files.
var checkCmd = &cobra.Command{
	Use:   "check <analysis.yaml>",
	Short: "Validate an analysis file and list consistency findings (fails with --strict).",
	Long: `Build an analysis without handing it off and report what the builders cannot
reject on their own:
- Regions used by channels without a cut expression
- Samples without yields in a channel region
- Shape systematics whose bins disagree with the yields
- Norm factors replaced by normalize-by-theory and vice versa
- Fit configs without measurement, POI or data sample

Examples:
  # Review findings
  hfconf check analysis.yaml

  # Gate a pipeline on warnings
  hfconf check analysis.yaml --strict`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := analysis.ExecuteCheck(rootCtx, cfg); err != nil {
			contract.LogFatal("Analysis check failed", err)
		}
	},
}
