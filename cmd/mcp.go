package cmd

import (
	"github.com/hfconf/hfconf/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [analysis.yaml]",
	Short: "Start the hfconf MCP server",
	Long:  `Launch an MCP server that allows AI agents to describe and check analysis files via standard tools.`,
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(_ *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, args, true)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
