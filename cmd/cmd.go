// Package cmd defines the command-line interface for hfconf.
package cmd

import (
	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in status lines (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of buildCmd to Viper
	buildCmd.Flags().Bool("detail", false, "Print per-region yields in table output")
	buildCmd.Flags().Bool("keep-workspace", false, "Keep a stale engine workspace instead of removing it")
	buildCmd.Flags().String("workspace-dir", "", "Directory holding the engine workspace (default \"data\")")
	if err := viper.BindPFlags(buildCmd.Flags()); err != nil {
		contract.LogFatal("Error binding build flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Bool("strict", false, "Fail when any warning is found")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
