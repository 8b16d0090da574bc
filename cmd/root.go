package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/internal/iocache"
	"github.com/hfconf/hfconf/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// storeManager is the global persistence manager instance.
var storeManager contract.StoreManager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "hfconf",
	Short:              "Assemble and check statistical-fit configurations.",
	Long:               `hfconf turns a declarative analysis file into a validated fit model and hands it to the fitting engine.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".hfconf") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("HFCONF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", string(schema.TextOut))
	viper.SetDefault("runs-backend", "")
	viper.SetDefault("runs-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("emoji", "no")
}

// readConfigFile merges the config file into Viper. A missing file is fine.
func readConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, args []string, analysisOptional bool) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := readConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	input.AnalysisPathStr = ""
	if len(args) == 1 {
		input.AnalysisPathStr = args[0]
	}
	input.AnalysisOptional = analysisOptional

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	color.NoColor = color.NoColor || !cfg.UseColors

	// 5. Initialize persistence layer with validated config
	if err := iocache.InitStores(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(_ *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, args, false)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetStoreManager sets the global store manager.
func SetStoreManager(mgr contract.StoreManager) {
	storeManager = mgr
}
