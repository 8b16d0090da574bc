package cmd

import (
	"fmt"

	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/internal/iocache"
	"github.com/hfconf/hfconf/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackendConfig reads the run store settings without the full shared setup.
func runsBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := readConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run store operations.
func runsSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}

	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsMigrateSetup does NOT initialize stores or create tables, so migrations
// run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	return nil
}

// runsCmd focused on run tracking data management.
//
// Note: runs subcommands use minimal initialization instead of the full
// sharedSetup, since they need no analysis file.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage recorded build runs and exports",
	Long: `Manage the history of build runs.

When --runs-backend is set, every build stores:
- Run metadata (analysis, timestamps, configuration, duration)
- Counts of fit configs, samples and findings
- Every handed-off yield bin with its stat error

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export runs and yields to Parquet
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  hfconf runs status --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  hfconf runs export --runs-backend sqlite --output-file history`,
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run tracking statistics and connection details",
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("run store is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(status)
	},
}

// runsExportCmd exports recorded runs to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs and yields to Parquet",
	Long: `Export all recorded runs to Parquet format.

Writes two files next to --output-file:
- <output-file>.runs.parquet - one row per build
- <output-file>.yields.parquet - one row per handed-off yield bin

Examples:
  hfconf runs export --runs-backend sqlite --output-file history
  duckdb -c "SELECT sample, avg(yield) FROM read_parquet('history.yields.parquet') GROUP BY sample"`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export runs", err)
		}
	},
}

// runsClearCmd clears the run data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete all stored runs and yields.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  hfconf runs export --runs-backend sqlite --output-file backup
  hfconf runs clear --runs-backend sqlite`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := cfg.RunsDBConnect
		if dbFilePath == "" {
			dbFilePath = contract.GetRunsDBFilePath()
		}
		if err := iocache.ClearRuns(cfg.RunsBackend, dbFilePath, cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  hfconf runs migrate --runs-backend postgresql --runs-db-connect "host=localhost dbname=hfconf"

  # Rollback to the initial state
  hfconf runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
