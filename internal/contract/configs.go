package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hfconf/hfconf/core"
	"github.com/hfconf/hfconf/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 6
)

// Config holds the runtime configuration for a build.
// This struct remains the "final, validated" config.
type Config struct {
	AnalysisPath  string
	Output        schema.OutputMode
	OutputFile    string
	Precision     int
	Width         int // Terminal width override (0 = auto-detect)
	Detail        bool
	Strict        bool
	KeepWorkspace bool
	WorkspaceDir  string

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in status lines
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	AnalysisPathStr  string
	AnalysisOptional bool // The MCP server takes the analysis per tool call

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile    string `mapstructure:"output-file"`
	Precision     int    `mapstructure:"precision"`
	Output        string `mapstructure:"output"`
	Width         int    `mapstructure:"width"`
	RunsBackend   string `mapstructure:"runs-backend"`
	RunsDBConnect string `mapstructure:"runs-db-connect"`
	Emoji         string `mapstructure:"emoji"`
	Color         string `mapstructure:"color"`

	// --- Fields from buildCmd.Flags() ---
	Detail        bool   `mapstructure:"detail"`
	KeepWorkspace bool   `mapstructure:"keep-workspace"`
	WorkspaceDir  string `mapstructure:"workspace-dir"`

	// --- Fields from checkCmd.Flags() ---
	Strict bool `mapstructure:"strict"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := resolveAnalysisPath(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the run store backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		cfg.RunsBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	return ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect)
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Detail = input.Detail
	cfg.Strict = input.Strict
	cfg.KeepWorkspace = input.KeepWorkspace
	cfg.WorkspaceDir = input.WorkspaceDir
	if cfg.WorkspaceDir == "" {
		cfg.WorkspaceDir = core.DefaultWorkspaceDir
	}

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	if input.Width < 0 {
		return fmt.Errorf("width must not be negative (received %d)", input.Width)
	}
	return nil
}

// resolveAnalysisPath makes the analysis file path absolute and checks it is a readable file.
func resolveAnalysisPath(cfg *Config, input *ConfigRawInput) error {
	if input.AnalysisPathStr == "" {
		if input.AnalysisOptional {
			return nil
		}
		return fmt.Errorf("an analysis file is required")
	}
	absPath, err := filepath.Abs(input.AnalysisPathStr)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot read analysis file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("analysis path %s is a directory", absPath)
	}
	cfg.AnalysisPath = absPath
	return nil
}
