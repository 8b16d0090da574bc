package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hfconf/hfconf/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAnalysisFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis: {name: test}\n"), 0o644))
	return path
}

func TestProcessAndValidate(t *testing.T) {
	analysisPath := writeAnalysisFile(t)
	valid := func() *ConfigRawInput {
		return &ConfigRawInput{
			AnalysisPathStr: analysisPath,
			Precision:       2,
			Output:          "text",
			Emoji:           "no",
			Color:           "yes",
		}
	}

	tests := []struct {
		name        string
		mutate      func(in *ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "json output", mutate: func(in *ConfigRawInput) { in.Output = "JSON" }},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "parquet with file", mutate: func(in *ConfigRawInput) { in.Output = "parquet"; in.OutputFile = "out.parquet" }},
		{name: "invalid output format", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "invalid precision (zero)", mutate: func(in *ConfigRawInput) { in.Precision = 0 }, expectError: true},
		{name: "invalid precision (too high)", mutate: func(in *ConfigRawInput) { in.Precision = MaxPrecision + 1 }, expectError: true},
		{name: "negative width", mutate: func(in *ConfigRawInput) { in.Width = -1 }, expectError: true},
		{name: "invalid emoji", mutate: func(in *ConfigRawInput) { in.Emoji = "maybe" }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "" }, expectError: true},
		{name: "invalid runs backend", mutate: func(in *ConfigRawInput) { in.RunsBackend = "redis" }, expectError: true},
		{name: "sqlite runs backend", mutate: func(in *ConfigRawInput) { in.RunsBackend = "SQLite" }},
		{name: "mysql without connection", mutate: func(in *ConfigRawInput) { in.RunsBackend = "mysql" }, expectError: true},
		{
			name: "mysql with connection",
			mutate: func(in *ConfigRawInput) {
				in.RunsBackend = "mysql"
				in.RunsDBConnect = "user:pass@tcp(localhost:3306)/hfconf"
			},
		},
		{name: "missing analysis path", mutate: func(in *ConfigRawInput) { in.AnalysisPathStr = "" }, expectError: true},
		{name: "analysis path does not exist", mutate: func(in *ConfigRawInput) { in.AnalysisPathStr = analysisPath + ".missing" }, expectError: true},
		{name: "analysis path is a directory", mutate: func(in *ConfigRawInput) { in.AnalysisPathStr = filepath.Dir(analysisPath) }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, analysisPath, cfg.AnalysisPath)
		})
	}
}

func TestProcessAndValidate_OptionalAnalysis(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, &ConfigRawInput{
		AnalysisOptional: true,
		Precision:        DefaultPrecision,
		Output:           "json",
		Emoji:            "no",
		Color:            "no",
	})
	require.NoError(t, err)
	assert.Empty(t, cfg.AnalysisPath)
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	input := &ConfigRawInput{
		AnalysisPathStr: writeAnalysisFile(t),
		Precision:       DefaultPrecision,
		Output:          "csv",
		Emoji:           "0",
		Color:           "false",
		Strict:          true,
	}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.NoneBackend, cfg.RunsBackend)
	assert.Equal(t, schema.CSVOut, cfg.Output)
	assert.Equal(t, "data", cfg.WorkspaceDir)
	assert.True(t, cfg.Strict)
	assert.False(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(127.0.0.1:3306)/runs", false},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@127.0.0.1/runs", true},
		{"mysql missing db", schema.MySQLBackend, "root:pw@tcp(127.0.0.1:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=runs", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=runs", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{AnalysisPath: "/a.yaml", Precision: 3}
	clone := cfg.Clone()
	clone.Precision = 5
	assert.Equal(t, 3, cfg.Precision)
	assert.Equal(t, "/a.yaml", clone.AnalysisPath)
}
