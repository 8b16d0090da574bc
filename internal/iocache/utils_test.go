package iocache

import (
	"testing"
	"time"

	"github.com/hfconf/hfconf/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"hfconf_runs", false},
		{"_private", false},
		{"Runs2", false},
		{"", true},
		{"1runs", true},
		{"runs; DROP TABLE x", true},
		{"runs-table", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`hfconf_runs`", quoteTableName("hfconf_runs", schema.MySQLBackend))
	assert.Equal(t, `"hfconf_runs"`, quoteTableName("hfconf_runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"hfconf_runs"`, quoteTableName("hfconf_runs", schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 0, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 4, 2))
	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 0, 3))
	assert.Equal(t, "$5", placeholders(schema.PostgreSQLBackend, 4, 1))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 123, time.FixedZone("X", 3600))
	s, ok := formatTime(ts, schema.SQLiteBackend).(string)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01T11:30:00.000000123Z", s)

	parsed, err := parseTime(s)
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	assert.Equal(t, ts, formatTime(ts, schema.PostgreSQLBackend))
}

func TestSchemaStatements(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		t.Run(string(backend), func(t *testing.T) {
			stmts, err := schemaStatements(backend)
			require.NoError(t, err)
			require.Len(t, stmts, 2)
			assert.Contains(t, stmts[0], runsTable)
			assert.Contains(t, stmts[1], yieldsTable)
			for _, stmt := range stmts {
				assert.NotContains(t, stmt, ";")
			}
		})
	}

	_, err := schemaStatements(schema.NoneBackend)
	assert.Error(t, err)
}
