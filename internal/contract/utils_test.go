package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hfconf/hfconf/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityLabels(t *testing.T) {
	assert.Equal(t, "Warning", GetPlainSeverityLabel(schema.SeverityWarning))
	assert.Equal(t, "Info", GetPlainSeverityLabel(schema.SeverityInfo))
	assert.Contains(t, GetColorSeverityLabel(schema.SeverityWarning), "Warning")
	assert.Contains(t, GetColorSeverityLabel(schema.SeverityInfo), "Info")
}

func TestSampleKindLabels(t *testing.T) {
	tests := []struct {
		name     string
		sample   schema.SampleSummary
		expected string
	}{
		{"data", schema.SampleSummary{Name: "Data", IsData: true}, DataValue},
		{"signal", schema.SampleSummary{Name: "Sig"}, SignalValue},
		{"background", schema.SampleSummary{Name: "Bkg"}, BkgValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainSampleKind(tt.sample, "Sig"))
			assert.Contains(t, GetColorSampleKind(tt.sample, "Sig"), tt.expected)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestRemoveStaleWorkspace(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		removed, err := RemoveStaleWorkspace(filepath.Join(dir, "hf_test.root"))
		assert.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(dir, "MyUserAnalysis.root")
		require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

		removed, err := RemoveStaleWorkspace(path)
		require.NoError(t, err)
		assert.True(t, removed)
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := RemoveStaleWorkspace(dir)
		assert.Error(t, err)
	})
}

func TestGetRunsDBFilePath(t *testing.T) {
	path := GetRunsDBFilePath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, ".hfconf_runs.db")

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, homeDir), "path %s should start with home dir %s", path, homeDir)
}

func TestTruncateExpr(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		width    int
		expected string
	}{
		{"short", "1.", 10, "1."},
		{"exact", "met > 200", 9, "met > 200"},
		{"long", "met > 200 && nJet >= 4", 12, "met > 200..."},
		{"tiny width", "met > 200", 3, "met > 200"},
		{"unicode", "ηLep1 < 2.5", 6, "ηLe..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateExpr(tt.expr, tt.width))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		b, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, b)
	}
	for _, s := range []string{"no", "False", "0"} {
		b, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, b)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestStatusPrefix(t *testing.T) {
	assert.Equal(t, "", StatusPrefix(&Config{}, "✅"))
	assert.Equal(t, "✅ ", StatusPrefix(&Config{UseEmojis: true}, "✅"))
}
