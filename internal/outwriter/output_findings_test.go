package outwriter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFindingsReport(t *testing.T) {
	cfg := &contract.Config{Precision: 2}

	var buf bytes.Buffer
	require.NoError(t, WriteFindingsReport(&buf, nil, cfg, time.Millisecond))
	assert.Contains(t, buf.String(), "No findings")

	buf.Reset()
	require.NoError(t, WriteFindingsReport(&buf, testModel().Findings, cfg, time.Millisecond))
	output := buf.String()
	assert.Contains(t, output, "Warning")
	assert.Contains(t, output, "Info")
	assert.Contains(t, output, "SPlusB")
	assert.Contains(t, output, "2 findings (1 warnings)")
}

func TestWriteFindingsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFindingsCSV(&buf, testModel().Findings))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"warning", "SPlusB", "cuts[SR]", "region SR has no cut expression"}, records[1])
	assert.Equal(t, "", records[2][1])
}

func TestWriteFindingsJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFindingsJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPrintFindings(t *testing.T) {
	findings := testModel().Findings

	out := filepath.Join(t.TempDir(), "findings.json")
	require.NoError(t, PrintFindings(findings, &contract.Config{Output: schema.JSONOut, OutputFile: out}, time.Millisecond))
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"severity": "warning"`)

	err = PrintFindings(findings, &contract.Config{Output: schema.ParquetOut, OutputFile: out}, time.Millisecond)
	assert.Error(t, err)
}

func TestCountWarnings(t *testing.T) {
	assert.Equal(t, 0, CountWarnings(nil))
	assert.Equal(t, 1, CountWarnings(testModel().Findings))
}

func TestOutWriter(t *testing.T) {
	ow := NewOutWriter()
	out := filepath.Join(t.TempDir(), "model.csv")
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: out, Precision: 1}
	require.NoError(t, ow.WriteModel(testModel(), cfg, time.Millisecond))

	findingsOut := filepath.Join(t.TempDir(), "findings.txt")
	cfg = &contract.Config{Output: schema.TextOut, OutputFile: findingsOut}
	require.NoError(t, ow.WriteFindings(testModel().Findings, cfg, time.Millisecond))

	for _, p := range []string{out, findingsOut} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}
