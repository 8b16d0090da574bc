package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintFindings outputs lint findings, dispatching based on the output format configured.
func PrintFindings(findings []schema.LintFinding, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFindingsJSON(w, findings)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFindingsCSV(w, findings)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errors.New("parquet output is only available for build yields")
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteFindingsReport(w, findings, cfg, duration)
		}, "Wrote table"); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// WriteFindingsReport renders findings as a table followed by a summary line.
func WriteFindingsReport(w io.Writer, findings []schema.LintFinding, cfg *contract.Config, duration time.Duration) error {
	if len(findings) == 0 {
		_, err := fmt.Fprintf(w, "%sNo findings. Checked in %v\n", contract.StatusPrefix(cfg, "✅"), duration)
		return err
	}
	if err := writeFindingsTable(w, findings, cfg); err != nil {
		return err
	}
	warnings := CountWarnings(findings)
	_, err := fmt.Fprintf(w, "%d findings (%d warnings) in %v\n", len(findings), warnings, duration)
	return err
}

func writeFindingsTable(w io.Writer, findings []schema.LintFinding, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Severity", "Fit Config", "Subject", "Message"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})
	var data [][]string
	for _, f := range findings {
		label := contract.GetPlainSeverityLabel(f.Severity)
		if cfg.UseColors {
			label = contract.GetColorSeverityLabel(f.Severity)
		}
		fc := f.FitConfig
		if fc == "" {
			fc = "-"
		}
		data = append(data, []string{label, fc, f.Subject, f.Message})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeFindingsJSON(w io.Writer, findings []schema.LintFinding) error {
	if findings == nil {
		findings = []schema.LintFinding{}
	}
	return writeJSON(w, findings)
}

func writeFindingsCSV(w io.Writer, findings []schema.LintFinding) error {
	header := []string{"severity", "fit_config", "subject", "message"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range findings {
			if err := cw.Write([]string{string(f.Severity), f.FitConfig, f.Subject, f.Message}); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountWarnings returns the number of warning-level findings.
func CountWarnings(findings []schema.LintFinding) int {
	n := 0
	for _, f := range findings {
		if f.Severity == schema.SeverityWarning {
			n++
		}
	}
	return n
}
