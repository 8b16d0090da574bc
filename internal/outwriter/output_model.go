package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/internal/parquet"
	"github.com/hfconf/hfconf/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintModel outputs the assembled model, dispatching based on the output format configured.
func PrintModel(model schema.ModelSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote model description"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYieldsCSV(w, model.FlattenYields(), fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("parquet output requires --output-file")
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteYields(w, parquet.ConvertYieldRows(model.FlattenYields()))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteModelTable(w, model, cfg, duration)
		}, "Wrote table"); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// writeYieldsCSV writes one row per histogram bin.
func writeYieldsCSV(w io.Writer, rows []schema.YieldRow, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"fit_config", "sample", "is_data", "region", "channel", "bin", "yield", "stat_error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			statErr := ""
			if r.HasError {
				statErr = fmtFloat(r.StatError)
			}
			rec := []string{
				r.FitConfig,
				r.Sample,
				strconv.FormatBool(r.IsData),
				r.Region,
				r.Channel,
				fmt.Sprintf(intFmt, r.Bin),
				fmtFloat(r.Yield),
				statErr,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteModelTable renders the human-readable model report: the run options,
// the region cuts, then one block per fit config.
func WriteModelTable(w io.Writer, model schema.ModelSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "%sAnalysis %s -> %s\n", contract.StatusPrefix(cfg, "🧪"), model.Analysis.Name, model.Analysis.OutputFileName); err != nil {
		return err
	}
	if err := writeOptionsTable(w, model.Analysis); err != nil {
		return err
	}
	if err := writeCutsTable(w, model.Analysis, cfg); err != nil {
		return err
	}

	samples := 0
	for _, fc := range model.FitConfigs {
		samples += len(fc.Samples)
		if err := writeFitConfigBlock(w, fc, cfg, fmtFloat); err != nil {
			return err
		}
	}

	if len(model.Findings) > 0 {
		if _, err := fmt.Fprintf(w, "\n%sFindings\n", contract.StatusPrefix(cfg, "🔎")); err != nil {
			return err
		}
		if err := writeFindingsTable(w, model.Findings, cfg); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Built %d fit configs with %d samples in %v (%d findings). Run backend: %s\n",
		len(model.FitConfigs), samples, duration, len(model.Findings), cfg.RunsBackend)
	return err
}

func writeOptionsTable(w io.Writer, opts schema.AnalysisOptions) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Option", "Value"})
	data := [][]string{
		{"doExclusion", yesNo(opts.DoExclusion)},
		{"calculatorType", fmt.Sprintf("%d (%s)", opts.Calculator, opts.Calculator)},
		{"testStatType", fmt.Sprintf("%d (%s)", opts.TestStat, opts.TestStat)},
		{"nPoints", strconv.Itoa(opts.NPoints)},
		{"nToys", strconv.Itoa(opts.NToys)},
		{"blindSR", yesNo(opts.BlindSR)},
		{"writeXML", yesNo(opts.WriteXML)},
		{"autoScan", yesNo(opts.AutoScan)},
		{"keepSignalRegionType", yesNo(opts.KeepSignalRegionType)},
		{"executeHistFactory", yesNo(opts.ExecuteHistFactory)},
		{"weights", opts.Weights},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeCutsTable(w io.Writer, opts schema.AnalysisOptions, cfg *contract.Config) error {
	if len(opts.Cuts) == 0 {
		return nil
	}
	regions := make([]string, 0, len(opts.Cuts))
	for region := range opts.Cuts {
		regions = append(regions, region)
	}
	slices.Sort(regions)

	maxWidth := GetMaxTableExprWidth(cfg)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Region", "Cut"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})
	var data [][]string
	for _, region := range regions {
		data = append(data, []string{region, contract.TruncateExpr(opts.Cuts[region], maxWidth)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeFitConfigBlock(w io.Writer, fc schema.FitConfigSummary, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "\n%sFit config %s\n", contract.StatusPrefix(cfg, "📦"), fc.Name); err != nil {
		return err
	}

	// Samples
	table := tablewriter.NewWriter(w)
	headers := []string{"Sample", "Kind", "Color", "Normalization", "Systematics", "Regions"}
	if cfg.Detail {
		headers = append(headers, "Yields")
	}
	table.Header(headers)
	var data [][]string
	for _, s := range fc.Samples {
		kind := contract.GetPlainSampleKind(s, fc.SignalSample)
		if cfg.UseColors {
			kind = contract.GetColorSampleKind(s, fc.SignalSample)
		}
		regions := make([]string, len(s.Histos))
		for i, h := range s.Histos {
			regions[i] = schema.RegionKey{Region: h.Region, Channel: h.Channel}.String()
		}
		systs := make([]string, len(s.Systematics))
		for i, sys := range s.Systematics {
			systs[i] = sys.Name
		}
		row := []string{
			s.Name,
			kind,
			s.ColorName,
			formatNormalization(s, fmtFloat),
			strings.Join(systs, ", "),
			strings.Join(regions, ", "),
		}
		if cfg.Detail {
			yields := make([]string, len(s.Histos))
			for i, h := range s.Histos {
				yields[i] = formatHisto(h, fmtFloat)
			}
			row = append(row, strings.Join(yields, "; "))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Channels
	if len(fc.Channels) > 0 {
		chTable := tablewriter.NewWriter(w)
		chTable.Header([]string{"Channel", "Regions", "Bins", "Low", "High", "Role"})
		var chData [][]string
		for _, ch := range fc.Channels {
			chData = append(chData, []string{
				ch.Name,
				strings.Join(ch.Regions, ", "),
				strconv.Itoa(ch.NBins),
				fmtFloat(ch.Low),
				fmtFloat(ch.High),
				string(ch.Role),
			})
		}
		if err := chTable.Bulk(chData); err != nil {
			return err
		}
		if err := chTable.Render(); err != nil {
			return err
		}
	}

	if m := fc.Measurement; m != nil {
		if _, err := fmt.Fprintf(w, "Measurement %s: lumi %s ± %s, POIs [%s]\n",
			m.Name, fmtFloat(m.Lumi), fmtFloat(m.LumiErr), strings.Join(m.POIs, ", ")); err != nil {
			return err
		}
		for _, ps := range m.ParamSettings {
			state := "floating"
			if ps.Constant {
				state = "constant"
			}
			if _, err := fmt.Fprintf(w, "  %s = %s (%s)\n", ps.Name, fmtFloat(ps.Value), state); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatNormalization describes how a sample is normalized.
func formatNormalization(s schema.SampleSummary, fmtFloat func(float64) string) string {
	var parts []string
	if nf := s.NormFactor; nf != nil {
		parts = append(parts, fmt.Sprintf("%s=%s [%s, %s]", nf.Name, fmtFloat(nf.Initial), fmtFloat(nf.Low), fmtFloat(nf.High)))
	}
	if s.NormByTheory {
		parts = append(parts, "theory")
	}
	if s.StatConfig {
		parts = append(parts, "stat")
	}
	if len(s.NormRegions) > 0 {
		regions := make([]string, len(s.NormRegions))
		for i, r := range s.NormRegions {
			regions[i] = r.String()
		}
		parts = append(parts, "norm regions "+strings.Join(regions, ", "))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

// formatHisto renders the yields of one region, with stat errors when recorded.
func formatHisto(h schema.HistoSummary, fmtFloat func(float64) string) string {
	key := schema.RegionKey{Region: h.Region, Channel: h.Channel}.String()
	if len(h.StatErrors) == 0 {
		return fmt.Sprintf("%s: %s", key, formatFloats(h.Yields, fmtFloat))
	}
	bins := make([]string, len(h.Yields))
	for i, y := range h.Yields {
		bins[i] = fmt.Sprintf("%s±%s", fmtFloat(y), fmtFloat(h.StatErrors[i]))
	}
	return fmt.Sprintf("%s: %s", key, strings.Join(bins, " "))
}
