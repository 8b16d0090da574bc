package schema

// ModelSummary is the render model of an assembled analysis. Its JSON form is
// the model description handed to the fitting engine.
type ModelSummary struct {
	Analysis   AnalysisOptions    `json:"analysis"`
	FitConfigs []FitConfigSummary `json:"fit_configs"`
	Findings   []LintFinding      `json:"findings,omitempty"`
}

// AnalysisOptions mirrors the registry's run-wide options.
type AnalysisOptions struct {
	Name                 string            `json:"name"`
	OutputFileName       string            `json:"output_file_name"`
	DoExclusion          bool              `json:"do_exclusion"`
	Calculator           CalculatorType    `json:"calculator_type"`
	TestStat             TestStatType      `json:"test_stat_type"`
	NPoints              int               `json:"n_points"`
	NToys                int               `json:"n_toys"`
	BlindSR              bool              `json:"blind_sr"`
	WriteXML             bool              `json:"write_xml"`
	AutoScan             bool              `json:"auto_scan"`
	KeepSignalRegionType bool              `json:"keep_signal_region_type"`
	ExecuteHistFactory   bool              `json:"execute_histfactory"`
	Weights              string            `json:"weights"`
	Cuts                 map[string]string `json:"cuts"`
}

// FitConfigSummary describes one fit configuration.
type FitConfigSummary struct {
	Name         string              `json:"name"`
	SignalSample string              `json:"signal_sample,omitempty"`
	Samples      []SampleSummary     `json:"samples"`
	Channels     []ChannelSummary    `json:"channels"`
	Measurement  *MeasurementSummary `json:"measurement,omitempty"`
}

// SampleSummary describes one sample.
type SampleSummary struct {
	Name         string              `json:"name"`
	Color        Color               `json:"color"`
	ColorName    string              `json:"color_name"`
	IsData       bool                `json:"is_data"`
	StatConfig   bool                `json:"stat_config"`
	NormByTheory bool                `json:"norm_by_theory"`
	NormFactor   *NormFactor         `json:"norm_factor,omitempty"`
	NormRegions  []NormRegion        `json:"norm_regions,omitempty"`
	Systematics  []SystematicSummary `json:"systematics,omitempty"`
	Histos       []HistoSummary      `json:"histos"`
}

// SystematicSummary describes one systematic attached to a sample.
type SystematicSummary struct {
	Name    string           `json:"name"`
	Weights string           `json:"weights"`
	High    []float64        `json:"high"`
	Low     []float64        `json:"low"`
	Origin  SystematicOrigin `json:"origin"`
	Kind    SystematicKind   `json:"kind"`
}

// HistoSummary holds the yields recorded for one region.
type HistoSummary struct {
	Region     string    `json:"region"`
	Channel    string    `json:"channel"`
	BinWidth   float64   `json:"bin_width"`
	Yields     []float64 `json:"yields"`
	StatErrors []float64 `json:"stat_errors,omitempty"`
}

// ChannelSummary describes one channel.
type ChannelSummary struct {
	Name    string      `json:"name"`
	Regions []string    `json:"regions"`
	NBins   int         `json:"n_bins"`
	Low     float64     `json:"low"`
	High    float64     `json:"high"`
	Role    ChannelRole `json:"role"`
}

// MeasurementSummary describes the measurement of a fit configuration.
type MeasurementSummary struct {
	Name          string         `json:"name"`
	Lumi          float64        `json:"lumi"`
	LumiErr       float64        `json:"lumi_err"`
	POIs          []string       `json:"pois"`
	ParamSettings []ParamSetting `json:"param_settings,omitempty"`
}

// LintFinding is a consistency note about an assembled model. Findings never
// block the hand-off on their own.
type LintFinding struct {
	Severity  Severity `json:"severity"`
	FitConfig string   `json:"fit_config,omitempty"`
	Subject   string   `json:"subject"`
	Message   string   `json:"message"`
}

// YieldRow is one bin of one sample histogram, flattened for tabular output.
type YieldRow struct {
	FitConfig string  `json:"fit_config"`
	Sample    string  `json:"sample"`
	IsData    bool    `json:"is_data"`
	Region    string  `json:"region"`
	Channel   string  `json:"channel"`
	Bin       int     `json:"bin"`
	Yield     float64 `json:"yield"`
	StatError float64 `json:"stat_error"`
	HasError  bool    `json:"has_error"`
}

// FlattenYields returns the yield rows of a summary in fit config, sample, region and bin order.
func (m ModelSummary) FlattenYields() []YieldRow {
	var rows []YieldRow
	for _, fc := range m.FitConfigs {
		for _, s := range fc.Samples {
			for _, h := range s.Histos {
				for i, y := range h.Yields {
					row := YieldRow{
						FitConfig: fc.Name,
						Sample:    s.Name,
						IsData:    s.IsData,
						Region:    h.Region,
						Channel:   h.Channel,
						Bin:       i,
						Yield:     y,
					}
					if i < len(h.StatErrors) {
						row.StatError = h.StatErrors[i]
						row.HasError = true
					}
					rows = append(rows, row)
				}
			}
		}
	}
	return rows
}
