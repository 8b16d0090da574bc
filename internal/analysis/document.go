package analysis

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Document is the decoded form of an analysis file.
type Document struct {
	Analysis    Options          `yaml:"analysis"`
	Systematics []SystematicSpec `yaml:"systematics"`
	Samples     []SampleSpec     `yaml:"samples"`
	FitConfigs  []FitConfigSpec  `yaml:"fit_configs"`
}

// Options are the run-wide settings. Unset fields keep the registry defaults.
type Options struct {
	Name                 string      `yaml:"name"`
	OutputFile           string      `yaml:"output_file"`
	DoExclusion          *bool       `yaml:"do_exclusion"`
	CalculatorType       *int        `yaml:"calculator_type"`
	TestStatType         *int        `yaml:"test_stat_type"`
	NPoints              *int        `yaml:"n_points"`
	NToys                *int        `yaml:"n_toys"`
	BlindSR              *bool       `yaml:"blind_sr"`
	WriteXML             *bool       `yaml:"write_xml"`
	AutoScan             *bool       `yaml:"auto_scan"`
	KeepSignalRegionType *bool       `yaml:"keep_signal_region_type"`
	ExecuteHistFactory   *bool       `yaml:"execute_histfactory"`
	Weights              string      `yaml:"weights"`
	Cuts                 OrderedCuts `yaml:"cuts"`
}

// Cut is one region selection.
type Cut struct {
	Region string
	Expr   string
}

// OrderedCuts keeps region cuts in document order.
type OrderedCuts []Cut

// UnmarshalYAML reads a mapping of region to expression without losing key order.
func (c *OrderedCuts) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: cuts must be a mapping of region to expression", value.Line)
	}
	out := make(OrderedCuts, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var expr string
		if err := value.Content[i+1].Decode(&expr); err != nil {
			return fmt.Errorf("line %d: cut %s: %w", value.Content[i+1].Line, value.Content[i].Value, err)
		}
		out = append(out, Cut{Region: value.Content[i].Value, Expr: expr})
	}
	*c = out
	return nil
}

// Factors is a scalar or a list of variation factors.
type Factors struct {
	Values []float64
	Scalar bool
}

// UnmarshalYAML accepts either 1.2 or [1.1, 1.2].
func (f *Factors) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var v float64
		if err := value.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*f = Factors{Values: []float64{v}, Scalar: true}
		return nil
	}
	var vs []float64
	if err := value.Decode(&vs); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*f = Factors{Values: vs}
	return nil
}

// SystematicSpec declares a systematic. Samples attach it by ID, which
// defaults to the name; two specs may share a name to correlate them.
type SystematicSpec struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	Weights string  `yaml:"weights"`
	High    Factors `yaml:"high"`
	Low     Factors `yaml:"low"`
	Origin  string  `yaml:"origin"`
	Kind    string  `yaml:"kind"`
	Line    int     `yaml:"-"`
}

// UnmarshalYAML records the source line of the declaration.
func (s *SystematicSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain SystematicSpec
	if err := decodeStrict(value, (*plain)(s), "SystematicSpec"); err != nil {
		return err
	}
	s.Line = value.Line
	return nil
}

// Key returns the reference key of the systematic.
func (s SystematicSpec) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Name
}

// SampleSpec declares a sample and the builder calls applied to it in order.
type SampleSpec struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
	Ops   []Op   `yaml:"ops"`
	Line  int    `yaml:"-"`
}

// UnmarshalYAML records the source line of the declaration.
func (s *SampleSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain SampleSpec
	if err := decodeStrict(value, (*plain)(s), "SampleSpec"); err != nil {
		return err
	}
	s.Line = value.Line
	return nil
}

// Sample operation names.
const (
	OpHisto        = "histo"
	OpStatErrors   = "stat_errors"
	OpSystematic   = "systematic"
	OpNormFactor   = "norm_factor"
	OpNormByTheory = "norm_by_theory"
	OpStatConfig   = "stat_config"
	OpData         = "data"
	OpNormRegions  = "norm_regions"
)

var knownOps = []string{OpHisto, OpStatErrors, OpSystematic, OpNormFactor, OpNormByTheory, OpStatConfig, OpData, OpNormRegions}

// Op is one sample builder call. It is written either as a bare name
// ("- data") or as a single-key mapping ("- histo: {...}").
type Op struct {
	Name  string
	Line  int
	value *yaml.Node
}

// UnmarshalYAML validates the operation name and keeps its argument for later decoding.
func (o *Op) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		o.Name, o.Line = value.Value, value.Line
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: an operation must have exactly one key", value.Line)
		}
		o.Name, o.Line, o.value = value.Content[0].Value, value.Line, value.Content[1]
	default:
		return fmt.Errorf("line %d: an operation must be a name or a single-key mapping", value.Line)
	}
	if !slices.Contains(knownOps, o.Name) {
		return fmt.Errorf("line %d: unknown sample operation %q", o.Line, o.Name)
	}
	return nil
}

// hasArg reports whether the operation carries a non-null argument.
func (o Op) hasArg() bool {
	return o.value != nil && o.value.Tag != "!!null"
}

// decode decodes the operation argument.
func (o Op) decode(out any) error {
	if !o.hasArg() {
		return fmt.Errorf("operation %s needs an argument", o.Name)
	}
	return decodeStrict(o.value, out, "")
}

// flag decodes a boolean argument, treating a bare operation as true.
func (o Op) flag() (bool, error) {
	if !o.hasArg() {
		return true, nil
	}
	var b bool
	err := o.value.Decode(&b)
	return b, err
}

// HistoArgs are the arguments of a histo operation.
type HistoArgs struct {
	Region   string    `yaml:"region"`
	Channel  string    `yaml:"channel"`
	Yields   []float64 `yaml:"yields"`
	BinWidth float64   `yaml:"bin_width"`
}

// StatErrorsArgs are the arguments of a stat_errors operation.
type StatErrorsArgs struct {
	Region  string    `yaml:"region"`
	Channel string    `yaml:"channel"`
	Errors  []float64 `yaml:"errors"`
}

// NormFactorArgs are the arguments of a norm_factor operation.
type NormFactorArgs struct {
	Name    string  `yaml:"name"`
	Initial float64 `yaml:"initial"`
	Low     float64 `yaml:"low"`
	High    float64 `yaml:"high"`
}

// RegionRef names a region under a channel variable.
type RegionRef struct {
	Region  string `yaml:"region"`
	Channel string `yaml:"channel"`
}

// FitConfigSpec declares a fit config. Its parts are applied in field order.
type FitConfigSpec struct {
	Name                 string           `yaml:"name"`
	Samples              []string         `yaml:"samples"`
	SignalSample         string           `yaml:"signal_sample"`
	Measurement          *MeasurementSpec `yaml:"measurement"`
	Channels             []ChannelSpec    `yaml:"channels"`
	SignalChannels       []string         `yaml:"signal_channels"`
	BkgConstrainChannels []string         `yaml:"bkg_constrain_channels"`
	Line                 int              `yaml:"-"`
}

// UnmarshalYAML records the source line of the declaration.
func (f *FitConfigSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain FitConfigSpec
	if err := decodeStrict(value, (*plain)(f), "FitConfigSpec"); err != nil {
		return err
	}
	f.Line = value.Line
	return nil
}

// MeasurementSpec declares the measurement of a fit config.
type MeasurementSpec struct {
	Name          string             `yaml:"name"`
	Lumi          float64            `yaml:"lumi"`
	LumiErr       float64            `yaml:"lumi_err"`
	POIs          []string           `yaml:"pois"`
	ParamSettings []ParamSettingSpec `yaml:"param_settings"`
}

// ParamSettingSpec seeds one fit parameter.
type ParamSettingSpec struct {
	Name     string  `yaml:"name"`
	Constant bool    `yaml:"constant"`
	Value    float64 `yaml:"value"`
}

// ChannelSpec declares a channel. ID defaults to the channel name and must be
// unique within the fit config.
type ChannelSpec struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Regions []string `yaml:"regions"`
	NBins   int      `yaml:"n_bins"`
	Low     float64  `yaml:"low"`
	High    float64  `yaml:"high"`
	Line    int      `yaml:"-"`
}

// UnmarshalYAML records the source line of the declaration.
func (c *ChannelSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain ChannelSpec
	if err := decodeStrict(value, (*plain)(c), "ChannelSpec"); err != nil {
		return err
	}
	c.Line = value.Line
	return nil
}

// Key returns the reference key of the channel.
func (c ChannelSpec) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Name
}
