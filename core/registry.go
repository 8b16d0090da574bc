package core

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/hfconf/hfconf/schema"
)

// Default run-wide options applied by NewRegistry.
const (
	DefaultNPoints      = 20
	DefaultNToys        = 1000
	DefaultWeights      = "1."
	DefaultResultsDir   = "results"
	DefaultWorkspaceDir = "data"
)

// Registry holds the run-wide options of one analysis and is the entry point
// for building fit configs. Create one per analysis and pass it explicitly.
type Registry struct {
	AnalysisName         string
	OutputFileName       string // empty resolves to results/<analysis>_Output.root
	DoExclusion          bool   // true = exclusion, false = discovery
	CalculatorType       schema.CalculatorType
	TestStatType         schema.TestStatType
	NPoints              int // signal-strength scan points for upper limits
	NToys                int
	BlindSR              bool
	WriteXML             bool
	AutoScan             bool
	KeepSignalRegionType bool
	ExecuteHistFactory   bool
	Weights              string // global event weight expression

	cuts       map[string]string
	cutOrder   []string
	fitConfigs []*FitConfig
}

// NewRegistry returns a registry populated with the engine defaults.
func NewRegistry(analysisName string) *Registry {
	return &Registry{
		AnalysisName:       analysisName,
		DoExclusion:        true,
		CalculatorType:     schema.FrequentistCalculator,
		TestStatType:       schema.OneSidedProfileLikelihood,
		NPoints:            DefaultNPoints,
		NToys:              DefaultNToys,
		ExecuteHistFactory: true,
		Weights:            DefaultWeights,
		cuts:               make(map[string]string),
	}
}

// SetCut records the cut expression of a region. Expressions are passed
// through to the engine unparsed.
func (r *Registry) SetCut(region, expr string) {
	if _, ok := r.cuts[region]; !ok {
		r.cutOrder = append(r.cutOrder, region)
	}
	r.cuts[region] = expr
}

// Cut returns the cut expression of a region.
func (r *Registry) Cut(region string) (string, bool) {
	expr, ok := r.cuts[region]
	return expr, ok
}

// Cuts returns a copy of the region to cut expression map.
func (r *Registry) Cuts() map[string]string {
	return maps.Clone(r.cuts)
}

// Regions returns the regions with a cut, in the order they were first set.
func (r *Registry) Regions() []string {
	return slices.Clone(r.cutOrder)
}

// AddFitConfig registers a new, empty fit config under a unique name.
func (r *Registry) AddFitConfig(name string) (*FitConfig, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: fit config name is empty", ErrInvalidInput)
	}
	if _, ok := r.FitConfig(name); ok {
		return nil, fmt.Errorf("%w: fit config %s already exists", ErrDuplicateName, name)
	}
	fc := &FitConfig{name: name, registry: r}
	r.fitConfigs = append(r.fitConfigs, fc)
	return fc, nil
}

// FitConfig looks a fit config up by name.
func (r *Registry) FitConfig(name string) (*FitConfig, bool) {
	for _, fc := range r.fitConfigs {
		if fc.name == name {
			return fc, true
		}
	}
	return nil, false
}

// FitConfigs returns the fit configs in registration order.
func (r *Registry) FitConfigs() []*FitConfig {
	return slices.Clone(r.fitConfigs)
}

// ResolvedOutputFileName returns the engine's result file path.
func (r *Registry) ResolvedOutputFileName() string {
	if r.OutputFileName != "" {
		return r.OutputFileName
	}
	return filepath.Join(DefaultResultsDir, r.AnalysisName+"_Output.root")
}

// StaleWorkspacePath returns the engine workspace file that must be removed
// before the engine rebuilds it.
func (r *Registry) StaleWorkspacePath(dir string) string {
	if dir == "" {
		dir = DefaultWorkspaceDir
	}
	return filepath.Join(dir, r.AnalysisName+".root")
}

// Summary returns the render model of the whole analysis, lint findings included.
func (r *Registry) Summary() schema.ModelSummary {
	out := schema.ModelSummary{
		Analysis: schema.AnalysisOptions{
			Name:                 r.AnalysisName,
			OutputFileName:       r.ResolvedOutputFileName(),
			DoExclusion:          r.DoExclusion,
			Calculator:           r.CalculatorType,
			TestStat:             r.TestStatType,
			NPoints:              r.NPoints,
			NToys:                r.NToys,
			BlindSR:              r.BlindSR,
			WriteXML:             r.WriteXML,
			AutoScan:             r.AutoScan,
			KeepSignalRegionType: r.KeepSignalRegionType,
			ExecuteHistFactory:   r.ExecuteHistFactory,
			Weights:              r.Weights,
			Cuts:                 r.Cuts(),
		},
		FitConfigs: make([]schema.FitConfigSummary, 0, len(r.fitConfigs)),
		Findings:   Lint(r),
	}
	for _, fc := range r.fitConfigs {
		out.FitConfigs = append(out.FitConfigs, fc.summary())
	}
	return out
}

// Validate checks the run-wide options.
func (r *Registry) Validate() error {
	if r.AnalysisName == "" {
		return fmt.Errorf("%w: analysis name is empty", ErrInvalidInput)
	}
	if _, ok := schema.ValidCalculatorTypes[r.CalculatorType]; !ok {
		return fmt.Errorf("%w: unknown calculator type %d", ErrInvalidInput, r.CalculatorType)
	}
	if _, ok := schema.ValidTestStatTypes[r.TestStatType]; !ok {
		return fmt.Errorf("%w: unknown test statistic %d", ErrInvalidInput, r.TestStatType)
	}
	if r.NPoints < 1 {
		return fmt.Errorf("%w: nPoints %d must be at least 1", ErrInvalidRange, r.NPoints)
	}
	if r.NToys < 0 {
		return fmt.Errorf("%w: nToys %d must not be negative", ErrInvalidRange, r.NToys)
	}
	return nil
}
