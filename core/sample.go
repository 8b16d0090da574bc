package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/hfconf/hfconf/schema"
)

// histo holds the inputs recorded for one (region, channel) pair.
type histo struct {
	yields     []float64
	statErrors []float64
	binWidth   float64
}

// NormOverride records a normalization declaration replaced by a later call.
// ByTheory is true when normalize-by-theory replaced Factor, false when
// Factor replaced normalize-by-theory.
type NormOverride struct {
	Factor   schema.NormFactor
	ByTheory bool
}

// Sample accumulates the predicted or observed yields of one process.
type Sample struct {
	name         string
	color        schema.Color
	histos       map[schema.RegionKey]*histo
	order        []schema.RegionKey
	isData       bool
	statConfig   bool
	normByTheory bool
	normFactor   *schema.NormFactor
	normRegions  []schema.NormRegion
	systematics  []*Systematic
	overrides    []NormOverride
	fitConfigs   []*FitConfig // fit configs the sample was added to
}

// NewSample creates an empty simulated sample.
func NewSample(name string, color schema.Color) *Sample {
	return &Sample{
		name:   name,
		color:  color,
		histos: make(map[schema.RegionKey]*histo),
	}
}

// BuildHisto records the yields of a region. Building the same region again
// replaces its yields and drops the stat errors recorded for it.
func (s *Sample) BuildHisto(yields []float64, region, channel string, binWidth float64) error {
	if region == "" || channel == "" {
		return fmt.Errorf("%w: sample %s: region and channel are required", ErrInvalidInput, s.name)
	}
	if len(yields) == 0 {
		return fmt.Errorf("%w: sample %s: no yields for %s", ErrInvalidInput, s.name, region)
	}
	for i, y := range yields {
		if y < 0 || math.IsNaN(y) || math.IsInf(y, 0) {
			return fmt.Errorf("%w: sample %s: yield %g in bin %d of %s must be finite and non-negative", ErrInvalidInput, s.name, y, i, region)
		}
	}
	if binWidth <= 0 || !finite(binWidth) {
		return fmt.Errorf("%w: sample %s: bin width %g for %s must be positive", ErrInvalidInput, s.name, binWidth, region)
	}

	key := schema.RegionKey{Region: region, Channel: channel}
	if _, ok := s.histos[key]; !ok {
		s.order = append(s.order, key)
	}
	s.histos[key] = &histo{yields: slices.Clone(yields), binWidth: binWidth}
	return nil
}

// BuildStatErrors records per-bin statistical errors for a region already built with BuildHisto.
func (s *Sample) BuildStatErrors(errs []float64, region, channel string) error {
	if s.isData {
		return fmt.Errorf("%w: data sample %s cannot carry statistical errors", ErrInvariantViolation, s.name)
	}
	key := schema.RegionKey{Region: region, Channel: channel}
	h, ok := s.histos[key]
	if !ok {
		return fmt.Errorf("%w: sample %s: no yields recorded for %s", ErrShapeMismatch, s.name, key)
	}
	if len(errs) != len(h.yields) {
		return fmt.Errorf("%w: sample %s: %d stat errors for %d bins in %s", ErrShapeMismatch, s.name, len(errs), len(h.yields), key)
	}
	for i, e := range errs {
		if e < 0 || math.IsNaN(e) || math.IsInf(e, 0) {
			return fmt.Errorf("%w: sample %s: stat error %g in bin %d of %s must be finite and non-negative", ErrInvalidInput, s.name, e, i, key)
		}
	}
	h.statErrors = slices.Clone(errs)
	return nil
}

// AddSystematic attaches a systematic. A name may be attached only once per sample.
func (s *Sample) AddSystematic(sys *Systematic) error {
	if sys == nil {
		return fmt.Errorf("%w: sample %s: nil systematic", ErrInvalidInput, s.name)
	}
	if s.isData {
		return fmt.Errorf("%w: data sample %s cannot carry systematic %s", ErrInvariantViolation, s.name, sys.Name())
	}
	for _, existing := range s.systematics {
		if existing.Name() == sys.Name() {
			return fmt.Errorf("%w: sample %s already has systematic %s", ErrDuplicateSystematic, s.name, sys.Name())
		}
	}
	s.systematics = append(s.systematics, sys)
	return nil
}

// SetNormFactor declares a free normalization parameter. It replaces an
// earlier normalize-by-theory declaration.
func (s *Sample) SetNormFactor(name string, initial, low, high float64) error {
	if s.isData {
		return fmt.Errorf("%w: data sample %s cannot carry norm factor %s", ErrInvariantViolation, s.name, name)
	}
	if name == "" {
		return fmt.Errorf("%w: sample %s: norm factor name is empty", ErrInvalidInput, s.name)
	}
	if !finite(initial, low, high) {
		return fmt.Errorf("%w: norm factor %s: non-finite bounds (%g, %g, %g)", ErrInvalidRange, name, initial, low, high)
	}
	if low >= high {
		return fmt.Errorf("%w: norm factor %s: low %g must be below high %g", ErrInvalidRange, name, low, high)
	}
	if initial < low || initial > high {
		return fmt.Errorf("%w: norm factor %s: initial %g outside [%g, %g]", ErrInvalidRange, name, initial, low, high)
	}

	nf := schema.NormFactor{Name: name, Initial: initial, Low: low, High: high}
	if s.normByTheory {
		s.overrides = append(s.overrides, NormOverride{Factor: nf, ByTheory: false})
		s.normByTheory = false
	}
	s.normFactor = &nf
	return nil
}

// SetNormByTheory marks the yield as fixed by an external prediction. Setting
// it to true replaces an active norm factor: the last call wins.
func (s *Sample) SetNormByTheory(flag bool) {
	if flag && s.normFactor != nil {
		s.overrides = append(s.overrides, NormOverride{Factor: *s.normFactor, ByTheory: true})
		s.normFactor = nil
	}
	s.normByTheory = flag
}

// SetStatConfig toggles whether the sample's stat errors enter the fit.
func (s *Sample) SetStatConfig(flag bool) error {
	if flag && s.isData {
		return fmt.Errorf("%w: data sample %s cannot use stat config", ErrInvariantViolation, s.name)
	}
	s.statConfig = flag
	return nil
}

// SetData marks the sample as observed data.
func (s *Sample) SetData() error {
	switch {
	case len(s.systematics) > 0:
		return fmt.Errorf("%w: sample %s has %d systematics and cannot become data", ErrInvariantViolation, s.name, len(s.systematics))
	case s.normFactor != nil:
		return fmt.Errorf("%w: sample %s has norm factor %s and cannot become data", ErrInvariantViolation, s.name, s.normFactor.Name)
	case s.statConfig:
		return fmt.Errorf("%w: sample %s uses stat config and cannot become data", ErrInvariantViolation, s.name)
	}
	for _, key := range s.order {
		if s.histos[key].statErrors != nil {
			return fmt.Errorf("%w: sample %s has stat errors in %s and cannot become data", ErrInvariantViolation, s.name, key)
		}
	}
	for _, fc := range s.fitConfigs {
		if fc.signalSample == s {
			return fmt.Errorf("%w: sample %s is the signal of fit config %s and cannot become data", ErrInvariantViolation, s.name, fc.name)
		}
		if d := fc.DataSample(); d != nil && d != s {
			return fmt.Errorf("%w: fit config %s already has data sample %s", ErrInvariantViolation, fc.name, d.Name())
		}
	}
	s.isData = true
	return nil
}

// SetNormRegions designates the regions used to normalize the sample from data.
func (s *Sample) SetNormRegions(regions ...schema.NormRegion) error {
	if len(regions) == 0 {
		return fmt.Errorf("%w: sample %s: no norm regions", ErrInvalidInput, s.name)
	}
	for _, r := range regions {
		if r.Region == "" || r.Channel == "" {
			return fmt.Errorf("%w: sample %s: norm region needs region and channel", ErrInvalidInput, s.name)
		}
	}
	s.normRegions = slices.Clone(regions)
	return nil
}

// Name returns the sample name.
func (s *Sample) Name() string { return s.name }

// Color returns the display color.
func (s *Sample) Color() schema.Color { return s.color }

// IsData reports whether the sample is observed data.
func (s *Sample) IsData() bool { return s.isData }

// StatConfig reports whether stat errors enter the fit.
func (s *Sample) StatConfig() bool { return s.statConfig }

// NormByTheory reports whether the yield is fixed by an external prediction.
func (s *Sample) NormByTheory() bool { return s.normByTheory }

// NormFactor returns the active norm factor, if any.
func (s *Sample) NormFactor() (schema.NormFactor, bool) {
	if s.normFactor == nil {
		return schema.NormFactor{}, false
	}
	return *s.normFactor, true
}

// NormRegions returns a copy of the norm regions.
func (s *Sample) NormRegions() []schema.NormRegion { return slices.Clone(s.normRegions) }

// NormOverrides returns every normalization declaration replaced by a later one.
func (s *Sample) NormOverrides() []NormOverride { return slices.Clone(s.overrides) }

// Systematics returns the attached systematics in attachment order.
func (s *Sample) Systematics() []*Systematic { return slices.Clone(s.systematics) }

// Regions returns the histogram keys in the order they were first built.
func (s *Sample) Regions() []schema.RegionKey { return slices.Clone(s.order) }

// Yields returns a copy of the yields recorded for a region.
func (s *Sample) Yields(region, channel string) ([]float64, bool) {
	h, ok := s.histos[schema.RegionKey{Region: region, Channel: channel}]
	if !ok {
		return nil, false
	}
	return slices.Clone(h.yields), true
}

// StatErrors returns a copy of the stat errors recorded for a region.
func (s *Sample) StatErrors(region, channel string) ([]float64, bool) {
	h, ok := s.histos[schema.RegionKey{Region: region, Channel: channel}]
	if !ok || h.statErrors == nil {
		return nil, false
	}
	return slices.Clone(h.statErrors), true
}

// HasRegion reports whether any histogram was built for the region, in any channel.
func (s *Sample) HasRegion(region string) bool {
	for _, key := range s.order {
		if key.Region == region {
			return true
		}
	}
	return false
}

// summary returns the render form of the sample.
func (s *Sample) summary() schema.SampleSummary {
	out := schema.SampleSummary{
		Name:         s.name,
		Color:        s.color,
		ColorName:    s.color.Name(),
		IsData:       s.isData,
		StatConfig:   s.statConfig,
		NormByTheory: s.normByTheory,
		NormRegions:  s.NormRegions(),
		Histos:       make([]schema.HistoSummary, 0, len(s.order)),
	}
	if nf, ok := s.NormFactor(); ok {
		out.NormFactor = &nf
	}
	for _, sys := range s.systematics {
		out.Systematics = append(out.Systematics, sys.summary())
	}
	for _, key := range s.order {
		h := s.histos[key]
		out.Histos = append(out.Histos, schema.HistoSummary{
			Region:     key.Region,
			Channel:    key.Channel,
			BinWidth:   h.binWidth,
			Yields:     slices.Clone(h.yields),
			StatErrors: slices.Clone(h.statErrors),
		})
	}
	return out
}

// finite reports whether every value is neither NaN nor infinite.
func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
