package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/hfconf/hfconf/schema"
)

// FitConfig assembles samples, channels and one measurement into a fit.
// Assembly is append-only.
type FitConfig struct {
	name                 string
	registry             *Registry
	samples              []*Sample
	signalSample         *Sample
	channels             []*Channel
	signalChannels       []*Channel
	bkgConstrainChannels []*Channel
	measurement          *Measurement
}

// AddChannel creates a channel over the given regions and registers it.
func (fc *FitConfig) AddChannel(name string, regions []string, nBins int, low, high float64) (*Channel, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: fit config %s: channel name is empty", ErrInvalidInput, fc.name)
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: fit config %s: channel %s has no regions", ErrInvalidInput, fc.name, name)
	}
	for _, r := range regions {
		if r == "" {
			return nil, fmt.Errorf("%w: fit config %s: channel %s has an empty region name", ErrInvalidInput, fc.name, name)
		}
	}
	if nBins < 1 {
		return nil, fmt.Errorf("%w: channel %s: nBins %d must be at least 1", ErrInvalidRange, name, nBins)
	}
	if !finite(low, high) || low >= high {
		return nil, fmt.Errorf("%w: channel %s: low edge %g must be below high edge %g", ErrInvalidRange, name, low, high)
	}

	ch := &Channel{
		name:    name,
		regions: slices.Clone(regions),
		nBins:   nBins,
		low:     low,
		high:    high,
		owner:   fc,
	}
	fc.channels = append(fc.channels, ch)
	return ch, nil
}

// AddSignalChannels marks channels as driving the limit setting.
func (fc *FitConfig) AddSignalChannels(channels ...*Channel) error {
	return fc.assignChannels(channels, &fc.signalChannels, fc.bkgConstrainChannels, schema.SignalRole)
}

// AddBkgConstrainChannels marks channels as only constraining background normalization.
func (fc *FitConfig) AddBkgConstrainChannels(channels ...*Channel) error {
	return fc.assignChannels(channels, &fc.bkgConstrainChannels, fc.signalChannels, schema.BkgConstrainRole)
}

// assignChannels validates the whole batch before appending any of it.
func (fc *FitConfig) assignChannels(channels []*Channel, target *[]*Channel, other []*Channel, role schema.ChannelRole) error {
	for _, ch := range channels {
		if ch == nil {
			return fmt.Errorf("%w: fit config %s: nil channel", ErrInvalidInput, fc.name)
		}
		if ch.owner != fc {
			return fmt.Errorf("%w: channel %s %v was not created by fit config %s", ErrInvalidInput, ch.name, ch.regions, fc.name)
		}
		if slices.Contains(other, ch) {
			return fmt.Errorf("%w: channel %s %v is already assigned a different role than %s", ErrChannelConflict, ch.name, ch.regions, role)
		}
	}
	for _, ch := range channels {
		if !slices.Contains(*target, ch) {
			*target = append(*target, ch)
		}
	}
	return nil
}

// AddSamples appends samples to the fit. At most one sample may be data.
func (fc *FitConfig) AddSamples(samples ...*Sample) error {
	dataName := ""
	if d := fc.DataSample(); d != nil {
		dataName = d.Name()
	}
	seen := make(map[string]struct{}, len(fc.samples)+len(samples))
	for _, s := range fc.samples {
		seen[s.Name()] = struct{}{}
	}
	for _, s := range samples {
		if s == nil {
			return fmt.Errorf("%w: fit config %s: nil sample", ErrInvalidInput, fc.name)
		}
		if _, dup := seen[s.Name()]; dup {
			return fmt.Errorf("%w: fit config %s already has sample %s", ErrDuplicateName, fc.name, s.Name())
		}
		seen[s.Name()] = struct{}{}
		if s.IsData() {
			if dataName != "" {
				return fmt.Errorf("%w: fit config %s: %s and %s are both data", ErrInvariantViolation, fc.name, dataName, s.Name())
			}
			dataName = s.Name()
		}
	}
	fc.samples = append(fc.samples, samples...)
	for _, s := range samples {
		s.fitConfigs = append(s.fitConfigs, fc)
	}
	return nil
}

// SetSignalSample records the sample holding the signal hypothesis under test.
func (fc *FitConfig) SetSignalSample(s *Sample) error {
	if s == nil || !slices.Contains(fc.samples, s) {
		name := "<nil>"
		if s != nil {
			name = s.Name()
		}
		return fmt.Errorf("%w: fit config %s: signal sample %s is not among its samples", ErrInvalidInput, fc.name, name)
	}
	if s.IsData() {
		return fmt.Errorf("%w: fit config %s: data sample %s cannot be the signal", ErrInvariantViolation, fc.name, s.Name())
	}
	fc.signalSample = s
	return nil
}

// AddMeasurement creates the single measurement of the fit config.
func (fc *FitConfig) AddMeasurement(name string, lumi, lumiErr float64) (*Measurement, error) {
	if fc.measurement != nil {
		return nil, fmt.Errorf("%w: fit config %s already has measurement %s", ErrDuplicateName, fc.name, fc.measurement.name)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: fit config %s: measurement name is empty", ErrInvalidInput, fc.name)
	}
	if !(lumi > 0) || math.IsInf(lumi, 0) {
		return nil, fmt.Errorf("%w: measurement %s: lumi %g must be positive", ErrInvalidInput, name, lumi)
	}
	if !(lumiErr >= 0) || math.IsInf(lumiErr, 0) {
		return nil, fmt.Errorf("%w: measurement %s: lumiErr %g must not be negative", ErrInvalidInput, name, lumiErr)
	}
	fc.measurement = &Measurement{name: name, lumi: lumi, lumiErr: lumiErr, owner: fc}
	return fc.measurement, nil
}

// declaresNormFactor reports whether a sample of the fit declared a norm factor
// with that name, including one later replaced by normalize-by-theory.
func (fc *FitConfig) declaresNormFactor(name string) bool {
	for _, s := range fc.samples {
		if nf, ok := s.NormFactor(); ok && nf.Name == name {
			return true
		}
		for _, o := range s.overrides {
			if o.ByTheory && o.Factor.Name == name {
				return true
			}
		}
	}
	return false
}

// activeNormFactor reports whether a sample of the fit floats the named norm factor.
func (fc *FitConfig) activeNormFactor(name string) bool {
	return slices.ContainsFunc(fc.samples, func(s *Sample) bool {
		nf, ok := s.NormFactor()
		return ok && nf.Name == name
	})
}

// Name returns the fit config name.
func (fc *FitConfig) Name() string { return fc.name }

// Samples returns the samples in the order they were added.
func (fc *FitConfig) Samples() []*Sample { return slices.Clone(fc.samples) }

// Sample looks a sample up by name.
func (fc *FitConfig) Sample(name string) (*Sample, bool) {
	for _, s := range fc.samples {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// SignalSample returns the signal sample, or nil.
func (fc *FitConfig) SignalSample() *Sample { return fc.signalSample }

// DataSample returns the data sample, or nil.
func (fc *FitConfig) DataSample() *Sample {
	if data := fc.DataSamples(); len(data) > 0 {
		return data[0]
	}
	return nil
}

// DataSamples returns every data sample of the fit in sample order.
func (fc *FitConfig) DataSamples() []*Sample {
	var data []*Sample
	for _, s := range fc.samples {
		if s.IsData() {
			data = append(data, s)
		}
	}
	return data
}

// Channels returns every channel in creation order.
func (fc *FitConfig) Channels() []*Channel { return slices.Clone(fc.channels) }

// SignalChannels returns the signal channels.
func (fc *FitConfig) SignalChannels() []*Channel { return slices.Clone(fc.signalChannels) }

// BkgConstrainChannels returns the background-constraining channels.
func (fc *FitConfig) BkgConstrainChannels() []*Channel { return slices.Clone(fc.bkgConstrainChannels) }

// Measurement returns the measurement, or nil.
func (fc *FitConfig) Measurement() *Measurement { return fc.measurement }

// Registry returns the registry the fit config was created from.
func (fc *FitConfig) Registry() *Registry { return fc.registry }

func (fc *FitConfig) summary() schema.FitConfigSummary {
	out := schema.FitConfigSummary{
		Name:     fc.name,
		Samples:  make([]schema.SampleSummary, 0, len(fc.samples)),
		Channels: make([]schema.ChannelSummary, 0, len(fc.channels)),
	}
	if fc.signalSample != nil {
		out.SignalSample = fc.signalSample.Name()
	}
	for _, s := range fc.samples {
		out.Samples = append(out.Samples, s.summary())
	}
	for _, ch := range fc.channels {
		out.Channels = append(out.Channels, ch.summary())
	}
	if fc.measurement != nil {
		out.Measurement = fc.measurement.summary()
	}
	return out
}
