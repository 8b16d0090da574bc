package analysis

import (
	"fmt"

	"github.com/hfconf/hfconf/core"
	"github.com/hfconf/hfconf/schema"
)

// Build assembles a registry from the document: options, then systematics,
// then samples, then fit configs.
func (d *Document) Build() (*core.Registry, error) {
	reg, err := d.Analysis.registry()
	if err != nil {
		return nil, err
	}

	systematics, err := d.buildSystematics(reg.Weights)
	if err != nil {
		return nil, err
	}

	samples := make(map[string]*core.Sample, len(d.Samples))
	for _, spec := range d.Samples {
		if _, dup := samples[spec.Name]; dup {
			return nil, fmt.Errorf("line %d: %w: sample %s declared twice", spec.Line, core.ErrDuplicateName, spec.Name)
		}
		s, err := spec.build(systematics)
		if err != nil {
			return nil, err
		}
		samples[spec.Name] = s
	}

	for _, spec := range d.FitConfigs {
		if err := spec.build(reg, samples); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (o Options) registry() (*core.Registry, error) {
	if o.Name == "" {
		return nil, fmt.Errorf("%w: analysis name is required", ErrInvalidDocument)
	}
	r := core.NewRegistry(o.Name)
	r.OutputFileName = o.OutputFile
	setIf(&r.DoExclusion, o.DoExclusion)
	if o.CalculatorType != nil {
		r.CalculatorType = schema.CalculatorType(*o.CalculatorType)
	}
	if o.TestStatType != nil {
		r.TestStatType = schema.TestStatType(*o.TestStatType)
	}
	setIf(&r.NPoints, o.NPoints)
	setIf(&r.NToys, o.NToys)
	setIf(&r.BlindSR, o.BlindSR)
	setIf(&r.WriteXML, o.WriteXML)
	setIf(&r.AutoScan, o.AutoScan)
	setIf(&r.KeepSignalRegionType, o.KeepSignalRegionType)
	setIf(&r.ExecuteHistFactory, o.ExecuteHistFactory)
	if o.Weights != "" {
		r.Weights = o.Weights
	}
	for _, c := range o.Cuts {
		r.SetCut(c.Region, c.Expr)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("analysis options: %w", err)
	}
	return r, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (d *Document) buildSystematics(defaultWeights string) (map[string]*core.Systematic, error) {
	out := make(map[string]*core.Systematic, len(d.Systematics))
	for _, spec := range d.Systematics {
		key := spec.Key()
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("line %d: %w: systematic id %s declared twice", spec.Line, core.ErrDuplicateName, key)
		}

		kind := schema.SystematicKind(spec.Kind)
		if kind == "" {
			kind = schema.UserHistoSys
			if spec.High.Scalar && spec.Low.Scalar {
				kind = schema.UserOverallSys
			}
		}
		origin := schema.SystematicOrigin(spec.Origin)
		if origin == "" {
			origin = schema.UserOrigin
		}
		weights := spec.Weights
		if weights == "" {
			weights = defaultWeights
		}

		sys, err := core.NewSystematic(spec.Name, weights, spec.High.Values, spec.Low.Values, origin, kind)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", spec.Line, err)
		}
		out[key] = sys
	}
	return out, nil
}

func (spec SampleSpec) build(systematics map[string]*core.Systematic) (*core.Sample, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("line %d: %w: sample name is required", spec.Line, ErrInvalidDocument)
	}
	color, err := schema.ParseColor(spec.Color)
	if err != nil {
		return nil, fmt.Errorf("line %d: sample %s: %w: %w", spec.Line, spec.Name, ErrInvalidDocument, err)
	}

	s := core.NewSample(spec.Name, color)
	for _, op := range spec.Ops {
		if err := applyOp(s, op, systematics); err != nil {
			return nil, fmt.Errorf("line %d: sample %s: %s: %w", op.Line, spec.Name, op.Name, err)
		}
	}
	return s, nil
}

func applyOp(s *core.Sample, op Op, systematics map[string]*core.Systematic) error {
	switch op.Name {
	case OpHisto:
		var a HistoArgs
		if err := op.decode(&a); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		return s.BuildHisto(a.Yields, a.Region, a.Channel, a.BinWidth)

	case OpStatErrors:
		var a StatErrorsArgs
		if err := op.decode(&a); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		return s.BuildStatErrors(a.Errors, a.Region, a.Channel)

	case OpSystematic:
		var ids []string
		if op.hasArg() && op.value.Tag == "!!str" {
			ids = []string{op.value.Value}
		} else if err := op.decode(&ids); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		for _, id := range ids {
			sys, ok := systematics[id]
			if !ok {
				return fmt.Errorf("%w: unknown systematic %s", ErrInvalidDocument, id)
			}
			if err := s.AddSystematic(sys); err != nil {
				return err
			}
		}
		return nil

	case OpNormFactor:
		var a NormFactorArgs
		if err := op.decode(&a); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		return s.SetNormFactor(a.Name, a.Initial, a.Low, a.High)

	case OpNormByTheory:
		flag, err := op.flag()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		s.SetNormByTheory(flag)
		return nil

	case OpStatConfig:
		flag, err := op.flag()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		return s.SetStatConfig(flag)

	case OpData:
		flag, err := op.flag()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		if !flag {
			return nil
		}
		return s.SetData()

	case OpNormRegions:
		var refs []RegionRef
		if err := op.decode(&refs); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		regions := make([]schema.NormRegion, 0, len(refs))
		for _, r := range refs {
			regions = append(regions, schema.NormRegion{Region: r.Region, Channel: r.Channel})
		}
		return s.SetNormRegions(regions...)
	}
	return fmt.Errorf("%w: unknown operation %s", ErrInvalidDocument, op.Name)
}

func (spec FitConfigSpec) build(reg *core.Registry, samples map[string]*core.Sample) error {
	wrap := func(err error) error {
		return fmt.Errorf("line %d: fit config %s: %w", spec.Line, spec.Name, err)
	}

	fc, err := reg.AddFitConfig(spec.Name)
	if err != nil {
		return wrap(err)
	}

	members := make([]*core.Sample, 0, len(spec.Samples))
	for _, name := range spec.Samples {
		s, ok := samples[name]
		if !ok {
			return wrap(fmt.Errorf("%w: unknown sample %s", ErrInvalidDocument, name))
		}
		members = append(members, s)
	}
	if err := fc.AddSamples(members...); err != nil {
		return wrap(err)
	}

	if spec.SignalSample != "" {
		s, ok := samples[spec.SignalSample]
		if !ok {
			return wrap(fmt.Errorf("%w: unknown signal sample %s", ErrInvalidDocument, spec.SignalSample))
		}
		if err := fc.SetSignalSample(s); err != nil {
			return wrap(err)
		}
	}

	if m := spec.Measurement; m != nil {
		meas, err := fc.AddMeasurement(m.Name, m.Lumi, m.LumiErr)
		if err != nil {
			return wrap(err)
		}
		for _, poi := range m.POIs {
			if err := meas.AddPOI(poi); err != nil {
				return wrap(err)
			}
		}
		for _, p := range m.ParamSettings {
			if err := meas.AddParamSetting(p.Name, p.Constant, p.Value); err != nil {
				return wrap(err)
			}
		}
	}

	channels := make(map[string]*core.Channel, len(spec.Channels))
	for _, c := range spec.Channels {
		if _, dup := channels[c.Key()]; dup {
			return fmt.Errorf("line %d: fit config %s: %w: channel id %s declared twice", c.Line, spec.Name, core.ErrDuplicateName, c.Key())
		}
		ch, err := fc.AddChannel(c.Name, c.Regions, c.NBins, c.Low, c.High)
		if err != nil {
			return fmt.Errorf("line %d: fit config %s: %w", c.Line, spec.Name, err)
		}
		channels[c.Key()] = ch
	}

	resolve := func(ids []string) ([]*core.Channel, error) {
		out := make([]*core.Channel, 0, len(ids))
		for _, id := range ids {
			ch, ok := channels[id]
			if !ok {
				return nil, fmt.Errorf("%w: unknown channel %s", ErrInvalidDocument, id)
			}
			out = append(out, ch)
		}
		return out, nil
	}
	sig, err := resolve(spec.SignalChannels)
	if err != nil {
		return wrap(err)
	}
	if err := fc.AddSignalChannels(sig...); err != nil {
		return wrap(err)
	}
	bkg, err := resolve(spec.BkgConstrainChannels)
	if err != nil {
		return wrap(err)
	}
	if err := fc.AddBkgConstrainChannels(bkg...); err != nil {
		return wrap(err)
	}
	return nil
}
