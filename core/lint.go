package core

import (
	"fmt"
	"slices"

	"github.com/hfconf/hfconf/schema"
)

// Lint reports consistency problems of an assembled analysis that the
// builders cannot see at call time. Findings are advisory.
func Lint(r *Registry) []schema.LintFinding {
	var findings []schema.LintFinding
	add := func(sev schema.Severity, fc, subject, format string, args ...any) {
		findings = append(findings, schema.LintFinding{
			Severity:  sev,
			FitConfig: fc,
			Subject:   subject,
			Message:   fmt.Sprintf(format, args...),
		})
	}

	if len(r.fitConfigs) == 0 {
		add(schema.SeverityWarning, "", r.AnalysisName, "analysis defines no fit config")
	}

	for _, fc := range r.fitConfigs {
		if fc.measurement == nil {
			add(schema.SeverityWarning, fc.name, fc.name, "fit config has no measurement")
		} else if len(fc.measurement.pois) == 0 {
			add(schema.SeverityInfo, fc.name, fc.measurement.name, "measurement has no parameter of interest")
		} else {
			for _, poi := range fc.measurement.pois {
				if !fc.activeNormFactor(poi) {
					add(schema.SeverityWarning, fc.name, fc.measurement.name, "POI %s names a norm factor replaced by normalize-by-theory", poi)
				}
			}
		}
		switch data := fc.DataSamples(); {
		case len(data) == 0:
			add(schema.SeverityWarning, fc.name, fc.name, "fit config has no data sample")
		case len(data) > 1:
			add(schema.SeverityWarning, fc.name, fc.name, "fit config has %d data samples", len(data))
		}
		if fc.signalSample != nil && fc.signalSample.IsData() {
			add(schema.SeverityWarning, fc.name, fc.signalSample.name, "signal sample is data")
		}
		if len(fc.samples) == 0 {
			add(schema.SeverityWarning, fc.name, fc.name, "fit config has no samples")
		}
		if len(fc.signalChannels) == 0 && len(fc.bkgConstrainChannels) == 0 && len(fc.channels) > 0 {
			add(schema.SeverityWarning, fc.name, fc.name, "no channel is assigned a signal or background-constraining role")
		}

		lintChannels(r, fc, add)
		lintSamples(fc, add)
	}
	return findings
}

type addFinding func(sev schema.Severity, fc, subject, format string, args ...any)

func lintChannels(r *Registry, fc *FitConfig, add addFinding) {
	for _, ch := range fc.channels {
		subject := fmt.Sprintf("%s%v", ch.name, ch.regions)
		if ch.Role() == schema.UnassignedRole && (len(fc.signalChannels) > 0 || len(fc.bkgConstrainChannels) > 0) {
			add(schema.SeverityInfo, fc.name, subject, "channel has no role and only enters validation")
		}
		for _, region := range ch.regions {
			if _, ok := r.cuts[region]; !ok {
				add(schema.SeverityWarning, fc.name, subject, "region %s has no cut expression", region)
			}
			for _, s := range fc.samples {
				yields, ok := s.Yields(region, ch.name)
				if !ok {
					add(schema.SeverityInfo, fc.name, s.name, "no yields for region %s in channel %s", region, ch.name)
					continue
				}
				if len(yields) != ch.nBins {
					add(schema.SeverityWarning, fc.name, s.name, "%d yields in %s/%s but channel has %d bins", len(yields), region, ch.name, ch.nBins)
				}
			}
		}
	}

	if len(fc.bkgConstrainChannels) > 0 {
		floating := slices.ContainsFunc(fc.samples, func(s *Sample) bool {
			_, ok := s.NormFactor()
			return ok
		})
		if !floating {
			add(schema.SeverityInfo, fc.name, fc.name, "background-constraining channels exist but no sample has a free norm factor")
		}
	}
}

func lintSamples(fc *FitConfig, add addFinding) {
	for _, s := range fc.samples {
		for _, o := range s.overrides {
			if o.ByTheory {
				add(schema.SeverityWarning, fc.name, s.name, "normalize-by-theory replaced norm factor %s (last call wins)", o.Factor.Name)
			} else {
				add(schema.SeverityWarning, fc.name, s.name, "norm factor %s replaced normalize-by-theory (last call wins)", o.Factor.Name)
			}
		}

		for _, sys := range s.systematics {
			if sys.Bins() == 0 {
				continue
			}
			for _, key := range s.order {
				if n := len(s.histos[key].yields); n != sys.Bins() {
					add(schema.SeverityWarning, fc.name, s.name, "shape systematic %s has %d bins but %s has %d", sys.name, sys.Bins(), key, n)
				}
			}
		}

		for _, nr := range s.normRegions {
			if !fc.hasChannelRegion(nr) {
				add(schema.SeverityWarning, fc.name, s.name, "norm region %s is not part of any channel", nr)
			}
		}
	}
}

// hasChannelRegion reports whether a channel of the fit covers the region under that variable.
func (fc *FitConfig) hasChannelRegion(key schema.RegionKey) bool {
	for _, ch := range fc.channels {
		if ch.name == key.Channel && slices.Contains(ch.regions, key.Region) {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any finding is a warning.
func HasWarnings(findings []schema.LintFinding) bool {
	return slices.ContainsFunc(findings, func(f schema.LintFinding) bool {
		return f.Severity == schema.SeverityWarning
	})
}
