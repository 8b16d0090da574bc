package core

import (
	"fmt"
	"slices"

	"github.com/hfconf/hfconf/schema"
)

// Measurement holds the luminosity and parameters of interest of a fit config.
type Measurement struct {
	name          string
	lumi          float64
	lumiErr       float64
	pois          []string
	paramSettings []schema.ParamSetting
	owner         *FitConfig
}

// AddPOI registers a parameter of interest. A sample of the owning fit config
// must declare a norm factor with that name. A factor later replaced by
// normalize-by-theory still qualifies; Lint reports it.
func (m *Measurement) AddPOI(name string) error {
	if name == "" {
		return fmt.Errorf("%w: measurement %s: POI name is empty", ErrInvalidInput, m.name)
	}
	if slices.Contains(m.pois, name) {
		return fmt.Errorf("%w: measurement %s already has POI %s", ErrDuplicateName, m.name, name)
	}
	if !m.owner.declaresNormFactor(name) {
		return fmt.Errorf("%w: no sample in fit config %s declares norm factor %s", ErrUnknownParameter, m.owner.name, name)
	}
	m.pois = append(m.pois, name)
	return nil
}

// AddParamSetting seeds a fit parameter, optionally holding it constant.
// Later settings for the same parameter replace earlier ones.
func (m *Measurement) AddParamSetting(name string, constant bool, value float64) error {
	if name == "" {
		return fmt.Errorf("%w: measurement %s: parameter name is empty", ErrInvalidInput, m.name)
	}
	if !finite(value) {
		return fmt.Errorf("%w: measurement %s: parameter %s has non-finite value %v", ErrInvalidInput, m.name, name, value)
	}
	setting := schema.ParamSetting{Name: name, Constant: constant, Value: value}
	for i, p := range m.paramSettings {
		if p.Name == name {
			m.paramSettings[i] = setting
			return nil
		}
	}
	m.paramSettings = append(m.paramSettings, setting)
	return nil
}

// Name returns the measurement name.
func (m *Measurement) Name() string { return m.name }

// Lumi returns the integrated luminosity.
func (m *Measurement) Lumi() float64 { return m.lumi }

// LumiErr returns the relative luminosity uncertainty.
func (m *Measurement) LumiErr() float64 { return m.lumiErr }

// POIs returns the parameters of interest in registration order.
func (m *Measurement) POIs() []string { return slices.Clone(m.pois) }

// ParamSettings returns the parameter settings in registration order.
func (m *Measurement) ParamSettings() []schema.ParamSetting { return slices.Clone(m.paramSettings) }

func (m *Measurement) summary() *schema.MeasurementSummary {
	return &schema.MeasurementSummary{
		Name:          m.name,
		Lumi:          m.lumi,
		LumiErr:       m.lumiErr,
		POIs:          m.POIs(),
		ParamSettings: m.ParamSettings(),
	}
}
