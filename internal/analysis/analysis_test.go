package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hfconf/hfconf/core"
	"github.com/hfconf/hfconf/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_HFTest(t *testing.T) {
	reg, err := LoadFile(filepath.Join("testdata", "hf_test.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "hf_test", reg.AnalysisName)
	assert.Equal(t, "results/hf_tests_Output.root", reg.ResolvedOutputFileName())
	assert.Equal(t, schema.AsymptoticCalculator, reg.CalculatorType)
	assert.Equal(t, schema.OneSidedProfileLikelihood, reg.TestStatType)
	assert.Equal(t, core.DefaultNToys, reg.NToys)
	assert.True(t, reg.KeepSignalRegionType)
	assert.True(t, reg.ExecuteHistFactory)
	assert.Equal(t, []string{"SignalRegion", "SignalRegion2", "ControlRegion"}, reg.Regions())

	fc, ok := reg.FitConfig("SPlusB")
	require.True(t, ok)
	require.Len(t, fc.Samples(), 4)
	assert.Equal(t, "Sig", fc.SignalSample().Name())
	assert.Equal(t, "Data", fc.DataSample().Name())
	assert.Len(t, fc.SignalChannels(), 2)
	assert.Len(t, fc.BkgConstrainChannels(), 1)

	bkg, ok := fc.Sample("Bkg1")
	require.True(t, ok)
	assert.Equal(t, schema.KGreen-9, bkg.Color())
	assert.True(t, bkg.StatConfig())
	yields, ok := bkg.Yields("ControlRegion", "cuts")
	require.True(t, ok)
	assert.Equal(t, []float64{70}, yields)
	errs, ok := bkg.StatErrors("ControlRegion", "cuts")
	require.True(t, ok)
	assert.InDelta(t, 1.6733, errs[0], 1e-4)
	nf, ok := bkg.NormFactor()
	require.True(t, ok)
	assert.Equal(t, "mu_bkg", nf.Name)
	assert.Equal(t, []schema.NormRegion{{Region: "ControlRegion", Channel: "cuts"}}, bkg.NormRegions())

	// Correlated systematics share a name with different factors.
	sig, ok := fc.Sample("Sig")
	require.True(t, ok)
	require.Len(t, sig.Systematics(), 2)
	assert.Equal(t, "cor", sig.Systematics()[0].Name())
	assert.Equal(t, []float64{1.15}, sig.Systematics()[0].High())
	assert.Equal(t, "cor", bkg.Systematics()[0].Name())
	assert.Equal(t, []float64{1.1}, bkg.Systematics()[0].High())

	// setNormByTheory after setNormFactor: the later call wins.
	assert.True(t, sig.NormByTheory())
	_, ok = sig.NormFactor()
	assert.False(t, ok)

	m := fc.Measurement()
	require.NotNil(t, m)
	assert.Equal(t, []string{"mu_Sig"}, m.POIs())
	assert.InDelta(t, 0.039, m.LumiErr(), 1e-12)
}

func TestLoadFile_UserAnalysisExtra(t *testing.T) {
	reg, err := LoadFile(filepath.Join("testdata", "my_user_analysis_extra.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, reg.NToys)
	assert.Equal(t, schema.FrequentistCalculator, reg.CalculatorType)
	assert.True(t, reg.WriteXML)
	assert.True(t, reg.AutoScan)

	fc, ok := reg.FitConfig("SPlusB")
	require.True(t, ok)
	require.Len(t, fc.Channels(), 2)
	assert.Equal(t, schema.UnassignedRole, fc.Channels()[0].Role())
	assert.Equal(t, schema.SignalRole, fc.Channels()[1].Role())

	bkg2, ok := fc.Sample("Bkg2")
	require.True(t, ok)
	assert.Equal(t, schema.KBlue-9, bkg2.Color())
	assert.Equal(t, core.DefaultWeights, bkg2.Systematics()[0].Weights())
	assert.Equal(t, schema.UserHistoSys, bkg2.Systematics()[0].Kind())
	assert.Equal(t, schema.UserOverallSys, bkg2.Systematics()[1].Kind())

	findings := core.Lint(reg)
	assert.True(t, core.HasWarnings(findings))
}

func TestLoad_Errors(t *testing.T) {
	base := `
analysis:
  name: broken
  cuts: {SR: "1."}
systematics:
  - {name: ucb, high: 1.2, low: 0.8}
`
	tests := []struct {
		name    string
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "data with systematic",
			body:    "samples:\n  - name: Data\n    ops:\n      - data\n      - systematic: ucb\n",
			wantErr: core.ErrInvariantViolation,
			wantMsg: "sample Data: systematic",
		},
		{
			name:    "stat errors mismatch",
			body:    "samples:\n  - name: Bkg\n    ops:\n      - histo: {region: SR, channel: cuts, yields: [1, 2], bin_width: 0.5}\n      - stat_errors: {region: SR, channel: cuts, errors: [1]}\n",
			wantErr: core.ErrShapeMismatch,
			wantMsg: "line 11",
		},
		{
			name:    "unknown systematic",
			body:    "samples:\n  - name: Bkg\n    ops:\n      - systematic: nope\n",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "unknown op",
			body:    "samples:\n  - name: Bkg\n    ops:\n      - build_histo: {}\n",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "duplicate fit config",
			body:    "fit_configs:\n  - name: SPlusB\n  - name: SPlusB\n",
			wantErr: core.ErrDuplicateName,
		},
		{
			name:    "unknown poi",
			body:    "samples:\n  - name: Bkg\nfit_configs:\n  - name: SPlusB\n    samples: [Bkg]\n    measurement: {name: m, lumi: 1, lumi_err: 0.039, pois: [mu_unknown]}\n",
			wantErr: core.ErrUnknownParameter,
		},
		{
			name:    "channel conflict",
			body:    "fit_configs:\n  - name: SPlusB\n    channels:\n      - {id: sr, name: cuts, regions: [SR], n_bins: 1, low: 0.5, high: 1.5}\n    signal_channels: [sr]\n    bkg_constrain_channels: [sr]\n",
			wantErr: core.ErrChannelConflict,
		},
		{
			name:    "two data samples",
			body:    "samples:\n  - name: D1\n    ops: [data]\n  - name: D2\n    ops: [data]\nfit_configs:\n  - name: SPlusB\n    samples: [D1, D2]\n",
			wantErr: core.ErrInvariantViolation,
		},
		{
			name:    "unknown sample",
			body:    "fit_configs:\n  - name: SPlusB\n    samples: [Ghost]\n",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "bad color",
			body:    "samples:\n  - name: Bkg\n    color: kPurple\n",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "non-finite param setting",
			body:    "fit_configs:\n  - name: SPlusB\n    measurement: {name: m, lumi: 1, param_settings: [{name: Lumi, value: .inf}]}\n",
			wantErr: core.ErrInvalidInput,
			wantMsg: "non-finite",
		},
		{
			name:    "bad range",
			body:    "samples:\n  - name: Bkg\n    ops:\n      - norm_factor: {name: mu, initial: 1, low: 10, high: 0}\n",
			wantErr: core.ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(base + tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoad_InvalidSystematic(t *testing.T) {
	_, err := Load([]byte("analysis: {name: x}\nsystematics:\n  - {name: bad, high: 0, low: 0.8}\n"))
	assert.ErrorIs(t, err, core.ErrInvalidSystematic)
	assert.Contains(t, err.Error(), "line 3")
}

func TestLoad_MissingName(t *testing.T) {
	_, err := Load([]byte("analysis: {n_points: 5}\n"))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestLoad_InvalidOptions(t *testing.T) {
	_, err := Load([]byte("analysis: {name: x, n_points: 0}\n"))
	assert.ErrorIs(t, err, core.ErrInvalidRange)
}

func TestDecode_UnknownTopLevelField(t *testing.T) {
	_, err := Load([]byte("analysis: {name: x}\nfitconfigs: []\n"))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = Load(nil)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestLoad_UnknownNestedField(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{
			name:    "measurement",
			doc:     "analysis: {name: x}\nfit_configs:\n  - name: SPlusB\n    measurement: {name: M, lumi: 1.0, lumi_error: 0.039}\n",
			wantMsg: "field lumi_error not found in MeasurementSpec",
		},
		{
			name:    "param setting",
			doc:     "analysis: {name: x}\nfit_configs:\n  - name: SPlusB\n    measurement:\n      name: M\n      lumi: 1.0\n      param_settings:\n        - {name: Lumi, const: true}\n",
			wantMsg: "field const not found in ParamSettingSpec",
		},
		{
			name:    "sample",
			doc:     "analysis: {name: x}\nsamples:\n  - name: Bkg\n    colour: kRed\n",
			wantMsg: "line 4: field colour not found",
		},
		{
			name:    "systematic",
			doc:     "analysis: {name: x}\nsystematics:\n  - {name: ucb, high: 1.2, low: 0.8, weight: \"1.\"}\n",
			wantMsg: "field weight not found",
		},
		{
			name:    "fit config",
			doc:     "analysis: {name: x}\nfit_configs:\n  - name: SPlusB\n    signal: Sig\n",
			wantMsg: "field signal not found",
		},
		{
			name:    "channel",
			doc:     "analysis: {name: x}\nfit_configs:\n  - name: SPlusB\n    channels:\n      - {name: cuts, regions: [SR], nbins: 1, low: 0.5, high: 1.5}\n",
			wantMsg: "field nbins not found",
		},
		{
			name:    "histo argument",
			doc:     "analysis: {name: x}\nsamples:\n  - name: Bkg\n    ops:\n      - histo: {region: SR, channel: cuts, yields: [1], binwidth: 0.5}\n",
			wantMsg: "field binwidth not found in HistoArgs",
		},
		{
			name:    "norm region argument",
			doc:     "analysis: {name: x}\nsamples:\n  - name: Bkg\n    ops:\n      - norm_regions: [{region: CR, chan: cuts}]\n",
			wantMsg: "field chan not found in RegionRef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDocument)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_NestedFieldsAccepted(t *testing.T) {
	doc := `
analysis: {name: x, cuts: {SR: "1."}}
samples:
  - name: Sig
    ops:
      - norm_factor: {name: mu_Sig, initial: 1, low: 0, high: 10}
fit_configs:
  - name: SPlusB
    samples: [Sig]
    measurement:
      name: M
      lumi: 1.0
      lumi_err: 0.039
      pois: [mu_Sig]
      param_settings:
        - {name: Lumi, constant: true, value: 1}
`
	reg, err := Load([]byte(doc))
	require.NoError(t, err)
	fc, ok := reg.FitConfig("SPlusB")
	require.True(t, ok)
	assert.InDelta(t, 0.039, fc.Measurement().LumiErr(), 1e-12)
}

func TestLoad_NormFactorAfterTheory(t *testing.T) {
	doc := `
analysis: {name: x}
samples:
  - name: Sig
    ops:
      - norm_by_theory
      - norm_factor: {name: mu_Sig, initial: 1, low: 0, high: 10}
`
	reg, err := Load([]byte(doc))
	require.NoError(t, err)
	assert.NotNil(t, reg)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
