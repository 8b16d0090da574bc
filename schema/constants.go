package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string

	// SystematicKind tells an overall normalization uncertainty apart from a per-bin shape one.
	SystematicKind string

	// SystematicOrigin classifies who defined a systematic.
	SystematicOrigin string

	// ChannelRole is the role a channel plays in the fit.
	ChannelRole string

	// Severity grades a lint finding.
	Severity string
)

// Custom int types mirroring the fitting engine's enumerations.
type (
	// CalculatorType selects the hypothesis test calculator.
	CalculatorType int

	// TestStatType selects the test statistic.
	TestStatType int
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All systematic kinds supported.
const (
	OverallSys     SystematicKind = "overallSys"
	HistoSys       SystematicKind = "histoSys"
	UserOverallSys SystematicKind = "userOverallSys"
	UserHistoSys   SystematicKind = "userHistoSys"
)

// All systematic origins supported.
const (
	UserOrigin   SystematicOrigin = "user"
	TreeOrigin   SystematicOrigin = "tree"
	WeightOrigin SystematicOrigin = "weight"
)

// All channel roles supported.
const (
	SignalRole       ChannelRole = "signal"
	BkgConstrainRole ChannelRole = "bkg_constrain"
	UnassignedRole   ChannelRole = "unassigned"
)

// All lint severities.
const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Calculator types understood by the fitting engine.
const (
	FrequentistCalculator CalculatorType = 0
	HybridCalculator      CalculatorType = 1
	AsymptoticCalculator  CalculatorType = 2
)

// Test statistics understood by the fitting engine.
const (
	SimpleLikelihoodRatio     TestStatType = 0
	RatioOfProfiled           TestStatType = 1
	ProfileLikelihood         TestStatType = 2
	OneSidedProfileLikelihood TestStatType = 3 // LHC default
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid run store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSystematicKinds lists all valid systematic kinds.
var ValidSystematicKinds = map[SystematicKind]struct{}{
	OverallSys:     {},
	HistoSys:       {},
	UserOverallSys: {},
	UserHistoSys:   {},
}

// ValidSystematicOrigins lists all valid systematic origins.
var ValidSystematicOrigins = map[SystematicOrigin]struct{}{
	UserOrigin:   {},
	TreeOrigin:   {},
	WeightOrigin: {},
}

// ValidCalculatorTypes lists the calculator types with their display names.
var ValidCalculatorTypes = map[CalculatorType]string{
	FrequentistCalculator: "frequentist",
	HybridCalculator:      "hybrid",
	AsymptoticCalculator:  "asymptotic",
}

// ValidTestStatTypes lists the test statistics with their display names.
var ValidTestStatTypes = map[TestStatType]string{
	SimpleLikelihoodRatio:     "simple-likelihood-ratio",
	RatioOfProfiled:           "ratio-of-profiled",
	ProfileLikelihood:         "profile-likelihood",
	OneSidedProfileLikelihood: "one-sided-profile-likelihood",
}

// IsShape reports whether the kind carries one factor per bin.
func (k SystematicKind) IsShape() bool {
	return k == HistoSys || k == UserHistoSys
}

// IsUser reports whether the kind is only valid for user-defined systematics.
func (k SystematicKind) IsUser() bool {
	return k == UserOverallSys || k == UserHistoSys
}

// String returns the display name of the calculator.
func (c CalculatorType) String() string {
	if name, ok := ValidCalculatorTypes[c]; ok {
		return name
	}
	return "unknown"
}

// String returns the display name of the test statistic.
func (t TestStatType) String() string {
	if name, ok := ValidTestStatTypes[t]; ok {
		return name
	}
	return "unknown"
}
