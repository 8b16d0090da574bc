package schema

import "time"

// RunRecord represents a row from the hfconf_runs table.
type RunRecord struct {
	RunID          int64
	AnalysisName   string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	FitConfigCount int32
	SampleCount    int32
	FindingCount   int32
	ConfigParams   *string
}

// YieldRecord represents a row from the hfconf_yields table.
type YieldRecord struct {
	RunID     int64
	FitConfig string
	Sample    string
	Region    string
	Channel   string
	Bin       int32
	Yield     float64
	StatError *float64
	IsData    bool
}

// RunCounts summarizes what a build run handed off.
type RunCounts struct {
	FitConfigs int
	Samples    int
	Findings   int
}
