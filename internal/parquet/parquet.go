// Package parquet provides data structures and functions for exporting build
// runs and sample yields to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hfconf/hfconf/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single recorded build run.
// This struct maps to the hfconf_runs database table.
type Run struct {
	RunID        int64  `parquet:"run_id,snappy"`
	AnalysisName string `parquet:"analysis_name,snappy,dict"`

	// StartTime is when the build began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is nil for runs that never completed
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`

	FitConfigCount int32 `parquet:"fit_config_count,snappy"`
	SampleCount    int32 `parquet:"sample_count,snappy"`
	FindingCount   int32 `parquet:"finding_count,snappy"`

	// ConfigParams contains the JSON-encoded CLI configuration (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Yield is one bin of one sample histogram as handed off by a build.
type Yield struct {
	// RunID is zero for yields written directly by a build without run tracking
	RunID     int64    `parquet:"run_id,snappy"`
	FitConfig string   `parquet:"fit_config,snappy,dict"`
	Sample    string   `parquet:"sample,snappy,dict"`
	Region    string   `parquet:"region,snappy,dict"`
	Channel   string   `parquet:"channel,snappy,dict"`
	Bin       int32    `parquet:"bin,snappy"`
	Yield     float64  `parquet:"yield,snappy"`
	StatError *float64 `parquet:"stat_error,optional,snappy"`
	IsData    bool     `parquet:"is_data,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteYieldsParquet writes a slice of Yield structs to a Parquet file.
func WriteYieldsParquet(data []Yield, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteYields writes yields to an open stream, e.g. the build output file.
func WriteYields(w io.Writer, data []Yield) error {
	// The schema is derived from the Yield struct tags
	writer := parquet.NewGenericWriter[Yield](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:          record.RunID,
			AnalysisName:   record.AnalysisName,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			FitConfigCount: record.FitConfigCount,
			SampleCount:    record.SampleCount,
			FindingCount:   record.FindingCount,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertYieldRecords converts schema.YieldRecord to Yield for Parquet export.
func ConvertYieldRecords(records []schema.YieldRecord) []Yield {
	result := make([]Yield, len(records))
	for i, record := range records {
		result[i] = Yield{
			RunID:     record.RunID,
			FitConfig: record.FitConfig,
			Sample:    record.Sample,
			Region:    record.Region,
			Channel:   record.Channel,
			Bin:       record.Bin,
			Yield:     record.Yield,
			StatError: record.StatError,
			IsData:    record.IsData,
		}
	}
	return result
}

// ConvertYieldRows converts the flattened yields of a build. Rows without a
// recorded stat error keep a null stat_error.
func ConvertYieldRows(rows []schema.YieldRow) []Yield {
	result := make([]Yield, len(rows))
	for i, row := range rows {
		result[i] = Yield{
			FitConfig: row.FitConfig,
			Sample:    row.Sample,
			Region:    row.Region,
			Channel:   row.Channel,
			Bin:       int32(row.Bin),
			Yield:     row.Yield,
			IsData:    row.IsData,
		}
		if row.HasError {
			statErr := row.StatError
			result[i].StatError = &statErr
		}
	}
	return result
}
