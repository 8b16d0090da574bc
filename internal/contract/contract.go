// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/hfconf/hfconf/schema"
)

// StoreManager defines the interface for reaching the configured stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking build runs and the yields they handed off.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, analysisName string, configParams map[string]any) (int64, error)

	// RecordYields stores the flattened yields of a run
	RecordYields(runID int64, rows []schema.YieldRow) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, counts schema.RunCounts) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// GetAllRuns returns every recorded run in ID order
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllYields returns every recorded yield row
	GetAllYields() ([]schema.YieldRecord, error)

	// Close closes the underlying connection
	Close() error
}
