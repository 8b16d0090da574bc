package iocache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hfconf/hfconf/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// withRunStore swaps the global run store for the duration of a test.
func withRunStore(t *testing.T, store *MockRunStore) {
	t.Helper()
	Manager.Lock()
	prev := Manager.runs
	if store != nil {
		Manager.runs = store
	} else {
		Manager.runs = nil
	}
	Manager.Unlock()
	t.Cleanup(func() {
		Manager.Lock()
		Manager.runs = prev
		Manager.Unlock()
	})
}

func TestExecuteRunsExport_RequiresOutputFile(t *testing.T) {
	err := ExecuteRunsExport("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--output-file")
}

func TestExecuteRunsExport_NoStore(t *testing.T) {
	withRunStore(t, nil)
	err := ExecuteRunsExport(filepath.Join(t.TempDir(), "out"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not enabled")
}

func TestExecuteRunsExport_Empty(t *testing.T) {
	store := &MockRunStore{}
	store.On("GetStatus").Return(schema.RunStoreStatus{Backend: "sqlite", Connected: true}, nil)
	withRunStore(t, store)

	err := ExecuteRunsExport(filepath.Join(t.TempDir(), "out"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no run data")
	store.AssertExpectations(t)
}

func TestExecuteRunsExport_StatusError(t *testing.T) {
	store := &MockRunStore{}
	store.On("GetStatus").Return(schema.RunStoreStatus{}, errors.New("boom"))
	withRunStore(t, store)

	err := ExecuteRunsExport(filepath.Join(t.TempDir(), "out"))
	assert.ErrorContains(t, err, "boom")
}

func TestExecuteRunsExport_WritesFiles(t *testing.T) {
	statErr := 2.5
	store := &MockRunStore{}
	store.On("GetStatus").Return(schema.RunStoreStatus{
		Backend:    "sqlite",
		Connected:  true,
		TotalRuns:  1,
		TableSizes: map[string]int64{runsTable: 1, yieldsTable: 1},
	}, nil)
	store.On("GetAllRuns").Return([]schema.RunRecord{{RunID: 1, AnalysisName: "hf_test", StartTime: time.Now()}}, nil)
	store.On("GetAllYields").Return([]schema.YieldRecord{
		{RunID: 1, FitConfig: "SPlusB", Sample: "Top", Region: "CR1", Channel: "cuts", Yield: 42, StatError: &statErr},
	}, nil)
	withRunStore(t, store)

	out := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExecuteRunsExport(out))

	for _, suffix := range []string{".runs.parquet", ".yields.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	store.AssertExpectations(t)
}

func TestMockStoreManager(t *testing.T) {
	store := &MockRunStore{}
	mgr := &MockStoreManager{}
	mgr.On("GetRunStore").Return(store)
	assert.Same(t, store, mgr.GetRunStore())

	store.On("BeginRun", mock.Anything, "hf_test", mock.Anything).Return(int64(5), nil)
	id, err := mgr.GetRunStore().BeginRun(time.Now(), "hf_test", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
}
