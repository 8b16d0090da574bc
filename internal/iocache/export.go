package iocache

import (
	"errors"
	"fmt"

	"github.com/hfconf/hfconf/internal/parquet"
)

// ExecuteRunsExport exports recorded runs and yields to Parquet files.
func ExecuteRunsExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run tracking is not enabled; set --runs-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total yield records: %d\n", status.TableSizes[yieldsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	yields, err := store.GetAllYields()
	if err != nil {
		return fmt.Errorf("failed to retrieve yields: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetYields := parquet.ConvertYieldRecords(yields)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	yieldsFile := outputFile + ".yields.parquet"
	if err := parquet.WriteYieldsParquet(parquetYields, yieldsFile); err != nil {
		return fmt.Errorf("failed to write yields: %w", err)
	}
	fmt.Printf("Exported %d yield records to: %s\n", len(parquetYields), yieldsFile)

	fmt.Println("\nExport complete! The Parquet files can be read with pandas, DuckDB or uproot-based tooling.")

	return nil
}
