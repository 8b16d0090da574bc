package iocache

import (
	"fmt"
	"slices"

	"github.com/hfconf/hfconf/schema"
)

// PrintRunStatus prints run store status information.
func PrintRunStatus(status schema.RunStoreStatus) {
	fmt.Printf("Run Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run ID: %d\n", status.LastRunID)
		fmt.Printf("Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Total Yields Recorded: %d\n", status.TotalYields)
	}
	fmt.Println("Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
	if status.StorageBytes > 0 {
		fmt.Printf("Storage Size: %d bytes\n", status.StorageBytes)
	}
}
