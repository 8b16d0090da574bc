// Package main provides a performance benchmarking tool for the hfconf CLI.
// It measures build times for a set of analysis files with and without run
// tracking, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - hfconf binary installed and available in PATH
//
// Usage: go run benchmark/main.go [analysis-dir]
//
//	analysis-dir: Directory containing analysis YAML files
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (untracked average, cold run and average of warm runs).
type BenchmarkResult struct {
	Analysis    string
	Command     string
	NoTrackTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	AnalysisDir string
	Timeout     time.Duration
	NoTrackRuns int
	TrackRuns   int
	RunsDB      string
	Analyses    []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [analysis-dir]\n", os.Args[0])
		os.Exit(1)
	}
	analysisDir := os.Args[1]

	analyses, err := filepath.Glob(filepath.Join(analysisDir, "*.yaml"))
	if err != nil || len(analyses) == 0 {
		fmt.Printf("No analysis files found in %s\n", analysisDir)
		os.Exit(1)
	}

	config := BenchmarkConfig{
		AnalysisDir: analysisDir,
		Timeout:     time.Minute,
		NoTrackRuns: 3,
		TrackRuns:   4,
		RunsDB:      filepath.Join(os.TempDir(), "hfconf_benchmark_runs.db"),
		Analyses:    analyses,
	}

	if _, err := exec.LookPath("hfconf"); err != nil {
		fmt.Printf("Prerequisites check failed: hfconf binary not found in PATH\n")
		os.Exit(1)
	}

	// Clear previous runs using hfconf runs clear
	fmt.Printf("Clearing runs...\n")
	clearCmd := exec.Command("hfconf", "runs", "clear", "--runs-backend", "sqlite", "--runs-db-connect", config.RunsDB)
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear runs: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Runs cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes all benchmark tests across configured analyses
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d analyses, %v timeout, untracked: %d runs, tracked: %d runs\n",
		len(config.Analyses), config.Timeout, config.NoTrackRuns, config.TrackRuns)

	for _, path := range config.Analyses {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		fmt.Printf("Benchmarking %s\n", name)

		results = append(results, runBenchmarkSuite(config, name, path, "build", ""))
		results = append(results, runBenchmarkSuite(config, name, path, "build", "--output json"))
		results = append(results, runBenchmarkSuite(config, name, path, "check", ""))
	}

	return results
}

// runBenchmarkSuite runs both untracked and tracked benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, name, path, command, extraArgs string) BenchmarkResult {
	label := strings.TrimSpace(command + " " + extraArgs)
	fmt.Printf("Running %s on %s\n", label, name)

	runPhase := func(backend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, command, extraArgs, backend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: Untracked runs
	_, noTrackAvg := runPhase("none", config.NoTrackRuns, "Untracked")

	// Phase 2: Tracked runs
	coldTime, warmAvg := runPhase("sqlite", config.TrackRuns, "Tracked")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  Untracked average: %s, Cold time: %s, Warm average: %s\n", noTrackAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Analysis:    name,
		Command:     label,
		NoTrackTime: noTrackAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes an hfconf command multiple times with the given runs backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, path, command, extraArgs, backend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, path, "--runs-backend", backend}
	if backend == "sqlite" {
		args = append(args, "--runs-db-connect", config.RunsDB)
	}
	if extraArgs != "" {
		args = append(args, strings.Fields(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("hfconf", args...)

		done := make(chan bool, 1)
		var cmdErr error

		go func() {
			_, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/hfconf_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"analysis", "cmd", "untracked_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Analysis, result.Command, result.NoTrackTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-20s %-18s: Untracked: %s, Cold: %s, Warm: %s\n",
			result.Analysis, result.Command, result.NoTrackTime, result.ColdTime, result.WarmTime)
	}
}
