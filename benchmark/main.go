// Package main provides a performance benchmarking tool for the debtlens CLI.
// It measures how long a full analysis of a data directory takes with the
// cache disabled, on a cold SQLite cache, and on a warm one, for several
// worker counts. Each hotspot ranking of the largest dataset is timed as well.
// Results are written as CSV for documentation.
//
// Prerequisites:
// - debtlens binary installed and available in PATH
// - A data directory of <owner>.<name>_repo_analysis.csv files
//
// Usage: go run benchmark/main.go [data-dir]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const datasetSuffix = "_repo_analysis.csv"

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Command     string
	Workers     int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DataDir     string
	CacheFile   string
	Timeout     time.Duration
	WorkerSets  []int
	NoCacheRuns int
	CacheRuns   int
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [data-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		DataDir:     os.Args[1],
		CacheFile:   filepath.Join(os.TempDir(), "debtlens_benchmark_cache.db"),
		Timeout:     10 * time.Minute,
		WorkerSets:  []int{1, 4, 8},
		NoCacheRuns: 2,
		CacheRuns:   3,
	}

	largest, err := checkPrerequisites(config)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, largest)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies the binary and the data directory, returning
// the repository with the largest dataset.
func checkPrerequisites(config BenchmarkConfig) (string, error) {
	if _, err := exec.LookPath("debtlens"); err != nil {
		return "", fmt.Errorf("debtlens binary not found in PATH")
	}

	entries, err := os.ReadDir(config.DataDir)
	if err != nil {
		return "", fmt.Errorf("data directory %s: %w", config.DataDir, err)
	}
	var largest string
	var largestSize int64
	for _, e := range entries {
		repo, ok := strings.CutSuffix(e.Name(), datasetSuffix)
		if e.IsDir() || !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return "", err
		}
		if info.Size() > largestSize {
			largest, largestSize = repo, info.Size()
		}
	}
	if largest == "" {
		return "", fmt.Errorf("no datasets found in %s", config.DataDir)
	}
	return largest, nil
}

// runBenchmarks executes the analysis for every worker count, then the hotspot ranking.
func runBenchmarks(config BenchmarkConfig, largest string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %s, %v timeout, workers %v, no-cache: %d runs, cache: %d runs\n",
		config.DataDir, config.Timeout, config.WorkerSets, config.NoCacheRuns, config.CacheRuns)

	for _, workers := range config.WorkerSets {
		args := []string{"analyze", "--workers", strconv.Itoa(workers)}
		results = append(results, runBenchmarkSuite(config, "analyze", workers, args))
	}

	args := []string{"hotspots", largest, "--limit", "50"}
	results = append(results, runBenchmarkSuite(config, "hotspots", 1, args))

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, command string, workers int, args []string) BenchmarkResult {
	fmt.Printf("Running %s with %d workers\n", command, workers)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, args, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "N/A"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	// Phase 1: No-cache runs
	noCacheCold, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	if noCacheAvg == "N/A" && noCacheCold > 0 {
		noCacheAvg = fmt.Sprintf("%.3fs", noCacheCold)
	}

	// Phase 2: Cache runs, starting from an empty cache
	_ = os.Remove(config.CacheFile)
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Command:     command,
		Workers:     workers,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a debtlens command multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command string, args []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	fullArgs := append([]string{}, args...)
	fullArgs = append(fullArgs,
		"--data-dir", config.DataDir,
		"--output-dir", filepath.Join(os.TempDir(), "debtlens_benchmark_out"),
		"--cache-backend", cacheBackend,
		"--cache-db-connect", config.CacheFile,
	)

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "debtlens", fullArgs...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil && isSuccess(output, command) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "hotspots" {
		return strings.Contains(outputStr, "Ranking completed in")
	}
	return strings.Contains(outputStr, "Analysis completed in") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("debtlens_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"cmd", "workers", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		row := []string{result.Command, strconv.Itoa(result.Workers), result.NoCacheTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(row); err != nil {
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
		fmt.Printf("  %-9s %2d workers: No-cache: %s, Cold: %s, Warm: %s\n",
			result.Command, result.Workers, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
