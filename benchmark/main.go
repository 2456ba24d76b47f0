// Package main measures how much the query cache saves for the snowdash CLI.
// Each command runs without a cache and then against a fresh SQLite cache,
// treating the first cached run as cold and averaging the rest as warm,
// and the results are written to a CSV file for documentation.
//
// Prerequisites:
// - snowdash binary installed and available in PATH
// - SNOWDASH_WAREHOUSE_BACKEND and SNOWDASH_WAREHOUSE_DSN pointing at a warehouse
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory used for the SQLite cache and the CSV report
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Commands    map[string]string // command -> completion phrase
	Order       []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Commands: map[string]string{
			"dashboard":  "Dashboard loaded in",
			"trends":     "Trends loaded in",
			"efficiency": "Efficiency loaded in",
			"anomalies":  "Anomalies loaded in",
		},
		Order: []string{"trends", "efficiency", "anomalies", "dashboard"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(config, results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the snowdash binary and warehouse settings exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("snowdash"); err != nil {
		return errors.New("snowdash binary not found in PATH")
	}
	if os.Getenv("SNOWDASH_WAREHOUSE_DSN") == "" {
		return errors.New("SNOWDASH_WAREHOUSE_DSN is not set")
	}
	if info, err := os.Stat(config.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("work dir %s is not a directory", config.WorkDir)
	}
	return nil
}

// runBenchmarks executes the no-cache and cache phases for every command
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %d commands, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Order), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	results := make([]BenchmarkResult, 0, len(config.Order))
	for _, command := range config.Order {
		results = append(results, runBenchmarkSuite(config, command))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, command string) BenchmarkResult {
	fmt.Printf("Running %s\n", command)

	// Each suite starts from an empty cache so the first cached run is cold
	cachePath := filepath.Join(config.WorkDir, "snowdash-bench-"+command+".db")
	_ = os.Remove(cachePath)
	defer func() { _ = os.Remove(cachePath) }()

	// Helper to run a benchmark phase
	runPhase := func(cacheArgs []string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, cacheArgs, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase([]string{"--cache-backend", "none"}, config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase([]string{"--cache-backend", "sqlite", "--cache-db-connect", cachePath}, config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a snowdash command several times and returns the cold time and warm times.
// In the no-cache phase every run is effectively cold, so callers only use the averages.
func runBenchmark(config BenchmarkConfig, command string, cacheArgs []string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{command, "--emoji", "no", "--color", "no"}, cacheArgs...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "snowdash", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil && strings.Contains(string(output), config.Commands[command]) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
		if len(warmTimes) == 0 {
			warmTimes = times
		}
	}
	return coldTime, warmTimes
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(config BenchmarkConfig, results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(config.WorkDir, fmt.Sprintf("snowdash_benchmark_%s.csv", timestamp))

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

	// Write header
	if err := writer.Write([]string{"cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
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
		fmt.Printf("  %-10s: No-cache: %s, Cold: %s, Warm: %s\n", result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
