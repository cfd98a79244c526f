// Package main times the gmap CLI on local repositories.
// Each command runs once without a cache, then repeatedly against a fresh sqlite cache:
// the first cached run is cold (every commit diffed) and the rest are warm (nothing to diff).
// Results are written as CSV and printed as a table.
//
// Prerequisites:
// - gmap binary installed and available in PATH
// - Test repositories cloned to the specified base directory
//
// Usage: go run benchmark/main.go <repo-base-dir> [repo...]
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

	"github.com/olekukonko/tablewriter"
)

// defaultRepos are used when no repositories are named on the command line.
var defaultRepos = []string{"csv-parser", "fd", "git", "kubernetes"}

// benchmarkResult holds the timings of one command on one repository.
type benchmarkResult struct {
	Repository  string
	Command     string
	Commits     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// benchmarkConfig holds configuration for the benchmark run.
type benchmarkConfig struct {
	RepoBase  string
	Repos     []string
	Timeout   time.Duration
	CacheRuns int
}

// benchmarkCommand is one gmap invocation to time.
type benchmarkCommand struct {
	name string
	args []string
}

var commands = []benchmarkCommand{
	{"sync", []string{"sync", "--color", "no"}},
	{"sync-90d", []string{"sync", "--color", "no", "--since", "90 days ago"}},
	{"dump", []string{"dump", "--output", "csv", "--output-file", os.DevNull}},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s <repo-base-dir> [repo...]\n", os.Args[0])
		os.Exit(1)
	}

	config := benchmarkConfig{
		RepoBase:  os.Args[1],
		Repos:     defaultRepos,
		Timeout:   10 * time.Minute,
		CacheRuns: 4,
	}
	if len(os.Args) > 2 {
		config.Repos = os.Args[2:]
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

// checkPrerequisites verifies that the gmap binary and test repositories exist.
func checkPrerequisites(config benchmarkConfig) error {
	if _, err := exec.LookPath("gmap"); err != nil {
		return errors.New("gmap binary not found in PATH")
	}
	for _, repo := range config.Repos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes every command across the configured repositories.
func runBenchmarks(config benchmarkConfig) []benchmarkResult {
	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d cached runs\n", len(config.Repos), config.Timeout, config.CacheRuns)

	var results []benchmarkResult
	for _, repo := range config.Repos {
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, c := range commands {
			results = append(results, runBenchmarkSuite(config, repo, repoPath, c))
		}
	}
	return results
}

// runBenchmarkSuite times a command without a cache and then against a freshly cleared one.
func runBenchmarkSuite(config benchmarkConfig, repo, repoPath string, c benchmarkCommand) benchmarkResult {
	fmt.Printf("Running %s on %s\n", c.name, repo)
	result := benchmarkResult{Repository: repo, Command: c.name, Commits: "?"}

	noCache, _, err := timeRun(config, repoPath, append(c.args, "--cache-backend", "none"))
	result.NoCacheTime = formatSeconds(noCache, err)

	if _, _, err := timeRun(config, repoPath, []string{"cache", "clear"}); err != nil {
		fmt.Printf("  Warning: failed to clear cache: %v\n", err)
	}

	var warm []float64
	for run := range config.CacheRuns {
		secs, output, err := timeRun(config, repoPath, c.args)
		if run == 0 {
			result.ColdTime = formatSeconds(secs, err)
			result.Commits = commitsInRange(output)
			continue
		}
		if err == nil {
			warm = append(warm, secs)
		}
	}
	result.WarmTime = "TIMEOUT"
	if len(warm) > 0 {
		var sum float64
		for _, w := range warm {
			sum += w
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}

	fmt.Printf("  No-cache: %s, Cold: %s, Warm average: %s\n", result.NoCacheTime, result.ColdTime, result.WarmTime)
	return result
}

// timeRun runs gmap once in repoPath and returns the elapsed seconds and combined output.
func timeRun(config benchmarkConfig, repoPath string, args []string) (float64, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "gmap", args...)
	cmd.Dir = repoPath
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, string(output), fmt.Errorf("%s: %w", strings.Join(args, " "), err)
	}
	return time.Since(start).Seconds(), string(output), nil
}

// commitsInRange pulls the commit count out of a sync summary table.
func commitsInRange(output string) string {
	for line := range strings.SplitSeq(output, "\n") {
		if !strings.Contains(line, "Commits in range") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == '|' || r == '│' || r == ' ' })
		if len(fields) > 0 {
			return fields[len(fields)-1]
		}
	}
	return "?"
}

func formatSeconds(secs float64, err error) string {
	if err != nil {
		return "FAILED"
	}
	return fmt.Sprintf("%.3fs", secs)
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []benchmarkResult) error {
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("gmap_benchmark_%s.csv", time.Now().Format("20060102_150405")))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "cmd", "commits", "no_cache", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Repository, r.Command, r.Commits, r.NoCacheTime, r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results.
func printSummary(results []benchmarkResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Repo", "Command", "Commits", "No cache", "Cold", "Warm"})
	for _, r := range results {
		_ = table.Append([]string{r.Repository, r.Command, r.Commits, r.NoCacheTime, r.ColdTime, r.WarmTime})
	}
	_ = table.Render()
}
