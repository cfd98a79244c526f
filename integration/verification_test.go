//go:build basic

// Package integration contains end-to-end tests for the gmap binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Database backends need Docker: go test -tags database ./integration
package integration

import (
	"bufio"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncIsIncremental(t *testing.T) {
	dir := newFixtureRepo(t)

	first := syncSummary(t, dir, nil)
	assert.EqualValues(t, len(fixtureHistory), first["computed"])
	assert.EqualValues(t, 0, first["cached"])

	second := syncSummary(t, dir, nil)
	assert.EqualValues(t, len(fixtureHistory), second["cached"])
	assert.EqualValues(t, 0, second["computed"])

	_, err := os.Stat(filepath.Join(dir, ".gmap", "cache.db"))
	assert.NoError(t, err, "default sqlite cache lives under the repository")

	out, err := runGmap(t, dir, nil, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")

	_, err = runGmap(t, dir, nil, "cache", "clear")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ".gmap", "cache.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestDryRunLeavesCacheEmpty(t *testing.T) {
	dir := newFixtureRepo(t)

	plan := syncSummary(t, dir, nil, "--dry-run")
	assert.EqualValues(t, len(fixtureHistory), plan["computed"])

	again := syncSummary(t, dir, nil, "--dry-run")
	assert.EqualValues(t, len(fixtureHistory), again["computed"])
}

func TestShowHead(t *testing.T) {
	dir := newFixtureRepo(t)

	out, err := runGmap(t, dir, nil, "show", "HEAD", "--color", "no", "--width", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "drop readme")
	assert.Contains(t, out, "README.md")
	assert.Contains(t, out, "1 files changed, 0 insertions(+), 1 deletions(-)")
}

// TestDumpMatchesGitNumstat compares dumped rows against git log --numstat.
func TestDumpMatchesGitNumstat(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := newFixtureRepo(t)

	out := filepath.Join(t.TempDir(), "dump.json")
	_, err := runGmap(t, dir, nil, "dump", "--output", "json", "--output-file", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var rows []struct {
		CommitID     string `json:"commit_id"`
		Path         string `json:"path"`
		AddedLines   int    `json:"added_lines"`
		DeletedLines int    `json:"deleted_lines"`
	}
	require.NoError(t, json.Unmarshal(data, &rows))

	got := make(map[string][2]int)
	for _, r := range rows {
		got[r.CommitID+" "+r.Path] = [2]int{r.AddedLines, r.DeletedLines}
	}

	want := gitNumstat(t, dir)
	assert.Equal(t, want, got)
}

// gitNumstat returns "<commit> <path>" -> {added, deleted} for text files.
func gitNumstat(t *testing.T, dir string) map[string][2]int {
	t.Helper()
	cmd := exec.Command("git", "log", "--numstat", "--format=@%H", "--no-renames")
	cmd.Dir = dir
	output, err := cmd.Output()
	require.NoError(t, err)

	stats := make(map[string][2]int)
	var commit string
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		line := scanner.Text()
		if id, ok := strings.CutPrefix(line, "@"); ok {
			commit = id
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 || fields[0] == "-" {
			continue // blank line or binary file
		}
		added, err := strconv.Atoi(fields[0])
		require.NoError(t, err)
		deleted, err := strconv.Atoi(fields[1])
		require.NoError(t, err)
		stats[commit+" "+fields[2]] = [2]int{added, deleted}
	}
	require.NoError(t, scanner.Err())
	return stats
}
