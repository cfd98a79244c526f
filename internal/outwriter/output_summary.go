package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
)

// PrintSyncSummary outputs a sync summary, dispatching based on the output format configured.
func PrintSyncSummary(summary schema.SyncSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, summary)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported by dump")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryTable(w, summary, cfg)
		}, "Wrote table")
	}
}

// describeRange renders a date range for humans.
func describeRange(rng schema.DateRange) string {
	bound := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.UTC().Format(time.DateTime)
	}
	if rng.IsUnbounded() {
		return "all history"
	}
	return bound(rng.Since) + " .. " + bound(rng.Until)
}

// summaryRows returns the metric/value pairs shown for a summary.
func summaryRows(summary schema.SyncSummary, dryRun bool) [][]string {
	if dryRun {
		return [][]string{
			{"Range", describeRange(summary.Range)},
			{"Commits in range", strconv.Itoa(summary.Commits)},
			{"Already cached", strconv.Itoa(summary.Cached)},
			{"Would compute", strconv.Itoa(summary.Computed)},
		}
	}
	return [][]string{
		{"Range", describeRange(summary.Range)},
		{"Commits in range", strconv.Itoa(summary.Commits)},
		{"From cache", strconv.Itoa(summary.Cached)},
		{"Computed", strconv.Itoa(summary.Computed)},
		{"Stored", strconv.Itoa(summary.Stored)},
		{"Files touched", strconv.Itoa(summary.FilesTouched)},
		{"Lines added", strconv.FormatUint(summary.AddedLines, 10)},
		{"Lines deleted", strconv.FormatUint(summary.DeletedLines, 10)},
	}
}

// writeSummaryTable generates and writes the human-readable summary table.
func writeSummaryTable(w io.Writer, summary schema.SyncSummary, cfg *contract.Config) error {
	p := newPalette(cfg.UseColors)
	title := "Sync"
	if cfg.DryRun {
		title = "Sync (dry run)"
	}
	if _, err := fmt.Fprintln(w, p.header(title)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(summaryRows(summary, cfg.DryRun)); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Completed in %v. Cache backend: %s\n", summary.Elapsed.Round(time.Millisecond), cfg.CacheBackend)
	return err
}

// writeSummaryCSV writes the summary as metric,value rows.
func writeSummaryCSV(w io.Writer, summary schema.SyncSummary) error {
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		rows := [][]string{
			{"commits", strconv.Itoa(summary.Commits)},
			{"cached", strconv.Itoa(summary.Cached)},
			{"computed", strconv.Itoa(summary.Computed)},
			{"stored", strconv.Itoa(summary.Stored)},
			{"files_touched", strconv.Itoa(summary.FilesTouched)},
			{"added_lines", strconv.FormatUint(summary.AddedLines, 10)},
			{"deleted_lines", strconv.FormatUint(summary.DeletedLines, 10)},
			{"elapsed_ms", strconv.FormatInt(summary.Elapsed.Milliseconds(), 10)},
		}
		return cw.WriteAll(rows)
	})
}
