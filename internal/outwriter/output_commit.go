package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
)

// fileRowCSVHeader is shared by the commit and dump CSV writers.
var fileRowCSVHeader = []string{
	"commit_id",
	"author_name",
	"author_email",
	"timestamp",
	"path",
	"added_lines",
	"deleted_lines",
	"is_binary",
}

// PrintCommitDetail outputs a single commit, dispatching based on the output format configured.
func PrintCommitDetail(detail schema.CommitDetail, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, detail)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			rows := schema.FlattenStats([]schema.CommitStats{detail.Stats}, map[string]schema.CommitInfo{detail.Info.ID: detail.Info})
			return writeFileRowsCSV(w, rows)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported by dump")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCommitTable(w, detail, cfg)
		}, "Wrote table")
	}
}

// writeCommitTable writes the commit header followed by a per-file table.
func writeCommitTable(w io.Writer, detail schema.CommitDetail, cfg *contract.Config) error {
	p := newPalette(cfg.UseColors)
	info := detail.Info

	source := "computed"
	if detail.Cached {
		source = "cached"
	}
	header := []string{
		fmt.Sprintf("%s %s (%s)", p.header("commit"), info.ID, source),
		fmt.Sprintf("Author:  %s <%s>", info.AuthorName, info.AuthorEmail),
		fmt.Sprintf("Date:    %s", info.Timestamp.UTC().Format(time.RFC3339)),
	}
	if info.IsMerge() {
		short := make([]string, len(info.ParentIDs))
		for i, id := range info.ParentIDs {
			short[i] = schema.ShortID(id)
		}
		header = append(header, "Merge:   "+strings.Join(short, " "))
	}
	header = append(header, "", "    "+info.Message, "")
	if _, err := fmt.Fprintln(w, strings.Join(header, "\n")); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Path", "Added", "Deleted", "Binary"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg, 30)
	var data [][]string
	for _, f := range detail.Stats.Files {
		binary := ""
		if f.IsBinary {
			binary = p.binary("bin")
		}
		data = append(data, []string{
			contract.TruncatePath(f.Path, pathWidth),
			p.added("+" + strconv.FormatUint(uint64(f.AddedLines), 10)),
			p.deleted("-" + strconv.FormatUint(uint64(f.DeletedLines), 10)),
			binary,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	added, deleted := detail.Stats.Totals()
	_, err := fmt.Fprintf(w, "%d files changed, %d insertions(+), %d deletions(-)\n", len(detail.Stats.Files), added, deleted)
	return err
}
