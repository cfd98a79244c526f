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
	"github.com/seeyebe/gmap/internal/parquet"
	"github.com/seeyebe/gmap/schema"
)

// PrintFileRows outputs dump rows, dispatching based on the output format configured.
func PrintFileRows(rows []schema.FileRow, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if rows == nil {
				rows = []schema.FileRow{}
			}
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFileRowsCSV(w, rows)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WriteFileChangesParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFileRowsTable(w, rows, cfg)
		}, "Wrote table")
	}
}

// writeFileRowsCSV writes rows in CSV format with full ids and RFC3339 timestamps.
func writeFileRowsCSV(w io.Writer, rows []schema.FileRow) error {
	return writeCSVWithHeader(w, fileRowCSVHeader, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{
				r.CommitID,
				r.AuthorName,
				r.AuthorEmail,
				r.Timestamp.UTC().Format(time.RFC3339),
				r.Path,
				strconv.FormatUint(uint64(r.AddedLines), 10),
				strconv.FormatUint(uint64(r.DeletedLines), 10),
				strconv.FormatBool(r.IsBinary),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeFileRowsTable generates and writes the human-readable dump table.
func writeFileRowsTable(w io.Writer, rows []schema.FileRow, cfg *contract.Config) error {
	p := newPalette(cfg.UseColors)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Commit", "Author", "Date", "Path", "Added", "Deleted", "Binary"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg, 70)
	data := make([][]string, 0, len(rows))
	var added, deleted uint64
	for _, r := range rows {
		binary := ""
		if r.IsBinary {
			binary = p.binary("bin")
		}
		data = append(data, []string{
			schema.ShortID(r.CommitID),
			schema.AbbreviateName(r.AuthorName),
			r.Timestamp.UTC().Format(contract.DateOnlyFormat),
			contract.TruncatePath(r.Path, pathWidth),
			p.added("+" + strconv.FormatUint(uint64(r.AddedLines), 10)),
			p.deleted("-" + strconv.FormatUint(uint64(r.DeletedLines), 10)),
			binary,
		})
		added += uint64(r.AddedLines)
		deleted += uint64(r.DeletedLines)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%d rows, %d insertions(+), %d deletions(-)\n", len(rows), added, deleted)
	return err
}
