// Package parquet exports flattened commit stats to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/seeyebe/gmap/schema"
)

// FileChange is one (commit, path) row of a dump.
type FileChange struct {
	// CommitID is the full commit hash
	CommitID string `parquet:"commit_id,snappy,dict"`

	// AuthorName and AuthorEmail identify the commit author
	AuthorName  string `parquet:"author_name,snappy,dict"`
	AuthorEmail string `parquet:"author_email,snappy,dict"`

	// CommitTime is the committer timestamp at second precision
	CommitTime time.Time `parquet:"commit_time,snappy"`

	// FilePath is the repository-relative path
	FilePath string `parquet:"file_path,snappy,dict"`

	AddedLines   int64 `parquet:"added_lines,snappy"`
	DeletedLines int64 `parquet:"deleted_lines,snappy"`
	IsBinary     bool  `parquet:"is_binary,snappy"`
}

// FromFileRows converts dump rows into Parquet records.
func FromFileRows(rows []schema.FileRow) []FileChange {
	out := make([]FileChange, len(rows))
	for i, r := range rows {
		out[i] = FileChange{
			CommitID:     r.CommitID,
			AuthorName:   r.AuthorName,
			AuthorEmail:  r.AuthorEmail,
			CommitTime:   r.Timestamp,
			FilePath:     r.Path,
			AddedLines:   int64(r.AddedLines),
			DeletedLines: int64(r.DeletedLines),
			IsBinary:     r.IsBinary,
		}
	}
	return out
}

// WriteFileChangesParquet writes dump rows to a Parquet file at outputPath.
func WriteFileChangesParquet(rows []schema.FileRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the FileChange struct tags
	writer := parquet.NewGenericWriter[FileChange](file)
	if _, err := writer.Write(FromFileRows(rows)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}
