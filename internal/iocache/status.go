package iocache

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/seeyebe/gmap/schema"
)

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus, now time.Time) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Schema Version: %d\n", status.SchemaVersion)
	_, _ = fmt.Fprintf(w, "Commits: %s\n", humanize.Comma(int64(status.TotalCommits)))
	_, _ = fmt.Fprintf(w, "File Rows: %s\n", humanize.Comma(int64(status.TotalFiles)))
	if status.TotalCommits > 0 {
		_, _ = fmt.Fprintf(w, "Oldest Commit: %s (%s)\n",
			status.OldestCommitTime.Format(time.DateTime), humanize.RelTime(status.OldestCommitTime, now, "ago", "from now"))
		_, _ = fmt.Fprintf(w, "Newest Commit: %s (%s)\n",
			status.NewestCommitTime.Format(time.DateTime), humanize.RelTime(status.NewestCommitTime, now, "ago", "from now"))
	}
	_, _ = fmt.Fprintf(w, "Size: %s\n", humanize.IBytes(uint64(max(status.SizeBytes, 0))))
}
