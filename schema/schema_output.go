package schema

import "time"

// FileRow is one flattened (commit, file) record used by raw dumps.
type FileRow struct {
	CommitID     string    `json:"commit_id"`
	AuthorName   string    `json:"author_name"`
	AuthorEmail  string    `json:"author_email"`
	Timestamp    time.Time `json:"timestamp"`
	Path         string    `json:"path"`
	AddedLines   uint32    `json:"added_lines"`
	DeletedLines uint32    `json:"deleted_lines"`
	IsBinary     bool      `json:"is_binary"`
}

// FlattenStats joins commit stats with their metadata into file rows.
// Stats without metadata keep an empty author and a zero timestamp.
// A commit that touched no files yields no rows.
func FlattenStats(stats []CommitStats, infos map[string]CommitInfo) []FileRow {
	var rows []FileRow
	for _, s := range stats {
		info := infos[s.CommitID]
		for _, f := range s.Files {
			rows = append(rows, FileRow{
				CommitID:     s.CommitID,
				AuthorName:   info.AuthorName,
				AuthorEmail:  info.AuthorEmail,
				Timestamp:    info.Timestamp,
				Path:         f.Path,
				AddedLines:   f.AddedLines,
				DeletedLines: f.DeletedLines,
				IsBinary:     f.IsBinary,
			})
		}
	}
	return rows
}

// CommitDetail is a single commit with its file stats, as shown by "gmap show".
type CommitDetail struct {
	Info   CommitInfo  `json:"info"`
	Stats  CommitStats `json:"stats"`
	Cached bool        `json:"cached"` // Stats were read from the cache
}
