package schema

import "time"

// CacheStatus represents the status of the commit cache.
type CacheStatus struct {
	Backend          string    `json:"backend"`
	Connected        bool      `json:"connected"`
	SchemaVersion    int       `json:"schema_version"`
	TotalCommits     int       `json:"total_commits"`
	TotalFiles       int       `json:"total_files"`
	OldestCommitTime time.Time `json:"oldest_commit_time"`
	NewestCommitTime time.Time `json:"newest_commit_time"`
	SizeBytes        int64     `json:"size_bytes"`
}

// SyncSummary describes the outcome of one fetch.
type SyncSummary struct {
	Range        DateRange     `json:"range"`
	Commits      int           `json:"commits"`
	Cached       int           `json:"cached"`
	Computed     int           `json:"computed"`
	Stored       int           `json:"stored"`
	FilesTouched int           `json:"files_touched"`
	AddedLines   uint64        `json:"added_lines"`
	DeletedLines uint64        `json:"deleted_lines"`
	Elapsed      time.Duration `json:"elapsed"`
}
