// Package schema has the models, enums and constants shared by all parts of gmap.
package schema

import "time"

// CommitInfo is the metadata of a single commit.
type CommitInfo struct {
	ID          string    `json:"id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	Message     string    `json:"message"` // Title line only
	Timestamp   time.Time `json:"timestamp"`
	ParentIDs   []string  `json:"parent_ids"`
}

// IsMerge reports whether the commit has more than one parent.
func (c CommitInfo) IsMerge() bool {
	return len(c.ParentIDs) > 1
}

// FileStats holds the line changes of one path within one commit.
type FileStats struct {
	Path         string `json:"path"`
	AddedLines   uint32 `json:"added_lines"`
	DeletedLines uint32 `json:"deleted_lines"`
	IsBinary     bool   `json:"is_binary"`
}

// CommitStats groups the per-file stats of a commit.
// Freshly computed stats keep diff order; cached stats come back sorted by path.
type CommitStats struct {
	CommitID string      `json:"commit_id"`
	Files    []FileStats `json:"files"`
}

// Totals returns the summed added and deleted lines across all files.
func (s CommitStats) Totals() (added, deleted uint64) {
	for _, f := range s.Files {
		added += uint64(f.AddedLines)
		deleted += uint64(f.DeletedLines)
	}
	return added, deleted
}

// CommitObject is a commit as read from the object store, with its root tree.
type CommitObject struct {
	CommitInfo
	TreeID string
}

// ChangeKind classifies a tree-to-tree change record.
type ChangeKind int

// All change kinds produced by a tree diff.
const (
	Addition ChangeKind = iota
	Deletion
	Modification
	Rewrite
)

// String returns the lower-case name of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case Addition:
		return "addition"
	case Deletion:
		return "deletion"
	case Modification:
		return "modification"
	case Rewrite:
		return "rewrite"
	default:
		return "unknown"
	}
}

// TreeChange is one entry of a tree diff.
// Additions carry only the new side, deletions only the old side.
type TreeChange struct {
	Kind      ChangeKind
	OldBlobID string
	NewBlobID string
	OldPath   string
	NewPath   string
	Copy      bool // Rewrite only: the source path still exists
}
