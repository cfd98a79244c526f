// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/seeyebe/gmap/schema"
)

// ObjectStore is the read-only view of a repository that history ingestion needs.
// This allows the walker and diff logic to be tested without a real repository on disk.
type ObjectStore interface {
	// Root returns the working (or content) root of the repository.
	Root() string

	// Head returns the commit id HEAD points at.
	Head(ctx context.Context) (string, error)

	// ResolveRevision turns a ref name, short hash or other revision expression into a commit id.
	ResolveRevision(ctx context.Context, rev string) (string, error)

	// ReadCommit returns metadata and the root tree of a commit.
	ReadCommit(ctx context.Context, id string) (schema.CommitObject, error)

	// DiffTrees lists the changes between two trees. An empty oldTreeID means the empty tree.
	DiffTrees(ctx context.Context, oldTreeID, newTreeID string) ([]schema.TreeChange, error)

	// ReadBlob returns the raw content of a blob.
	ReadBlob(ctx context.Context, id string) ([]byte, error)
}

// CommitStore is the persistent commit stats cache.
// This allows mocking the store for testing.
type CommitStore interface {
	// GetCommitStats returns cached stats for commits whose timestamp is in range, sorted by commit id.
	GetCommitStats(ctx context.Context, rng schema.DateRange) ([]schema.CommitStats, error)

	// StoreCommitStats writes stats and metadata in one transaction.
	// Stats without a matching entry in infos are skipped.
	StoreCommitStats(ctx context.Context, stats []schema.CommitStats, infos map[string]schema.CommitInfo) error

	// GetMissingCommits returns the ids that are not cached yet, in input order.
	GetMissingCommits(ctx context.Context, ids []string) ([]string, error)

	// GetCommitInfo returns cached metadata, or nil when the commit is unknown.
	GetCommitInfo(ctx context.Context, id string) (*schema.CommitInfo, error)

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.CacheStatus, error)

	// Close releases the underlying connection.
	Close() error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetCommitStore() CommitStore
}
