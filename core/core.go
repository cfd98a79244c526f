// Package core has the fetch orchestration and the command entry points built on it.
package core

import (
	"context"
	"errors"

	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/internal/outwriter"
	"github.com/seeyebe/gmap/schema"
)

// ExecutorFunc defines the function signature for executing a command against an opened repository.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, objects contract.ObjectStore) error

// newFetcher wires the managed commit store to the repository.
func newFetcher(mgr contract.CacheManager, objects contract.ObjectStore) *Fetcher {
	return NewFetcher(mgr.GetCommitStore(), objects, contract.Logger())
}

// ExecuteSync brings the cache up to date for the configured range and prints a summary.
// With DryRun set it only reports what a sync would compute.
func ExecuteSync(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, objects contract.ObjectStore) error {
	fetcher := newFetcher(mgr, objects)

	if cfg.DryRun {
		summary, err := fetcher.Plan(ctx, cfg.Range, cfg.IncludeMerges)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteSummary(summary, cfg)
	}

	stop := startProgress(cfg, " Fetching commit stats...")
	_, summary, err := fetcher.Sync(ctx, cfg.Range, cfg.IncludeMerges, cfg.IncludeBinary)
	stop()
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteSummary(summary, cfg)
}

// ExecuteShow prints one commit with its file stats.
func ExecuteShow(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, objects contract.ObjectStore) error {
	if cfg.Revision == "" {
		return errors.New("a revision is required")
	}
	detail, err := newFetcher(mgr, objects).Show(ctx, cfg.Revision, cfg.IncludeBinary)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteCommit(detail, cfg)
}

// ExecuteDump fetches the configured range and writes one row per changed file.
func ExecuteDump(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, objects contract.ObjectStore) error {
	rows, err := dumpRows(ctx, newFetcher(mgr, objects), cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDump(rows, cfg)
}

// dumpRows joins fetched stats with commit metadata.
func dumpRows(ctx context.Context, fetcher *Fetcher, cfg *contract.Config) ([]schema.FileRow, error) {
	stop := startProgress(cfg, " Fetching commit stats...")
	stats, err := fetcher.Fetch(ctx, cfg.Range, cfg.IncludeMerges, cfg.IncludeBinary)
	stop()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(stats))
	for i, cs := range stats {
		ids[i] = cs.CommitID
	}
	infos, err := fetcher.CommitInfos(ctx, ids)
	if err != nil {
		return nil, err
	}
	return schema.FlattenStats(stats, infos), nil
}
