package core

import (
	"context"
	"time"

	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/internal/walker"
	"github.com/seeyebe/gmap/schema"
	"github.com/sirupsen/logrus"
)

// Fetcher serves commit stats from the cache and computes only what is missing.
type Fetcher struct {
	store   contract.CommitStore
	objects contract.ObjectStore
	walker  *walker.Walker
	logger  *logrus.Logger
}

// NewFetcher returns a Fetcher over a cache and a repository.
func NewFetcher(store contract.CommitStore, objects contract.ObjectStore, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		store:   store,
		objects: objects,
		walker:  walker.New(objects, logger),
		logger:  logger,
	}
}

// Fetch returns stats for every qualifying commit in rng: cached stats first,
// then the newly computed ones in walk order. New results are written back in one transaction.
func (f *Fetcher) Fetch(ctx context.Context, rng schema.DateRange, includeMerges, includeBinary bool) ([]schema.CommitStats, error) {
	stats, _, err := f.Sync(ctx, rng, includeMerges, includeBinary)
	return stats, err
}

// Sync is Fetch plus a summary of what was served from cache and what was computed.
func (f *Fetcher) Sync(ctx context.Context, rng schema.DateRange, includeMerges, includeBinary bool) ([]schema.CommitStats, schema.SyncSummary, error) {
	start := time.Now()
	summary := schema.SyncSummary{Range: rng}

	cached, err := f.store.GetCommitStats(ctx, rng)
	if err != nil {
		return nil, summary, err
	}
	all, err := f.walker.ListIDs(ctx, rng, includeMerges)
	if err != nil {
		return nil, summary, err
	}

	have := make(map[string]struct{}, len(cached))
	for _, cs := range cached {
		have[cs.CommitID] = struct{}{}
	}
	var missing []string
	for _, id := range all {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}

	log := f.logger.WithFields(logrus.Fields{
		"in_range": len(all),
		"cached":   len(cached),
		"missing":  len(missing),
	})
	log.Debug("computing missing commits")

	computed := make([]schema.CommitStats, 0, len(missing))
	infos := make(map[string]schema.CommitInfo, len(missing))
	for _, id := range missing {
		stats, err := f.walker.CommitStats(ctx, id, includeBinary)
		if err != nil {
			return nil, summary, err
		}
		computed = append(computed, stats)

		info, err := f.walker.CommitInfo(ctx, id)
		if err != nil {
			f.logger.WithError(err).WithField("commit", schema.ShortID(id)).Warn("skipping commit without metadata")
			continue
		}
		infos[id] = info
	}

	if err := f.store.StoreCommitStats(ctx, computed, infos); err != nil {
		return nil, summary, err
	}

	result := make([]schema.CommitStats, 0, len(cached)+len(computed))
	result = append(result, cached...)
	result = append(result, computed...)

	summary.Commits = len(result)
	summary.Cached = len(cached)
	summary.Computed = len(computed)
	summary.Stored = len(infos)
	paths := make(map[string]struct{})
	for _, cs := range result {
		added, deleted := cs.Totals()
		summary.AddedLines += added
		summary.DeletedLines += deleted
		for _, file := range cs.Files {
			paths[file.Path] = struct{}{}
		}
	}
	summary.FilesTouched = len(paths)
	summary.Elapsed = time.Since(start)

	log.WithField("elapsed", summary.Elapsed).Info("fetch finished")
	return result, summary, nil
}

// Plan reports how many qualifying commits a fetch would serve from cache and how many it would compute.
// Nothing is diffed or written.
func (f *Fetcher) Plan(ctx context.Context, rng schema.DateRange, includeMerges bool) (schema.SyncSummary, error) {
	start := time.Now()
	summary := schema.SyncSummary{Range: rng}

	all, err := f.walker.ListIDs(ctx, rng, includeMerges)
	if err != nil {
		return summary, err
	}
	missing, err := f.store.GetMissingCommits(ctx, all)
	if err != nil {
		return summary, err
	}

	summary.Commits = len(all)
	summary.Computed = len(missing)
	summary.Cached = len(all) - len(missing)
	summary.Elapsed = time.Since(start)
	return summary, nil
}

// CommitInfos returns metadata for the given commits, from the cache when present
// and otherwise from the repository.
func (f *Fetcher) CommitInfos(ctx context.Context, ids []string) (map[string]schema.CommitInfo, error) {
	infos := make(map[string]schema.CommitInfo, len(ids))
	for _, id := range ids {
		info, err := f.commitInfo(ctx, id)
		if err != nil {
			return nil, err
		}
		infos[id] = info
	}
	return infos, nil
}

func (f *Fetcher) commitInfo(ctx context.Context, id string) (schema.CommitInfo, error) {
	cached, err := f.store.GetCommitInfo(ctx, id)
	if err != nil {
		return schema.CommitInfo{}, err
	}
	if cached != nil {
		return *cached, nil
	}
	return f.walker.CommitInfo(ctx, id)
}

// Show resolves rev and returns its metadata and file stats. Cached stats are
// preferred; otherwise the commit is diffed against its first parent.
func (f *Fetcher) Show(ctx context.Context, rev string, includeBinary bool) (schema.CommitDetail, error) {
	id, err := f.objects.ResolveRevision(ctx, rev)
	if err != nil {
		return schema.CommitDetail{}, err
	}
	info, err := f.commitInfo(ctx, id)
	if err != nil {
		return schema.CommitDetail{}, err
	}

	// Stats are keyed by timestamp range, so narrow to this commit's second.
	cached, err := f.store.GetCommitStats(ctx, schema.DateRange{Since: info.Timestamp, Until: info.Timestamp})
	if err != nil {
		return schema.CommitDetail{}, err
	}
	for _, cs := range cached {
		if cs.CommitID == id {
			return schema.CommitDetail{Info: info, Stats: cs, Cached: true}, nil
		}
	}

	stats, err := f.walker.CommitStats(ctx, id, includeBinary)
	if err != nil {
		return schema.CommitDetail{}, err
	}
	return schema.CommitDetail{Info: info, Stats: stats}, nil
}
