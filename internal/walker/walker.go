// Package walker traverses the commit graph from HEAD and computes per-commit stats.
package walker

import (
	"context"

	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/internal/diffstat"
	"github.com/seeyebe/gmap/schema"
	"github.com/sirupsen/logrus"
)

// Walker lists and diffs commits reachable from HEAD.
type Walker struct {
	objects  contract.ObjectStore
	computer *diffstat.Computer
	logger   *logrus.Logger
}

// New returns a Walker over objects.
func New(objects contract.ObjectStore, logger *logrus.Logger) *Walker {
	return &Walker{
		objects:  objects,
		computer: diffstat.NewComputer(objects),
		logger:   logger,
	}
}

// walk holds the per-traversal state: the commit metadata memo.
type walk struct {
	objects contract.ObjectStore
	memo    map[string]schema.CommitObject
}

func (w *walk) read(ctx context.Context, id string) (schema.CommitObject, error) {
	if c, ok := w.memo[id]; ok {
		return c, nil
	}
	c, err := w.objects.ReadCommit(ctx, id)
	if err != nil {
		return schema.CommitObject{}, err
	}
	w.memo[id] = c
	return c, nil
}

// traverse visits each commit reachable from HEAD once, depth first, and calls
// visit for commits that pass the range and merge filters. Excluded commits
// still contribute their parents to the traversal.
func (w *Walker) traverse(ctx context.Context, rng schema.DateRange, includeMerges bool,
	visit func(st *walk, c schema.CommitObject) error,
) error {
	head, err := w.objects.Head(ctx)
	if err != nil {
		return err
	}

	st := &walk{objects: w.objects, memo: make(map[string]schema.CommitObject)}
	stack := []string{head}
	visited := make(map[string]struct{})

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}

		c, err := st.read(ctx, id)
		if err != nil {
			return err
		}

		if rng.Contains(c.Timestamp) && (includeMerges || !c.IsMerge()) {
			if err := visit(st, c); err != nil {
				return err
			}
		}
		stack = append(stack, c.ParentIDs...)
	}

	w.logger.WithFields(logrus.Fields{
		"visited": len(visited),
		"reads":   len(st.memo),
	}).Debug("commit walk finished")
	return nil
}

// ListIDs returns the ids of qualifying commits in walk order without diffing anything.
func (w *Walker) ListIDs(ctx context.Context, rng schema.DateRange, includeMerges bool) ([]string, error) {
	var ids []string
	err := w.traverse(ctx, rng, includeMerges, func(_ *walk, c schema.CommitObject) error {
		ids = append(ids, c.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Walk returns the stats of every qualifying commit in walk order.
func (w *Walker) Walk(ctx context.Context, rng schema.DateRange, includeMerges, includeBinary bool) ([]schema.CommitStats, error) {
	var out []schema.CommitStats
	err := w.traverse(ctx, rng, includeMerges, func(st *walk, c schema.CommitObject) error {
		stats, err := w.diff(ctx, st, c, includeBinary)
		if err != nil {
			return err
		}
		out = append(out, stats)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// diff compares c against its first parent, or against nothing for a root commit.
func (w *Walker) diff(ctx context.Context, st *walk, c schema.CommitObject, includeBinary bool) (schema.CommitStats, error) {
	var parentTree string
	if len(c.ParentIDs) > 0 {
		parent, err := st.read(ctx, c.ParentIDs[0])
		if err != nil {
			return schema.CommitStats{}, err
		}
		parentTree = parent.TreeID
	}

	files, err := w.computer.Compute(ctx, parentTree, c.TreeID, includeBinary)
	if err != nil {
		return schema.CommitStats{}, err
	}
	return schema.CommitStats{CommitID: c.ID, Files: files}, nil
}

// CommitStats computes the stats of a single commit against its first parent.
func (w *Walker) CommitStats(ctx context.Context, id string, includeBinary bool) (schema.CommitStats, error) {
	st := &walk{objects: w.objects, memo: make(map[string]schema.CommitObject)}
	c, err := st.read(ctx, id)
	if err != nil {
		return schema.CommitStats{}, err
	}
	return w.diff(ctx, st, c, includeBinary)
}

// CommitInfo returns the metadata of a single commit.
func (w *Walker) CommitInfo(ctx context.Context, id string) (schema.CommitInfo, error) {
	c, err := w.objects.ReadCommit(ctx, id)
	if err != nil {
		return schema.CommitInfo{}, err
	}
	return c.CommitInfo, nil
}
