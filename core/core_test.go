package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/internal/gitrepo/gitrepotest"
	"github.com/seeyebe/gmap/internal/iocache"
	"github.com/seeyebe/gmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeFixture is a two-commit repository with a sqlite cache behind a mocked manager.
type executeFixture struct {
	objects contract.ObjectStore
	mgr     *iocache.MockCacheManager
	store   contract.CommitStore
	first   string
	second  string
	dir     string
}

func newExecuteFixture(t *testing.T) *executeFixture {
	t.Helper()
	b := gitrepotest.New(t)
	first := b.Write("main.go", "package main\n").Commit("init", t0)
	second := b.Write("main.go", "package main\n\nfunc main() {}\n").
		WriteBytes("logo.png", []byte{0x89, 'P', 'N', 'G', 0, 1, 2}).
		Commit("add main", t0.Add(time.Hour))

	dir := t.TempDir()
	store, err := iocache.NewCommitStore(context.Background(), schema.SQLiteBackend, filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetCommitStore").Return(store)
	return &executeFixture{objects: b.Store(), mgr: mgr, store: store, first: first, second: second, dir: dir}
}

func (f *executeFixture) config(name string) *contract.Config {
	return &contract.Config{
		Output:        schema.JSONOut,
		OutputFile:    filepath.Join(f.dir, name),
		IncludeMerges: true,
		CacheBackend:  schema.SQLiteBackend,
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestExecuteSync(t *testing.T) {
	ctx := context.Background()
	f := newExecuteFixture(t)

	t.Run("dry run computes nothing", func(t *testing.T) {
		cfg := f.config("plan.json")
		cfg.DryRun = true
		require.NoError(t, ExecuteSync(ctx, cfg, f.mgr, f.objects))

		var summary schema.SyncSummary
		readJSON(t, cfg.OutputFile, &summary)
		assert.Equal(t, 2, summary.Commits)
		assert.Equal(t, 2, summary.Computed)

		missing, err := f.store.GetMissingCommits(ctx, []string{f.first, f.second})
		require.NoError(t, err)
		assert.Len(t, missing, 2)
	})

	t.Run("sync then resync", func(t *testing.T) {
		cfg := f.config("sync.json")
		require.NoError(t, ExecuteSync(ctx, cfg, f.mgr, f.objects))
		var summary schema.SyncSummary
		readJSON(t, cfg.OutputFile, &summary)
		assert.Equal(t, 2, summary.Computed)
		assert.Equal(t, 2, summary.Stored)
		assert.Equal(t, 1, summary.FilesTouched, "binary files are skipped by default")

		require.NoError(t, ExecuteSync(ctx, cfg, f.mgr, f.objects))
		readJSON(t, cfg.OutputFile, &summary)
		assert.Equal(t, 2, summary.Cached)
		assert.Zero(t, summary.Computed)
	})
}

func TestExecuteShow(t *testing.T) {
	ctx := context.Background()
	f := newExecuteFixture(t)

	t.Run("revision required", func(t *testing.T) {
		assert.Error(t, ExecuteShow(ctx, f.config("none.json"), f.mgr, f.objects))
	})

	t.Run("head", func(t *testing.T) {
		cfg := f.config("show.json")
		cfg.Revision = "HEAD"
		cfg.IncludeBinary = true
		require.NoError(t, ExecuteShow(ctx, cfg, f.mgr, f.objects))

		var detail schema.CommitDetail
		readJSON(t, cfg.OutputFile, &detail)
		assert.Equal(t, f.second, detail.Info.ID)
		assert.Equal(t, "add main", detail.Info.Message)
		assert.False(t, detail.Cached)
		assert.Len(t, detail.Stats.Files, 2)
	})

	t.Run("bad revision", func(t *testing.T) {
		cfg := f.config("bad.json")
		cfg.Revision = "no-such-branch"
		assert.ErrorIs(t, ExecuteShow(ctx, cfg, f.mgr, f.objects), contract.ErrResolve)
	})
}

func TestExecuteDump(t *testing.T) {
	ctx := context.Background()
	f := newExecuteFixture(t)

	cfg := f.config("dump.json")
	cfg.IncludeBinary = true
	require.NoError(t, ExecuteDump(ctx, cfg, f.mgr, f.objects))

	var rows []schema.FileRow
	readJSON(t, cfg.OutputFile, &rows)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, "Jane Doe", r.AuthorName)
		assert.False(t, r.Timestamp.IsZero())
	}

	paths := make([]string, 0, len(rows))
	for _, r := range rows {
		paths = append(paths, r.CommitID[:7]+":"+r.Path)
	}
	assert.ElementsMatch(t, []string{
		f.first[:7] + ":main.go",
		f.second[:7] + ":main.go",
		f.second[:7] + ":logo.png",
	}, paths)
}

func TestWatch(t *testing.T) {
	logger := testLogger()

	t.Run("runs on start and when head moves", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		heads := []string{"a", "a", "a", "b"}
		var polls, runs atomic.Int32
		head := func(context.Context) (string, error) {
			i := int(polls.Add(1)) - 1
			return heads[min(i, len(heads)-1)], nil
		}
		run := func(context.Context) error {
			if runs.Add(1) == 2 {
				cancel()
			}
			return nil
		}

		require.NoError(t, watch(ctx, 5*time.Millisecond, head, run, logger))
		assert.EqualValues(t, 2, runs.Load())
		assert.GreaterOrEqual(t, polls.Load(), int32(4))
	})

	t.Run("head error stops the loop", func(t *testing.T) {
		boom := errors.New("boom")
		head := func(context.Context) (string, error) { return "", boom }
		err := watch(context.Background(), time.Millisecond, head, func(context.Context) error { return nil }, logger)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("run error stops the loop", func(t *testing.T) {
		boom := errors.New("boom")
		head := func(context.Context) (string, error) { return "a", nil }
		err := watch(context.Background(), time.Millisecond, head, func(context.Context) error { return boom }, logger)
		assert.ErrorIs(t, err, boom)
	})
}
