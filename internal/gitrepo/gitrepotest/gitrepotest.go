// Package gitrepotest builds in-memory git histories for tests.
package gitrepotest

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/seeyebe/gmap/internal/gitrepo"
	"github.com/stretchr/testify/require"
)

// Root is the worktree root reported by repositories built here.
const Root = "/"

// Builder stages files and records commits in a repository held entirely in memory.
type Builder struct {
	t    testing.TB
	repo *git.Repository
	fs   billy.Filesystem
	wt   *git.Worktree
}

// New initializes an empty repository.
func New(t testing.TB) *Builder {
	t.Helper()
	fs := memfs.New()
	repo, err := git.Init(memory.NewStorage(), fs)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &Builder{t: t, repo: repo, fs: fs, wt: wt}
}

// Store returns the repository as an object store.
func (b *Builder) Store() *gitrepo.Repository {
	return gitrepo.New(b.repo, Root)
}

// Write stages path with the given content.
func (b *Builder) Write(path, content string) *Builder {
	return b.WriteBytes(path, []byte(content))
}

// WriteBytes stages path with raw content.
func (b *Builder) WriteBytes(path string, content []byte) *Builder {
	b.t.Helper()
	require.NoError(b.t, util.WriteFile(b.fs, path, content, 0o644))
	_, err := b.wt.Add(path)
	require.NoError(b.t, err)
	return b
}

// Remove stages the deletion of path.
func (b *Builder) Remove(path string) *Builder {
	b.t.Helper()
	_, err := b.wt.Remove(path)
	require.NoError(b.t, err)
	return b
}

// Move stages a rename of from to to.
func (b *Builder) Move(from, to string) *Builder {
	b.t.Helper()
	_, err := b.wt.Move(from, to)
	require.NoError(b.t, err)
	return b
}

// Commit records the staged state on top of HEAD and returns the new commit id.
func (b *Builder) Commit(msg string, when time.Time) string {
	b.t.Helper()
	return b.commit(msg, when, nil)
}

// Merge records the staged state with the given parents, in order.
func (b *Builder) Merge(msg string, when time.Time, parents ...string) string {
	b.t.Helper()
	hashes := make([]plumbing.Hash, 0, len(parents))
	for _, p := range parents {
		hashes = append(hashes, plumbing.NewHash(p))
	}
	return b.commit(msg, when, hashes)
}

func (b *Builder) commit(msg string, when time.Time, parents []plumbing.Hash) string {
	sig := &object.Signature{Name: "Jane Doe", Email: "jane@example.com", When: when}
	hash, err := b.wt.Commit(msg, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	require.NoError(b.t, err)
	return hash.String()
}
