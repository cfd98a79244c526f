// Package gitrepo implements the repository object store on top of go-git.
package gitrepo

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
)

// Repository is a go-git backed ObjectStore.
type Repository struct {
	repo *git.Repository
	root string
}

var _ contract.ObjectStore = &Repository{} // Compile-time check

// Open discovers the repository containing path, searching parent directories.
func Open(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, contract.NewError(contract.KindOpen, "open repository", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, contract.Errorf(contract.KindOpen, "open repository", "%s is not inside a git repository: %w", absPath, err)
	}

	root := absPath
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	} else if !errors.Is(err, git.ErrIsBareRepository) {
		return nil, contract.NewError(contract.KindOpen, "open worktree", err)
	}
	return New(repo, root), nil
}

// New wraps an already opened go-git repository.
func New(repo *git.Repository, root string) *Repository {
	return &Repository{repo: repo, root: root}
}

// Root implements the ObjectStore interface.
func (r *Repository) Root() string {
	return r.root
}

// Head implements the ObjectStore interface.
func (r *Repository) Head(_ context.Context) (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", contract.NewError(contract.KindResolve, "resolve HEAD", err)
	}
	return ref.Hash().String(), nil
}

// ResolveRevision implements the ObjectStore interface.
func (r *Repository) ResolveRevision(_ context.Context, rev string) (string, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", contract.Errorf(contract.KindResolve, "resolve revision", "%q: %w", rev, err)
	}
	return hash.String(), nil
}

// ReadCommit implements the ObjectStore interface.
func (r *Repository) ReadCommit(_ context.Context, id string) (schema.CommitObject, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(id))
	if err != nil {
		return schema.CommitObject{}, contract.Errorf(contract.KindDecode, "read commit", "%s: %w", id, err)
	}

	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return schema.CommitObject{
		CommitInfo: schema.CommitInfo{
			ID:          c.Hash.String(),
			AuthorName:  c.Author.Name,
			AuthorEmail: c.Author.Email,
			Message:     titleLine(c.Message),
			Timestamp:   time.Unix(c.Committer.When.Unix(), 0).UTC(),
			ParentIDs:   parents,
		},
		TreeID: c.TreeHash.String(),
	}, nil
}

// titleLine returns the first non-blank line of a commit message.
func titleLine(msg string) string {
	for _, line := range strings.Split(msg, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// tree loads a tree object. An empty id yields nil, which go-git diffs as the empty tree.
func (r *Repository) tree(id string) (*object.Tree, error) {
	if id == "" {
		return nil, nil
	}
	t, err := r.repo.TreeObject(plumbing.NewHash(id))
	if err != nil {
		return nil, contract.Errorf(contract.KindDecode, "read tree", "%s: %w", id, err)
	}
	return t, nil
}

// DiffTrees implements the ObjectStore interface.
// Renames are detected by content similarity; go-git has no copy detection,
// so Rewrite changes always carry Copy=false. Submodule entries are skipped.
func (r *Repository) DiffTrees(ctx context.Context, oldTreeID, newTreeID string) ([]schema.TreeChange, error) {
	oldTree, err := r.tree(oldTreeID)
	if err != nil {
		return nil, err
	}
	newTree, err := r.tree(newTreeID)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, oldTree, newTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, contract.Errorf(contract.KindDecode, "diff trees", "%s..%s: %w", oldTreeID, newTreeID, err)
	}

	out := make([]schema.TreeChange, 0, len(changes))
	for _, ch := range changes {
		if ch.From.TreeEntry.Mode == filemode.Submodule || ch.To.TreeEntry.Mode == filemode.Submodule {
			continue
		}
		action, err := ch.Action()
		if err != nil {
			return nil, contract.NewError(contract.KindDecode, "diff trees", err)
		}

		switch action {
		case merkletrie.Insert:
			out = append(out, schema.TreeChange{
				Kind:      schema.Addition,
				NewBlobID: ch.To.TreeEntry.Hash.String(),
				NewPath:   ch.To.Name,
			})
		case merkletrie.Delete:
			out = append(out, schema.TreeChange{
				Kind:      schema.Deletion,
				OldBlobID: ch.From.TreeEntry.Hash.String(),
				OldPath:   ch.From.Name,
			})
		case merkletrie.Modify:
			kind := schema.Modification
			if ch.From.Name != ch.To.Name {
				kind = schema.Rewrite
			}
			out = append(out, schema.TreeChange{
				Kind:      kind,
				OldBlobID: ch.From.TreeEntry.Hash.String(),
				NewBlobID: ch.To.TreeEntry.Hash.String(),
				OldPath:   ch.From.Name,
				NewPath:   ch.To.Name,
			})
		}
	}
	return out, nil
}

// ReadBlob implements the ObjectStore interface.
func (r *Repository) ReadBlob(_ context.Context, id string) ([]byte, error) {
	b, err := r.repo.BlobObject(plumbing.NewHash(id))
	if err != nil {
		return nil, contract.Errorf(contract.KindDecode, "read blob", "%s: %w", id, err)
	}
	rd, err := b.Reader()
	if err != nil {
		return nil, contract.Errorf(contract.KindDecode, "read blob", "%s: %w", id, err)
	}
	defer func() { _ = rd.Close() }()

	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, contract.Errorf(contract.KindDecode, "read blob", "%s: %w", id, err)
	}
	return data, nil
}
