// Package diffstat turns tree diffs into per-file line change statistics.
package diffstat

import (
	"context"
	"fmt"

	"github.com/seeyebe/gmap/schema"
)

// Objects is the part of the object store a Computer reads from.
type Objects interface {
	DiffTrees(ctx context.Context, oldTreeID, newTreeID string) ([]schema.TreeChange, error)
	ReadBlob(ctx context.Context, id string) ([]byte, error)
}

// Computer resolves tree changes into FileStats.
type Computer struct {
	objects Objects
}

// NewComputer returns a Computer reading from objects.
func NewComputer(objects Objects) *Computer {
	return &Computer{objects: objects}
}

// blob is an inspected blob.
type blob struct {
	data   []byte
	binary bool
	lines  uint32
}

func (c *Computer) inspect(ctx context.Context, id string) (blob, error) {
	data, err := c.objects.ReadBlob(ctx, id)
	if err != nil {
		return blob{}, err
	}
	b := blob{data: data, binary: IsBinary(data)}
	if !b.binary {
		b.lines = CountLines(data)
	}
	return b, nil
}

// lineChanges diffs two text blobs. Binary content always yields (0, 0).
func lineChanges(oldBlob, newBlob blob) (added, deleted uint32) {
	if oldBlob.binary || newBlob.binary {
		return 0, 0
	}
	return CountLineChanges(SplitLines(oldBlob.data), SplitLines(newBlob.data))
}

// Compute returns the file stats between oldTreeID and newTreeID in diff order.
// An empty oldTreeID stands for a root commit. Binary files are dropped unless includeBinary is set.
func (c *Computer) Compute(ctx context.Context, oldTreeID, newTreeID string, includeBinary bool) ([]schema.FileStats, error) {
	changes, err := c.objects.DiffTrees(ctx, oldTreeID, newTreeID)
	if err != nil {
		return nil, err
	}

	files := make([]schema.FileStats, 0, len(changes))
	for _, ch := range changes {
		files, err = c.resolve(ctx, ch, includeBinary, files)
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// resolve appends the stats for one change to files.
func (c *Computer) resolve(ctx context.Context, ch schema.TreeChange, includeBinary bool, files []schema.FileStats) ([]schema.FileStats, error) {
	switch ch.Kind {
	case schema.Addition:
		b, err := c.inspect(ctx, ch.NewBlobID)
		if err != nil {
			return nil, err
		}
		if b.binary && !includeBinary {
			return files, nil
		}
		return append(files, schema.FileStats{Path: ch.NewPath, AddedLines: b.lines, IsBinary: b.binary}), nil

	case schema.Deletion:
		b, err := c.inspect(ctx, ch.OldBlobID)
		if err != nil {
			return nil, err
		}
		if b.binary && !includeBinary {
			return files, nil
		}
		return append(files, schema.FileStats{Path: ch.OldPath, DeletedLines: b.lines, IsBinary: b.binary}), nil

	case schema.Modification, schema.Rewrite:
		oldBlob, err := c.inspect(ctx, ch.OldBlobID)
		if err != nil {
			return nil, err
		}
		newBlob, err := c.inspect(ctx, ch.NewBlobID)
		if err != nil {
			return nil, err
		}
		binary := oldBlob.binary || newBlob.binary
		if binary && !includeBinary {
			return files, nil
		}
		added, deleted := lineChanges(oldBlob, newBlob)

		if ch.Kind == schema.Modification {
			return append(files, schema.FileStats{Path: ch.NewPath, AddedLines: added, DeletedLines: deleted, IsBinary: binary}), nil
		}

		// The source keeps the deletions of a rename; the destination keeps the additions of a copy.
		source := schema.FileStats{Path: ch.OldPath, IsBinary: binary}
		dest := schema.FileStats{Path: ch.NewPath, IsBinary: binary}
		if ch.Copy {
			dest.AddedLines = added
		} else {
			source.DeletedLines = deleted
		}
		return append(files, source, dest), nil

	default:
		return nil, fmt.Errorf("unknown change kind %d for %q", ch.Kind, ch.NewPath)
	}
}
